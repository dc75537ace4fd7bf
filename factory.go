package foreman

type factory struct{}

var Factory factory

func (f factory) NewWorld(opts ...WorldOption) *World {
	return newWorld(opts...)
}

func (f factory) NewRegistry() *Registry {
	return newRegistry()
}

func (f factory) NewStorage(registry *Registry) Storage {
	return newStorage(registry)
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func (f factory) NewCursor(query QueryNode, storage Storage) *Cursor {
	return newCursor(query, storage)
}
