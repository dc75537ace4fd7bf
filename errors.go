package foreman

import "fmt"

type EntityNotFoundError struct {
	Entity EntityID
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity does not exist in storage: %d", e.Entity)
}

type ComponentNotFoundError struct {
	Entity EntityID
	TypeID TypeID
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component with type id %d does not exist on entity %d", e.TypeID, e.Entity)
}

type DuplicateTypeIDError struct {
	TypeID TypeID
}

func (e DuplicateTypeIDError) Error() string {
	return fmt.Sprintf("schema type id already registered: %d", e.TypeID)
}

type DuplicateSchemaError struct {
	Name string
}

func (e DuplicateSchemaError) Error() string {
	return fmt.Sprintf("schema name already registered: %s", e.Name)
}

type InvalidStateError struct {
	Op     string
	Reason string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("%s is not permitted: %s", e.Op, e.Reason)
}

type SchemaNotFoundError struct {
	TypeID TypeID
}

func (e SchemaNotFoundError) Error() string {
	return fmt.Sprintf("no schema registered for type id %d", e.TypeID)
}
