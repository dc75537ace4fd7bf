package foreman

// Field describes one named field of a component schema. Default constructs
// the field's initial value; nil defaults to a nil leaf.
type Field struct {
	Name    string
	Default func() any
}

// Initializer runs after a component is retained from its pool, with the
// arguments passed to Schema.New.
type Initializer func(c *Component, args ...any)

// Schema describes a component shape: a stable type id, ordered fields, and
// optional hooks. Instances are pooled per schema.
type Schema struct {
	name       string
	typeID     TypeID
	fields     []Field
	initialize Initializer
	pool       *ComponentPool
	registered bool
}

type schemaConfig struct {
	typeID       TypeID
	typeIDSet    bool
	poolCapacity int
	initialize   Initializer
}

type SchemaOption func(*schemaConfig)

// WithTypeID pins the schema to an explicit type id instead of the next
// dense one.
func WithTypeID(id TypeID) SchemaOption {
	return func(c *schemaConfig) {
		c.typeID = id
		c.typeIDSet = true
	}
}

// WithPoolCapacity overrides the schema's component pool capacity.
func WithPoolCapacity(n int) SchemaOption {
	return func(c *schemaConfig) {
		if n > 0 {
			c.poolCapacity = n
		}
	}
}

// WithInitializer sets the hook invoked on instances returned by Schema.New.
func WithInitializer(fn Initializer) SchemaOption {
	return func(c *schemaConfig) {
		c.initialize = fn
	}
}

// NewSchema builds an unbound schema. It must be registered with a Registry
// before instances can be created.
func NewSchema(name string, fields []Field, opts ...SchemaOption) *Schema {
	cfg := schemaConfig{typeID: -1, poolCapacity: DefaultPoolCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Schema{
		name:       name,
		typeID:     cfg.typeID,
		fields:     fields,
		initialize: cfg.initialize,
	}
	s.pool = newComponentPool(s, cfg.poolCapacity)
	return s
}

func (s *Schema) Name() string   { return s.name }
func (s *Schema) TypeID() TypeID { return s.typeID }

// Pool exposes the schema's component pool.
func (s *Schema) Pool() *ComponentPool { return s.pool }

// New retains a pooled instance and runs the schema's initializer with args.
// The schema must be registered first so instances carry a valid type id.
func (s *Schema) New(args ...any) *Component {
	if !s.registered {
		panic("foreman: schema " + s.name + " is not registered")
	}
	c := s.pool.Retain()
	if s.initialize != nil {
		s.initialize(c, args...)
	}
	return c
}

// newFields constructs the schema's default value tree.
func (s *Schema) newFields() *Record {
	r := NewRecord()
	for _, f := range s.fields {
		if f.Default != nil {
			r.Set(f.Name, f.Default())
		} else {
			r.Set(f.Name, nil)
		}
	}
	return r
}

// Registry is the explicit context shared by a world: registered schemas,
// their component pools, and the op pool. A component instance belongs to
// the pool of exactly one schema within one registry.
type Registry struct {
	schemas    map[TypeID]*Schema
	byName     map[string]*Schema
	nextTypeID TypeID
	ops        *opPool

	defaultPoolCapacity int
	poolOverrides       map[string]int
}

func newRegistry() *Registry {
	return &Registry{
		schemas:             make(map[TypeID]*Schema),
		byName:              make(map[string]*Schema),
		ops:                 newOpPool(DefaultOpPoolCapacity),
		defaultPoolCapacity: DefaultPoolCapacity,
		poolOverrides:       make(map[string]int),
	}
}

// Register binds an unbound schema to the registry, assigning the next dense
// type id unless the schema was pinned with WithTypeID.
func (r *Registry) Register(s *Schema) error {
	if s.registered {
		return nil
	}
	if _, taken := r.byName[s.name]; taken {
		return DuplicateSchemaError{Name: s.name}
	}
	if s.typeID >= 0 {
		if _, taken := r.schemas[s.typeID]; taken {
			return DuplicateTypeIDError{TypeID: s.typeID}
		}
	} else {
		for {
			if _, taken := r.schemas[r.nextTypeID]; !taken {
				break
			}
			r.nextTypeID++
		}
		s.typeID = r.nextTypeID
		r.nextTypeID++
	}
	if override, ok := r.poolOverrides[s.name]; ok {
		s.pool.capacity = override
	} else if s.pool.capacity == DefaultPoolCapacity && r.defaultPoolCapacity != DefaultPoolCapacity {
		s.pool.capacity = r.defaultPoolCapacity
	}
	s.registered = true
	r.schemas[s.typeID] = s
	r.byName[s.name] = s
	return nil
}

// RegisterSchema builds and registers a schema in one call.
func (r *Registry) RegisterSchema(name string, fields []Field, opts ...SchemaOption) (*Schema, error) {
	s := NewSchema(name, fields, opts...)
	if err := r.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Schema returns the registered schema with the given name, or nil.
func (r *Registry) Schema(name string) *Schema { return r.byName[name] }

// SchemaByTypeID returns the registered schema with the given type id, or nil.
func (r *Registry) SchemaByTypeID(id TypeID) *Schema { return r.schemas[id] }
