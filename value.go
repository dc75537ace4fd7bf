package foreman

// The component value model is a small tagged tree. Composite shapes are
// Record (named fields), List (ordered), Object (string keys), Set, and Dict
// (arbitrary comparable keys). Anything else stored in the tree is a leaf.

// Deleted marks a removed object or dict entry inside a change record.
type deleted struct{}

func (deleted) String() string { return "DELETE" }

// Deleted is the sentinel recorded when an observed object or dict entry is
// removed. A later assignment to the same key overrides it.
var Deleted deleted

// Record is a named-field composite, the top-level shape of every component.
type Record struct {
	fields map[string]any
}

func NewRecord() *Record {
	return &Record{fields: make(map[string]any)}
}

// RecordOf builds a record from an existing field map, adopting it by
// reference.
func RecordOf(fields map[string]any) *Record {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Record{fields: fields}
}

func (r *Record) Get(name string) any      { return r.fields[name] }
func (r *Record) Set(name string, v any)   { r.fields[name] = v }
func (r *Record) Has(name string) bool     { _, ok := r.fields[name]; return ok }
func (r *Record) Delete(name string)       { delete(r.fields, name) }
func (r *Record) Len() int                 { return len(r.fields) }
func (r *Record) Range(fn func(name string, v any) bool) {
	for k, v := range r.fields {
		if !fn(k, v) {
			return
		}
	}
}

// List is an ordered composite.
type List struct {
	items []any
}

func NewList(items ...any) *List {
	return &List{items: items}
}

func (l *List) Get(i int) any    { return l.items[i] }
func (l *List) Set(i int, v any) { l.items[i] = v }
func (l *List) Len() int         { return len(l.items) }

func (l *List) Append(items ...any) {
	l.items = append(l.items, items...)
}

// SetLen truncates or nil-extends the list to n items.
func (l *List) SetLen(n int) {
	if n < 0 {
		n = 0
	}
	for len(l.items) < n {
		l.items = append(l.items, nil)
	}
	l.items = l.items[:n]
}

// Splice removes deleteCount items starting at start, inserts items in their
// place, and returns the removed items.
func (l *List) Splice(start, deleteCount int, items ...any) []any {
	if start < 0 {
		start = 0
	}
	if start > len(l.items) {
		start = len(l.items)
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > len(l.items) {
		deleteCount = len(l.items) - start
	}
	removed := make([]any, deleteCount)
	copy(removed, l.items[start:start+deleteCount])

	tail := make([]any, len(l.items)-start-deleteCount)
	copy(tail, l.items[start+deleteCount:])
	l.items = append(l.items[:start], items...)
	l.items = append(l.items, tail...)
	return removed
}

// Object is a string-keyed composite.
type Object struct {
	entries map[string]any
}

func NewObject() *Object {
	return &Object{entries: make(map[string]any)}
}

func (o *Object) Get(key string) any    { return o.entries[key] }
func (o *Object) Set(key string, v any) { o.entries[key] = v }
func (o *Object) Has(key string) bool   { _, ok := o.entries[key]; return ok }
func (o *Object) Delete(key string)     { delete(o.entries, key) }
func (o *Object) Len() int              { return len(o.entries) }
func (o *Object) Range(fn func(key string, v any) bool) {
	for k, v := range o.entries {
		if !fn(k, v) {
			return
		}
	}
}

// Set holds unique comparable members.
type Set struct {
	items map[any]struct{}
}

func NewSet(items ...any) *Set {
	s := &Set{items: make(map[any]struct{})}
	for _, it := range items {
		s.items[it] = struct{}{}
	}
	return s
}

func (s *Set) Add(v any)      { s.items[v] = struct{}{} }
func (s *Set) Delete(v any)   { delete(s.items, v) }
func (s *Set) Has(v any) bool { _, ok := s.items[v]; return ok }
func (s *Set) Len() int       { return len(s.items) }
func (s *Set) Range(fn func(v any) bool) {
	for v := range s.items {
		if !fn(v) {
			return
		}
	}
}

// Dict is a composite keyed by arbitrary comparable values.
type Dict struct {
	entries map[any]any
}

func NewDict() *Dict {
	return &Dict{entries: make(map[any]any)}
}

func (d *Dict) Get(key any) any    { return d.entries[key] }
func (d *Dict) Set(key, v any)     { d.entries[key] = v }
func (d *Dict) Has(key any) bool   { _, ok := d.entries[key]; return ok }
func (d *Dict) Delete(key any)     { delete(d.entries, key) }
func (d *Dict) Len() int           { return len(d.entries) }
func (d *Dict) Range(fn func(key, v any) bool) {
	for k, v := range d.entries {
		if !fn(k, v) {
			return
		}
	}
}

// DefaultOf returns a field default that yields v each time. Use only with
// leaf values; composites shared across instances would alias.
func DefaultOf(v any) func() any {
	return func() any { return v }
}

// Zero is the conventional numeric leaf default.
func Zero() any { return 0 }

func isComposite(v any) bool {
	switch v.(type) {
	case *Record, *List, *Object, *Set, *Dict:
		return true
	}
	return false
}

// cloneValue deep-copies composite values; leaves are returned as-is.
func cloneValue(v any) any {
	switch tv := v.(type) {
	case *Record:
		out := NewRecord()
		for k, fv := range tv.fields {
			out.fields[k] = cloneValue(fv)
		}
		return out
	case *List:
		out := &List{items: make([]any, len(tv.items))}
		for i, iv := range tv.items {
			out.items[i] = cloneValue(iv)
		}
		return out
	case *Object:
		out := NewObject()
		for k, ov := range tv.entries {
			out.entries[k] = cloneValue(ov)
		}
		return out
	case *Set:
		out := NewSet()
		for m := range tv.items {
			out.items[m] = struct{}{}
		}
		return out
	case *Dict:
		out := NewDict()
		for k, dv := range tv.entries {
			out.entries[k] = cloneValue(dv)
		}
		return out
	}
	return v
}
