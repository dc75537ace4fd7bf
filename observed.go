package foreman

// Observed views wrap a component's value tree and record the net effect of
// every write into a parallel change record. Views over nested composites are
// built lazily and memoized, so repeated reads of the same field return the
// same view within a step. Change records accumulate across steps; clearing
// them is the consumer's responsibility.

// ChangeRecord is the accumulated diff of one observed composite.
type ChangeRecord interface {
	// Empty reports whether the record, including nested records, holds no
	// changes.
	Empty() bool
	// Clear drops all recorded changes, including nested records.
	Clear()
}

type observedView interface {
	changeRecord() ChangeRecord
}

// observe wraps a composite value in its observed view. Leaves pass through.
func observe(v any) any {
	switch tv := v.(type) {
	case *Record:
		return newObservedRecord(tv)
	case *List:
		return newObservedList(tv)
	case *Object:
		return newObservedObject(tv)
	case *Set:
		return newObservedSet(tv)
	case *Dict:
		return newObservedDict(tv)
	}
	return v
}

// RecordChanges maps field names to their most recent assigned value.
type RecordChanges struct {
	fields map[string]any
	nested map[string]ChangeRecord
}

func newRecordChanges() *RecordChanges {
	return &RecordChanges{
		fields: make(map[string]any),
		nested: make(map[string]ChangeRecord),
	}
}

// Value returns the recorded assignment for a field, if any.
func (c *RecordChanges) Value(name string) (any, bool) {
	v, ok := c.fields[name]
	return v, ok
}

// Fields exposes the recorded assignments. Callers must not mutate it.
func (c *RecordChanges) Fields() map[string]any { return c.fields }

// Nested returns the change record of a nested composite field, or nil.
func (c *RecordChanges) Nested(name string) ChangeRecord { return c.nested[name] }

func (c *RecordChanges) Empty() bool {
	if len(c.fields) > 0 {
		return false
	}
	for _, n := range c.nested {
		if !n.Empty() {
			return false
		}
	}
	return true
}

func (c *RecordChanges) Clear() {
	clear(c.fields)
	for _, n := range c.nested {
		n.Clear()
	}
}

// ObservedRecord is the observed view over a Record.
type ObservedRecord struct {
	target  *Record
	changes *RecordChanges
	views   map[string]any
}

func newObservedRecord(target *Record) *ObservedRecord {
	return &ObservedRecord{
		target:  target,
		changes: newRecordChanges(),
		views:   make(map[string]any),
	}
}

func (o *ObservedRecord) changeRecord() ChangeRecord { return o.changes }

// Changes returns the record's accumulated diff.
func (o *ObservedRecord) Changes() *RecordChanges { return o.changes }

// Get returns the field value. Composite fields come back as observed views,
// memoized so that repeated reads return the same view.
func (o *ObservedRecord) Get(name string) any {
	v := o.target.Get(name)
	if !isComposite(v) {
		return v
	}
	if view, ok := o.views[name]; ok {
		return view
	}
	view := observe(v)
	o.views[name] = view
	o.changes.nested[name] = view.(observedView).changeRecord()
	return view
}

// Set writes through to the underlying record and records the assignment.
// Composite values are adopted by reference; writes through the view returned
// by a subsequent Get keep recording under this field.
func (o *ObservedRecord) Set(name string, v any) {
	o.target.Set(name, v)
	o.changes.fields[name] = v
	delete(o.views, name)
	delete(o.changes.nested, name)
}

func (o *ObservedRecord) Has(name string) bool { return o.target.Has(name) }
func (o *ObservedRecord) Len() int             { return o.target.Len() }

// ListChanges is a sparse map from index to value plus a tracked length.
type ListChanges struct {
	indexes   map[int]any
	nested    map[int]ChangeRecord
	length    int
	lengthSet bool
}

func newListChanges() *ListChanges {
	return &ListChanges{
		indexes: make(map[int]any),
		nested:  make(map[int]ChangeRecord),
	}
}

// Value returns the recorded write at an index, if any.
func (c *ListChanges) Value(i int) (any, bool) {
	v, ok := c.indexes[i]
	return v, ok
}

// Indexes exposes the recorded index writes. Callers must not mutate it.
func (c *ListChanges) Indexes() map[int]any { return c.indexes }

// Length returns the tracked length and whether any mutation recorded it.
func (c *ListChanges) Length() (int, bool) { return c.length, c.lengthSet }

// Nested returns the change record of a nested composite element, or nil.
func (c *ListChanges) Nested(i int) ChangeRecord { return c.nested[i] }

func (c *ListChanges) Empty() bool {
	if len(c.indexes) > 0 || c.lengthSet {
		return false
	}
	for _, n := range c.nested {
		if !n.Empty() {
			return false
		}
	}
	return true
}

func (c *ListChanges) Clear() {
	clear(c.indexes)
	c.length = 0
	c.lengthSet = false
	for _, n := range c.nested {
		n.Clear()
	}
}

// ObservedList is the observed view over a List.
type ObservedList struct {
	target  *List
	changes *ListChanges
	views   map[int]any
}

func newObservedList(target *List) *ObservedList {
	return &ObservedList{
		target:  target,
		changes: newListChanges(),
		views:   make(map[int]any),
	}
}

func (o *ObservedList) changeRecord() ChangeRecord { return o.changes }
func (o *ObservedList) Changes() *ListChanges      { return o.changes }
func (o *ObservedList) Len() int                   { return o.target.Len() }

func (o *ObservedList) Get(i int) any {
	v := o.target.Get(i)
	if !isComposite(v) {
		return v
	}
	if view, ok := o.views[i]; ok {
		return view
	}
	view := observe(v)
	o.views[i] = view
	o.changes.nested[i] = view.(observedView).changeRecord()
	return view
}

func (o *ObservedList) Set(i int, v any) {
	o.target.Set(i, v)
	o.changes.indexes[i] = v
	o.recordLength()
	delete(o.views, i)
	delete(o.changes.nested, i)
}

func (o *ObservedList) Push(items ...any) {
	start := o.target.Len()
	o.target.Append(items...)
	for n, v := range items {
		o.changes.indexes[start+n] = v
	}
	o.recordLength()
}

// Pop removes and returns the last element, or nil on an empty list.
func (o *ObservedList) Pop() any {
	n := o.target.Len()
	if n == 0 {
		return nil
	}
	v := o.target.Get(n - 1)
	o.target.SetLen(n - 1)
	o.dropFrom(n - 1)
	o.recordLength()
	return v
}

// Splice delegates to the underlying list, then re-records every index from
// start onward along with the new length.
func (o *ObservedList) Splice(start, deleteCount int, items ...any) []any {
	removed := o.target.Splice(start, deleteCount, items...)
	if start < 0 {
		start = 0
	}
	o.dropFrom(start)
	for i := start; i < o.target.Len(); i++ {
		o.changes.indexes[i] = o.target.Get(i)
	}
	o.recordLength()
	return removed
}

// SetLen resizes the list, dropping index records past the new length.
func (o *ObservedList) SetLen(n int) {
	grew := n > o.target.Len()
	old := o.target.Len()
	o.target.SetLen(n)
	if grew {
		for i := old; i < n; i++ {
			o.changes.indexes[i] = nil
		}
	} else {
		o.dropFrom(n)
	}
	o.recordLength()
}

func (o *ObservedList) recordLength() {
	o.changes.length = o.target.Len()
	o.changes.lengthSet = true
}

func (o *ObservedList) dropFrom(start int) {
	for i := range o.changes.indexes {
		if i >= start {
			delete(o.changes.indexes, i)
		}
	}
	for i := range o.views {
		if i >= start {
			delete(o.views, i)
			delete(o.changes.nested, i)
		}
	}
}

// ObjectChanges maps keys to their latest value, or Deleted for removals.
type ObjectChanges struct {
	entries map[string]any
	nested  map[string]ChangeRecord
}

func newObjectChanges() *ObjectChanges {
	return &ObjectChanges{
		entries: make(map[string]any),
		nested:  make(map[string]ChangeRecord),
	}
}

// Value returns the recorded entry for a key; the value is Deleted when the
// net effect is a removal.
func (c *ObjectChanges) Value(key string) (any, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Entries exposes the recorded entries. Callers must not mutate it.
func (c *ObjectChanges) Entries() map[string]any { return c.entries }

// Nested returns the change record of a nested composite entry, or nil.
func (c *ObjectChanges) Nested(key string) ChangeRecord { return c.nested[key] }

func (c *ObjectChanges) Empty() bool {
	if len(c.entries) > 0 {
		return false
	}
	for _, n := range c.nested {
		if !n.Empty() {
			return false
		}
	}
	return true
}

func (c *ObjectChanges) Clear() {
	clear(c.entries)
	for _, n := range c.nested {
		n.Clear()
	}
}

// ObservedObject is the observed view over an Object.
type ObservedObject struct {
	target  *Object
	changes *ObjectChanges
	views   map[string]any
}

func newObservedObject(target *Object) *ObservedObject {
	return &ObservedObject{
		target:  target,
		changes: newObjectChanges(),
		views:   make(map[string]any),
	}
}

func (o *ObservedObject) changeRecord() ChangeRecord { return o.changes }
func (o *ObservedObject) Changes() *ObjectChanges    { return o.changes }
func (o *ObservedObject) Has(key string) bool        { return o.target.Has(key) }
func (o *ObservedObject) Len() int                   { return o.target.Len() }

func (o *ObservedObject) Get(key string) any {
	v := o.target.Get(key)
	if !isComposite(v) {
		return v
	}
	if view, ok := o.views[key]; ok {
		return view
	}
	view := observe(v)
	o.views[key] = view
	o.changes.nested[key] = view.(observedView).changeRecord()
	return view
}

func (o *ObservedObject) Set(key string, v any) {
	o.target.Set(key, v)
	o.changes.entries[key] = v
	delete(o.views, key)
	delete(o.changes.nested, key)
}

func (o *ObservedObject) Delete(key string) {
	o.target.Delete(key)
	o.changes.entries[key] = Deleted
	delete(o.views, key)
	delete(o.changes.nested, key)
}

// SetChanges tracks net membership changes as added and removed sets.
type SetChanges struct {
	added   map[any]struct{}
	removed map[any]struct{}
}

func newSetChanges() *SetChanges {
	return &SetChanges{
		added:   make(map[any]struct{}),
		removed: make(map[any]struct{}),
	}
}

// Added exposes the recorded additions. Callers must not mutate it.
func (c *SetChanges) Added() map[any]struct{} { return c.added }

// Removed exposes the recorded removals. Callers must not mutate it.
func (c *SetChanges) Removed() map[any]struct{} { return c.removed }

func (c *SetChanges) Empty() bool {
	return len(c.added) == 0 && len(c.removed) == 0
}

func (c *SetChanges) Clear() {
	clear(c.added)
	clear(c.removed)
}

// ObservedSet is the observed view over a Set.
type ObservedSet struct {
	target  *Set
	changes *SetChanges
}

func newObservedSet(target *Set) *ObservedSet {
	return &ObservedSet{target: target, changes: newSetChanges()}
}

func (o *ObservedSet) changeRecord() ChangeRecord { return o.changes }
func (o *ObservedSet) Changes() *SetChanges       { return o.changes }
func (o *ObservedSet) Has(v any) bool             { return o.target.Has(v) }
func (o *ObservedSet) Len() int                   { return o.target.Len() }

func (o *ObservedSet) Add(v any) {
	o.target.Add(v)
	o.changes.added[v] = struct{}{}
	delete(o.changes.removed, v)
}

func (o *ObservedSet) Delete(v any) {
	o.target.Delete(v)
	o.changes.removed[v] = struct{}{}
	delete(o.changes.added, v)
}

// DictChanges maps keys to their latest value, or Deleted for removals.
type DictChanges struct {
	entries map[any]any
	nested  map[any]ChangeRecord
}

func newDictChanges() *DictChanges {
	return &DictChanges{
		entries: make(map[any]any),
		nested:  make(map[any]ChangeRecord),
	}
}

// Value returns the recorded entry for a key; the value is Deleted when the
// net effect is a removal.
func (c *DictChanges) Value(key any) (any, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Entries exposes the recorded entries. Callers must not mutate it.
func (c *DictChanges) Entries() map[any]any { return c.entries }

// Nested returns the change record of a nested composite entry, or nil.
func (c *DictChanges) Nested(key any) ChangeRecord { return c.nested[key] }

func (c *DictChanges) Empty() bool {
	if len(c.entries) > 0 {
		return false
	}
	for _, n := range c.nested {
		if !n.Empty() {
			return false
		}
	}
	return true
}

func (c *DictChanges) Clear() {
	clear(c.entries)
	for _, n := range c.nested {
		n.Clear()
	}
}

// ObservedDict is the observed view over a Dict.
type ObservedDict struct {
	target  *Dict
	changes *DictChanges
	views   map[any]any
}

func newObservedDict(target *Dict) *ObservedDict {
	return &ObservedDict{
		target:  target,
		changes: newDictChanges(),
		views:   make(map[any]any),
	}
}

func (o *ObservedDict) changeRecord() ChangeRecord { return o.changes }
func (o *ObservedDict) Changes() *DictChanges      { return o.changes }
func (o *ObservedDict) Has(key any) bool           { return o.target.Has(key) }
func (o *ObservedDict) Len() int                   { return o.target.Len() }

func (o *ObservedDict) Get(key any) any {
	v := o.target.Get(key)
	if !isComposite(v) {
		return v
	}
	if view, ok := o.views[key]; ok {
		return view
	}
	view := observe(v)
	o.views[key] = view
	o.changes.nested[key] = view.(observedView).changeRecord()
	return view
}

func (o *ObservedDict) Set(key, v any) {
	o.target.Set(key, v)
	o.changes.entries[key] = v
	delete(o.views, key)
	delete(o.changes.nested, key)
}

func (o *ObservedDict) Delete(key any) {
	o.target.Delete(key)
	o.changes.entries[key] = Deleted
	delete(o.views, key)
	delete(o.changes.nested, key)
}
