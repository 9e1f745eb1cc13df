// Package env holds the namespace exposed inside an interactive shell and
// the rules for assembling it from bootstrap objects, configured items and a
// setup hook.
package env

// Env is an insertion-ordered mapping of variable names to values.
// Re-setting an existing name keeps its original position.
type Env struct {
	keys   []string
	values map[string]any
}

// New returns an empty Env.
func New() *Env {
	return &Env{values: make(map[string]any)}
}

// fromMap builds an Env from m. Keys are added in the order given by keys;
// names in m missing from keys are ignored.
func fromMap(keys []string, m map[string]any) *Env {
	e := New()
	for _, k := range keys {
		if v, ok := m[k]; ok {
			e.Set(k, v)
		}
	}
	return e
}

// Set stores value under name.
func (e *Env) Set(name string, value any) {
	if _, ok := e.values[name]; !ok {
		e.keys = append(e.keys, name)
	}
	e.values[name] = value
}

// Get returns the value stored under name.
func (e *Env) Get(name string) (any, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Has reports whether name is present.
func (e *Env) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Delete removes name. Deleting a missing name is a no-op.
func (e *Env) Delete(name string) {
	if _, ok := e.values[name]; !ok {
		return
	}
	delete(e.values, name)
	for i, k := range e.keys {
		if k == name {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of variables.
func (e *Env) Len() int {
	return len(e.keys)
}

// Keys returns the variable names in insertion order.
func (e *Env) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

// Range calls fn for every variable in insertion order until fn returns false.
func (e *Env) Range(fn func(name string, value any) bool) {
	for _, k := range e.Keys() {
		v, ok := e.values[k]
		if !ok {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// Map returns a copy of the variables as a plain map.
func (e *Env) Map() map[string]any {
	out := make(map[string]any, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}
