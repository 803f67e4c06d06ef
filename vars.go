package talon

// Reserved variable names maintained by the dispatch engine.
const (
	// VarLastResult holds the return code of the most recently
	// dispatched line, as a decimal string.
	VarLastResult = "%?"
	// VarArgCount holds the argument count of the current routine
	// invocation; positional arguments are "%0".."%(N-1)".
	VarArgCount = "%N"
)

// VarDict maps case-sensitive names to owned string values. Iteration
// order is insertion order; re-setting an existing name keeps its
// position.
type VarDict struct {
	values map[string]string
	order  []string
}

// NewVarDict creates an empty variable dictionary.
func NewVarDict() *VarDict {
	return &VarDict{values: make(map[string]string)}
}

// Set stores value under name, inserting or replacing.
func (d *VarDict) Set(name, value string) {
	if _, exists := d.values[name]; !exists {
		d.order = append(d.order, name)
	}
	d.values[name] = value
}

// Get looks up name.
func (d *VarDict) Get(name string) (string, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Remove deletes name. It reports whether the name existed.
func (d *VarDict) Remove(name string) bool {
	if _, exists := d.values[name]; !exists {
		return false
	}
	delete(d.values, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of entries.
func (d *VarDict) Len() int {
	return len(d.values)
}

// Names returns a snapshot of all names in insertion order.
func (d *VarDict) Names() []string {
	names := make([]string, len(d.order))
	copy(names, d.order)
	return names
}

// Copy returns an independent copy of the dictionary.
func (d *VarDict) Copy() *VarDict {
	c := NewVarDict()
	for _, name := range d.order {
		c.Set(name, d.values[name])
	}
	return c
}
