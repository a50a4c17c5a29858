package diag

// Collector accumulates diagnostics for one unit of work (a definition, a
// document, a transform run). The zero value is ready to use.
type Collector struct {
	items Diagnostics
}

// Add appends d.
func (c *Collector) Add(d *Diagnostic) {
	c.items = append(c.items, d)
}

// Errorf creates, appends and returns an error diagnostic so callers can
// chain WithRelated.
func (c *Collector) Errorf(code Code, loc Location, format string, args ...any) *Diagnostic {
	d := Errorf(code, loc, format, args...)
	c.items = append(c.items, d)
	return d
}

// Merge concatenates other's diagnostics onto c.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.items = append(c.items, other.items...)
}

// Extend appends ds.
func (c *Collector) Extend(ds Diagnostics) {
	c.items = append(c.items, ds...)
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	return len(c.items)
}

// Diagnostics returns the sorted diagnostics.
func (c *Collector) Diagnostics() Diagnostics {
	return c.items.Sorted()
}

// Err returns nil when nothing was collected, otherwise the sorted set.
func (c *Collector) Err() error {
	if len(c.items) == 0 {
		return nil
	}
	return c.items.Sorted()
}
