package diag

import (
	"github.com/roach88/gqlc/internal/canonical"
)

// MarshalCanonical encodes the sorted diagnostics as canonical JSON: an
// array of objects with lexicographically ordered keys.
func (ds Diagnostics) MarshalCanonical() ([]byte, error) {
	sorted := ds.Sorted()
	arr := make(canonical.Array, len(sorted))
	for i, d := range sorted {
		arr[i] = d.canonicalValue()
	}
	return canonical.Marshal(arr)
}

func (d *Diagnostic) canonicalValue() canonical.Object {
	obj := canonical.Object{
		"code":     canonical.String(d.Code),
		"name":     canonical.String(d.Code.Name()),
		"severity": canonical.String(d.Severity.String()),
		"message":  canonical.String(d.Message),
		"location": d.Location.canonicalValue(),
	}
	if len(d.Related) > 0 {
		related := make(canonical.Array, len(d.Related))
		for i, r := range d.Related {
			related[i] = canonical.Object{
				"location": r.Location.canonicalValue(),
				"message":  canonical.String(r.Message),
			}
		}
		obj["related"] = related
	}
	return obj
}

func (l Location) canonicalValue() canonical.Object {
	return canonical.Object{
		"source": canonical.String(l.Source),
		"start":  canonical.Int(l.Start),
		"end":    canonical.Int(l.End),
		"line":   canonical.Int(l.Line),
		"column": canonical.Int(l.Column),
	}
}
