package query

import "cmp"

// EpochSecond is the range format of unix-second values on date fields.
const EpochSecond = "epoch_second"

// Bounds is a numeric range with gt/gte/lt/lte boundaries.
// Timestamps are expressed as unix seconds and carry Format EpochSecond.
type Bounds struct {
	GT     *float64
	GTE    *float64
	LT     *float64
	LTE    *float64
	Format string
}

// AtLeast returns bounds with an inclusive lower boundary.
func AtLeast(v float64) Bounds { return Bounds{GTE: &v} }

// AtMost returns bounds with an inclusive upper boundary.
func AtMost(v float64) Bounds { return Bounds{LTE: &v} }

// Above returns bounds with an exclusive lower boundary.
func Above(v float64) Bounds { return Bounds{GT: &v} }

// Below returns bounds with an exclusive upper boundary.
func Below(v float64) Bounds { return Bounds{LT: &v} }

// Between returns inclusive bounds on both sides.
func Between(lo, hi float64) Bounds { return Bounds{GTE: &lo, LTE: &hi} }

// InEpochSeconds marks the boundaries as unix seconds of a date field.
func (b Bounds) InEpochSeconds() Bounds {
	b.Format = EpochSecond
	return b
}

// IsEmpty reports whether no boundary is set.
func (b Bounds) IsEmpty() bool {
	return b.GT == nil && b.GTE == nil && b.LT == nil && b.LTE == nil
}

// merge folds o into b. A boundary present on one side only is copied; a
// boundary present on both keeps the tighter value, so the result is the
// intersection of both ranges regardless of call order.
func (b Bounds) merge(o Bounds) Bounds {
	return Bounds{
		GT:     pick(b.GT, o.GT, maxf),
		GTE:    pick(b.GTE, o.GTE, maxf),
		LT:     pick(b.LT, o.LT, minf),
		LTE:    pick(b.LTE, o.LTE, minf),
		Format: cmp.Or(b.Format, o.Format),
	}
}

func (b Bounds) source() map[string]any {
	m := make(map[string]any, 5)
	if b.GT != nil {
		m["gt"] = *b.GT
	}
	if b.GTE != nil {
		m["gte"] = *b.GTE
	}
	if b.LT != nil {
		m["lt"] = *b.LT
	}
	if b.LTE != nil {
		m["lte"] = *b.LTE
	}
	if b.Format != "" {
		m["format"] = b.Format
	}
	return m
}

func pick(a, b *float64, tighter func(x, y float64) float64) *float64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		v := *a
		return &v
	}
	v := tighter(*a, *b)
	return &v
}

func maxf(x, y float64) float64 { return max(x, y) }
func minf(x, y float64) float64 { return min(x, y) }
