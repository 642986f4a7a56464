package ops

import (
	"fmt"
	"strings"
)

// IndexKind distinguishes the forms of a get_item index.
type IndexKind int

// Index kinds.
const (
	IndexInt IndexKind = iota
	IndexSlice
	IndexNewAxis
	IndexEllipsis
	IndexList
)

// Index is one component of a get_item subscript, in NumPy terms.
type Index struct {
	Kind    IndexKind
	Int     int
	Start   *int
	Stop    *int
	Step    int // 0 means 1
	Indices []int
}

// At selects a single position and drops the axis.
func At(i int) Index { return Index{Kind: IndexInt, Int: i} }

// All keeps an axis unchanged (":").
func All() Index { return Index{Kind: IndexSlice} }

// Range selects [start, stop).
func Range(start, stop int) Index {
	return Index{Kind: IndexSlice, Start: &start, Stop: &stop}
}

// RangeFrom selects [start, end).
func RangeFrom(start int) Index { return Index{Kind: IndexSlice, Start: &start} }

// RangeTo selects [0, stop).
func RangeTo(stop int) Index { return Index{Kind: IndexSlice, Stop: &stop} }

// NewAxis inserts an axis of size one.
func NewAxis() Index { return Index{Kind: IndexNewAxis} }

// Ellipsis expands to as many full slices as needed.
func Ellipsis() Index { return Index{Kind: IndexEllipsis} }

// List selects the listed positions along an axis.
func List(indices ...int) Index {
	return Index{Kind: IndexList, Indices: append([]int(nil), indices...)}
}

// WithStep returns a copy of a slice index with the given step.
func (ix Index) WithStep(step int) Index {
	ix.Step = step
	return ix
}

// StepOrOne returns the slice step, defaulting to one.
func (ix Index) StepOrOne() int {
	if ix.Step == 0 {
		return 1
	}
	return ix.Step
}

func (ix Index) String() string {
	switch ix.Kind {
	case IndexInt:
		return fmt.Sprint(ix.Int)
	case IndexNewAxis:
		return "None"
	case IndexEllipsis:
		return "..."
	case IndexList:
		return fmt.Sprint(ix.Indices)
	}
	var b strings.Builder
	if ix.Start != nil {
		fmt.Fprint(&b, *ix.Start)
	}
	b.WriteByte(':')
	if ix.Stop != nil {
		fmt.Fprint(&b, *ix.Stop)
	}
	if ix.Step != 0 {
		fmt.Fprintf(&b, ":%d", ix.Step)
	}
	return b.String()
}

// ResolveSlice clamps a slice index against an axis of length n following
// NumPy rules for positive steps.
func (ix Index) ResolveSlice(n int) (start, stop, step int) {
	step = ix.StepOrOne()
	start, stop = 0, n
	if ix.Start != nil {
		start = clampIndex(*ix.Start, n)
	}
	if ix.Stop != nil {
		stop = clampIndex(*ix.Stop, n)
	}
	if stop < start {
		stop = start
	}
	return start, stop, step
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return min(max(i, 0), n)
}
