package cascade

import "fmt"

// Slice describes a start/stop/step selection over a merged sequence. Nil
// fields take the defaults for the direction of travel and negative values
// count from the end, matching conventional slice semantics.
type Slice struct {
	Start *int
	Stop  *int
	Step  *int
}

// Span selects [start, stop) with unit step.
func Span(start, stop int) Slice {
	return Slice{Start: &start, Stop: &stop}
}

// From selects everything from start to the end.
func From(start int) Slice {
	return Slice{Start: &start}
}

// Until selects everything before stop.
func Until(stop int) Slice {
	return Slice{Stop: &stop}
}

// Whole selects the entire sequence.
func Whole() Slice {
	return Slice{}
}

// WithStep returns a copy of the slice using the given step.
func (s Slice) WithStep(step int) Slice {
	s.Step = &step
	return s
}

// indices resolves the slice against a sequence of the given length, clamping
// bounds and normalizing negative values the way built-in slicing does.
func (s Slice) indices(length int) (start, stop, step int, err error) {
	step = 1
	if s.Step != nil {
		step = *s.Step
	}
	if step == 0 {
		return 0, 0, 0, fmt.Errorf("%w: slice step cannot be zero", ErrInvalidArgument)
	}

	lower, upper := 0, length
	if step < 0 {
		lower, upper = -1, length-1
	}

	if s.Start == nil {
		if step < 0 {
			start = upper
		} else {
			start = lower
		}
	} else {
		start = clampIndex(*s.Start, length, lower, upper)
	}

	if s.Stop == nil {
		if step < 0 {
			stop = lower
		} else {
			stop = upper
		}
	} else {
		stop = clampIndex(*s.Stop, length, lower, upper)
	}

	return start, stop, step, nil
}

func clampIndex(idx, length, lower, upper int) int {
	if idx < 0 {
		idx += length
		if idx < lower {
			return lower
		}
		return idx
	}
	if idx > upper {
		return upper
	}
	return idx
}

// sliceLen reports how many indices a normalized slice selects.
func sliceLen(start, stop, step int) int {
	if step > 0 {
		if stop <= start {
			return 0
		}
		return (stop - start + step - 1) / step
	}
	if start <= stop {
		return 0
	}
	return (start - stop - step - 1) / -step
}

// MergedSequence presents a fixed list of component sequences as a single
// read-only logical sequence. Indexing behaves like a built-in list over the
// concatenation of the components, without ever copying them eagerly.
type MergedSequence struct {
	components [][]any
}

// NewMergedSequence builds a read-only view over components. The components
// are aliased, not copied.
func NewMergedSequence(components [][]any) (*MergedSequence, error) {
	if components == nil {
		return nil, fmt.Errorf("%w: components must be a list of sequences", ErrInvalidArgument)
	}
	return &MergedSequence{components: components}, nil
}

// Len returns the total length across all components.
func (s *MergedSequence) Len() int {
	total := 0
	for _, component := range s.components {
		total += len(component)
	}
	return total
}

// Get returns the element at logical index i. Negative indices count from the
// end.
func (s *MergedSequence) Get(i int) (any, error) {
	component, local, err := locateIndex(s.components, i)
	if err != nil {
		return nil, err
	}
	return s.components[component][local], nil
}

// GetSlice applies sl to the flattened logical sequence and returns the
// selected elements.
func (s *MergedSequence) GetSlice(sl Slice) ([]any, error) {
	return selectSlice(s.components, s.Len(), sl)
}

// Values returns a flattened copy of the logical sequence.
func (s *MergedSequence) Values() []any {
	out := make([]any, 0, s.Len())
	for _, component := range s.components {
		out = append(out, component...)
	}
	return out
}

// Reversed returns the flattened logical sequence in reverse order.
func (s *MergedSequence) Reversed() []any {
	values := s.Values()
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	return values
}

// Components exposes the underlying component sequences in priority order.
func (s *MergedSequence) Components() [][]any {
	return s.components
}

// Equal reports whether both views have the same number of components and each
// corresponding pair holds equal values. The partitioning is part of the
// value: identical flattened contents split differently compare unequal.
func (s *MergedSequence) Equal(other *MergedSequence) bool {
	if other == nil {
		return false
	}
	return componentsEqual(s.components, other.components)
}

func componentsEqual(a, b [][]any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if !treeEqual(a[i][j], b[i][j]) {
				return false
			}
		}
	}
	return true
}

// treeEqual compares raw configuration values structurally.
func treeEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for key, value := range av {
			other, ok := bv[key]
			if !ok || !treeEqual(value, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !treeEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// locateIndex translates a logical index into (component, local) coordinates.
func locateIndex(components [][]any, idx int) (int, int, error) {
	total := 0
	for _, component := range components {
		total += len(component)
	}
	if idx < 0 {
		idx += total
	}
	if idx < 0 || idx >= total {
		return 0, 0, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, idx, total)
	}
	for i, component := range components {
		if idx < len(component) {
			return i, idx, nil
		}
		idx -= len(component)
	}
	return 0, 0, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, idx, total)
}

// selectSlice walks the chained components and picks the indices sl resolves
// to, supporting arbitrary steps for reads.
func selectSlice(components [][]any, length int, sl Slice) ([]any, error) {
	start, stop, step, err := sl.indices(length)
	if err != nil {
		return nil, err
	}

	count := sliceLen(start, stop, step)
	out := make([]any, 0, count)
	if count == 0 {
		return out, nil
	}

	if step > 0 {
		next := start
		offset := 0
		for _, component := range components {
			for next-offset < len(component) && next < stop {
				out = append(out, component[next-offset])
				next += step
			}
			offset += len(component)
		}
		return out, nil
	}

	// Negative steps walk the flattened view backwards.
	flat := make([]any, 0, length)
	for _, component := range components {
		flat = append(flat, component...)
	}
	for i := start; i > stop; i += step {
		out = append(out, flat[i])
	}
	return out, nil
}
