package cascade

import "fmt"

// componentRef binds a component sequence to its storage slot. Length-changing
// edits re-store the slice so they stay visible through the owning container,
// whether that is a caller-held slice variable or a scope mapping entry.
type componentRef interface {
	load() []any
	store(seq []any)
}

type ptrRef struct {
	ptr *[]any
}

func (r ptrRef) load() []any     { return *r.ptr }
func (r ptrRef) store(seq []any) { *r.ptr = seq }

type slotRef struct {
	owner map[string]any
	key   string
}

func (r slotRef) load() []any {
	seq, _ := r.owner[r.key].([]any)
	return seq
}

func (r slotRef) store(seq []any) { r.owner[r.key] = seq }

// MergedMutableSequence presents a fixed list of mutable component sequences
// as a single logical sequence. Mutations write through to the underlying
// components, so they are visible to whoever supplied them.
type MergedMutableSequence struct {
	refs []componentRef
}

// NewMergedMutableSequence builds a mutable view over the supplied components.
// Each component is referenced through its pointer so that inserts, deletes
// and slice assignments remain visible to the caller.
func NewMergedMutableSequence(components []*[]any) (*MergedMutableSequence, error) {
	if components == nil {
		return nil, fmt.Errorf("%w: components must be a list of sequences", ErrInvalidArgument)
	}
	refs := make([]componentRef, len(components))
	for i, component := range components {
		if component == nil {
			return nil, fmt.Errorf("%w: component %d is nil", ErrInvalidArgument, i)
		}
		refs[i] = ptrRef{ptr: component}
	}
	return &MergedMutableSequence{refs: refs}, nil
}

func newMergedMutableSequenceRefs(refs []componentRef) *MergedMutableSequence {
	return &MergedMutableSequence{refs: refs}
}

func (s *MergedMutableSequence) components() [][]any {
	out := make([][]any, len(s.refs))
	for i, ref := range s.refs {
		out[i] = ref.load()
	}
	return out
}

// Len returns the total length across all components.
func (s *MergedMutableSequence) Len() int {
	total := 0
	for _, ref := range s.refs {
		total += len(ref.load())
	}
	return total
}

// Get returns the element at logical index i. Negative indices count from the
// end.
func (s *MergedMutableSequence) Get(i int) (any, error) {
	components := s.components()
	component, local, err := locateIndex(components, i)
	if err != nil {
		return nil, err
	}
	return components[component][local], nil
}

// GetSlice applies sl to the flattened logical sequence.
func (s *MergedMutableSequence) GetSlice(sl Slice) ([]any, error) {
	components := s.components()
	return selectSlice(components, s.Len(), sl)
}

// Set writes value at logical index i, in place on the owning component.
func (s *MergedMutableSequence) Set(i int, value any) error {
	components := s.components()
	component, local, err := locateIndex(components, i)
	if err != nil {
		return err
	}
	components[component][local] = value
	return nil
}

// SetSlice replaces the selection sl with values. Only unit steps are
// supported; the selection is partitioned per component and values are split
// into matching chunks, with any leftover appended per the documented policy.
func (s *MergedMutableSequence) SetSlice(sl Slice, values []any) error {
	spans, err := s.splitSlice(sl)
	if err != nil {
		return err
	}
	chunks := s.splitValues(values, spans)
	for i, ref := range s.refs {
		component := ref.load()
		ref.store(spliceSeq(component, spans[i], chunks[i]))
	}
	return nil
}

// Delete removes the element at logical index i.
func (s *MergedMutableSequence) Delete(i int) error {
	components := s.components()
	component, local, err := locateIndex(components, i)
	if err != nil {
		return err
	}
	seq := components[component]
	s.refs[component].store(append(seq[:local:local], seq[local+1:]...))
	return nil
}

// DeleteSlice removes the selection sl, partitioned per component. Only unit
// steps are supported.
func (s *MergedMutableSequence) DeleteSlice(sl Slice) error {
	spans, err := s.splitSlice(sl)
	if err != nil {
		return err
	}
	for i, ref := range s.refs {
		component := ref.load()
		ref.store(spliceSeq(component, spans[i], nil))
	}
	return nil
}

// Insert places value before logical index i. Indices past the end append to
// the last component; indices before the start prepend to the first.
func (s *MergedMutableSequence) Insert(i int, value any) {
	if len(s.refs) == 0 {
		return
	}
	total := s.Len()
	if i < 0 {
		i += total
	}
	if i < 0 {
		first := s.refs[0].load()
		s.refs[0].store(append([]any{value}, first...))
		return
	}
	if i >= total {
		// Index 0 past the end means every component is empty; the head of
		// the first component is the insertion point then.
		if i == 0 {
			first := s.refs[0]
			first.store(append([]any{value}, first.load()...))
			return
		}
		last := s.refs[len(s.refs)-1]
		last.store(append(last.load(), value))
		return
	}
	components := s.components()
	component, local, _ := locateIndex(components, i)
	seq := components[component]
	out := make([]any, 0, len(seq)+1)
	out = append(out, seq[:local]...)
	out = append(out, value)
	out = append(out, seq[local:]...)
	s.refs[component].store(out)
}

// Append adds value at the end of the logical sequence.
func (s *MergedMutableSequence) Append(value any) {
	s.Insert(s.Len(), value)
}

// Values returns a flattened copy of the logical sequence.
func (s *MergedMutableSequence) Values() []any {
	out := make([]any, 0, s.Len())
	for _, ref := range s.refs {
		out = append(out, ref.load()...)
	}
	return out
}

// Reversed returns the flattened logical sequence in reverse order.
func (s *MergedMutableSequence) Reversed() []any {
	values := s.Values()
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	return values
}

// Components exposes the current component sequences in priority order.
func (s *MergedMutableSequence) Components() [][]any {
	return s.components()
}

// Equal reports component-by-component equality, including the partitioning.
func (s *MergedMutableSequence) Equal(other *MergedMutableSequence) bool {
	if other == nil {
		return false
	}
	return componentsEqual(s.components(), other.components())
}

// localSpan is the [start, stop) selection that fell within one component.
type localSpan struct {
	start int
	stop  int
}

func (sp localSpan) size() int {
	if sp.stop <= sp.start {
		return 0
	}
	return sp.stop - sp.start
}

// splitSlice partitions a unit-step slice over the logical sequence into
// per-component spans, clipped to each component's bounds.
func (s *MergedMutableSequence) splitSlice(sl Slice) ([]localSpan, error) {
	start, stop, step, err := sl.indices(s.Len())
	if err != nil {
		return nil, err
	}
	if step != 1 {
		return nil, fmt.Errorf("%w: got step %d", ErrUnsupportedSliceStep, step)
	}

	spans := make([]localSpan, 0, len(s.refs))
	for _, ref := range s.refs {
		length := len(ref.load())
		spans = append(spans, localSpan{start: minInt(start, length), stop: minInt(stop, length)})
		start = maxInt(start-length, 0)
		stop = maxInt(stop-length, 0)
	}
	return spans, nil
}

// splitValues chunks the replacement values so that each component receives as
// many elements as its span selects. Leftover values go to the last component
// that received a non-empty chunk, or, when every span is empty, to the first
// component whose span starts before its end.
func (s *MergedMutableSequence) splitValues(values []any, spans []localSpan) [][]any {
	chunks := make([][]any, len(spans))
	remaining := values
	for i, span := range spans {
		n := minInt(span.size(), len(remaining))
		chunks[i] = append([]any(nil), remaining[:n]...)
		remaining = remaining[n:]
	}
	if len(remaining) == 0 || len(chunks) == 0 {
		return chunks
	}

	target := -1
	for i := len(chunks) - 1; i >= 0; i-- {
		if len(chunks[i]) > 0 {
			target = i
			break
		}
	}
	if target < 0 {
		target = len(chunks) - 1
		for i, span := range spans {
			if span.start < len(s.refs[i].load()) {
				target = i
				break
			}
		}
	}
	chunks[target] = append(chunks[target], remaining...)
	return chunks
}

// spliceSeq replaces span with chunk inside component, treating an inverted
// span as an insertion point at its start.
func spliceSeq(component []any, span localSpan, chunk []any) []any {
	stop := maxInt(span.stop, span.start)
	out := make([]any, 0, len(component)-(stop-span.start)+len(chunk))
	out = append(out, component[:span.start]...)
	out = append(out, chunk...)
	out = append(out, component[stop:]...)
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
