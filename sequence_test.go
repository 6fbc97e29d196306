package cascade

import (
	"errors"
	"reflect"
	"testing"
)

func newSeq(components ...[]any) *MergedSequence {
	seq, err := NewMergedSequence(components)
	if err != nil {
		panic(err)
	}
	return seq
}

func TestMergedSequenceLen(t *testing.T) {
	seq := newSeq([]any{1, 2}, []any{}, []any{3, 4, 5})
	if got := seq.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}
}

func TestMergedSequenceGet(t *testing.T) {
	seq := newSeq([]any{1, 2}, []any{3}, []any{4, 5})
	flat := []any{1, 2, 3, 4, 5}

	for i, want := range flat {
		got, err := seq.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("Get(%d) = %v, want %v", i, got, want)
		}
	}

	// Negative indices count from the end.
	for i := 1; i <= len(flat); i++ {
		got, err := seq.Get(-i)
		if err != nil {
			t.Fatalf("Get(%d): %v", -i, err)
		}
		if want := flat[len(flat)-i]; got != want {
			t.Fatalf("Get(%d) = %v, want %v", -i, got, want)
		}
	}

	for _, idx := range []int{5, -6, 100} {
		if _, err := seq.Get(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("Get(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
}

func TestMergedSequenceGetSlice(t *testing.T) {
	seq := newSeq([]any{1, 2}, []any{3}, []any{4, 5, 6})

	cases := []struct {
		name string
		sl   Slice
		want []any
	}{
		{"whole", Whole(), []any{1, 2, 3, 4, 5, 6}},
		{"span", Span(1, 4), []any{2, 3, 4}},
		{"from", From(3), []any{4, 5, 6}},
		{"until", Until(2), []any{1, 2}},
		{"step two", Whole().WithStep(2), []any{1, 3, 5}},
		{"negative bounds", Span(-4, -1), []any{3, 4, 5}},
		{"reverse", Whole().WithStep(-1), []any{6, 5, 4, 3, 2, 1}},
		{"reverse step two", Whole().WithStep(-2), []any{6, 4, 2}},
		{"empty", Span(4, 2), []any{}},
		{"clamped", Span(0, 100), []any{1, 2, 3, 4, 5, 6}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := seq.GetSlice(tc.sl)
			if err != nil {
				t.Fatalf("GetSlice: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("GetSlice = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMergedSequenceZeroStep(t *testing.T) {
	seq := newSeq([]any{1, 2, 3})
	if _, err := seq.GetSlice(Whole().WithStep(0)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for zero step, got %v", err)
	}
}

func TestMergedSequenceValuesAndReversed(t *testing.T) {
	seq := newSeq([]any{1}, []any{2, 3})
	if got := seq.Values(); !reflect.DeepEqual(got, []any{1, 2, 3}) {
		t.Fatalf("Values() = %v", got)
	}
	if got := seq.Reversed(); !reflect.DeepEqual(got, []any{3, 2, 1}) {
		t.Fatalf("Reversed() = %v", got)
	}
}

func TestMergedSequenceEqual(t *testing.T) {
	a := newSeq([]any{1, 2}, []any{3})
	b := newSeq([]any{1, 2}, []any{3})
	if !a.Equal(b) {
		t.Fatal("identical partitions compare unequal")
	}

	// Same flattened contents, different split point.
	c := newSeq([]any{1}, []any{2, 3})
	if a.Equal(c) {
		t.Fatal("different partitions compare equal")
	}

	d := newSeq([]any{1, 2}, []any{3}, []any{})
	if a.Equal(d) {
		t.Fatal("different component counts compare equal")
	}

	if a.Equal(nil) {
		t.Fatal("comparison against nil should be false")
	}
}

func TestNewMergedSequenceNil(t *testing.T) {
	if _, err := NewMergedSequence(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
