package cascade

import (
	"reflect"
	"testing"
)

func TestOverridableTrace(t *testing.T) {
	merged, _ := overridableListFixture(t)

	trace := merged.Trace("foo")
	if trace.Key != "foo" {
		t.Fatalf("Key = %q", trace.Key)
	}
	// scratch (empty), highest (bare hit), middle (override, seals). The
	// lowest scope is never consulted.
	if len(trace.Layers) != 3 {
		t.Fatalf("layers = %+v", trace.Layers)
	}
	if trace.Layers[0].Scope != ScratchScope || trace.Layers[0].Found {
		t.Fatalf("scratch layer = %+v", trace.Layers[0])
	}
	if !trace.Layers[1].Found || trace.Layers[1].Override {
		t.Fatalf("highest layer = %+v", trace.Layers[1])
	}
	if !trace.Layers[2].Found || !trace.Layers[2].Override {
		t.Fatalf("middle layer = %+v", trace.Layers[2])
	}
}

func TestTraceJSONRoundTrip(t *testing.T) {
	trace := Trace{
		Key: "foo",
		Layers: []Provenance{
			{Scope: "highest", Key: "foo", Value: "v", Found: true},
			{Scope: "lowest", Key: "foo"},
		},
	}
	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("TraceFromJSON: %v", err)
	}
	if !reflect.DeepEqual(trace, decoded) {
		t.Fatalf("round trip mismatch: %+v vs %+v", trace, decoded)
	}
}

func TestMergedMappingTrace(t *testing.T) {
	_, _, _, merged := scalarFixture()

	trace := merged.Trace("bar")
	if len(trace.Layers) != 3 {
		t.Fatalf("layers = %+v", trace.Layers)
	}
	if trace.Layers[0].Found {
		t.Fatalf("highest should not hold bar: %+v", trace.Layers[0])
	}
	if !trace.Layers[1].Found || trace.Layers[1].Value != "this_is_bar" {
		t.Fatalf("middle layer = %+v", trace.Layers[1])
	}
	if !trace.Layers[2].Found || trace.Layers[2].Value != "4" {
		t.Fatalf("lowest layer = %+v", trace.Layers[2])
	}
}
