package cascade

import (
	"encoding/json"
)

// Trace captures provenance information for a key lookup across the scopes
// that produced the effective value.
type Trace struct {
	Key    string       `json:"key"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how a specific scope contributed to a traced key.
type Provenance struct {
	Scope    string `json:"scope"`
	Key      string `json:"key"`
	Value    any    `json:"value,omitempty"`
	Override bool   `json:"override,omitempty"`
	Found    bool   `json:"found"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// Trace reports, scope by scope, how key resolves through this view. Every
// scope appears in the result; scopes hidden behind an override are omitted
// because the sealing rule never consults them.
func (o *OverridableMapping) Trace(key string) Trace {
	trace := Trace{Key: key}
	if checkKey(key) != nil {
		return trace
	}
	sealed := false
	for _, pair := range o.pairs {
		if sealed {
			break
		}
		layer := Provenance{Scope: pair.Scope, Key: key}
		if value, ok := pair.Mapping[overrideKeyOf(key)]; ok {
			layer.Value = value
			layer.Override = true
			layer.Found = true
			sealed = true
		} else if value, ok := pair.Mapping[key]; ok {
			layer.Value = value
			layer.Found = true
		}
		trace.Layers = append(trace.Layers, layer)
	}
	return trace
}

// Trace reports, scope by scope, how key resolves through this view.
func (m *MergedMapping) Trace(key string) Trace {
	trace := Trace{Key: key}
	for _, pair := range m.pairs {
		layer := Provenance{Scope: pair.Scope, Key: key}
		if value, ok := pair.Mapping[key]; ok {
			layer.Value = value
			layer.Found = true
		}
		trace.Layers = append(trace.Layers, layer)
	}
	return trace
}
