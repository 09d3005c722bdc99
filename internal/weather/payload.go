package weather

import (
	"bytes"
	"encoding/json"
	"math"
)

// Payload is an upstream response body kept verbatim. Bodies that are not JSON are
// not rejected here; callers check IsJSON before treating them as weather data.
type Payload struct {
	StatusCode int
	Body       []byte
}

// IsJSON reports whether the body is well-formed JSON.
func (p Payload) IsJSON() bool {
	return len(bytes.TrimSpace(p.Body)) > 0 && json.Valid(p.Body)
}

// JSON returns the body for re-encoding. Non-JSON bodies come back wrapped as
// {"raw": "<text>"}.
func (p Payload) JSON() json.RawMessage {
	if p.IsJSON() {
		return json.RawMessage(p.Body)
	}
	wrapped, err := json.Marshal(struct {
		Raw string `json:"raw"`
	}{Raw: string(p.Body)})
	if err != nil {
		return json.RawMessage(`{"raw":""}`)
	}
	return wrapped
}

// object gives field-by-field access to a decoded JSON object. Every accessor
// tolerates missing keys, nulls and type mismatches independently.
type object map[string]json.RawMessage

func parseObject(raw []byte) (object, bool) {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil || o == nil {
		return nil, false
	}
	return o, true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (o object) child(key string) object {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return nil
	}
	c, _ := parseObject(raw)
	return c
}

func (o object) number(key string) (float64, bool) {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (o object) integer(key string) (int64, bool) {
	v, ok := o.number(key)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int64(v), true
}

func (o object) str(key string) string {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (o object) array(key string) ([]json.RawMessage, bool) {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// firstObject returns the first element of an array field as an object.
func (o object) firstObject(key string) object {
	items, ok := o.array(key)
	if !ok || len(items) == 0 {
		return nil
	}
	first, _ := parseObject(items[0])
	return first
}

func (o object) measure(key string) Measure {
	v, ok := o.number(key)
	return Measure{Value: v, Present: ok}
}
