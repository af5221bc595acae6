package codec

import gojson "github.com/goccy/go-json"

// goJSONName is recorded in saved streams; changing it breaks Load of
// existing snapshots.
const goJSONName = "go-json"

var _ Codec = GoJSON{}

// GoJSON encodes snapshots with github.com/goccy/go-json. Its output is
// plain JSON that JSON can also decode, so a stream written with either
// codec stays readable if the default changes.
type GoJSON struct{}

// Marshal encodes a snapshot (or any JSON-encodable value).
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Unmarshal decodes data into v, which must be a pointer.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns "go-json", the identifier ByName resolves.
func (GoJSON) Name() string { return goJSONName }
