// Package codec encodes tree snapshots for Save and Load.
//
// Codec selection is a format boundary: a saved stream records the codec name
// in its header and is decoded with the codec of that name.
package codec

import (
	"errors"
	"fmt"
)

// ErrUnknownCodec is returned when a stream names a codec that is not built in.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, error) {
	switch name {
	case JSON{}.Name():
		return JSON{}, nil
	case GoJSON{}.Name():
		return GoJSON{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// Default is the codec used by Save when none is configured.
var Default Codec = GoJSON{}
