package graphql

import (
	"io"

	"github.com/bytedance/sonic"
)

// codec decodes numbers as json.Number so integer IDs and amounts survive a decode/encode cycle unchanged.
var codec = sonic.Config{
	EscapeHTML:       true,
	SortMapKeys:      true,
	CompactMarshaler: true,
	CopyString:       true,
	ValidateString:   true,
	UseNumber:        true,
}.Froze()

// Marshal encodes v as JSON.
func Marshal(v any) ([]byte, error) {
	return codec.Marshal(v)
}

// MarshalIndent encodes v as indented JSON.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return codec.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes JSON data into v.
func Unmarshal(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}

// Decode reads a JSON value from r into v.
func Decode(r io.Reader, v any) error {
	return codec.NewDecoder(r).Decode(v)
}
