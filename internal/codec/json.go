package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a map from JSON
func (c *JSONCodec) Parse(r io.Reader) (*Document, error) {
	var fd fileDocument
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&fd); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return fd.toDocument()
}

// Export exports a map to JSON
func (c *JSONCodec) Export(doc *Document, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(toFileDocument(doc)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
