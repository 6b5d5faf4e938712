package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a map from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*Document, error) {
	var fd fileDocument
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&fd); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return fd.toDocument()
}

// Export exports a map to YAML
func (c *YAMLCodec) Export(doc *Document, w io.Writer) error {
	fd := toFileDocument(doc)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&fd); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
