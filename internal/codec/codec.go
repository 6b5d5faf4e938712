package codec

import (
	"io"

	"netcanvas/internal/domain"
)

// Document is a map as it is exchanged in files: metadata plus scene
type Document struct {
	ID           string
	Name         string
	AssetBaseURL string
	ReadOnly     bool
	Scene        *domain.Scene
}

// Importer interface for importing maps from various formats
type Importer interface {
	Parse(r io.Reader) (*Document, error)
	Format() string
}

// Exporter interface for exporting maps to various formats
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Format() string
}

// Codec both parses and exports one format
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for a format name or file extension
func ForFormat(format string) (Codec, bool) {
	switch format {
	case "json", ".json":
		return NewJSONCodec(), true
	case "yaml", "yml", ".yaml", ".yml":
		return NewYAMLCodec(), true
	case "ansible-inventory", "ansible":
		return NewAnsibleCodec(), true
	}
	return nil, false
}
