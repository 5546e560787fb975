package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"wayfinder-backend/internal/domain/location"
)

// File reads a definition from a JSON or YAML document on disk.
type File struct {
	path string
}

// NewFile creates a file source. The format follows the extension; anything
// other than .yaml or .yml is parsed as JSON.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return "file" }

// Load reads and decodes the file.
func (f *File) Load(ctx context.Context) (location.Definition, error) {
	if err := ctx.Err(); err != nil {
		return location.Definition{}, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return location.Definition{}, sourceFailed(err, "read %s: %v", f.path, err)
	}
	return Decode(data, filepath.Ext(f.path))
}

// Decode parses a definition document. ext selects the format.
func Decode(data []byte, ext string) (location.Definition, error) {
	var def location.Definition

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &def); err != nil {
			return location.Definition{}, sourceFailed(err, "parse yaml: %v", err)
		}
	default:
		if err := json.Unmarshal(data, &def); err != nil {
			return location.Definition{}, sourceFailed(err, "parse json: %v", err)
		}
	}
	return def, nil
}
