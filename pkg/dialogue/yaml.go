package dialogue

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// LoadYAML decodes YAML dialogue data, using the same keys as the JSON form.
func LoadYAML(data []byte) (*Graph, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Index: -1, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return New(doc)
}

// IsYAML reports whether filename names a YAML dialogue file.
func IsYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFile picks the decoder from the filename extension. Anything that is
// not YAML is read as JSON.
func LoadFile(filename string, data []byte) (*Graph, error) {
	if IsYAML(filename) {
		return LoadYAML(data)
	}
	return Load(data)
}
