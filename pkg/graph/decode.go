package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is a payload encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. An empty name means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.Errorf("unknown payload format %q", s)
}

// FormatForPath guesses the format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// SniffFormat guesses the format of a request body.
func SniffFormat(contentType string, body []byte) Format {
	if strings.Contains(contentType, "yaml") {
		return FormatYAML
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	if strings.Contains(contentType, "json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode reads a payload in the given format.
func Decode(r io.Reader, format Format) (*Payload, error) {
	var p Payload
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&p); err != nil {
			return nil, errors.Wrap(err, "decode yaml payload")
		}
	default:
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			return nil, errors.Wrap(err, "decode json payload")
		}
	}
	return &p, nil
}

// DecodeBytes reads a payload from memory.
func DecodeBytes(data []byte, format Format) (*Payload, error) {
	return Decode(bytes.NewReader(data), format)
}

// DecodeFile reads a payload from disk, choosing the format by extension.
func DecodeFile(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open payload %s", path)
	}
	defer f.Close()
	return Decode(f, FormatForPath(path))
}

// ToJSON encodes a payload as indented JSON.
func ToJSON(p *Payload) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
