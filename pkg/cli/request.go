package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadInput returns the contents of path, or of stdin when path is "-".
func ReadInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// IsTextFile reports whether path names a plain text or markdown document
// rather than a structured request.
func IsTextFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		return true
	}
	return false
}

// LoadRequest decodes a YAML or JSON request file into v. A path of "-"
// reads from stdin.
func LoadRequest(path string, v any) error {
	data, err := ReadInput(path)
	if err != nil {
		return err
	}
	return ParseRequest(data, path, v)
}

// LoadRequestFrom decodes a YAML or JSON request read from r.
func LoadRequestFrom(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return ParseRequest(data, "", v)
}

// ParseRequest decodes data into v. The format follows the extension of
// filename; without one, a document starting with '{' is JSON and anything
// else is YAML.
func ParseRequest(data []byte, filename string, v any) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".json" || (ext != ".yaml" && ext != ".yml" && bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))) {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse JSON request: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse YAML request: %w", err)
	}
	return nil
}
