// Package projectfile reads and writes project snapshots as YAML or JSON
// documents.
package projectfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/loadwatch/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Format is a snapshot encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Sentinel errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")
	ErrDecode            = errors.New("decode snapshot")
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads the snapshot stored at path.
func Load(path string) (model.Project, error) {
	format, err := FormatOf(path)
	if err != nil {
		return model.Project{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	p, err := Decode(f, format)
	if err != nil {
		return model.Project{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Decode reads one snapshot document. Unknown YAML keys are rejected so
// typos in hand-written files surface early.
func Decode(r io.Reader, format Format) (model.Project, error) {
	var p model.Project
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return model.Project{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			return model.Project{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	default:
		return model.Project{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return p, nil
}

// Encode writes p in the given format.
func Encode(w io.Writer, p model.Project, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Save writes p to path in the format implied by its extension.
func Save(path string, p model.Project) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, p, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
