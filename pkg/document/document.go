// Package document decodes JSON, YAML and TOML input into the generic tree
// accepted by types.Of.
//
// JSON numbers are decoded as json.Number so that integers stay integers
// when they become expression values.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
)

// Format identifies a document encoding.
type Format int

const (
	Auto Format = iota
	JSON
	YAML
	TOML
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	}
	return "auto"
}

// ParseFormat parses a format name. The empty string selects Auto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return Auto, fmt.Errorf("unknown document format %q", s)
}

// FormatOf guesses the format of a file from its extension, falling back to
// Auto.
func FormatOf(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return Auto
	}
	return f
}

// ErrTrailingData is returned when a JSON document is followed by more
// input.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// Parse decodes data in format f.
func Parse(data []byte, f Format) (any, error) {
	if f == Auto {
		return parseAuto(data)
	}
	var (
		doc any
		err error
	)
	switch f {
	case JSON:
		doc, err = parseJSON(data)
	case YAML:
		err = yaml.Unmarshal(data, &doc)
	case TOML:
		var m map[string]any
		_, err = toml.Decode(string(data), &m)
		doc = m
	default:
		return nil, fmt.Errorf("unknown document format %d", int(f))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s document: %w", f, err)
	}
	return doc, nil
}

// Read drains r through a read-ahead buffer and decodes its content.
func Read(r io.Reader, f Format) (any, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data, f)
}

func parseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return doc, nil
}

// parseAuto tries JSON when the input opens like JSON, then TOML, then
// YAML. TOML goes first since most TOML documents are also valid YAML
// scalars.
func parseAuto(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == '"' {
		if doc, err := parseJSON(trimmed); err == nil {
			return doc, nil
		}
	}
	if doc, err := Parse(data, TOML); err == nil {
		return doc, nil
	}
	return Parse(data, YAML)
}
