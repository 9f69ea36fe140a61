package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ID identifies resources and tasks. Stores and clients disagree on whether
// identities are numbers or strings, so decoding accepts both and collapses
// them into one canonical string form. Everything past the decoder compares
// IDs with ==.
type ID string

// NormalizeID converts a loosely typed identity into its canonical form.
func NormalizeID(v any) ID {
	switch x := v.(type) {
	case nil:
		return ""
	case ID:
		return x
	case string:
		return ID(strings.TrimSpace(x))
	case int:
		return ID(strconv.Itoa(x))
	case int64:
		return ID(strconv.FormatInt(x, 10))
	case uint64:
		return ID(strconv.FormatUint(x, 10))
	case float64:
		return ID(strconv.FormatFloat(x, 'f', -1, 64))
	case json.Number:
		return normalizeNumber(string(x))
	default:
		return ID(fmt.Sprint(x))
	}
}

// normalizeNumber keeps integer literals exact at any magnitude; only
// literals with a fraction or exponent are canonicalized through float64.
func normalizeNumber(s string) ID {
	s = strings.TrimSpace(s)
	if n, ok := new(big.Int).SetString(s, 10); ok {
		return ID(n.String())
	}
	if n, ok := new(big.Int).SetString(s, 0); ok {
		return ID(n.String())
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return ID(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return ID(s)
}

// String returns the canonical form.
func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = NormalizeID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = NormalizeID(n)
		return nil
	}
}

// UnmarshalYAML accepts a scalar of any type.
func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("decode id: expected scalar at line %d", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		*id = normalizeNumber(node.Value)
	case "!!null":
		*id = ""
	default:
		*id = NormalizeID(node.Value)
	}
	return nil
}
