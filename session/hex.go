//
// hex.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package session

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/fairmpc/gc"
)

// HexPrefixed encodes bytes as 0x-prefixed hex.
func HexPrefixed(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}

// Hex32 encodes a 32-byte value as 0x-prefixed hex.
func Hex32(value [32]byte) string {
	return HexPrefixed(value[:])
}

// DecodeHex decodes a hex string with optional 0x prefix.
func DecodeHex(value string) ([]byte, error) {
	raw := strings.TrimSpace(value)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	data, err := hex.DecodeString(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex %q", value)
	}
	return data, nil
}

// ParseBytes32 parses a 32-byte hex value.
func ParseBytes32(value string) ([32]byte, error) {
	var out [32]byte
	data, err := DecodeHex(value)
	if err != nil {
		return out, err
	}
	if len(data) != 32 {
		return out, errors.Newf("expected 32 bytes, got %d", len(data))
	}
	copy(out[:], data)
	return out, nil
}

// ParseLabel parses a 16-byte hex wire label.
func ParseLabel(value string) (gc.Label, error) {
	var out gc.Label
	data, err := DecodeHex(value)
	if err != nil {
		return out, err
	}
	return gc.LabelFromBytes(data)
}

// ParseLeaf parses a 71-byte hex gate leaf.
func ParseLeaf(value string) (gc.Leaf, error) {
	data, err := DecodeHex(value)
	if err != nil {
		return gc.Leaf{}, err
	}
	return gc.LeafFromBytes(data)
}

// cleanLine strips comments, surrounding brackets, quotes, and
// trailing commas from one line of a hex artifact file. An empty
// result means the line carries no value.
func cleanLine(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, ",")
	line = strings.Trim(line, "\"")
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "[")
	line = strings.TrimSuffix(line, "]")
	return strings.TrimSpace(line)
}

// readLines reads the value lines of a hex artifact file, applying
// the comment and decoration rules of cleanLine.
func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var out []string
	for _, line := range strings.Split(string(raw), "\n") {
		value := cleanLine(line)
		if len(value) > 0 {
			out = append(out, value)
		}
	}
	return out, nil
}

// ReadBytes32File reads one 32-byte hex value per line.
func ReadBytes32File(path string) ([][32]byte, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	out := make([][32]byte, 0, len(lines))
	for idx, line := range lines {
		value, err := ParseBytes32(line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, idx+1)
		}
		out = append(out, value)
	}
	if len(out) == 0 {
		return nil, errors.Newf("no values found in %s", path)
	}
	return out, nil
}

// ReadLabelFile reads one 16-byte hex label per line.
func ReadLabelFile(path string) ([]gc.Label, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	out := make([]gc.Label, 0, len(lines))
	for idx, line := range lines {
		label, err := ParseLabel(line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, idx+1)
		}
		out = append(out, label)
	}
	if len(out) == 0 {
		return nil, errors.Newf("no labels found in %s", path)
	}
	return out, nil
}

// ReadLeafFile reads one 71-byte hex gate leaf per line.
func ReadLeafFile(path string) ([]gc.Leaf, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	out := make([]gc.Leaf, 0, len(lines))
	for idx, line := range lines {
		leaf, err := ParseLeaf(line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, idx+1)
		}
		out = append(out, leaf)
	}
	if len(out) == 0 {
		return nil, errors.Newf("no leaves found in %s", path)
	}
	return out, nil
}

// ParseBytes32List parses a comma-separated, optionally
// bracket-wrapped list of 32-byte hex values.
func ParseBytes32List(value string) ([][32]byte, error) {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	trimmed = strings.TrimSpace(trimmed)
	if len(trimmed) == 0 {
		return nil, nil
	}

	parts := strings.Split(trimmed, ",")
	out := make([][32]byte, 0, len(parts))
	for _, part := range parts {
		parsed, err := ParseBytes32(part)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

// Bytes32ListLiteral formats values as a bracketed comma-separated
// hex list.
func Bytes32ListLiteral(values [][32]byte) string {
	if len(values) == 0 {
		return "[]"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Hex32(v)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ","))
}
