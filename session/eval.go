//
// eval.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/fairmpc/circuit"
	"github.com/markkurossi/fairmpc/commit"
	"github.com/markkurossi/fairmpc/gc"
)

// EvalMeta describes an exported evaluation payload. It is stored as
// a key=value file so the Evaluator side can run without access to
// the Garbler's configuration.
type EvalMeta struct {
	BitWidth   int
	CircuitID  [32]byte
	InstanceID uint64
	OutputWire circuit.Wire
	H0         [32]byte
	H1         [32]byte
	LOutTrue   [32]byte
	LOutFalse  [32]byte
}

// EvalPayload is the material the Evaluator needs to run instance m:
// the garbled leaves, the Garbler's input labels for her private x,
// the label offers for the Evaluator's input wires (the simulated OT
// message), and the NOT-gate hints.
type EvalPayload struct {
	Meta          EvalMeta
	Leaves        []gc.Leaf
	GarblerLabels []gc.Label
	Offers        []gc.LabelOffer
	NotHints      []gc.NotHint
}

// PrepareEval builds the evaluation payload of instance m for the
// Garbler's private value x.
func PrepareEval(cfg Config, instances []Instance, m, x uint64) (
	*EvalPayload, error) {

	if err := FitsBitWidth(x, cfg.BitWidth, "x"); err != nil {
		return nil, err
	}
	if m >= uint64(len(instances)) {
		return nil, errors.Newf("m=%d out of range [0, %d)",
			m, len(instances))
	}
	inst := instances[m]

	layout, err := cfg.Layout(m)
	if err != nil {
		return nil, err
	}
	output, err := cfg.OutputWire()
	if err != nil {
		return nil, err
	}

	l0, l1 := gc.OutputLabels(inst.Seed, layout, output)
	h0, h1 := commit.Anchors(l0, l1)

	return &EvalPayload{
		Meta: EvalMeta{
			BitWidth:   cfg.BitWidth,
			CircuitID:  cfg.CircuitID,
			InstanceID: m,
			OutputWire: output,
			H0:         h0,
			H1:         h1,
			LOutTrue:   l1.Bytes32(),
			LOutFalse:  l0.Bytes32(),
		},
		Leaves: inst.Leaves,
		GarblerLabels: gc.GarblerInputLabels(inst.Seed, cfg.CircuitID, m,
			cfg.BitWidth, x),
		Offers: gc.EvaluatorLabelOffers(inst.Seed, cfg.CircuitID, m,
			cfg.BitWidth),
		NotHints: gc.NotHints(inst.Seed, layout),
	}, nil
}

// Evaluate runs the payload with the Evaluator's private value y and
// returns the output label in settlement encoding plus the decoded
// bit if the label matches a known output label.
func (p *EvalPayload) Evaluate(y uint64) ([32]byte, int, error) {
	var zero [32]byte

	if err := FitsBitWidth(y, p.Meta.BitWidth, "y"); err != nil {
		return zero, -1, err
	}
	layout, err := Config{
		BitWidth:  p.Meta.BitWidth,
		CircuitID: p.Meta.CircuitID,
	}.Layout(p.Meta.InstanceID)
	if err != nil {
		return zero, -1, err
	}

	bits := gc.BitsLE(y, p.Meta.BitWidth)
	selected := make([]gc.Label, len(bits))
	for i, bit := range bits {
		if bit == 0 {
			selected[i] = p.Offers[i].Label0
		} else {
			selected[i] = p.Offers[i].Label1
		}
	}

	label, err := gc.Evaluate(layout, p.Leaves, p.GarblerLabels, selected,
		p.NotHints, p.Meta.OutputWire)
	if err != nil {
		return zero, -1, err
	}

	wide := label.Bytes32()
	decoded := -1
	switch wide {
	case p.Meta.LOutTrue:
		decoded = 1
	case p.Meta.LOutFalse:
		decoded = 0
	}
	return wide, decoded, nil
}

// Evaluation payload file names inside the export directory.
const (
	evalLeavesFile   = "gc-m-leaves.txt"
	evalXLabels16    = "alice-x-labels16.txt"
	evalXLabels32    = "alice-x-labels32.txt"
	evalYOffersFile  = "bob-y-offers.txt"
	evalNotHintsFile = "not-hints.txt"
	evalMetaFile     = "eval-meta.txt"
)

// Export writes the payload into dir in the hex text formats the
// Evaluator CLI loads.
func (p *EvalPayload) Export(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	if err := WriteLeafFile(filepath.Join(dir, evalLeavesFile),
		p.Leaves); err != nil {
		return err
	}

	var x16, x32 strings.Builder
	for _, label := range p.GarblerLabels {
		x16.WriteString(HexPrefixed(label[:]))
		x16.WriteByte('\n')
		wide := label.Bytes32()
		x32.WriteString(HexPrefixed(wide[:]))
		x32.WriteByte('\n')
	}
	if err := writeFile(filepath.Join(dir, evalXLabels16),
		x16.String()); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, evalXLabels32),
		x32.String()); err != nil {
		return err
	}

	var offers strings.Builder
	for _, offer := range p.Offers {
		fmt.Fprintf(&offers, "%d,%s,%s\n", offer.Wire.ID(),
			HexPrefixed(offer.Label0[:]), HexPrefixed(offer.Label1[:]))
	}
	if err := writeFile(filepath.Join(dir, evalYOffersFile),
		offers.String()); err != nil {
		return err
	}

	var hints strings.Builder
	for _, hint := range p.NotHints {
		fmt.Fprintf(&hints, "%d,%s,%s,%s,%s\n", hint.GateIndex,
			HexPrefixed(hint.In0[:]), HexPrefixed(hint.Out0[:]),
			HexPrefixed(hint.In1[:]), HexPrefixed(hint.Out1[:]))
	}
	if err := writeFile(filepath.Join(dir, evalNotHintsFile),
		hints.String()); err != nil {
		return err
	}

	meta := fmt.Sprintf(
		"bit_width=%d\ncircuit_id=%s\ninstance_id=%d\noutput_wire=%d\nh0=%s\nh1=%s\nlout_true=%s\nlout_false=%s\n",
		p.Meta.BitWidth, Hex32(p.Meta.CircuitID), p.Meta.InstanceID,
		p.Meta.OutputWire.ID(), Hex32(p.Meta.H0), Hex32(p.Meta.H1),
		Hex32(p.Meta.LOutTrue), Hex32(p.Meta.LOutFalse))
	return writeFile(filepath.Join(dir, evalMetaFile), meta)
}

// LoadEvalPayload reads an exported payload back from dir.
func LoadEvalPayload(dir string) (*EvalPayload, error) {
	meta, err := readEvalMeta(filepath.Join(dir, evalMetaFile))
	if err != nil {
		return nil, err
	}

	leaves, err := ReadLeafFile(filepath.Join(dir, evalLeavesFile))
	if err != nil {
		return nil, err
	}
	xLabels, err := ReadLabelFile(filepath.Join(dir, evalXLabels16))
	if err != nil {
		return nil, err
	}
	if len(xLabels) != meta.BitWidth {
		return nil, errors.Newf(
			"garbler label count %d does not match bit-width %d",
			len(xLabels), meta.BitWidth)
	}
	offers, err := readOffers(filepath.Join(dir, evalYOffersFile),
		meta.BitWidth)
	if err != nil {
		return nil, err
	}
	hints, err := readNotHints(filepath.Join(dir, evalNotHintsFile))
	if err != nil {
		return nil, err
	}

	return &EvalPayload{
		Meta:          *meta,
		Leaves:        leaves,
		GarblerLabels: xLabels,
		Offers:        offers,
		NotHints:      hints,
	}, nil
}

func writeFile(path, data string) error {
	return errors.Wrapf(os.WriteFile(path, []byte(data), 0600),
		"write %s", path)
}

func readEvalMeta(path string) (*EvalMeta, error) {
	entries, err := readKeyValueFile(path)
	if err != nil {
		return nil, err
	}
	get := func(key string) (string, error) {
		value, ok := entries[key]
		if !ok {
			return "", errors.Newf("%s: missing key %q", path, key)
		}
		return value, nil
	}

	var meta EvalMeta
	if v, err := get("bit_width"); err != nil {
		return nil, err
	} else if meta.BitWidth, err = strconv.Atoi(v); err != nil {
		return nil, errors.Wrapf(err, "%s: bit_width", path)
	}
	if v, err := get("circuit_id"); err != nil {
		return nil, err
	} else if meta.CircuitID, err = ParseBytes32(v); err != nil {
		return nil, err
	}
	if v, err := get("instance_id"); err != nil {
		return nil, err
	} else if meta.InstanceID, err = strconv.ParseUint(v, 10, 64); err != nil {
		return nil, errors.Wrapf(err, "%s: instance_id", path)
	}
	if v, err := get("output_wire"); err != nil {
		return nil, err
	} else if wire, err := strconv.ParseUint(v, 10, 16); err != nil {
		return nil, errors.Wrapf(err, "%s: output_wire", path)
	} else {
		meta.OutputWire = circuit.Wire(wire)
	}
	if v, err := get("h0"); err != nil {
		return nil, err
	} else if meta.H0, err = ParseBytes32(v); err != nil {
		return nil, err
	}
	if v, err := get("h1"); err != nil {
		return nil, err
	} else if meta.H1, err = ParseBytes32(v); err != nil {
		return nil, err
	}
	if v, err := get("lout_true"); err != nil {
		return nil, err
	} else if meta.LOutTrue, err = ParseBytes32(v); err != nil {
		return nil, err
	}
	if v, err := get("lout_false"); err != nil {
		return nil, err
	} else if meta.LOutFalse, err = ParseBytes32(v); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readKeyValueFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	out := make(map[string]string)
	for idx, line := range strings.Split(string(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, found := strings.Cut(trimmed, "=")
		if !found {
			return nil, errors.Newf("%s:%d: invalid key=value", path, idx+1)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, nil
}

func readOffers(path string, bitWidth int) ([]gc.LabelOffer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	out := make([]gc.LabelOffer, bitWidth)
	seen := make([]bool, bitWidth)

	for idx, line := range strings.Split(string(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "#") {
			continue
		}
		parts := strings.Split(trimmed, ",")
		if len(parts) != 3 {
			return nil, errors.Newf(
				"%s:%d: expected wire,label0,label1", path, idx+1)
		}
		wire, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d: wire", path, idx+1)
		}
		if int(wire) < bitWidth || int(wire) >= 2*bitWidth {
			return nil, errors.Newf(
				"%s:%d: offer wire %d out of y range [%d, %d)",
				path, idx+1, wire, bitWidth, 2*bitWidth)
		}
		l0, err := ParseLabel(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, idx+1)
		}
		l1, err := ParseLabel(parts[2])
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, idx+1)
		}
		pos := int(wire) - bitWidth
		out[pos] = gc.LabelOffer{
			Wire:   circuit.Wire(wire),
			Label0: l0,
			Label1: l1,
		}
		seen[pos] = true
	}

	for i, ok := range seen {
		if !ok {
			return nil, errors.Newf("%s: missing offer for y-bit %d", path, i)
		}
	}
	return out, nil
}

func readNotHints(path string) ([]gc.NotHint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var out []gc.NotHint

	for idx, line := range strings.Split(string(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "#") {
			continue
		}
		parts := strings.Split(trimmed, ",")
		if len(parts) != 5 {
			return nil, errors.Newf(
				"%s:%d: expected gate,in0,out0,in1,out1", path, idx+1)
		}
		gate, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d: gate", path, idx+1)
		}
		hint := gc.NotHint{
			GateIndex: gate,
		}
		if hint.In0, err = ParseLabel(parts[1]); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, idx+1)
		}
		if hint.Out0, err = ParseLabel(parts[2]); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, idx+1)
		}
		if hint.In1, err = ParseLabel(parts[3]); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, idx+1)
		}
		if hint.Out1, err = ParseLabel(parts[4]); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, idx+1)
		}
		out = append(out, hint)
	}
	return out, nil
}
