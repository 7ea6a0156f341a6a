//
// eval.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gc

import (
	"github.com/cockroachdb/errors"

	"github.com/markkurossi/fairmpc/circuit"
)

// NotHint carries the evaluation material for one NOT gate. NOT
// leaves are canonical zeros, so the Garbler sends the label mapping
// alongside the evaluation payload.
type NotHint struct {
	GateIndex int
	In0       Label
	Out0      Label // semantic: 0 -> 1
	In1       Label
	Out1      Label // semantic: 1 -> 0
}

// BitsLE decomposes value into bitWidth little-endian bits: bit 0 is
// the LSB and maps to the party's first input wire.
func BitsLE(value uint64, bitWidth int) []uint8 {
	bits := make([]uint8, bitWidth)
	for i := 0; i < bitWidth; i++ {
		bits[i] = uint8((value >> i) & 1)
	}
	return bits
}

// GarblerInputLabels derives the Garbler's input-wire labels (wires
// 0..bitWidth-1) for her private value x.
func GarblerInputLabels(seed, circuitID [32]byte, instanceID uint64,
	bitWidth int, x uint64) []Label {

	bits := BitsLE(x, bitWidth)
	labels := make([]Label, bitWidth)
	for i, bit := range bits {
		labels[i] = DeriveLabel(circuitID, instanceID, circuit.Wire(i),
			bit, seed)
	}
	return labels
}

// LabelOffer is the pair of labels for one Evaluator input wire; it
// stands in for a full OT transcript message.
type LabelOffer struct {
	Wire   circuit.Wire
	Label0 Label
	Label1 Label
}

// EvaluatorLabelOffers derives the label pairs for the Evaluator's
// input wires (bitWidth..2*bitWidth-1) of one instance.
func EvaluatorLabelOffers(seed, circuitID [32]byte, instanceID uint64,
	bitWidth int) []LabelOffer {

	offers := make([]LabelOffer, bitWidth)
	for i := 0; i < bitWidth; i++ {
		w := circuit.Wire(bitWidth + i)
		offers[i] = LabelOffer{
			Wire:   w,
			Label0: DeriveLabel(circuitID, instanceID, w, 0, seed),
			Label1: DeriveLabel(circuitID, instanceID, w, 1, seed),
		}
	}
	return offers
}

// OutputLabels derives the semantic 0 and 1 labels of the output
// wire.
func OutputLabels(seed [32]byte, layout *circuit.Layout,
	output circuit.Wire) (l0, l1 Label) {

	l0 = DeriveLabel(layout.CircuitID, layout.InstanceID, output, 0, seed)
	l1 = DeriveLabel(layout.CircuitID, layout.InstanceID, output, 1, seed)
	return
}

// NotHints derives the per-NOT-gate evaluation hints of a layout.
func NotHints(seed [32]byte, layout *circuit.Layout) []NotHint {
	var hints []NotHint
	for idx, g := range layout.Gates {
		if g.Type != circuit.NOT {
			continue
		}
		hints = append(hints, NotHint{
			GateIndex: idx,
			In0: DeriveLabel(layout.CircuitID, layout.InstanceID,
				g.WireA, 0, seed),
			Out0: DeriveLabel(layout.CircuitID, layout.InstanceID,
				g.WireC, 1, seed),
			In1: DeriveLabel(layout.CircuitID, layout.InstanceID,
				g.WireA, 1, seed),
			Out1: DeriveLabel(layout.CircuitID, layout.InstanceID,
				g.WireC, 0, seed),
		})
	}
	return hints
}

// Evaluate runs one garbled instance with the argument leaves and
// input labels and returns the output-wire label. The evaluator never
// learns semantics: it reads the permutation bits of the two input
// labels, selects row 2*permA+permB, and XORs with the recomputed
// pad.
func Evaluate(layout *circuit.Layout, leaves []Leaf,
	garblerLabels, evaluatorLabels []Label, hints []NotHint,
	output circuit.Wire) (Label, error) {

	var zero Label

	if len(leaves) != len(layout.Gates) {
		return zero, errors.Newf(
			"leaf count %d does not match gate count %d",
			len(leaves), len(layout.Gates))
	}
	bitWidth := len(garblerLabels)
	if len(evaluatorLabels) != bitWidth {
		return zero, errors.Newf(
			"evaluator label count %d does not match garbler count %d",
			len(evaluatorLabels), bitWidth)
	}

	numWires := layout.NumWires()
	if numWires < 2*bitWidth {
		numWires = 2 * bitWidth
	}
	wires := make([]*Label, numWires)

	for i := range garblerLabels {
		l := garblerLabels[i]
		wires[i] = &l
	}
	for i := range evaluatorLabels {
		l := evaluatorLabels[i]
		wires[bitWidth+i] = &l
	}

	hintAt := make(map[int]NotHint)
	for _, h := range hints {
		hintAt[h.GateIndex] = h
	}

	for idx, g := range layout.Gates {
		la := wires[g.WireA.ID()]
		if la == nil {
			return zero, errors.Newf("gate %d: no label for %v", idx, g.WireA)
		}

		var out Label
		switch g.Type {
		case circuit.AND, circuit.XOR:
			lb := wires[g.WireB.ID()]
			if lb == nil {
				return zero, errors.Newf("gate %d: no label for %v",
					idx, g.WireB)
			}
			permA := la.PermBit()
			permB := lb.PermBit()
			ct, err := leaves[idx].Row(int(2*permA + permB))
			if err != nil {
				return zero, err
			}
			key := RowKey(layout.CircuitID, layout.InstanceID, uint64(idx),
				permA, permB, *la, *lb)
			out = XorLabels(ct, ExpandPad(key))

		case circuit.NOT:
			hint, ok := hintAt[idx]
			if !ok {
				return zero, errors.Newf("gate %d: no NOT hint", idx)
			}
			switch {
			case la.Equal(hint.In0):
				out = hint.Out0
			case la.Equal(hint.In1):
				out = hint.Out1
			default:
				return zero, errors.Newf(
					"gate %d: input label unknown to NOT hint", idx)
			}

		default:
			return zero, errors.Newf("gate %d: invalid gate type %v",
				idx, g.Type)
		}

		o := out
		wires[g.WireC.ID()] = &o
	}

	if output.ID() >= len(wires) || wires[output.ID()] == nil {
		return zero, errors.Newf("no label for output wire %v", output)
	}
	return *wires[output.ID()], nil
}
