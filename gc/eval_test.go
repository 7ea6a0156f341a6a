//
// eval_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gc

import (
	"testing"

	"github.com/markkurossi/fairmpc/circuit"
)

// evalLayout garbles a millionaires layout and evaluates it with the
// semantic-correct input labels for (x, y).
func evalLayout(t *testing.T, bitWidth int, x, y uint64) bool {
	t.Helper()
	circuitID, seed, instanceID := baseInputs()

	gates, err := circuit.Millionaires(bitWidth)
	if err != nil {
		t.Fatal(err)
	}
	layout := &circuit.Layout{
		CircuitID:  circuitID,
		InstanceID: instanceID,
		Gates:      gates,
	}
	output, err := circuit.MillionairesOutputWire(gates, bitWidth)
	if err != nil {
		t.Fatal(err)
	}

	leaves := GarbleInstance(seed, layout)

	garblerLabels := GarblerInputLabels(seed, circuitID, instanceID,
		bitWidth, x)

	offers := EvaluatorLabelOffers(seed, circuitID, instanceID, bitWidth)
	bits := BitsLE(y, bitWidth)
	evaluatorLabels := make([]Label, bitWidth)
	for i, bit := range bits {
		if bit == 0 {
			evaluatorLabels[i] = offers[i].Label0
		} else {
			evaluatorLabels[i] = offers[i].Label1
		}
	}

	hints := NotHints(seed, layout)

	result, err := Evaluate(layout, leaves, garblerLabels, evaluatorLabels,
		hints, output)
	if err != nil {
		t.Fatalf("evaluate x=%d y=%d: %s", x, y, err)
	}

	l0, l1 := OutputLabels(seed, layout, output)
	switch {
	case result.Equal(l1):
		return true
	case result.Equal(l0):
		return false
	default:
		t.Fatalf("x=%d y=%d: output label matches neither semantic label",
			x, y)
		return false
	}
}

func TestEvaluateComparator(t *testing.T) {
	// Exhaustive over 4-bit inputs.
	bitWidth := 4
	for x := uint64(0); x < 16; x++ {
		for y := uint64(0); y < 16; y++ {
			got := evalLayout(t, bitWidth, x, y)
			if got != (x > y) {
				t.Errorf("x=%d y=%d: got %v, expected %v", x, y, got, x > y)
			}
		}
	}
}

func TestEvaluateComparatorWide(t *testing.T) {
	bitWidth := 8
	vectors := []struct {
		x, y uint64
	}{
		{5, 3}, {2, 9}, {0, 0}, {255, 254}, {254, 255}, {128, 127},
		{0, 255}, {255, 0}, {42, 42},
	}
	for _, v := range vectors {
		got := evalLayout(t, bitWidth, v.x, v.y)
		if got != (v.x > v.y) {
			t.Errorf("x=%d y=%d: got %v, expected %v", v.x, v.y, got,
				v.x > v.y)
		}
	}
}

func TestEvaluateSingleBit(t *testing.T) {
	for x := uint64(0); x < 2; x++ {
		for y := uint64(0); y < 2; y++ {
			got := evalLayout(t, 1, x, y)
			if got != (x > y) {
				t.Errorf("x=%d y=%d: got %v, expected %v", x, y, got, x > y)
			}
		}
	}
}

func TestEvaluateRejectsBadLeafCount(t *testing.T) {
	circuitID, seed, instanceID := baseInputs()

	gates, err := circuit.Millionaires(2)
	if err != nil {
		t.Fatal(err)
	}
	layout := &circuit.Layout{
		CircuitID:  circuitID,
		InstanceID: instanceID,
		Gates:      gates,
	}
	leaves := GarbleInstance(seed, layout)

	_, err = Evaluate(layout, leaves[:len(leaves)-1], make([]Label, 2),
		make([]Label, 2), nil, 0)
	if err == nil {
		t.Fatal("short leaf list accepted")
	}
}

func TestEvaluateRejectsForeignNotInput(t *testing.T) {
	circuitID, seed, instanceID := baseInputs()

	gates := []circuit.Gate{
		{Type: circuit.NOT, WireA: 0, WireB: 0, WireC: 2},
	}
	layout := &circuit.Layout{
		CircuitID:  circuitID,
		InstanceID: instanceID,
		Gates:      gates,
	}
	leaves := GarbleInstance(seed, layout)
	hints := NotHints(seed, layout)

	var bogus Label
	for i := range bogus {
		bogus[i] = 0xff
	}

	_, err := Evaluate(layout, leaves, []Label{bogus},
		[]Label{DeriveLabel(circuitID, instanceID, 1, 0, seed)}, hints, 2)
	if err == nil {
		t.Fatal("foreign NOT input label accepted")
	}
}
