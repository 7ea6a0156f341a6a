//
// millionaires_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"testing"
)

// evalPlain evaluates a layout over plaintext bits.
func evalPlain(t *testing.T, gates []Gate, bitWidth int, x, y uint64,
	output Wire) uint8 {

	t.Helper()

	numWires := bitWidth * 2
	for _, g := range gates {
		for _, w := range []Wire{g.WireA, g.WireB, g.WireC} {
			if w.ID() >= numWires {
				numWires = w.ID() + 1
			}
		}
	}
	wires := make([]uint8, numWires)
	for i := 0; i < bitWidth; i++ {
		wires[i] = uint8((x >> i) & 1)
		wires[bitWidth+i] = uint8((y >> i) & 1)
	}

	for idx, g := range gates {
		switch g.Type {
		case AND:
			wires[g.WireC.ID()] = wires[g.WireA.ID()] & wires[g.WireB.ID()]
		case XOR:
			wires[g.WireC.ID()] = wires[g.WireA.ID()] ^ wires[g.WireB.ID()]
		case NOT:
			wires[g.WireC.ID()] = wires[g.WireA.ID()] ^ 1
		default:
			t.Fatalf("gate %d: invalid type %v", idx, g.Type)
		}
	}
	return wires[output.ID()]
}

func TestMillionairesTruth(t *testing.T) {
	for _, bitWidth := range []int{1, 2, 4, 8} {
		gates, err := Millionaires(bitWidth)
		if err != nil {
			t.Fatal(err)
		}
		output, err := MillionairesOutputWire(gates, bitWidth)
		if err != nil {
			t.Fatal(err)
		}

		max := uint64(1) << bitWidth
		if max > 32 {
			max = 32
		}
		for x := uint64(0); x < max; x++ {
			for y := uint64(0); y < max; y++ {
				got := evalPlain(t, gates, bitWidth, x, y, output)
				var expected uint8
				if x > y {
					expected = 1
				}
				if got != expected {
					t.Errorf("bw=%d x=%d y=%d: got %d, expected %d",
						bitWidth, x, y, got, expected)
				}
			}
		}
	}
}

func TestMillionairesShape(t *testing.T) {
	gates, err := Millionaires(8)
	if err != nil {
		t.Fatal(err)
	}
	// 4 gates for the MSB, 9 per remaining bit.
	if len(gates) != 4+7*9 {
		t.Errorf("gate count %d", len(gates))
	}

	// Gate outputs allocate fresh wires in order.
	next := Wire(16)
	for idx, g := range gates {
		if g.WireC != next {
			t.Fatalf("gate %d: output %v, expected %v", idx, g.WireC, next)
		}
		next++
	}

	// NOT gates carry WireB 0.
	for idx, g := range gates {
		if g.Type == NOT && g.WireB != 0 {
			t.Errorf("gate %d: NOT with WireB %v", idx, g.WireB)
		}
	}
}

func TestMillionairesRejectsZeroWidth(t *testing.T) {
	if _, err := Millionaires(0); err == nil {
		t.Error("bitWidth 0 accepted")
	}
}

func TestMillionairesDeterministic(t *testing.T) {
	a, err := Millionaires(8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Millionaires(8)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatal("gate counts differ")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("gate %d differs: %v != %v", i, a[i], b[i])
		}
	}
}
