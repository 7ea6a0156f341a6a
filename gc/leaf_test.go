//
// leaf_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gc

import (
	"fmt"
	"testing"

	"github.com/markkurossi/fairmpc/circuit"
)

func TestGateLeafMatchesReferenceVector(t *testing.T) {
	circuitID, seed, instanceID := baseInputs()

	g := circuit.Gate{
		Type:  circuit.AND,
		WireA: 7,
		WireB: 8,
		WireC: 9,
	}
	leaf := RecomputeGateLeaf(seed, circuitID, instanceID, 9, g)

	if len(leaf) != LeafLen {
		t.Fatalf("leaf length %d", len(leaf))
	}

	// The position-bound block hash is pinned: it folds the leaf
	// encoding, the row derivation, and the index binding into one
	// value.
	idx := U256(9)
	blockHash := Keccak256(idx[:], leaf[:])
	if got := fmt.Sprintf("%x", blockHash[:]); got !=
		"a300af318eda049428eb239539c1f40283d72dc07b6dfc33795294dceacc15a0" {
		t.Errorf("block hash: %s", got)
	}
}

func TestGateLeafHeader(t *testing.T) {
	circuitID, seed, instanceID := baseInputs()

	g := circuit.Gate{
		Type:  circuit.XOR,
		WireA: 0x0102,
		WireB: 0x0304,
		WireC: 0x0506,
	}
	leaf := RecomputeGateLeaf(seed, circuitID, instanceID, 0, g)

	if leaf[0] != byte(circuit.XOR) {
		t.Errorf("gate type byte: %02x", leaf[0])
	}
	// Wire ids are big-endian.
	if leaf[1] != 0x01 || leaf[2] != 0x02 {
		t.Errorf("wireA bytes: %02x%02x", leaf[1], leaf[2])
	}
	if leaf[3] != 0x03 || leaf[4] != 0x04 {
		t.Errorf("wireB bytes: %02x%02x", leaf[3], leaf[4])
	}
	if leaf[5] != 0x05 || leaf[6] != 0x06 {
		t.Errorf("wireC bytes: %02x%02x", leaf[5], leaf[6])
	}
}

func TestNotGateRowsAreZero(t *testing.T) {
	circuitID, seed, instanceID := baseInputs()

	g := circuit.Gate{
		Type:  circuit.NOT,
		WireA: 4,
		WireB: 0,
		WireC: 5,
	}
	leaf := RecomputeGateLeaf(seed, circuitID, instanceID, 2, g)

	if leaf[0] != byte(circuit.NOT) {
		t.Errorf("gate type byte: %02x", leaf[0])
	}
	for i := 7; i < LeafLen; i++ {
		if leaf[i] != 0 {
			t.Fatalf("row byte %d is %02x, expected 0", i, leaf[i])
		}
	}
}

// TestRowDecryption checks the evaluation invariant: for every
// permutation-bit pair the pad recomputed from the row's input labels
// decrypts the row to the correct output label, for both AND and XOR.
func TestRowDecryption(t *testing.T) {
	circuitID, seed, instanceID := baseInputs()

	for _, gt := range []circuit.GateType{circuit.AND, circuit.XOR} {
		g := circuit.Gate{
			Type:  gt,
			WireA: 10,
			WireB: 11,
			WireC: 12,
		}
		gateIndex := uint64(4)
		leaf := RecomputeGateLeaf(seed, circuitID, instanceID, gateIndex, g)

		flipA := FlipBit(circuitID, instanceID, g.WireA, seed)
		flipB := FlipBit(circuitID, instanceID, g.WireB, seed)

		for permA := uint8(0); permA <= 1; permA++ {
			for permB := uint8(0); permB <= 1; permB++ {
				bitA := permA ^ flipA
				bitB := permB ^ flipB

				labelA := DeriveLabel(circuitID, instanceID, g.WireA,
					bitA, seed)
				labelB := DeriveLabel(circuitID, instanceID, g.WireB,
					bitB, seed)

				// The evaluator's view: labels only, semantics
				// unknown.
				if labelA.PermBit() != permA || labelB.PermBit() != permB {
					t.Fatalf("%v: permutation bits do not match row", gt)
				}

				ct, err := leaf.Row(int(2*permA + permB))
				if err != nil {
					t.Fatal(err)
				}
				key := RowKey(circuitID, instanceID, gateIndex,
					permA, permB, labelA, labelB)
				got := XorLabels(ct, ExpandPad(key))

				outBit := TruthTable(gt, bitA, bitB)
				expected := DeriveLabel(circuitID, instanceID, g.WireC,
					outBit, seed)
				if !got.Equal(expected) {
					t.Errorf("%v row (%d,%d): decrypted %s, expected %s",
						gt, permA, permB, got, expected)
				}
			}
		}
	}
}

func TestLeafFromBytesLength(t *testing.T) {
	for _, n := range []int{0, 70, 72, 100} {
		if _, err := LeafFromBytes(make([]byte, n)); err == nil {
			t.Errorf("length %d accepted", n)
		}
	}
	if _, err := LeafFromBytes(make([]byte, LeafLen)); err != nil {
		t.Errorf("length %d rejected: %s", LeafLen, err)
	}
}
