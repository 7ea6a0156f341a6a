//
// leaf.go
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

// LeafLen is the length of a packed gate leaf:
// gateType(1) || wireA(2) || wireB(2) || wireC(2) || 4*row(16).
const LeafLen = 71

// Leaf is the packed 71-byte encoding of one garbled gate. It is the
// wire format of commitments and dispute evidence.
type Leaf [LeafLen]byte

// EncodeLeaf packs a gate descriptor and its four ciphertext rows
// into the leaf layout. Multi-byte integers are big-endian.
func EncodeLeaf(g circuit.Gate, rows [4]Label) Leaf {
	var out Leaf
	out[0] = byte(g.Type)
	wa := U16(uint16(g.WireA))
	wb := U16(uint16(g.WireB))
	wc := U16(uint16(g.WireC))
	copy(out[1:3], wa[:])
	copy(out[3:5], wb[:])
	copy(out[5:7], wc[:])

	pos := 7
	for _, row := range rows {
		copy(out[pos:pos+16], row[:])
		pos += 16
	}
	return out
}

// Row returns the 16-byte ciphertext of the argument row index.
func (l Leaf) Row(index int) (Label, error) {
	var row Label
	if index < 0 || index > 3 {
		return row, errors.Newf("row index out of range: %d", index)
	}
	copy(row[:], l[7+16*index:7+16*(index+1)])
	return row, nil
}

// LeafFromBytes sets the leaf from raw bytes, enforcing the 71-byte
// contract.
func LeafFromBytes(data []byte) (Leaf, error) {
	var l Leaf
	if len(data) != LeafLen {
		return l, errors.Newf("invalid leaf length %d, expected %d",
			len(data), LeafLen)
	}
	copy(l[:], data)
	return l, nil
}

// RecomputeGateLeaf recomputes one gate leaf from the instance seed
// and the gate descriptor. The function is pure: the dispute verifier
// calls it with a revealed seed and compares the result against the
// leaf the Garbler committed to.
//
// Row ordering is rowIndex = 2*permA + permB. NOT gates keep all four
// rows zero.
func RecomputeGateLeaf(seed, circuitID [32]byte, instanceID, gateIndex uint64,
	g circuit.Gate) Leaf {

	var rows [4]Label

	if g.Type != circuit.NOT {
		flipA := FlipBit(circuitID, instanceID, g.WireA, seed)
		flipB := FlipBit(circuitID, instanceID, g.WireB, seed)

		for permA := uint8(0); permA <= 1; permA++ {
			for permB := uint8(0); permB <= 1; permB++ {
				// Inverse point-and-permute mapping:
				// semantic = permutation XOR flip.
				bitA := permA ^ flipA
				bitB := permB ^ flipB
				outBit := TruthTable(g.Type, bitA, bitB)

				labelA := DeriveLabel(circuitID, instanceID, g.WireA,
					bitA, seed)
				labelB := DeriveLabel(circuitID, instanceID, g.WireB,
					bitB, seed)
				outLabel := DeriveLabel(circuitID, instanceID, g.WireC,
					outBit, seed)

				key := RowKey(circuitID, instanceID, gateIndex,
					permA, permB, labelA, labelB)
				rows[2*permA+permB] = XorLabels(outLabel, ExpandPad(key))
			}
		}
	}

	return EncodeLeaf(g, rows)
}

// GarbleInstance garbles a full layout in gate-index order and
// returns all gate leaves.
func GarbleInstance(seed [32]byte, layout *circuit.Layout) []Leaf {
	leaves := make([]Leaf, len(layout.Gates))
	for idx, g := range layout.Gates {
		leaves[idx] = RecomputeGateLeaf(seed, layout.CircuitID,
			layout.InstanceID, uint64(idx), g)
	}
	return leaves
}
