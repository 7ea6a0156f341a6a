//
// derive.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gc

import (
	"github.com/markkurossi/fairmpc/circuit"
)

// Hash domain separators. Each derivation hashes a distinct prefix so
// flip bits, labels, row keys, and pads can never collide.
var (
	domainFlip   = []byte("P")
	domainLabel  = []byte("L")
	domainRowKey = []byte("K")
	domainPad    = []byte("PAD")
	domainSeed   = []byte("SEED")
)

// FlipBit derives the per-wire flip bit mapping semantic bits to
// permutation bits: perm = flip XOR semantic.
func FlipBit(circuitID [32]byte, instanceID uint64, wire circuit.Wire,
	seed [32]byte) uint8 {

	instance := U256(instanceID)
	w := U16(uint16(wire))
	h := Keccak256(domainFlip, circuitID[:], instance[:], w[:], seed[:])
	return h[31] & 1
}

// DeriveLabel derives the wire label for the semantic bit. The first
// 16 bytes of the domain-L hash form the label body; the lowest bit
// of byte 0 is rewritten to the permutation bit flip XOR bit.
func DeriveLabel(circuitID [32]byte, instanceID uint64, wire circuit.Wire,
	bit uint8, seed [32]byte) Label {

	instance := U256(instanceID)
	w := U16(uint16(wire))
	b := []byte{bit & 1}
	h := Keccak256(domainLabel, circuitID[:], instance[:], w[:], b, seed[:])

	var label Label
	copy(label[:], h[:16])

	flip := FlipBit(circuitID, instanceID, wire, seed)
	label[0] = (label[0] & 0xFE) | ((flip ^ bit) & 1)
	return label
}

// RowKey derives the encryption key of one garbled-table row from the
// gate position, the row's permutation bits, and the input labels.
func RowKey(circuitID [32]byte, instanceID, gateIndex uint64,
	permA, permB uint8, labelA, labelB Label) [32]byte {

	instance := U256(instanceID)
	gate := U256(gateIndex)
	pa := []byte{permA & 1}
	pb := []byte{permB & 1}
	return Keccak256(domainRowKey, circuitID[:], instance[:], gate[:],
		pa, pb, labelA[:], labelB[:])
}

// ExpandPad expands a row key into the 16-byte one-time pad of the
// row ciphertext.
func ExpandPad(rowKey [32]byte) Label {
	h := Keccak256(domainPad, rowKey[:])
	var pad Label
	copy(pad[:], h[:16])
	return pad
}

// TruthTable evaluates the gate function on semantic bits. NOT
// returns 0: its rows are canonical zeros and the semantics live in
// the layout.
func TruthTable(t circuit.GateType, a, b uint8) uint8 {
	switch t {
	case circuit.AND:
		return a & b & 1
	case circuit.XOR:
		return (a ^ b) & 1
	default:
		return 0
	}
}

// InstanceSeed derives one per-instance seed from the session master
// seed.
func InstanceSeed(masterSeed, circuitID [32]byte, instanceID uint64) [32]byte {
	instance := U256(instanceID)
	return Keccak256(domainSeed, circuitID[:], instance[:], masterSeed[:])
}

// ComSeed computes the on-ledger seed commitment.
func ComSeed(seed [32]byte) [32]byte {
	return Keccak256(seed[:])
}
