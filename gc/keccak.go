//
// keccak.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package gc implements the deterministic label and gate engine of
// the garbled-circuit fair exchange. Every value the package produces
// is derived from (seed, instanceID, circuitID, ...) with Keccak-256
// over packed byte concatenations and must be byte-identical across
// the prover, the verifier, and the evaluator; a single diverging
// byte breaks adjudication.
package gc

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the concatenation of the argument parts. This is
// the only hash function of the protocol; all commitments, proofs,
// and anchors use it.
func Keccak256(parts ...[]byte) [32]byte {
	d := sha3.NewLegacyKeccak256()
	for _, part := range parts {
		d.Write(part)
	}
	var out [32]byte
	d.Sum(out[:0])
	return out
}

// U256 encodes the value as a 32-byte big-endian integer, the packed
// encoding of the reference adjudicator's uint256 arguments.
func U256(value uint64) [32]byte {
	var out [32]byte
	binary.BigEndian.PutUint64(out[24:], value)
	return out
}

// U16 encodes a wire ID as 2 big-endian bytes.
func U16(value uint16) [2]byte {
	var out [2]byte
	binary.BigEndian.PutUint16(out[:], value)
	return out
}
