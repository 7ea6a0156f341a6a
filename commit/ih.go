//
// ih.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package commit implements the Garbler's per-instance commitments:
// the incremental-hash chain over gate leaves, the layout Merkle
// tree, and the commitment records published on-ledger. The byte
// formats here are shared with the adjudicator's dispute verifier.
package commit

import (
	"github.com/cockroachdb/errors"

	"github.com/markkurossi/fairmpc/gc"
)

// BlockHash computes the position-bound hash of one gate leaf:
// keccak(u256(gateIndex) || leafBytes).
func BlockHash(gateIndex uint64, leaf gc.Leaf) [32]byte {
	idx := gc.U256(gateIndex)
	return gc.Keccak256(idx[:], leaf[:])
}

// Fold performs one incremental-hash transition:
// state' = keccak(state || block).
func Fold(state, block [32]byte) [32]byte {
	return gc.Keccak256(state[:], block[:])
}

// RootFromBlockHashes folds the ordered block hashes from the zero
// state and returns the terminal state, the instance's rootGC.
func RootFromBlockHashes(blockHashes [][32]byte) [32]byte {
	var state [32]byte
	for _, h := range blockHashes {
		state = Fold(state, h)
	}
	return state
}

// Root computes rootGC directly from the ordered gate leaves.
func Root(leaves []gc.Leaf) [32]byte {
	state := [32]byte{}
	for idx, leaf := range leaves {
		state = Fold(state, BlockHash(uint64(idx), leaf))
	}
	return state
}

// BlockHashes computes the ordered position-bound block hashes of the
// leaves.
func BlockHashes(leaves []gc.Leaf) [][32]byte {
	out := make([][32]byte, len(leaves))
	for idx, leaf := range leaves {
		out[idx] = BlockHash(uint64(idx), leaf)
	}
	return out
}

// IHProof builds the incremental-hash proof for the block at index:
//
//   - empty for a single-block chain
//   - otherwise proof[0] is the prefix state IH_{index-1} (the
//     explicit zero state when index is 0) and proof[1:] are the
//     ordered block hashes of blocks index+1..end.
func IHProof(blockHashes [][32]byte, index int) ([][32]byte, error) {
	if len(blockHashes) == 0 {
		return nil, errors.New("cannot build IH proof for empty chain")
	}
	if index < 0 || index >= len(blockHashes) {
		return nil, errors.Newf("IH proof index %d out of range", index)
	}
	if len(blockHashes) == 1 {
		return nil, nil
	}

	var prefix [32]byte
	for _, h := range blockHashes[:index] {
		prefix = Fold(prefix, h)
	}

	proof := make([][32]byte, 0, 1+len(blockHashes)-index-1)
	proof = append(proof, prefix)
	proof = append(proof, blockHashes[index+1:]...)
	return proof, nil
}

// VerifyIHProof reconstructs the terminal state from the block hash
// of the queried gate and its proof, and compares it against the
// committed root. The reconstruction mirrors the adjudicator's
// verifier exactly.
func VerifyIHProof(blockHash [32]byte, proof [][32]byte,
	root [32]byte) bool {

	var state [32]byte
	var suffix [][32]byte
	if len(proof) == 0 {
		state = Fold([32]byte{}, blockHash)
	} else {
		state = Fold(proof[0], blockHash)
		suffix = proof[1:]
	}
	for _, h := range suffix {
		state = Fold(state, h)
	}
	return state == root
}
