//
// merkle.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package commit

import (
	"bytes"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/fairmpc/circuit"
	"github.com/markkurossi/fairmpc/gc"
)

// LayoutLeafHash hashes one gate descriptor into a layout Merkle
// leaf: keccak(u256(gateIndex) || gateType || wireA || wireB ||
// wireC).
func LayoutLeafHash(gateIndex uint64, g circuit.Gate) [32]byte {
	idx := gc.U256(gateIndex)
	t := []byte{byte(g.Type)}
	wa := gc.U16(uint16(g.WireA))
	wb := gc.U16(uint16(g.WireB))
	wc := gc.U16(uint16(g.WireC))
	return gc.Keccak256(idx[:], t, wa[:], wb[:], wc[:])
}

// LayoutLeafHashes hashes every gate of the layout in natural order.
func LayoutLeafHashes(gates []circuit.Gate) [][32]byte {
	out := make([][32]byte, len(gates))
	for idx, g := range gates {
		out[idx] = LayoutLeafHash(uint64(idx), g)
	}
	return out
}

// nodeHash hashes a sorted pair: keccak(min || max). Sorting makes
// proofs positionless, compatible with OpenZeppelin MerkleProof.
func nodeHash(a, b [32]byte) [32]byte {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return gc.Keccak256(a[:], b[:])
	}
	return gc.Keccak256(b[:], a[:])
}

// MerkleRoot builds the sorted-pair Merkle root of the pre-hashed
// leaves. The last node of an odd level is paired with itself.
func MerkleRoot(hashes [][32]byte) [32]byte {
	if len(hashes) == 0 {
		return [32]byte{}
	}

	level := append([][32]byte(nil), hashes...)
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, nodeHash(left, right))
		}
		level = next
	}
	return level[0]
}

// MerkleProof builds the sibling path of hashes[index].
func MerkleProof(hashes [][32]byte, index int) ([][32]byte, error) {
	if len(hashes) == 0 {
		return nil, errors.New("cannot build proof for empty tree")
	}
	if index < 0 || index >= len(hashes) {
		return nil, errors.Newf("proof index %d out of range", index)
	}

	var proof [][32]byte
	idx := index
	level := append([][32]byte(nil), hashes...)

	for len(level) > 1 {
		var sibling [32]byte
		if idx%2 == 0 {
			if idx+1 < len(level) {
				sibling = level[idx+1]
			} else {
				sibling = level[idx]
			}
		} else {
			sibling = level[idx-1]
		}
		proof = append(proof, sibling)

		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, nodeHash(left, right))
		}
		idx /= 2
		level = next
	}

	return proof, nil
}

// VerifyMerkleProof folds the sibling path over the leaf hash and
// compares against the root.
func VerifyMerkleProof(leaf [32]byte, proof [][32]byte,
	root [32]byte) bool {

	computed := leaf
	for _, sibling := range proof {
		computed = nodeHash(computed, sibling)
	}
	return computed == root
}
