//
// ih_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package commit

import (
	"fmt"
	"testing"

	"github.com/markkurossi/fairmpc/circuit"
	"github.com/markkurossi/fairmpc/gc"
)

func baseInputs() (circuitID, seed [32]byte, instanceID uint64) {
	for i := range circuitID {
		circuitID[i] = 0x11
		seed[i] = 0x22
	}
	return circuitID, seed, 3
}

func garbleGates(t *testing.T, gates []circuit.Gate) []gc.Leaf {
	t.Helper()
	circuitID, seed, instanceID := baseInputs()
	layout := &circuit.Layout{
		CircuitID:  circuitID,
		InstanceID: instanceID,
		Gates:      gates,
	}
	return gc.GarbleInstance(seed, layout)
}

func TestIncrementalRootIsStable(t *testing.T) {
	leaves := garbleGates(t, []circuit.Gate{
		{Type: circuit.AND, WireA: 0, WireB: 1, WireC: 2},
		{Type: circuit.XOR, WireA: 2, WireB: 3, WireC: 4},
		{Type: circuit.NOT, WireA: 4, WireB: 0, WireC: 5},
	})
	if len(leaves) != 3 {
		t.Fatalf("leaf count %d", len(leaves))
	}

	root := Root(leaves)
	if got := fmt.Sprintf("%x", root[:]); got !=
		"73a30bddec1ceb66e2680dd54321f734ac92b0388ee232009ed0b45edb7a3fe8" {
		t.Errorf("root: %s", got)
	}
}

func TestLayoutLeafHashIsStable(t *testing.T) {
	g := circuit.Gate{
		Type:  circuit.AND,
		WireA: 7,
		WireB: 8,
		WireC: 9,
	}
	h := LayoutLeafHash(9, g)
	if got := fmt.Sprintf("%x", h[:]); got !=
		"77e8fea17177263b25687abafa2631d7e6915106d7cf6ec47feb3b086fe2a97c" {
		t.Errorf("layout leaf hash: %s", got)
	}
}

func TestIHProofRoundtrip(t *testing.T) {
	leaves := garbleGates(t, []circuit.Gate{
		{Type: circuit.AND, WireA: 0, WireB: 1, WireC: 2},
		{Type: circuit.XOR, WireA: 2, WireB: 3, WireC: 4},
		{Type: circuit.NOT, WireA: 4, WireB: 0, WireC: 5},
		{Type: circuit.AND, WireA: 5, WireB: 6, WireC: 7},
	})
	blockHashes := BlockHashes(leaves)
	root := RootFromBlockHashes(blockHashes)

	for idx := range leaves {
		proof, err := IHProof(blockHashes, idx)
		if err != nil {
			t.Fatal(err)
		}
		if !VerifyIHProof(blockHashes[idx], proof, root) {
			t.Errorf("proof for block %d does not verify", idx)
		}
	}
}

func TestIHProofSingleBlock(t *testing.T) {
	leaves := garbleGates(t, []circuit.Gate{
		{Type: circuit.AND, WireA: 0, WireB: 1, WireC: 2},
	})
	blockHashes := BlockHashes(leaves)
	root := RootFromBlockHashes(blockHashes)

	proof, err := IHProof(blockHashes, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(proof) != 0 {
		t.Fatalf("single-block proof has %d elements", len(proof))
	}
	if !VerifyIHProof(blockHashes[0], proof, root) {
		t.Error("single-block proof does not verify")
	}
}

func TestIHProofRejectsWrongLeaf(t *testing.T) {
	leaves := garbleGates(t, []circuit.Gate{
		{Type: circuit.AND, WireA: 0, WireB: 1, WireC: 2},
		{Type: circuit.XOR, WireA: 2, WireB: 3, WireC: 4},
		{Type: circuit.NOT, WireA: 4, WireB: 0, WireC: 5},
	})
	blockHashes := BlockHashes(leaves)
	root := RootFromBlockHashes(blockHashes)

	proof, err := IHProof(blockHashes, 1)
	if err != nil {
		t.Fatal(err)
	}

	tampered := leaves[1]
	tampered[10] ^= 1
	if VerifyIHProof(BlockHash(1, tampered), proof, root) {
		t.Error("tampered leaf verifies")
	}
}

func TestIHRootBindsPosition(t *testing.T) {
	leaves := garbleGates(t, []circuit.Gate{
		{Type: circuit.AND, WireA: 0, WireB: 1, WireC: 2},
		{Type: circuit.XOR, WireA: 2, WireB: 3, WireC: 4},
	})
	root := Root(leaves)

	// Swapping leaves changes the root even though the leaf set is
	// identical: each block hash binds its gate index.
	swapped := []gc.Leaf{leaves[1], leaves[0]}
	if Root(swapped) == root {
		t.Error("root does not bind leaf positions")
	}
}

func TestIHProofBounds(t *testing.T) {
	if _, err := IHProof(nil, 0); err == nil {
		t.Error("empty chain accepted")
	}
	leaves := garbleGates(t, []circuit.Gate{
		{Type: circuit.AND, WireA: 0, WireB: 1, WireC: 2},
	})
	blockHashes := BlockHashes(leaves)
	if _, err := IHProof(blockHashes, 1); err == nil {
		t.Error("out-of-range index accepted")
	}
}
