//
// dispute.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package session

import (
	"github.com/cockroachdb/errors"

	"github.com/markkurossi/fairmpc/circuit"
	"github.com/markkurossi/fairmpc/commit"
	"github.com/markkurossi/fairmpc/gc"
)

// DisputeRequest configures dispute packet preparation. The claimed
// leaves are what the Garbler delivered; the seed is the one she
// revealed for the instance during Open.
type DisputeRequest struct {
	BitWidth   int
	CircuitID  [32]byte
	InstanceID uint64
	Seed       [32]byte
	Claimed    []gc.Leaf

	// GateIndex selects the challenged gate; nil picks the first
	// mismatching leaf.
	GateIndex *int

	// AllowFalseChallenge permits challenging a gate whose claimed
	// leaf matches the recomputed one. The resulting challenge loses
	// the challenger's collateral; the flag exists for adversarial
	// testing.
	AllowFalseChallenge bool

	// ExpectedRootGC, when set, must match the root recomputed from
	// the claimed leaves.
	ExpectedRootGC *[32]byte
}

// DisputePacket is a ready-to-submit single-gate challenge.
type DisputePacket struct {
	GateIndex   int
	Gate        circuit.Gate
	ClaimedLeaf gc.Leaf
	Expected    gc.Leaf
	Mismatches  []int
	RootGC      [32]byte
	LayoutRoot  [32]byte
	IHProof     [][32]byte
	LayoutProof [][32]byte
}

// Mismatch reports whether the selected gate's claimed leaf differs
// from the recomputed one, i.e. whether the challenge will succeed.
func (p *DisputePacket) Mismatch() bool {
	for _, idx := range p.Mismatches {
		if idx == p.GateIndex {
			return true
		}
	}
	return false
}

// PrepareDispute diffs the claimed leaves against the leaves
// recomputed from the revealed seed and assembles the challenge
// evidence: the claimed leaf of the selected gate, the IH proof over
// the claimed chain, and the layout Merkle proof of the gate
// descriptor.
func PrepareDispute(req DisputeRequest) (*DisputePacket, error) {
	gates, err := circuit.Millionaires(req.BitWidth)
	if err != nil {
		return nil, err
	}
	if len(req.Claimed) != len(gates) {
		return nil, errors.Newf(
			"claimed leaf count %d does not match gate count %d",
			len(req.Claimed), len(gates))
	}

	layout := &circuit.Layout{
		CircuitID:  req.CircuitID,
		InstanceID: req.InstanceID,
		Gates:      gates,
	}
	expected := gc.GarbleInstance(req.Seed, layout)

	var mismatches []int
	for idx := range req.Claimed {
		if req.Claimed[idx] != expected[idx] {
			mismatches = append(mismatches, idx)
		}
	}

	if len(mismatches) == 0 && req.GateIndex == nil {
		return nil, errors.New(
			"no mismatches between claimed and expected leaves")
	}

	gateIndex := 0
	if req.GateIndex != nil {
		gateIndex = *req.GateIndex
	} else {
		gateIndex = mismatches[0]
	}
	if gateIndex < 0 || gateIndex >= len(gates) {
		return nil, errors.Newf("gate index %d out of range, %d gates",
			gateIndex, len(gates))
	}

	selectedMismatch := false
	for _, idx := range mismatches {
		if idx == gateIndex {
			selectedMismatch = true
		}
	}
	if !selectedMismatch && !req.AllowFalseChallenge {
		return nil, errors.Newf(
			"gate %d matches expected leaf; refusing false challenge",
			gateIndex)
	}

	blockHashes := commit.BlockHashes(req.Claimed)
	rootGC := commit.RootFromBlockHashes(blockHashes)
	if req.ExpectedRootGC != nil && rootGC != *req.ExpectedRootGC {
		return nil, errors.Newf(
			"computed rootGC %x does not match expected %x",
			rootGC, *req.ExpectedRootGC)
	}

	ihProof, err := commit.IHProof(blockHashes, gateIndex)
	if err != nil {
		return nil, err
	}

	layoutHashes := commit.LayoutLeafHashes(gates)
	layoutProof, err := commit.MerkleProof(layoutHashes, gateIndex)
	if err != nil {
		return nil, err
	}

	return &DisputePacket{
		GateIndex:   gateIndex,
		Gate:        gates[gateIndex],
		ClaimedLeaf: req.Claimed[gateIndex],
		Expected:    expected[gateIndex],
		Mismatches:  mismatches,
		RootGC:      rootGC,
		LayoutRoot:  commit.MerkleRoot(layoutHashes),
		IHProof:     ihProof,
		LayoutProof: layoutProof,
	}, nil
}
