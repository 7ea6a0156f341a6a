//
// dispute.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package adjudicator

import (
	"github.com/cockroachdb/errors"

	"github.com/markkurossi/fairmpc/circuit"
	"github.com/markkurossi/fairmpc/commit"
	"github.com/markkurossi/fairmpc/gc"
)

// ChallengeGateLeaf adjudicates a single-gate fraud proof. The
// Evaluator pinpoints one gate of an opened instance with the leaf
// bytes the Garbler committed to, an incremental-hash proof binding
// the leaf to rootGC, and a layout Merkle proof binding the gate
// descriptor to the session's circuitLayoutRoot.
//
// Proof failures reject the challenge without slashing. Once the
// evidence binds, the verifier recomputes the leaf from the revealed
// seed: a mismatch proves the Garbler cheated (slash to Evaluator), a
// match proves the challenge false (slash to Garbler). Either way the
// session closes.
func (s *Session) ChallengeGateLeaf(caller Addr, instanceID,
	gateIndex uint64, g circuit.Gate, leafBytes []byte,
	ihProof, layoutProof [][32]byte) error {

	if err := s.checkProgress(Dispute); err != nil {
		return err
	}
	if caller != s.bob {
		return errors.Wrap(ErrAuthorization, "only evaluator challenges")
	}

	seed, ok := s.RevealedSeed(instanceID)
	if !ok {
		return errors.Wrapf(ErrCommitment,
			"instance %d is not opened", instanceID)
	}

	layoutLeaf := commit.LayoutLeafHash(gateIndex, g)
	if !commit.VerifyMerkleProof(layoutLeaf, layoutProof,
		s.circuitLayoutRoot) {
		return errors.Wrapf(ErrProof,
			"layout proof for gate %d does not bind", gateIndex)
	}

	leaf, err := gc.LeafFromBytes(leafBytes)
	if err != nil {
		return errors.Wrap(ErrProof, err.Error())
	}

	blockHash := commit.BlockHash(gateIndex, leaf)
	if !commit.VerifyIHProof(blockHash, ihProof,
		s.commitments[instanceID].RootGC) {
		return errors.Wrapf(ErrProof,
			"IH proof for gate %d does not reach rootGC", gateIndex)
	}

	expected := gc.RecomputeGateLeaf(seed, s.circuitID, instanceID,
		gateIndex, g)

	if gc.Keccak256(expected[:]) == gc.Keccak256(leaf[:]) {
		// Committed leaf is the honestly derived one: the challenge
		// is false.
		s.log.Info().Uint64("instance", instanceID).
			Uint64("gate", gateIndex).Msg("false challenge, slash evaluator")
		return s.payoutAll(s.alice, "slash:false-challenge")
	}

	s.log.Info().Uint64("instance", instanceID).
		Uint64("gate", gateIndex).Msg("fraud proven, slash garbler")
	return s.payoutAll(s.bob, "slash:fraud")
}
