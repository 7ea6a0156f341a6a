//
// session.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package session implements the off-ledger workflows of both
// parties: deterministic instance building from a master seed,
// work-directory export and import for inspection and dispute,
// evaluation payload preparation, and dispute packet construction.
package session

import (
	"github.com/cockroachdb/errors"

	"github.com/markkurossi/fairmpc/circuit"
	"github.com/markkurossi/fairmpc/commit"
	"github.com/markkurossi/fairmpc/gc"
)

// Config identifies one protocol session. The defaults match the
// reference demo so independently-run parties derive identical
// byte streams.
type Config struct {
	BitWidth   int
	CircuitID  [32]byte
	MasterSeed [32]byte
}

// DefaultConfig returns the reference session configuration:
// 8-bit inputs and the demo circuit and master-seed identifiers.
func DefaultConfig() Config {
	return Config{
		BitWidth:   8,
		CircuitID:  gc.Keccak256([]byte("millionaires-yao-v1")),
		MasterSeed: gc.Keccak256([]byte("master-seed-v1")),
	}
}

// Gates builds the session's comparator layout.
func (c Config) Gates() ([]circuit.Gate, error) {
	return circuit.Millionaires(c.BitWidth)
}

// Layout builds the circuit layout of one instance.
func (c Config) Layout(instanceID uint64) (*circuit.Layout, error) {
	gates, err := c.Gates()
	if err != nil {
		return nil, err
	}
	return &circuit.Layout{
		CircuitID:  c.CircuitID,
		InstanceID: instanceID,
		Gates:      gates,
	}, nil
}

// LayoutRoot computes the layout Merkle root the adjudicator is
// constructed with.
func (c Config) LayoutRoot() ([32]byte, error) {
	gates, err := c.Gates()
	if err != nil {
		return [32]byte{}, err
	}
	return commit.MerkleRoot(commit.LayoutLeafHashes(gates)), nil
}

// OutputWire resolves the x>y output wire of the session layout.
func (c Config) OutputWire() (circuit.Wire, error) {
	gates, err := c.Gates()
	if err != nil {
		return 0, err
	}
	return circuit.MillionairesOutputWire(gates, c.BitWidth)
}

// Instance holds the Garbler's full artifacts of one cut-and-choose
// instance.
type Instance struct {
	ID          uint64
	Seed        [32]byte
	ComSeed     [32]byte
	RootGC      [32]byte
	Leaves      []gc.Leaf
	BlockHashes [][32]byte
}

// BuildInstances derives all N instances of the session from the
// master seed. The result is deterministic: re-running after a
// process restart yields byte-identical artifacts.
func BuildInstances(cfg Config) ([]Instance, error) {
	gates, err := cfg.Gates()
	if err != nil {
		return nil, err
	}

	instances := make([]Instance, commit.NumInstances)
	for i := uint64(0); i < commit.NumInstances; i++ {
		seed := gc.InstanceSeed(cfg.MasterSeed, cfg.CircuitID, i)
		layout := &circuit.Layout{
			CircuitID:  cfg.CircuitID,
			InstanceID: i,
			Gates:      gates,
		}
		leaves := gc.GarbleInstance(seed, layout)
		blockHashes := commit.BlockHashes(leaves)

		instances[i] = Instance{
			ID:          i,
			Seed:        seed,
			ComSeed:     gc.ComSeed(seed),
			RootGC:      commit.RootFromBlockHashes(blockHashes),
			Leaves:      leaves,
			BlockHashes: blockHashes,
		}
	}
	return instances, nil
}

// Commitments assembles the instance commitment records the Garbler
// publishes, including the result anchors of every instance.
func Commitments(cfg Config, instances []Instance) (
	[commit.NumInstances]commit.InstanceCommitment, error) {

	var out [commit.NumInstances]commit.InstanceCommitment
	if len(instances) != commit.NumInstances {
		return out, errors.Newf("expected %d instances, got %d",
			commit.NumInstances, len(instances))
	}

	output, err := cfg.OutputWire()
	if err != nil {
		return out, err
	}

	for i, inst := range instances {
		l0 := gc.DeriveLabel(cfg.CircuitID, inst.ID, output, 0, inst.Seed)
		l1 := gc.DeriveLabel(cfg.CircuitID, inst.ID, output, 1, inst.Seed)
		h0, h1 := commit.Anchors(l0, l1)

		out[i] = commit.InstanceCommitment{
			ComSeed: inst.ComSeed,
			RootGC:  inst.RootGC,
			H0:      h0,
			H1:      h1,
		}
	}
	return out, nil
}

// OpenedSeeds returns the opened indices and their seeds in natural
// order, excluding the evaluation index m.
func OpenedSeeds(instances []Instance, m uint64) ([]uint64, [][32]byte,
	error) {

	if len(instances) != commit.NumInstances {
		return nil, nil, errors.Newf("expected %d instances, got %d",
			commit.NumInstances, len(instances))
	}
	if m >= commit.NumInstances {
		return nil, nil, errors.Newf("m=%d out of range [0, %d)",
			m, commit.NumInstances)
	}

	indices := make([]uint64, 0, commit.NumInstances-1)
	seeds := make([][32]byte, 0, commit.NumInstances-1)
	for _, inst := range instances {
		if inst.ID == m {
			continue
		}
		indices = append(indices, inst.ID)
		seeds = append(seeds, inst.Seed)
	}
	return indices, seeds, nil
}

// FitsBitWidth checks that a party input fits the session bit width.
func FitsBitWidth(value uint64, bitWidth int, name string) error {
	if bitWidth >= 64 {
		return nil
	}
	if value >= uint64(1)<<bitWidth {
		return errors.Newf("%s=%d does not fit bit-width %d (max=%d)",
			name, value, bitWidth, (uint64(1)<<bitWidth)-1)
	}
	return nil
}
