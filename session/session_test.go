//
// session_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/fairmpc/commit"
	"github.com/markkurossi/fairmpc/gc"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BitWidth = 4
	return cfg
}

func TestBuildInstances(t *testing.T) {
	instances, err := BuildInstances(testConfig())
	require.NoError(t, err)
	require.Len(t, instances, commit.NumInstances)

	var zero [32]byte
	seeds := make(map[[32]byte]bool)
	for _, inst := range instances {
		require.NotEqual(t, zero, inst.RootGC)
		require.NotEqual(t, zero, inst.ComSeed)
		require.Equal(t, gc.ComSeed(inst.Seed), inst.ComSeed)
		require.False(t, seeds[inst.Seed], "instance seeds must differ")
		seeds[inst.Seed] = true
	}
}

func TestBuildInstancesDeterministic(t *testing.T) {
	a, err := BuildInstances(testConfig())
	require.NoError(t, err)
	b, err := BuildInstances(testConfig())
	require.NoError(t, err)

	for i := range a {
		require.Equal(t, a[i].Seed, b[i].Seed)
		require.Equal(t, a[i].RootGC, b[i].RootGC)
		require.Equal(t, a[i].Leaves, b[i].Leaves)
	}
}

func TestOpenedSeedsExcludeM(t *testing.T) {
	instances, err := BuildInstances(testConfig())
	require.NoError(t, err)

	indices, seeds, err := OpenedSeeds(instances, 7)
	require.NoError(t, err)
	require.Len(t, indices, commit.NumInstances-1)
	require.Len(t, seeds, commit.NumInstances-1)
	require.NotContains(t, indices, uint64(7))

	_, _, err = OpenedSeeds(instances, commit.NumInstances)
	require.Error(t, err)
}

func TestCommitmentAnchorsMatchOutputLabels(t *testing.T) {
	cfg := testConfig()
	instances, err := BuildInstances(cfg)
	require.NoError(t, err)
	commitments, err := Commitments(cfg, instances)
	require.NoError(t, err)

	output, err := cfg.OutputWire()
	require.NoError(t, err)

	for i, inst := range instances {
		l0 := gc.DeriveLabel(cfg.CircuitID, inst.ID, output, 0, inst.Seed)
		l1 := gc.DeriveLabel(cfg.CircuitID, inst.ID, output, 1, inst.Seed)

		require.Equal(t, commit.AnchorHash(l1), commitments[i].H0)
		require.Equal(t, commit.AnchorHash(l0), commitments[i].H1)
	}
}

func TestExportAndReadInstances(t *testing.T) {
	dir := t.TempDir()
	instances, err := BuildInstances(testConfig())
	require.NoError(t, err)
	require.NoError(t, ExportInstances(dir, instances))

	for _, inst := range instances {
		seed, err := ReadInstanceSeed(dir, inst.ID)
		require.NoError(t, err)
		require.Equal(t, inst.Seed, seed)

		root, err := ReadInstanceRootGC(dir, inst.ID)
		require.NoError(t, err)
		require.Equal(t, inst.RootGC, root)

		leaves, err := ReadInstanceLeaves(dir, inst.ID)
		require.NoError(t, err)
		require.Equal(t, inst.Leaves, leaves)
	}

	_, err = os.Stat(filepath.Join(dir, "manifest.txt"))
	require.NoError(t, err)
}

func TestLeafFileToleratesDecorations(t *testing.T) {
	dir := t.TempDir()
	leaf := gc.Leaf{}
	for i := range leaf {
		leaf[i] = 0xab
	}

	path := filepath.Join(dir, "leaves.txt")
	content := "# claimed leaves\n\n  \"" + HexPrefixed(leaf[:]) +
		"\", # trailing comment\n[]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	leaves, err := ReadLeafFile(path)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	require.Equal(t, leaf, leaves[0])
}

func TestEvalPayloadRoundtrip(t *testing.T) {
	cfg := testConfig()
	instances, err := BuildInstances(cfg)
	require.NoError(t, err)

	payload, err := PrepareEval(cfg, instances, 2, 5)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, payload.Export(dir))

	loaded, err := LoadEvalPayload(dir)
	require.NoError(t, err)
	require.Equal(t, payload.Meta, loaded.Meta)
	require.Equal(t, payload.Leaves, loaded.Leaves)
	require.Equal(t, payload.GarblerLabels, loaded.GarblerLabels)
	require.Equal(t, payload.Offers, loaded.Offers)
	require.Equal(t, payload.NotHints, loaded.NotHints)

	// The loaded payload evaluates to the correct comparison.
	output, decoded, err := loaded.Evaluate(3)
	require.NoError(t, err)
	require.Equal(t, 1, decoded)
	require.Equal(t, payload.Meta.H0, gc.Keccak256(output[:]))

	output, decoded, err = loaded.Evaluate(9)
	require.NoError(t, err)
	require.Equal(t, 0, decoded)
	require.Equal(t, payload.Meta.H1, gc.Keccak256(output[:]))
}

func TestPrepareEvalBounds(t *testing.T) {
	cfg := testConfig()
	instances, err := BuildInstances(cfg)
	require.NoError(t, err)

	_, err = PrepareEval(cfg, instances, commit.NumInstances, 1)
	require.Error(t, err)

	// x does not fit the bit width.
	_, err = PrepareEval(cfg, instances, 0, 16)
	require.Error(t, err)
}

func TestPrepareDisputePicksFirstMismatch(t *testing.T) {
	cfg := testConfig()
	instances, err := BuildInstances(cfg)
	require.NoError(t, err)

	claimed := append([]gc.Leaf(nil), instances[0].Leaves...)
	claimed[0][0] ^= 1

	packet, err := PrepareDispute(DisputeRequest{
		BitWidth:   cfg.BitWidth,
		CircuitID:  cfg.CircuitID,
		InstanceID: 0,
		Seed:       instances[0].Seed,
		Claimed:    claimed,
	})
	require.NoError(t, err)
	require.Equal(t, 0, packet.GateIndex)
	require.True(t, packet.Mismatch())
	require.NotEqual(t, packet.Expected, packet.ClaimedLeaf)

	// The packet's proofs verify against the claimed chain and the
	// layout root.
	require.True(t, commit.VerifyIHProof(
		commit.BlockHash(uint64(packet.GateIndex), packet.ClaimedLeaf),
		packet.IHProof, packet.RootGC))
	layoutLeaf := commit.LayoutLeafHash(uint64(packet.GateIndex),
		packet.Gate)
	require.True(t, commit.VerifyMerkleProof(layoutLeaf,
		packet.LayoutProof, packet.LayoutRoot))
}

func TestPrepareDisputeRefusesFalseChallenge(t *testing.T) {
	cfg := testConfig()
	instances, err := BuildInstances(cfg)
	require.NoError(t, err)

	claimed := append([]gc.Leaf(nil), instances[0].Leaves...)
	claimed[0][0] ^= 1

	gateIndex := 1
	_, err = PrepareDispute(DisputeRequest{
		BitWidth:   cfg.BitWidth,
		CircuitID:  cfg.CircuitID,
		InstanceID: 0,
		Seed:       instances[0].Seed,
		Claimed:    claimed,
		GateIndex:  &gateIndex,
	})
	require.ErrorContains(t, err, "refusing false challenge")
}

func TestPrepareDisputeChecksExpectedRoot(t *testing.T) {
	cfg := testConfig()
	instances, err := BuildInstances(cfg)
	require.NoError(t, err)

	claimed := append([]gc.Leaf(nil), instances[0].Leaves...)
	claimed[0][0] ^= 1

	var wrong [32]byte
	wrong[0] = 0xff
	_, err = PrepareDispute(DisputeRequest{
		BitWidth:       cfg.BitWidth,
		CircuitID:      cfg.CircuitID,
		InstanceID:     0,
		Seed:           instances[0].Seed,
		Claimed:        claimed,
		ExpectedRootGC: &wrong,
	})
	require.ErrorContains(t, err, "does not match expected")
}

func TestPrepareDisputeNoMismatch(t *testing.T) {
	cfg := testConfig()
	instances, err := BuildInstances(cfg)
	require.NoError(t, err)

	_, err = PrepareDispute(DisputeRequest{
		BitWidth:   cfg.BitWidth,
		CircuitID:  cfg.CircuitID,
		InstanceID: 0,
		Seed:       instances[0].Seed,
		Claimed:    instances[0].Leaves,
	})
	require.ErrorContains(t, err, "no mismatches")
}

func TestHonestCommitmentsSurviveAnyChallenge(t *testing.T) {
	cfg := testConfig()
	instances, err := BuildInstances(cfg)
	require.NoError(t, err)

	gates, err := cfg.Gates()
	require.NoError(t, err)
	layoutHashes := commit.LayoutLeafHashes(gates)
	layoutRoot := commit.MerkleRoot(layoutHashes)

	for _, inst := range instances[:3] {
		for _, gateIndex := range []int{0, 1, len(gates) / 2,
			len(gates) - 1} {

			// The evidence any challenger could assemble.
			ihProof, err := commit.IHProof(inst.BlockHashes, gateIndex)
			require.NoError(t, err)
			layoutProof, err := commit.MerkleProof(layoutHashes, gateIndex)
			require.NoError(t, err)

			require.True(t, commit.VerifyIHProof(
				commit.BlockHash(uint64(gateIndex), inst.Leaves[gateIndex]),
				ihProof, inst.RootGC))
			require.True(t, commit.VerifyMerkleProof(
				commit.LayoutLeafHash(uint64(gateIndex), gates[gateIndex]),
				layoutProof, layoutRoot))

			// The verifier's recomputation agrees with the committed
			// leaf, so the challenge adjudicates against the
			// challenger.
			expected := gc.RecomputeGateLeaf(inst.Seed, cfg.CircuitID,
				inst.ID, uint64(gateIndex), gates[gateIndex])
			require.Equal(t, inst.Leaves[gateIndex], expected)
		}
	}
}

func TestParseBytes32List(t *testing.T) {
	raw := "[0x1111111111111111111111111111111111111111111111111111111111111111," +
		"0x2222222222222222222222222222222222222222222222222222222222222222]"
	values, err := ParseBytes32List(raw)
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.Equal(t,
		"0x1111111111111111111111111111111111111111111111111111111111111111",
		Hex32(values[0]))

	values, err = ParseBytes32List("[]")
	require.NoError(t, err)
	require.Empty(t, values)
}
