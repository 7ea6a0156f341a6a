//
// commitment.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package commit

import (
	"github.com/markkurossi/fairmpc/gc"
)

// NumInstances is the cut-and-choose width: the Garbler publishes 10
// instance commitments, the Evaluator audits 9 and evaluates 1.
const NumInstances = 10

// InstanceCommitment is the record the Garbler publishes on-ledger
// for one instance. BlobHashGC, RootXG, and RootOT are reserved: the
// dispute core stores them opaquely and never verifies them.
type InstanceCommitment struct {
	ComSeed    [32]byte
	RootGC     [32]byte
	BlobHashGC [32]byte
	RootXG     [32]byte
	RootOT     [32]byte
	H0         [32]byte
	H1         [32]byte
}

// AnchorHash binds an output label to its settlement anchor:
// keccak over the 32-byte widened label.
func AnchorHash(label gc.Label) [32]byte {
	wide := label.Bytes32()
	return gc.Keccak256(wide[:])
}

// Anchors computes the result anchors of an instance from its output
// labels. H0 anchors the semantic-1 label (result true, x > y); H1
// anchors the semantic-0 label.
func Anchors(lOut0, lOut1 gc.Label) (h0, h1 [32]byte) {
	return AnchorHash(lOut1), AnchorHash(lOut0)
}
