//
// errors.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package adjudicator

import (
	"github.com/cockroachdb/errors"
)

// Error kinds of rejected transitions. A rejected transition reverts
// completely: no state change, no balance movement, no slash. In
// particular a malformed challenge fails with ErrProof and never
// punishes the challenger.
var (
	// ErrStage rejects a transition that is illegal in the current
	// stage.
	ErrStage = errors.New("transition illegal in current stage")

	// ErrAuthorization rejects a caller that is not the party
	// authorized for the transition.
	ErrAuthorization = errors.New("caller not authorized")

	// ErrDeadline rejects a progress transition after the stage
	// deadline, or an abort before it.
	ErrDeadline = errors.New("deadline violation")

	// ErrEconomic rejects a wrong deposit amount or a double
	// deposit.
	ErrEconomic = errors.New("economic violation")

	// ErrCommitment rejects a seed reveal that does not match its
	// commitment, or a reveal set of wrong shape.
	ErrCommitment = errors.New("commitment violation")

	// ErrProof rejects a malformed layout or incremental-hash proof,
	// or a leaf of wrong length.
	ErrProof = errors.New("proof verification failed")

	// ErrOutput rejects a settlement label matching neither anchor.
	ErrOutput = errors.New("output label matches no anchor")
)
