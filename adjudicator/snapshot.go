//
// snapshot.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package adjudicator

import (
	"os"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"

	"github.com/markkurossi/fairmpc/commit"
	"github.com/markkurossi/fairmpc/env"
	"github.com/markkurossi/fairmpc/logger"
)

// snapshot is the CBOR image of a session. The two party CLIs drive
// one session through a shared snapshot file, standing in for the
// ledger's totally-ordered transaction log.
type snapshot struct {
	Alice             Addr
	Bob               Addr
	CircuitID         [32]byte
	CircuitLayoutRoot [32]byte

	DepositGarbler   uint64
	DepositEvaluator uint64
	StageTimeout     map[Stage]time.Duration

	Stage     Stage
	Deadlines map[Stage]time.Time

	Vault map[Addr]uint64
	Paid  uint64
	Bank  map[Addr]uint64

	Commitments [commit.NumInstances]commit.InstanceCommitment
	Committed   bool

	M      uint64
	Chosen bool
	SOpen  []uint64

	RevealedSeeds [commit.NumInstances][32]byte
	Revealed      []byte

	GarblerLabels [][32]byte

	Result    bool
	ResultSet bool
}

// Save writes the session and its bank to the snapshot file.
func (s *Session) Save(path string) error {
	revealed, err := s.revealed.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "marshal revealed set")
	}
	img := snapshot{
		Alice:             s.alice,
		Bob:               s.bob,
		CircuitID:         s.circuitID,
		CircuitLayoutRoot: s.circuitLayoutRoot,
		DepositGarbler:    s.params.DepositGarbler,
		DepositEvaluator:  s.params.DepositEvaluator,
		StageTimeout:      s.params.StageTimeout,
		Stage:             s.stage,
		Deadlines:         s.deadlines,
		Vault:             s.vault,
		Paid:              s.paid,
		Bank:              s.bank.balances,
		Commitments:       s.commitments,
		Committed:         s.committed,
		M:                 s.m,
		Chosen:            s.chosen,
		SOpen:             s.sOpen,
		RevealedSeeds:     s.revealedSeeds,
		Revealed:          revealed,
		GarblerLabels:     s.garblerLabels,
		Result:            s.result,
		ResultSet:         s.resultSet,
	}
	data, err := cbor.Marshal(img)
	if err != nil {
		return errors.Wrap(err, "marshal session snapshot")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0600), "save %s", path)
}

// Load restores a session and its bank from a snapshot file.
func Load(cfg *env.Config, path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	var img snapshot
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	revealed := bitset.New(commit.NumInstances)
	if len(img.Revealed) > 0 {
		if err := revealed.UnmarshalBinary(img.Revealed); err != nil {
			return nil, errors.Wrap(err, "decode revealed set")
		}
	}
	if img.Vault == nil {
		img.Vault = make(map[Addr]uint64)
	}

	s := &Session{
		alice:             img.Alice,
		bob:               img.Bob,
		circuitID:         img.CircuitID,
		circuitLayoutRoot: img.CircuitLayoutRoot,
		params: Params{
			DepositGarbler:   img.DepositGarbler,
			DepositEvaluator: img.DepositEvaluator,
			StageTimeout:     img.StageTimeout,
		},
		bank:          NewBank(img.Bank),
		now:           cfg.GetNow(),
		log:           logger.Logger().With().Str("pkg", "adjudicator").Logger(),
		stage:         img.Stage,
		deadlines:     img.Deadlines,
		vault:         img.Vault,
		paid:          img.Paid,
		commitments:   img.Commitments,
		committed:     img.Committed,
		m:             img.M,
		chosen:        img.Chosen,
		sOpen:         img.SOpen,
		revealedSeeds: img.RevealedSeeds,
		revealed:      revealed,
		garblerLabels: img.GarblerLabels,
		result:        img.Result,
		resultSet:     img.ResultSet,
	}
	if s.deadlines == nil {
		s.deadlines = make(map[Stage]time.Time)
	}
	return s, nil
}

// Bank exposes the session's bank for balance queries.
func (s *Session) Bank() *Bank {
	return s.bank
}
