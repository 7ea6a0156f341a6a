//
// adjudicator.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package adjudicator

import (
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/markkurossi/fairmpc/commit"
	"github.com/markkurossi/fairmpc/env"
	"github.com/markkurossi/fairmpc/gc"
	"github.com/markkurossi/fairmpc/logger"
)

// Params configures the session economics and the per-stage
// deadlines. A stage's timeout is installed when the stage is
// entered; a stage can never extend its own deadline.
type Params struct {
	DepositGarbler   uint64
	DepositEvaluator uint64
	StageTimeout     map[Stage]time.Duration
}

// DefaultTimeout is the reference per-stage deadline.
const DefaultTimeout = time.Hour

// DefaultParams returns the reference configuration: one unit of
// collateral per party and one hour per stage.
func DefaultParams() Params {
	return Params{
		DepositGarbler:   1,
		DepositEvaluator: 1,
	}
}

func (p Params) timeout(s Stage) time.Duration {
	if d, ok := p.StageTimeout[s]; ok {
		return d
	}
	return DefaultTimeout
}

// Session is one fair-exchange session between the Garbler (alice)
// and the Evaluator (bob). All mutation goes through the transition
// methods; the zero rest of the struct is write-once per stage.
type Session struct {
	alice             Addr
	bob               Addr
	circuitID         [32]byte
	circuitLayoutRoot [32]byte
	params            Params

	bank *Bank
	now  func() time.Time
	log  zerolog.Logger

	stage     Stage
	deadlines map[Stage]time.Time

	vault map[Addr]uint64
	paid  uint64

	commitments [commit.NumInstances]commit.InstanceCommitment
	committed   bool

	m      uint64
	chosen bool
	sOpen  []uint64

	revealedSeeds [commit.NumInstances][32]byte
	revealed      *bitset.BitSet

	garblerLabels [][32]byte

	result    bool
	resultSet bool
}

// New creates a session. The deposit window opens immediately: the
// Deposits deadline is installed from the construction time.
func New(cfg *env.Config, alice, bob Addr, circuitID,
	circuitLayoutRoot [32]byte, params Params, bank *Bank) *Session {

	s := &Session{
		alice:             alice,
		bob:               bob,
		circuitID:         circuitID,
		circuitLayoutRoot: circuitLayoutRoot,
		params:            params,
		bank:              bank,
		now:               cfg.GetNow(),
		log:               logger.Logger().With().Str("pkg", "adjudicator").Logger(),
		stage:             Deposits,
		deadlines:         make(map[Stage]time.Time),
		vault:             make(map[Addr]uint64),
		revealed:          bitset.New(commit.NumInstances),
	}
	s.deadlines[Deposits] = s.now().Add(params.timeout(Deposits))
	return s
}

// advance promotes the session to the next stage and installs its
// deadline. Stage promotion and deadline installation always pair.
func (s *Session) advance(next Stage) {
	s.log.Info().Stringer("from", s.stage).Stringer("to", next).
		Msg("stage transition")
	s.stage = next
	if next != Closed {
		s.deadlines[next] = s.now().Add(s.params.timeout(next))
	}
}

// checkProgress guards a progress transition: correct stage, before
// the stage deadline.
func (s *Session) checkProgress(stage Stage) error {
	if s.stage != stage {
		return errors.Wrapf(ErrStage, "in %s, need %s", s.stage, stage)
	}
	if s.now().After(s.deadlines[stage]) {
		return errors.Wrapf(ErrDeadline, "%s deadline passed", stage)
	}
	return nil
}

// checkAbort guards an abort transition: correct stage, after the
// stage deadline.
func (s *Session) checkAbort(stage Stage) error {
	if s.stage != stage {
		return errors.Wrapf(ErrStage, "in %s, need %s", s.stage, stage)
	}
	if !s.now().After(s.deadlines[stage]) {
		return errors.Wrapf(ErrDeadline, "%s deadline not reached", stage)
	}
	return nil
}

func (s *Session) depositFor(caller Addr) (uint64, error) {
	switch caller {
	case s.alice:
		return s.params.DepositGarbler, nil
	case s.bob:
		return s.params.DepositEvaluator, nil
	default:
		return 0, errors.Wrapf(ErrAuthorization, "unknown party %s", caller)
	}
}

func (s *Session) other(caller Addr) Addr {
	if caller == s.alice {
		return s.bob
	}
	return s.alice
}

// Deposit locks the caller's collateral. On the second successful
// deposit the session advances to Commitments.
func (s *Session) Deposit(caller Addr, amount uint64) error {
	if err := s.checkProgress(Deposits); err != nil {
		return err
	}
	required, err := s.depositFor(caller)
	if err != nil {
		return err
	}
	if amount != required {
		return errors.Wrapf(ErrEconomic, "deposit %d, required %d",
			amount, required)
	}
	if s.vault[caller] != 0 {
		return errors.Wrap(ErrEconomic, "double deposit")
	}
	if err := s.bank.debit(caller, amount); err != nil {
		return err
	}
	s.vault[caller] = amount
	s.log.Info().Str("party", string(caller)).Uint64("amount", amount).
		Msg("deposit")

	if s.vault[s.alice] != 0 && s.vault[s.bob] != 0 {
		s.advance(Commitments)
	}
	return nil
}

// Refund returns the caller's own deposit during the Deposits stage.
// Before the deadline it is allowed only while the counterparty has
// not deposited; after the deadline either party may reclaim their
// own deposit.
func (s *Session) Refund(caller Addr) error {
	if s.stage != Deposits {
		return errors.Wrapf(ErrStage, "in %s, need %s", s.stage, Deposits)
	}
	if _, err := s.depositFor(caller); err != nil {
		return err
	}
	if s.vault[caller] == 0 {
		return errors.Wrap(ErrEconomic, "nothing to refund")
	}
	if !s.now().After(s.deadlines[Deposits]) && s.vault[s.other(caller)] != 0 {
		return errors.Wrap(ErrDeadline,
			"counterparty deposited, refund only after deadline")
	}
	amount := s.vault[caller]
	s.vault[caller] = 0
	s.paid += amount
	s.bank.credit(caller, amount)
	s.log.Info().Str("party", string(caller)).Uint64("amount", amount).
		Msg("refund")
	return nil
}

// SubmitCommitments records the Garbler's 10 instance commitments
// atomically and advances to Choose.
func (s *Session) SubmitCommitments(caller Addr,
	commitments [commit.NumInstances]commit.InstanceCommitment) error {

	if err := s.checkProgress(Commitments); err != nil {
		return err
	}
	if caller != s.alice {
		return errors.Wrap(ErrAuthorization, "only garbler commits")
	}
	if s.committed {
		return errors.Wrap(ErrStage, "commitments already submitted")
	}
	s.commitments = commitments
	s.committed = true
	s.advance(Choose)
	return nil
}

// AbortPhase2 lets the Evaluator claim the whole vault when the
// Garbler fails to deliver the commitments in time.
func (s *Session) AbortPhase2(caller Addr) error {
	if err := s.checkAbort(Commitments); err != nil {
		return err
	}
	if caller != s.bob {
		return errors.Wrap(ErrAuthorization, "only evaluator aborts here")
	}
	return s.payoutAll(s.bob, "abort:commitments")
}

// Choose records the Evaluator's evaluation index m and computes the
// opened set (every other index, natural order).
func (s *Session) Choose(caller Addr, m uint64) error {
	if err := s.checkProgress(Choose); err != nil {
		return err
	}
	if caller != s.bob {
		return errors.Wrap(ErrAuthorization, "only evaluator chooses")
	}
	if m >= commit.NumInstances {
		return errors.Wrapf(ErrCommitment, "m=%d out of range [0, %d)",
			m, commit.NumInstances)
	}
	s.m = m
	s.chosen = true
	s.sOpen = nil
	for i := uint64(0); i < commit.NumInstances; i++ {
		if i != m {
			s.sOpen = append(s.sOpen, i)
		}
	}
	s.log.Info().Uint64("m", m).Msg("choose")
	s.advance(Open)
	return nil
}

// AbortPhase3 lets the Garbler claim the vault when the Evaluator
// never chooses.
func (s *Session) AbortPhase3(caller Addr) error {
	if err := s.checkAbort(Choose); err != nil {
		return err
	}
	if caller != s.alice {
		return errors.Wrap(ErrAuthorization, "only garbler aborts here")
	}
	return s.payoutAll(s.alice, "abort:choose")
}

// RevealOpenings records the N-1 seeds of the opened instances. Every
// index must differ from m and every seed must hash to its committed
// comSeed.
func (s *Session) RevealOpenings(caller Addr, indices []uint64,
	seeds [][32]byte) error {

	if err := s.checkProgress(Open); err != nil {
		return err
	}
	if caller != s.alice {
		return errors.Wrap(ErrAuthorization, "only garbler opens")
	}
	if len(indices) != commit.NumInstances-1 ||
		len(seeds) != commit.NumInstances-1 {
		return errors.Wrapf(ErrCommitment,
			"reveal set must have %d entries, got %d/%d",
			commit.NumInstances-1, len(indices), len(seeds))
	}

	seen := bitset.New(commit.NumInstances)
	for j, idx := range indices {
		if idx >= commit.NumInstances {
			return errors.Wrapf(ErrCommitment, "index %d out of range", idx)
		}
		if idx == s.m {
			return errors.Wrapf(ErrCommitment,
				"reveal set includes evaluation index %d", idx)
		}
		if seen.Test(uint(idx)) {
			return errors.Wrapf(ErrCommitment, "duplicate index %d", idx)
		}
		seen.Set(uint(idx))
		if gc.ComSeed(seeds[j]) != s.commitments[idx].ComSeed {
			return errors.Wrapf(ErrCommitment,
				"seed for instance %d does not match comSeed", idx)
		}
	}

	for j, idx := range indices {
		s.revealedSeeds[idx] = seeds[j]
		s.revealed.Set(uint(idx))
	}
	s.log.Info().Int("count", len(indices)).Msg("openings revealed")
	s.advance(Dispute)
	return nil
}

// AbortPhase4 lets the Evaluator claim the vault when the Garbler
// never opens.
func (s *Session) AbortPhase4(caller Addr) error {
	if err := s.checkAbort(Open); err != nil {
		return err
	}
	if caller != s.bob {
		return errors.Wrap(ErrAuthorization, "only evaluator aborts here")
	}
	return s.payoutAll(s.bob, "abort:open")
}

// CloseDispute advances from Dispute to Labels. The Evaluator may
// close at any time ("I am satisfied"); the Garbler only after the
// dispute deadline expires.
func (s *Session) CloseDispute(caller Addr) error {
	if s.stage != Dispute {
		return errors.Wrapf(ErrStage, "in %s, need %s", s.stage, Dispute)
	}
	switch caller {
	case s.bob:
	case s.alice:
		if !s.now().After(s.deadlines[Dispute]) {
			return errors.Wrap(ErrDeadline,
				"garbler closes dispute only after deadline")
		}
	default:
		return errors.Wrapf(ErrAuthorization, "unknown party %s", caller)
	}
	s.advance(Labels)
	return nil
}

// RevealGarblerLabels records the Garbler's input-wire labels for the
// evaluation instance and advances to Settle.
func (s *Session) RevealGarblerLabels(caller Addr, labels [][32]byte) error {
	if err := s.checkProgress(Labels); err != nil {
		return err
	}
	if caller != s.alice {
		return errors.Wrap(ErrAuthorization, "only garbler reveals labels")
	}
	if len(labels) == 0 {
		return errors.Wrap(ErrCommitment, "empty label set")
	}
	if s.garblerLabels != nil {
		return errors.Wrap(ErrStage, "labels already revealed")
	}
	s.garblerLabels = append([][32]byte(nil), labels...)
	s.advance(Settle)
	return nil
}

// AbortPhase5 lets the Evaluator claim the vault when the Garbler
// never reveals her input labels.
func (s *Session) AbortPhase5(caller Addr) error {
	if err := s.checkAbort(Labels); err != nil {
		return err
	}
	if caller != s.bob {
		return errors.Wrap(ErrAuthorization, "only evaluator aborts here")
	}
	return s.payoutAll(s.bob, "abort:labels")
}

// Settle decides the outcome from the Evaluator's output label. A
// label matching neither anchor is rejected without slashing: the
// Evaluator may retry or let the deadline expire. On a match both
// parties get their own collateral back and the session closes.
func (s *Session) Settle(caller Addr, outputLabel [32]byte) error {
	if err := s.checkProgress(Settle); err != nil {
		return err
	}
	if caller != s.bob {
		return errors.Wrap(ErrAuthorization, "only evaluator settles")
	}

	h := gc.Keccak256(outputLabel[:])
	var result bool
	switch h {
	case s.commitments[s.m].H0:
		result = true
	case s.commitments[s.m].H1:
		result = false
	default:
		return errors.Wrap(ErrOutput, "label matches neither anchor")
	}

	s.result = result
	s.resultSet = true
	s.log.Info().Bool("result", result).Msg("settled")

	for _, party := range []Addr{s.alice, s.bob} {
		amount := s.vault[party]
		s.vault[party] = 0
		s.paid += amount
		s.bank.credit(party, amount)
	}
	s.advance(Closed)
	return nil
}

// AbortPhase6 lets the Garbler claim the vault when the Evaluator
// never settles.
func (s *Session) AbortPhase6(caller Addr) error {
	if err := s.checkAbort(Settle); err != nil {
		return err
	}
	if caller != s.alice {
		return errors.Wrap(ErrAuthorization, "only garbler aborts here")
	}
	return s.payoutAll(s.alice, "abort:settle")
}

// payoutAll zeroes the vault and credits the whole joint collateral
// to the winner, then closes the session. Vault entries are zeroed
// before the credit.
func (s *Session) payoutAll(winner Addr, reason string) error {
	var total uint64
	for _, party := range []Addr{s.alice, s.bob} {
		total += s.vault[party]
		s.vault[party] = 0
	}
	s.paid += total
	s.bank.credit(winner, total)
	s.log.Info().Str("winner", string(winner)).Uint64("amount", total).
		Str("reason", reason).Msg("payout")
	s.advance(Closed)
	return nil
}

// Read accessors.

// Garbler returns alice's address.
func (s *Session) Garbler() Addr { return s.alice }

// Evaluator returns bob's address.
func (s *Session) Evaluator() Addr { return s.bob }

// CircuitID returns the session circuit ID.
func (s *Session) CircuitID() [32]byte { return s.circuitID }

// CircuitLayoutRoot returns the layout Merkle root fixed at session
// construction.
func (s *Session) CircuitLayoutRoot() [32]byte { return s.circuitLayoutRoot }

// CurrentStage returns the current stage.
func (s *Session) CurrentStage() Stage { return s.stage }

// Deadline returns the deadline installed for the stage, and whether
// the stage has been entered.
func (s *Session) Deadline(stage Stage) (time.Time, bool) {
	t, ok := s.deadlines[stage]
	return t, ok
}

// VaultBalance returns the address' locked collateral.
func (s *Session) VaultBalance(addr Addr) uint64 { return s.vault[addr] }

// VaultTotal returns the sum of all vault entries.
func (s *Session) VaultTotal() uint64 {
	var sum uint64
	for _, amount := range s.vault {
		sum += amount
	}
	return sum
}

// Paid returns the total amount disbursed from the vault.
func (s *Session) Paid() uint64 { return s.paid }

// Commitment returns the instance commitment of index i.
func (s *Session) Commitment(i uint64) (commit.InstanceCommitment, bool) {
	if !s.committed || i >= commit.NumInstances {
		return commit.InstanceCommitment{}, false
	}
	return s.commitments[i], true
}

// ChosenM returns the evaluation index, and whether Choose has
// happened.
func (s *Session) ChosenM() (uint64, bool) { return s.m, s.chosen }

// OpenIndices returns the opened index set in natural order.
func (s *Session) OpenIndices() []uint64 {
	return append([]uint64(nil), s.sOpen...)
}

// RevealedSeed returns the revealed seed of an opened instance.
func (s *Session) RevealedSeed(i uint64) ([32]byte, bool) {
	if i >= commit.NumInstances || !s.revealed.Test(uint(i)) {
		return [32]byte{}, false
	}
	return s.revealedSeeds[i], true
}

// GarblerLabels returns the labels revealed in the Labels stage.
func (s *Session) GarblerLabels() [][32]byte {
	return append([][32]byte(nil), s.garblerLabels...)
}

// Result returns the session outcome, and whether settlement
// happened.
func (s *Session) Result() (bool, bool) { return s.result, s.resultSet }
