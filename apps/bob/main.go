//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command bob is the Evaluator's CLI. It chooses the evaluation
// instance, evaluates the garbled payload, settles the outcome, and
// prepares and submits single-gate fraud proofs. Ledger transitions
// go through a session snapshot file shared with the alice command.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/markkurossi/fairmpc/adjudicator"
	"github.com/markkurossi/fairmpc/circuit"
	"github.com/markkurossi/fairmpc/env"
	"github.com/markkurossi/fairmpc/gc"
	"github.com/markkurossi/fairmpc/session"
)

func main() {
	args := os.Args[1:]
	command := "deposit"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	var err error
	switch command {
	case "deposit":
		err = cmdDeposit(args)
	case "choose":
		err = cmdChoose(args)
	case "evaluate-m":
		err = cmdEvaluateM(args)
	case "settle":
		err = cmdSettle(args)
	case "prepare-dispute":
		err = cmdPrepareDispute(args)
	case "dispute":
		err = cmdDispute(args)
	case "close-dispute":
		err = cmdCloseDispute(args)
	case "refund":
		err = cmdRefund(args)
	case "abort":
		err = cmdAbort(args)
	case "status":
		err = cmdStatus(args)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "bob %s: %s\n", command, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("bob commands:")
	fmt.Println("  deposit --session PATH")
	fmt.Println("  choose --session PATH --m IDX")
	fmt.Println("  evaluate-m --eval-dir PATH --y VALUE")
	fmt.Println("  settle --session PATH (--label HEX | --eval-dir PATH --y VALUE)")
	fmt.Println("  prepare-dispute --instance-id ID --seed HEX --claimed-leaves-file PATH")
	fmt.Println("      [--bit-width N] [--circuit-id HEX] [--gate-index K]")
	fmt.Println("      [--expected-root-gc HEX] [--allow-false-challenge]")
	fmt.Println("  dispute --session PATH --instance-id ID --seed HEX --gate-index K")
	fmt.Println("      --gate-type T --wire-a A --wire-b B --wire-c C")
	fmt.Println("      --leaf-bytes HEX --ih-proof LIST --layout-proof LIST")
	fmt.Println("  close-dispute --session PATH")
	fmt.Println("  refund --session PATH")
	fmt.Println("  abort --session PATH")
	fmt.Println("  status --session PATH")
	fmt.Println()
	fmt.Println("Default command with no args: deposit")
}

func withSession(path string,
	f func(s *adjudicator.Session) error) error {

	if len(path) == 0 {
		return fmt.Errorf("missing --session")
	}
	s, err := adjudicator.Load(&env.Config{}, path)
	if err != nil {
		return err
	}
	if err := f(s); err != nil {
		return err
	}
	return s.Save(path)
}

func cmdDeposit(args []string) error {
	fs := flag.NewFlagSet("deposit", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	fs.Parse(args)

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		bob := s.Evaluator()
		fmt.Printf("stage_before=%s\n", s.CurrentStage())
		fmt.Printf("bob_wallet_before=%d\n", s.Bank().Balance(bob))
		if err := s.Deposit(bob, 1); err != nil {
			return err
		}
		fmt.Printf("bob_wallet_after=%d\n", s.Bank().Balance(bob))
		fmt.Printf("bob_vault=%d\n", s.VaultBalance(bob))
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		return nil
	})
}

func cmdChoose(args []string) error {
	fs := flag.NewFlagSet("choose", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	m := fs.Uint64("m", 0, "evaluation instance index")
	fs.Parse(args)

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		if err := s.Choose(s.Evaluator(), *m); err != nil {
			return err
		}
		fmt.Printf("m=%d\n", *m)
		fmt.Printf("open_indices=%v\n", s.OpenIndices())
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		return nil
	})
}

func cmdEvaluateM(args []string) error {
	fs := flag.NewFlagSet("evaluate-m", flag.ExitOnError)
	evalDir := fs.String("eval-dir", "", "evaluation payload directory")
	y := fs.Uint64("y", 0, "evaluator's private input")
	fs.Parse(args)

	if len(*evalDir) == 0 {
		return fmt.Errorf("missing --eval-dir")
	}
	payload, err := session.LoadEvalPayload(*evalDir)
	if err != nil {
		return err
	}
	label, decoded, err := payload.Evaluate(*y)
	if err != nil {
		return err
	}

	h := gc.Keccak256(label[:])
	fmt.Printf("status=evaluated\n")
	fmt.Printf("instance_id=%d\n", payload.Meta.InstanceID)
	fmt.Printf("bit_width=%d\n", payload.Meta.BitWidth)
	fmt.Printf("y_value=%d\n", *y)
	fmt.Printf("output_wire=%d\n", payload.Meta.OutputWire.ID())
	fmt.Printf("output_label=%s\n", session.HexPrefixed(label[:]))
	fmt.Printf("h0=%s\n", session.Hex32(payload.Meta.H0))
	fmt.Printf("h1=%s\n", session.Hex32(payload.Meta.H1))
	fmt.Printf("matches_h0=%v\n", h == payload.Meta.H0)
	fmt.Printf("matches_h1=%v\n", h == payload.Meta.H1)
	if decoded >= 0 {
		fmt.Printf("decoded_bit=%d\n", decoded)
	} else {
		fmt.Printf("decoded_bit=unknown\n")
	}
	return nil
}

func cmdSettle(args []string) error {
	fs := flag.NewFlagSet("settle", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	labelHex := fs.String("label", "", "output label (32-byte hex)")
	evalDir := fs.String("eval-dir", "", "evaluate payload and settle")
	y := fs.Uint64("y", 0, "evaluator's private input")
	fs.Parse(args)

	var label [32]byte
	var err error
	switch {
	case len(*labelHex) > 0:
		label, err = session.ParseBytes32(*labelHex)
		if err != nil {
			return err
		}
	case len(*evalDir) > 0:
		payload, err := session.LoadEvalPayload(*evalDir)
		if err != nil {
			return err
		}
		label, _, err = payload.Evaluate(*y)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("provide --label or --eval-dir with --y")
	}

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		if err := s.Settle(s.Evaluator(), label); err != nil {
			return err
		}
		result, _ := s.Result()
		fmt.Printf("result=%v\n", result)
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		fmt.Printf("alice_balance=%d\n", s.Bank().Balance(s.Garbler()))
		fmt.Printf("bob_balance=%d\n", s.Bank().Balance(s.Evaluator()))
		return nil
	})
}

func cmdPrepareDispute(args []string) error {
	fs := flag.NewFlagSet("prepare-dispute", flag.ExitOnError)
	bitWidth := fs.Int("bit-width", 8, "comparator input width in bits")
	circuitID := fs.String("circuit-id", "", "circuit ID (32-byte hex)")
	instanceID := fs.Uint64("instance-id", 0, "challenged instance")
	seedHex := fs.String("seed", "", "revealed instance seed (32-byte hex)")
	leavesFile := fs.String("claimed-leaves-file", "",
		"claimed leaves, one 71-byte hex per line")
	gateIndex := fs.Int("gate-index", -1, "challenged gate index")
	allowFalse := fs.Bool("allow-false-challenge", false,
		"permit challenging a matching leaf")
	expectedRootGC := fs.String("expected-root-gc", "",
		"committed rootGC to check the claimed chain against")
	fs.Parse(args)

	if len(*seedHex) == 0 || len(*leavesFile) == 0 {
		return fmt.Errorf("missing --seed or --claimed-leaves-file")
	}
	seed, err := session.ParseBytes32(*seedHex)
	if err != nil {
		return err
	}
	claimed, err := session.ReadLeafFile(*leavesFile)
	if err != nil {
		return err
	}

	req := session.DisputeRequest{
		BitWidth:            *bitWidth,
		CircuitID:           session.DefaultConfig().CircuitID,
		InstanceID:          *instanceID,
		Seed:                seed,
		Claimed:             claimed,
		AllowFalseChallenge: *allowFalse,
	}
	if len(*circuitID) > 0 {
		req.CircuitID, err = session.ParseBytes32(*circuitID)
		if err != nil {
			return err
		}
	}
	if *gateIndex >= 0 {
		idx := *gateIndex
		req.GateIndex = &idx
	}
	if len(*expectedRootGC) > 0 {
		root, err := session.ParseBytes32(*expectedRootGC)
		if err != nil {
			return err
		}
		req.ExpectedRootGC = &root
	}

	packet, err := session.PrepareDispute(req)
	if err != nil {
		return err
	}

	fmt.Printf("status=prepared\n")
	fmt.Printf("bit_width=%d\n", *bitWidth)
	fmt.Printf("circuit_id=%s\n", session.Hex32(req.CircuitID))
	fmt.Printf("instance_id=%d\n", *instanceID)
	fmt.Printf("selected_gate_index=%d\n", packet.GateIndex)
	fmt.Printf("selected_gate_mismatch=%v\n", packet.Mismatch())
	fmt.Printf("mismatch_count=%d\n", len(packet.Mismatches))
	fmt.Printf("mismatch_indices=%v\n", packet.Mismatches)
	fmt.Printf("root_gc=%s\n", session.Hex32(packet.RootGC))
	fmt.Printf("layout_root=%s\n", session.Hex32(packet.LayoutRoot))
	fmt.Printf("seed=%s\n", session.Hex32(seed))
	fmt.Printf("gate_type=%d\n", uint8(packet.Gate.Type))
	fmt.Printf("wire_a=%d\n", packet.Gate.WireA.ID())
	fmt.Printf("wire_b=%d\n", packet.Gate.WireB.ID())
	fmt.Printf("wire_c=%d\n", packet.Gate.WireC.ID())
	fmt.Printf("leaf_bytes=%s\n", session.HexPrefixed(packet.ClaimedLeaf[:]))
	fmt.Printf("expected_leaf=%s\n", session.HexPrefixed(packet.Expected[:]))
	fmt.Printf("ih_proof=%s\n", session.Bytes32ListLiteral(packet.IHProof))
	fmt.Printf("layout_proof=%s\n",
		session.Bytes32ListLiteral(packet.LayoutProof))
	return nil
}

func cmdDispute(args []string) error {
	fs := flag.NewFlagSet("dispute", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	instanceID := fs.Uint64("instance-id", 0, "challenged instance")
	seedHex := fs.String("seed", "", "revealed instance seed (32-byte hex)")
	gateIndex := fs.Uint64("gate-index", 0, "challenged gate index")
	gateType := fs.Uint("gate-type", 0, "gate type (0=AND 1=XOR 2=NOT)")
	wireA := fs.Uint("wire-a", 0, "input wire A")
	wireB := fs.Uint("wire-b", 0, "input wire B")
	wireC := fs.Uint("wire-c", 0, "output wire C")
	leafBytes := fs.String("leaf-bytes", "", "claimed leaf (71-byte hex)")
	ihProof := fs.String("ih-proof", "", "IH proof (hex list)")
	layoutProof := fs.String("layout-proof", "", "layout proof (hex list)")
	fs.Parse(args)

	if *gateType > 2 {
		return fmt.Errorf("gate-type must be 0, 1, or 2; got %d", *gateType)
	}
	leaf, err := session.ParseLeaf(*leafBytes)
	if err != nil {
		return err
	}
	ih, err := session.ParseBytes32List(*ihProof)
	if err != nil {
		return err
	}
	layout, err := session.ParseBytes32List(*layoutProof)
	if err != nil {
		return err
	}

	g := circuit.Gate{
		Type:  circuit.GateType(*gateType),
		WireA: circuit.Wire(*wireA),
		WireB: circuit.Wire(*wireB),
		WireC: circuit.Wire(*wireC),
	}

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		// User-facing seed check: the argument seed must match the
		// on-ledger commitment before the challenge is worth
		// submitting.
		if len(*seedHex) > 0 {
			seed, err := session.ParseBytes32(*seedHex)
			if err != nil {
				return err
			}
			revealed, ok := s.RevealedSeed(*instanceID)
			if !ok || revealed != seed {
				return fmt.Errorf(
					"seed does not match revealed seed of instance %d",
					*instanceID)
			}
		}

		if err := s.ChallengeGateLeaf(s.Evaluator(), *instanceID,
			*gateIndex, g, leaf[:], ih, layout); err != nil {
			return err
		}
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		fmt.Printf("alice_balance=%d\n", s.Bank().Balance(s.Garbler()))
		fmt.Printf("bob_balance=%d\n", s.Bank().Balance(s.Evaluator()))
		return nil
	})
}

func cmdCloseDispute(args []string) error {
	fs := flag.NewFlagSet("close-dispute", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	fs.Parse(args)

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		if err := s.CloseDispute(s.Evaluator()); err != nil {
			return err
		}
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		return nil
	})
}

func cmdRefund(args []string) error {
	fs := flag.NewFlagSet("refund", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	fs.Parse(args)

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		if err := s.Refund(s.Evaluator()); err != nil {
			return err
		}
		fmt.Printf("bob_balance=%d\n", s.Bank().Balance(s.Evaluator()))
		return nil
	})
}

func cmdAbort(args []string) error {
	fs := flag.NewFlagSet("abort", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	fs.Parse(args)

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		var err error
		switch s.CurrentStage() {
		case adjudicator.Commitments:
			err = s.AbortPhase2(s.Evaluator())
		case adjudicator.Open:
			err = s.AbortPhase4(s.Evaluator())
		case adjudicator.Labels:
			err = s.AbortPhase5(s.Evaluator())
		default:
			err = fmt.Errorf("no evaluator abort in stage %s",
				s.CurrentStage())
		}
		if err != nil {
			return err
		}
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		fmt.Printf("bob_balance=%d\n", s.Bank().Balance(s.Evaluator()))
		return nil
	})
}

func cmdStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	fs.Parse(args)

	if len(*sessionPath) == 0 {
		return fmt.Errorf("missing --session")
	}
	s, err := adjudicator.Load(&env.Config{}, *sessionPath)
	if err != nil {
		return err
	}

	fmt.Printf("stage=%s\n", s.CurrentStage())
	if m, ok := s.ChosenM(); ok {
		fmt.Printf("m=%d\n", m)
	}
	if result, ok := s.Result(); ok {
		fmt.Printf("result=%v\n", result)
	}
	fmt.Printf("vault_alice=%d\n", s.VaultBalance(s.Garbler()))
	fmt.Printf("vault_bob=%d\n", s.VaultBalance(s.Evaluator()))
	fmt.Printf("wallet_alice=%d\n", s.Bank().Balance(s.Garbler()))
	fmt.Printf("wallet_bob=%d\n", s.Bank().Balance(s.Evaluator()))
	return nil
}
