//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command alice is the Garbler's CLI. It builds the cut-and-choose
// instances, publishes commitments, reveals openings and input
// labels, and exports artifacts for inspection. Ledger transitions go
// through a session snapshot file shared with the bob command.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/markkurossi/fairmpc/adjudicator"
	"github.com/markkurossi/fairmpc/commit"
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
	case "new-session":
		err = cmdNewSession(args)
	case "deposit":
		err = cmdDeposit(args)
	case "derive-anchors":
		err = cmdDeriveAnchors(args)
	case "submit-commitments":
		err = cmdSubmitCommitments(args)
	case "export-artifacts":
		err = cmdExportArtifacts(args)
	case "prepare-eval":
		err = cmdPrepareEval(args)
	case "reveal-openings":
		err = cmdRevealOpenings(args)
	case "reveal-labels":
		err = cmdRevealLabels(args)
	case "close-dispute":
		err = cmdCloseDispute(args)
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
		fmt.Fprintf(os.Stderr, "alice %s: %s\n", command, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("alice commands:")
	fmt.Println("  new-session --session PATH --alice ADDR --bob ADDR")
	fmt.Println("  deposit --session PATH")
	fmt.Println("  derive-anchors [--bit-width N] [--circuit-id HEX] [--master-seed HEX]")
	fmt.Println("  submit-commitments --session PATH [--root-gcs JSON | --export-dir PATH] [--h0 JSON --h1 JSON]")
	fmt.Println("  export-artifacts --out-dir PATH")
	fmt.Println("  prepare-eval --m IDX --x VALUE --out-dir PATH")
	fmt.Println("  reveal-openings --session PATH --m IDX")
	fmt.Println("  reveal-labels --session PATH (--labels-file PATH | --derive --m IDX --x VALUE)")
	fmt.Println("  close-dispute --session PATH")
	fmt.Println("  abort --session PATH")
	fmt.Println("  status --session PATH [-v]")
	fmt.Println()
	fmt.Println("Default command with no args: deposit")
}

// configFlags installs the session configuration flags shared by the
// artifact commands.
func configFlags(fs *flag.FlagSet) (*int, *string, *string) {
	bitWidth := fs.Int("bit-width", 8, "comparator input width in bits")
	circuitID := fs.String("circuit-id", "", "circuit ID (32-byte hex)")
	masterSeed := fs.String("master-seed", "", "master seed (32-byte hex)")
	return bitWidth, circuitID, masterSeed
}

func parseConfig(bitWidth *int, circuitID, masterSeed *string) (
	session.Config, error) {

	cfg := session.DefaultConfig()
	cfg.BitWidth = *bitWidth
	if len(*circuitID) > 0 {
		id, err := session.ParseBytes32(*circuitID)
		if err != nil {
			return cfg, err
		}
		cfg.CircuitID = id
	}
	if len(*masterSeed) > 0 {
		seed, err := session.ParseBytes32(*masterSeed)
		if err != nil {
			return cfg, err
		}
		cfg.MasterSeed = seed
	}
	return cfg, nil
}

func cmdNewSession(args []string) error {
	fs := flag.NewFlagSet("new-session", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	alice := fs.String("alice", "alice", "garbler address")
	bob := fs.String("bob", "bob", "evaluator address")
	aliceBalance := fs.Uint64("alice-balance", 3, "garbler wallet balance")
	bobBalance := fs.Uint64("bob-balance", 5, "evaluator wallet balance")
	bitWidth, circuitID, masterSeed := configFlags(fs)
	fs.Parse(args)

	if len(*sessionPath) == 0 {
		return fmt.Errorf("missing --session")
	}
	cfg, err := parseConfig(bitWidth, circuitID, masterSeed)
	if err != nil {
		return err
	}
	layoutRoot, err := cfg.LayoutRoot()
	if err != nil {
		return err
	}

	bank := adjudicator.NewBank(map[adjudicator.Addr]uint64{
		adjudicator.Addr(*alice): *aliceBalance,
		adjudicator.Addr(*bob):   *bobBalance,
	})
	s := adjudicator.New(&env.Config{}, adjudicator.Addr(*alice),
		adjudicator.Addr(*bob), cfg.CircuitID, layoutRoot,
		adjudicator.DefaultParams(), bank)
	if err := s.Save(*sessionPath); err != nil {
		return err
	}

	fmt.Printf("status=created\n")
	fmt.Printf("session=%s\n", *sessionPath)
	fmt.Printf("circuit_id=%s\n", session.Hex32(cfg.CircuitID))
	fmt.Printf("circuit_layout_root=%s\n", session.Hex32(layoutRoot))
	return nil
}

// withSession loads the snapshot, applies the function, and saves the
// snapshot back when the function succeeds.
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
		alice := s.Garbler()
		fmt.Printf("stage_before=%s\n", s.CurrentStage())
		fmt.Printf("alice_wallet_before=%d\n", s.Bank().Balance(alice))
		if err := s.Deposit(alice, 1); err != nil {
			return err
		}
		fmt.Printf("alice_wallet_after=%d\n", s.Bank().Balance(alice))
		fmt.Printf("alice_vault=%d\n", s.VaultBalance(alice))
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		return nil
	})
}

func cmdDeriveAnchors(args []string) error {
	fs := flag.NewFlagSet("derive-anchors", flag.ExitOnError)
	bitWidth, circuitID, masterSeed := configFlags(fs)
	fs.Parse(args)

	cfg, err := parseConfig(bitWidth, circuitID, masterSeed)
	if err != nil {
		return err
	}
	instances, err := session.BuildInstances(cfg)
	if err != nil {
		return err
	}
	commitments, err := session.Commitments(cfg, instances)
	if err != nil {
		return err
	}

	h0 := make([][32]byte, len(commitments))
	h1 := make([][32]byte, len(commitments))
	for i, c := range commitments {
		h0[i] = c.H0
		h1[i] = c.H1
	}

	fmt.Printf("bit_width=%d\n", cfg.BitWidth)
	fmt.Printf("circuit_id=%s\n", session.Hex32(cfg.CircuitID))
	fmt.Printf("h0_list=%s\n", session.Bytes32ListLiteral(h0))
	fmt.Printf("h1_list=%s\n", session.Bytes32ListLiteral(h1))
	return nil
}

func cmdSubmitCommitments(args []string) error {
	fs := flag.NewFlagSet("submit-commitments", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	rootGCs := fs.String("root-gcs", "", "override rootGC list (hex JSON)")
	h0List := fs.String("h0", "", "override h0 anchor list (hex JSON)")
	h1List := fs.String("h1", "", "override h1 anchor list (hex JSON)")
	exportDir := fs.String("export-dir", "", "export artifacts to directory")
	bitWidth, circuitID, masterSeed := configFlags(fs)
	fs.Parse(args)

	cfg, err := parseConfig(bitWidth, circuitID, masterSeed)
	if err != nil {
		return err
	}
	instances, err := session.BuildInstances(cfg)
	if err != nil {
		return err
	}
	commitments, err := session.Commitments(cfg, instances)
	if err != nil {
		return err
	}

	override := func(raw string, set func(i int, v [32]byte)) error {
		if len(raw) == 0 {
			return nil
		}
		values, err := session.ParseBytes32List(raw)
		if err != nil {
			return err
		}
		if len(values) != commit.NumInstances {
			return fmt.Errorf("override must contain %d values, got %d",
				commit.NumInstances, len(values))
		}
		for i, v := range values {
			set(i, v)
		}
		return nil
	}
	if err := override(*rootGCs, func(i int, v [32]byte) {
		commitments[i].RootGC = v
	}); err != nil {
		return err
	}
	if err := override(*h0List, func(i int, v [32]byte) {
		commitments[i].H0 = v
	}); err != nil {
		return err
	}
	if err := override(*h1List, func(i int, v [32]byte) {
		commitments[i].H1 = v
	}); err != nil {
		return err
	}

	if len(*exportDir) > 0 {
		if err := session.ExportInstances(*exportDir, instances); err != nil {
			return err
		}
		fmt.Printf("artifacts_exported=%s\n", *exportDir)
	}

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		if err := s.SubmitCommitments(s.Garbler(), commitments); err != nil {
			return err
		}
		fmt.Printf("circuit_id=%s\n", session.Hex32(cfg.CircuitID))
		fmt.Printf("master_seed=%s\n", session.Hex32(cfg.MasterSeed))
		fmt.Printf("bit_width=%d\n", cfg.BitWidth)
		for _, inst := range instances {
			fmt.Printf("instance=%d comSeed=%s rootGC=%s\n", inst.ID,
				session.Hex32(inst.ComSeed),
				session.Hex32(commitments[inst.ID].RootGC))
		}
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		return nil
	})
}

func cmdExportArtifacts(args []string) error {
	fs := flag.NewFlagSet("export-artifacts", flag.ExitOnError)
	outDir := fs.String("out-dir", "", "output directory")
	bitWidth, circuitID, masterSeed := configFlags(fs)
	fs.Parse(args)

	if len(*outDir) == 0 {
		return fmt.Errorf("missing --out-dir")
	}
	cfg, err := parseConfig(bitWidth, circuitID, masterSeed)
	if err != nil {
		return err
	}
	instances, err := session.BuildInstances(cfg)
	if err != nil {
		return err
	}
	if err := session.ExportInstances(*outDir, instances); err != nil {
		return err
	}

	fmt.Printf("status=exported\n")
	fmt.Printf("circuit_id=%s\n", session.Hex32(cfg.CircuitID))
	fmt.Printf("master_seed=%s\n", session.Hex32(cfg.MasterSeed))
	fmt.Printf("bit_width=%d\n", cfg.BitWidth)
	fmt.Printf("out_dir=%s\n", *outDir)
	return nil
}

func cmdPrepareEval(args []string) error {
	fs := flag.NewFlagSet("prepare-eval", flag.ExitOnError)
	m := fs.Uint64("m", 0, "evaluation instance index")
	x := fs.Uint64("x", 0, "garbler's private input")
	outDir := fs.String("out-dir", "", "output directory")
	bitWidth, circuitID, masterSeed := configFlags(fs)
	fs.Parse(args)

	if len(*outDir) == 0 {
		return fmt.Errorf("missing --out-dir")
	}
	cfg, err := parseConfig(bitWidth, circuitID, masterSeed)
	if err != nil {
		return err
	}
	instances, err := session.BuildInstances(cfg)
	if err != nil {
		return err
	}
	payload, err := session.PrepareEval(cfg, instances, *m, *x)
	if err != nil {
		return err
	}
	if err := payload.Export(*outDir); err != nil {
		return err
	}

	fmt.Printf("status=prepared_eval\n")
	fmt.Printf("eval_dir=%s\n", *outDir)
	fmt.Printf("instance_id=%d\n", *m)
	fmt.Printf("x_value=%d\n", *x)
	fmt.Printf("output_wire=%d\n", payload.Meta.OutputWire.ID())
	fmt.Printf("h0=%s\n", session.Hex32(payload.Meta.H0))
	fmt.Printf("h1=%s\n", session.Hex32(payload.Meta.H1))
	fmt.Printf("x_labels_count=%d\n", len(payload.GarblerLabels))
	fmt.Printf("y_offer_count=%d\n", len(payload.Offers))
	fmt.Printf("not_hint_count=%d\n", len(payload.NotHints))
	return nil
}

func cmdRevealOpenings(args []string) error {
	fs := flag.NewFlagSet("reveal-openings", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	m := fs.Uint64("m", 0, "evaluation instance index")
	bitWidth, circuitID, masterSeed := configFlags(fs)
	fs.Parse(args)

	cfg, err := parseConfig(bitWidth, circuitID, masterSeed)
	if err != nil {
		return err
	}
	instances, err := session.BuildInstances(cfg)
	if err != nil {
		return err
	}
	indices, seeds, err := session.OpenedSeeds(instances, *m)
	if err != nil {
		return err
	}

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		if err := s.RevealOpenings(s.Garbler(), indices, seeds); err != nil {
			return err
		}
		fmt.Printf("m=%d\n", *m)
		fmt.Printf("open_indices=%v\n", indices)
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		return nil
	})
}

func cmdRevealLabels(args []string) error {
	fs := flag.NewFlagSet("reveal-labels", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	labelsFile := fs.String("labels-file", "", "32-byte hex labels, one per line")
	m := fs.Uint64("m", 0, "evaluation instance index")
	x := fs.Uint64("x", 0, "garbler's private input")
	useInput := fs.Bool("derive", false, "derive labels from --m and --x")
	bitWidth, circuitID, masterSeed := configFlags(fs)
	fs.Parse(args)

	var labels [][32]byte
	switch {
	case len(*labelsFile) > 0:
		values, err := session.ReadBytes32File(*labelsFile)
		if err != nil {
			return err
		}
		labels = values

	case *useInput:
		cfg, err := parseConfig(bitWidth, circuitID, masterSeed)
		if err != nil {
			return err
		}
		seed := gc.InstanceSeed(cfg.MasterSeed, cfg.CircuitID, *m)
		for _, label := range gc.GarblerInputLabels(seed, cfg.CircuitID,
			*m, cfg.BitWidth, *x) {
			labels = append(labels, label.Bytes32())
		}

	default:
		return fmt.Errorf("provide --labels-file or --derive with --m --x")
	}

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		if err := s.RevealGarblerLabels(s.Garbler(), labels); err != nil {
			return err
		}
		fmt.Printf("labels_count=%d\n", len(labels))
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		return nil
	})
}

func cmdCloseDispute(args []string) error {
	fs := flag.NewFlagSet("close-dispute", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	fs.Parse(args)

	return withSession(*sessionPath, func(s *adjudicator.Session) error {
		if err := s.CloseDispute(s.Garbler()); err != nil {
			return err
		}
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
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
		case adjudicator.Choose:
			err = s.AbortPhase3(s.Garbler())
		case adjudicator.Settle:
			err = s.AbortPhase6(s.Garbler())
		default:
			err = fmt.Errorf("no garbler abort in stage %s",
				s.CurrentStage())
		}
		if err != nil {
			return err
		}
		fmt.Printf("stage_after=%s\n", s.CurrentStage())
		fmt.Printf("alice_balance=%d\n", s.Bank().Balance(s.Garbler()))
		return nil
	})
}

func cmdStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	sessionPath := fs.String("session", "", "session snapshot file")
	verbose := fs.Bool("v", false, "verbose output")
	fs.Parse(args)

	if len(*sessionPath) == 0 {
		return fmt.Errorf("missing --session")
	}
	s, err := adjudicator.Load(&env.Config{}, *sessionPath)
	if err != nil {
		return err
	}
	printStatus(s, *verbose)
	return nil
}

// printStatus renders the session state as a compact table plus
// optional per-instance rows.
func printStatus(s *adjudicator.Session, verbose bool) {
	tab := newStatusTable()
	alice := s.Garbler()
	bob := s.Evaluator()

	row := tab.Row()
	row.Column("stage")
	row.Column(s.CurrentStage().String())

	row = tab.Row()
	row.Column("vault " + string(alice))
	row.Column(fmt.Sprintf("%d", s.VaultBalance(alice)))
	row = tab.Row()
	row.Column("vault " + string(bob))
	row.Column(fmt.Sprintf("%d", s.VaultBalance(bob)))

	row = tab.Row()
	row.Column("wallet " + string(alice))
	row.Column(fmt.Sprintf("%d", s.Bank().Balance(alice)))
	row = tab.Row()
	row.Column("wallet " + string(bob))
	row.Column(fmt.Sprintf("%d", s.Bank().Balance(bob)))

	if m, ok := s.ChosenM(); ok {
		row = tab.Row()
		row.Column("m")
		row.Column(fmt.Sprintf("%d", m))
	}
	if result, ok := s.Result(); ok {
		row = tab.Row()
		row.Column("result")
		row.Column(fmt.Sprintf("%v", result))
	}
	tab.Print(os.Stdout)

	if verbose {
		for i := uint64(0); i < commit.NumInstances; i++ {
			c, ok := s.Commitment(i)
			if !ok {
				continue
			}
			fmt.Printf("instance%s: comSeed=%s rootGC=%s\n",
				instanceTag(int(i)), session.Hex32(c.ComSeed),
				session.Hex32(c.RootGC))
		}
	}
}
