//
// artifact.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/fairmpc/gc"
)

// Work-directory file names, per instance i:
//
//	instance-i-seed.txt      instance seed, one hex line
//	instance-i-com-seed.txt  keccak(seed)
//	instance-i-root-gc.txt   terminal IH state
//	instance-i-leaves.txt    one 71-byte hex leaf per line
//
// plus manifest.txt listing all files. The Evaluator feeds these
// files into prepare-dispute.

func instanceFile(dir string, id uint64, kind string) string {
	return filepath.Join(dir, fmt.Sprintf("instance-%d-%s.txt", id, kind))
}

// ExportInstances writes the work directory of all instances.
func ExportInstances(dir string, instances []Instance) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	var manifest strings.Builder
	manifest.WriteString("# Garbler artifacts\n")
	manifest.WriteString("# file format: hex-encoded values\n\n")

	for _, inst := range instances {
		seedFile := instanceFile(dir, inst.ID, "seed")
		comFile := instanceFile(dir, inst.ID, "com-seed")
		rootFile := instanceFile(dir, inst.ID, "root-gc")
		leavesFile := instanceFile(dir, inst.ID, "leaves")

		if err := writeHexFile(seedFile, inst.Seed[:]); err != nil {
			return err
		}
		if err := writeHexFile(comFile, inst.ComSeed[:]); err != nil {
			return err
		}
		if err := writeHexFile(rootFile, inst.RootGC[:]); err != nil {
			return err
		}
		if err := WriteLeafFile(leavesFile, inst.Leaves); err != nil {
			return err
		}

		fmt.Fprintf(&manifest,
			"instance %d:\n  seed=%s\n  comSeed=%s\n  rootGC=%s\n  leaves=%s\n\n",
			inst.ID, seedFile, comFile, rootFile, leavesFile)
	}

	path := filepath.Join(dir, "manifest.txt")
	return errors.Wrapf(os.WriteFile(path, []byte(manifest.String()), 0600),
		"write %s", path)
}

// ReadInstanceSeed reads the seed file of one instance.
func ReadInstanceSeed(dir string, id uint64) ([32]byte, error) {
	values, err := ReadBytes32File(instanceFile(dir, id, "seed"))
	if err != nil {
		return [32]byte{}, err
	}
	return values[0], nil
}

// ReadInstanceRootGC reads the rootGC file of one instance.
func ReadInstanceRootGC(dir string, id uint64) ([32]byte, error) {
	values, err := ReadBytes32File(instanceFile(dir, id, "root-gc"))
	if err != nil {
		return [32]byte{}, err
	}
	return values[0], nil
}

// ReadInstanceLeaves reads the leaf file of one instance.
func ReadInstanceLeaves(dir string, id uint64) ([]gc.Leaf, error) {
	return ReadLeafFile(instanceFile(dir, id, "leaves"))
}

func writeHexFile(path string, value []byte) error {
	data := HexPrefixed(value) + "\n"
	return errors.Wrapf(os.WriteFile(path, []byte(data), 0600),
		"write %s", path)
}

// WriteLeafFile writes one 71-byte hex leaf per line.
func WriteLeafFile(path string, leaves []gc.Leaf) error {
	var b strings.Builder
	for _, leaf := range leaves {
		b.WriteString(HexPrefixed(leaf[:]))
		b.WriteByte('\n')
	}
	return errors.Wrapf(os.WriteFile(path, []byte(b.String()), 0600),
		"write %s", path)
}
