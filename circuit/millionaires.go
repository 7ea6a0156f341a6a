//
// millionaires.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/cockroachdb/errors"
)

// Millionaires builds the deterministic x>y comparator for
// bitWidth-bit inputs. Input wire convention:
//
//	Alice bits: 0..bitWidth-1 (LSB first)
//	Bob bits:   bitWidth..2*bitWidth-1
//
// The comparison runs from MSB to LSB with two accumulators: gt ("x
// is already greater at a higher bit") and eq ("all higher bits are
// equal"). OR is expanded as (a XOR b) XOR (a AND b) since the gate
// set is AND, XOR, NOT.
func Millionaires(bitWidth int) ([]Gate, error) {
	if bitWidth <= 0 {
		return nil, errors.New("bitWidth must be > 0")
	}
	if bitWidth > int(^Wire(0))/4 {
		return nil, errors.Newf("bitWidth %d too large", bitWidth)
	}

	b := &builder{
		// Input wires reserved first: A bits then B bits.
		nextWire: Wire(bitWidth * 2),
	}

	var gtAcc, eqAcc Wire
	var haveAcc bool

	for bit := bitWidth - 1; bit >= 0; bit-- {
		a := Wire(bit)
		y := Wire(bit + bitWidth)

		// eqBit = !(a XOR b)
		xorAB := b.gate(XOR, a, y)
		eqBit := b.not(xorAB)

		// gtBit = a AND (!b)
		notB := b.not(y)
		gtBit := b.gate(AND, a, notB)

		if !haveAcc {
			gtAcc = gtBit
			eqAcc = eqBit
			haveAcc = true
			continue
		}

		// gtAcc' = gtAcc OR (eqAcc AND gtBit)
		eqAndGt := b.gate(AND, eqAcc, gtBit)
		gtAcc = b.or(gtAcc, eqAndGt)
		// eqAcc' = eqAcc AND eqBit
		eqAcc = b.gate(AND, eqAcc, eqBit)
	}

	return b.gates, nil
}

// MillionairesOutputWire returns the x>y output wire of a layout
// built by Millionaires. For bitWidth 1 the comparison is the last
// gate; for wider inputs the final gate is the eq accumulator and the
// gt result is the penultimate gate output.
func MillionairesOutputWire(gates []Gate, bitWidth int) (Wire, error) {
	if len(gates) == 0 {
		return 0, errors.New("layout has no gates")
	}
	if bitWidth == 1 {
		return gates[len(gates)-1].WireC, nil
	}
	if len(gates) < 2 {
		return 0, errors.New("layout too short for bitWidth >= 2")
	}
	return gates[len(gates)-2].WireC, nil
}

type builder struct {
	gates    []Gate
	nextWire Wire
}

func (b *builder) gate(t GateType, a, y Wire) Wire {
	out := b.nextWire
	b.gates = append(b.gates, Gate{
		Type:  t,
		WireA: a,
		WireB: y,
		WireC: out,
	})
	b.nextWire++
	return out
}

func (b *builder) not(a Wire) Wire {
	return b.gate(NOT, a, 0)
}

func (b *builder) or(a, y Wire) Wire {
	xorAB := b.gate(XOR, a, y)
	andAB := b.gate(AND, a, y)
	return b.gate(XOR, xorAB, andAB)
}
