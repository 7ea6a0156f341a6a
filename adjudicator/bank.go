//
// bank.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package adjudicator

import (
	"github.com/cockroachdb/errors"
)

// Addr identifies a party on the ledger.
type Addr string

// Bank tracks the wallet balances the deposits are drawn from and
// the payouts are credited to. It stands in for the ledger's native
// value transfer.
type Bank struct {
	balances map[Addr]uint64
}

// NewBank creates a bank with the argument starting balances.
func NewBank(balances map[Addr]uint64) *Bank {
	b := &Bank{
		balances: make(map[Addr]uint64),
	}
	for addr, amount := range balances {
		b.balances[addr] = amount
	}
	return b
}

// Balance returns the wallet balance of the address.
func (b *Bank) Balance(addr Addr) uint64 {
	return b.balances[addr]
}

// debit removes amount from the address' wallet.
func (b *Bank) debit(addr Addr, amount uint64) error {
	if b.balances[addr] < amount {
		return errors.Wrapf(ErrEconomic, "insufficient balance for %s", addr)
	}
	b.balances[addr] -= amount
	return nil
}

// credit adds amount to the address' wallet.
func (b *Bank) credit(addr Addr, amount uint64) {
	b.balances[addr] += amount
}
