//
// table.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"github.com/markkurossi/tabulate"
	"github.com/markkurossi/text/superscript"
)

// newStatusTable creates the two-column session status table.
func newStatusTable() *tabulate.Tabulate {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Session").SetAlign(tabulate.ML)
	tab.Header("Value").SetAlign(tabulate.MR)
	return tab
}

// instanceTag renders an instance index as a superscript suffix.
func instanceTag(id int) string {
	return superscript.Itoa(id)
}
