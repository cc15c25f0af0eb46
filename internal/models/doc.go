// Package models defines the core domain entities for Splitbook.
//
// The central structure is the pairwise ledger: for every group, every
// ordered pair of distinct members has exactly one LedgerEntry row, and the
// two rows of a pair always carry negated amounts. Memberships and ledger
// rows are created together; transactions only ever adjust existing rows.
//
// Monetary amounts are int64 values in the smallest currency unit. Entity
// IDs are opaque UUID strings generated app-side.
package models
