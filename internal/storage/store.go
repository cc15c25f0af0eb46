// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/jsandh/splitbook/internal/models"
)

// Sentinel errors returned by storage backends. Drivers map their native
// constraint-violation codes onto these so callers never inspect driver
// errors directly.
var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrDuplicateMembership means the (group, user) pair already exists.
	ErrDuplicateMembership = errors.New("storage: membership already exists")

	// ErrDuplicateGroupName means the group name is taken.
	ErrDuplicateGroupName = errors.New("storage: group name already exists")

	// ErrDuplicateUser means the username or email is taken.
	ErrDuplicateUser = errors.New("storage: username or email already exists")

	// ErrUnknownUser means a referenced user id has no users row.
	ErrUnknownUser = errors.New("storage: referenced user does not exist")

	// ErrUnknownGroup means a referenced group id has no groups row.
	ErrUnknownGroup = errors.New("storage: referenced group does not exist")
)

// Tx is one atomic unit of work. Every mutating ledger operation runs
// against a Tx so that a caller can either wrap a single operation or
// compose several (e.g. create group + add first member) into one commit.
// Nothing written through a Tx is visible until Commit.
type Tx interface {
	// InsertGroup persists a new group.
	InsertGroup(ctx context.Context, group *models.Group) error

	// InsertMembership adds user to group and returns the created
	// membership record. Fails with ErrDuplicateMembership, ErrUnknownUser
	// or ErrUnknownGroup.
	InsertMembership(ctx context.Context, groupID, userID string) (*models.Membership, error)

	// MemberIDs returns the user ids of all current group members, as seen
	// by this transaction (including rows it has inserted itself).
	MemberIDs(ctx context.Context, groupID string) ([]string, error)

	// InsertLedgerPairs bulk-inserts zero-amount ledger rows. thisUsers and
	// otherUsers are parallel arrays enumerating the (this_user, other_user)
	// pairs; the whole batch fails if any row violates a constraint.
	InsertLedgerPairs(ctx context.Context, groupID string, thisUsers, otherUsers []string) error

	// InsertTransaction persists a transaction record.
	InsertTransaction(ctx context.Context, txn *models.Transaction) error

	// AddToLedgerAmount adjusts one directed balance row by delta. It
	// reports whether the target row existed; it never creates rows.
	AddToLedgerAmount(ctx context.Context, groupID, thisUser, otherUser string, delta int64) (bool, error)

	Commit() error
	Rollback() error
}

// Store is the persistence interface consumed by the ledger engine and the
// request layer. Reads outside a Tx observe committed state only.
type Store interface {
	// Begin opens a new atomic unit of work at an isolation level strong
	// enough to make read-then-write member snapshots safe against
	// concurrent joins on the same group.
	Begin(ctx context.Context) (Tx, error)

	// MemberIDs returns the user ids of all current members of a group.
	MemberIDs(ctx context.Context, groupID string) ([]string, error)

	// GetLedgerEntry returns the directed balance row (group, a, b).
	GetLedgerEntry(ctx context.Context, groupID, thisUser, otherUser string) (*models.LedgerEntry, error)

	// GetGroup returns a group by id.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GroupsByUser returns every group the user is a member of.
	GroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroupName renames a group. Fails with ErrDuplicateGroupName.
	UpdateGroupName(ctx context.Context, groupID, name string) error

	// TransactionsByGroup returns the group's transactions, newest first.
	TransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error)

	// CreateUser persists a new user. Fails with ErrDuplicateUser.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns a user by email, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns a user by id, or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUser overwrites the mutable user fields. Fails with
	// ErrDuplicateUser on a username or email collision.
	UpdateUser(ctx context.Context, user *models.User) error

	// Close releases any resources held by the store.
	Close() error
}

// RunTx opens a transaction, runs fn, and commits if fn succeeds. Any error
// from fn (or from Commit) rolls the whole unit back. This is the thin
// wrapper for top-level callers; composing callers manage the Tx directly.
func RunTx(ctx context.Context, store Store, fn func(tx Tx) error) error {
	tx, err := store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
