// Package ledger implements the pairwise balance consistency engine.
//
// Every group keeps a dense all-pairs balance matrix: one directed
// LedgerEntry row per ordered pair of distinct members. Joining a group
// creates the new member's rows (all zero) in the same atomic unit as the
// membership itself; posting a transaction adjusts the two mirrored rows of
// one pair in the same atomic unit as the transaction record. The dense
// layout is deliberate: it buys O(1) balance lookup between any two members
// and a full per-pair audit trail at the cost of write fan-out on join.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsandh/splitbook/internal/metrics"
	"github.com/jsandh/splitbook/internal/models"
	"github.com/jsandh/splitbook/internal/storage"
)

const (
	opCreateGroup     = "create_group"
	opAddMember       = "add_member"
	opPostTransaction = "post_transaction"
)

// Service exposes the ledger operations over a storage backend. It holds no
// state of its own; correctness under concurrency is delegated to the
// storage transaction isolation requested by Store.Begin.
type Service struct {
	store  storage.Store
	logger *slog.Logger
}

// New creates a Service over the given store.
func New(store storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// CreateGroup creates a group and adds the owner as its first member, all
// in one unit of work.
func (s *Service) CreateGroup(ctx context.Context, name, ownerID string) (*models.Group, error) {
	group := &models.Group{Name: name}
	err := s.run(ctx, opCreateGroup, func(tx storage.Tx) error {
		if err := tx.InsertGroup(ctx, group); err != nil {
			return mapStorageErr(err)
		}
		_, err := s.addMember(ctx, tx, group.ID, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// AddMember adds a user to a group and initializes the pairwise balance
// rows between the new member and every existing member. The membership
// insert and the ledger rows commit together or not at all.
func (s *Service) AddMember(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	var membership *models.Membership
	err := s.run(ctx, opAddMember, func(tx storage.Tx) error {
		m, err := s.addMember(ctx, tx, groupID, userID)
		membership = m
		return err
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// addMember runs the join inside the caller's unit of work. The member
// snapshot is read after the insert within the same transaction and the new
// member is excluded by explicit id filtering, never by read ordering.
func (s *Service) addMember(ctx context.Context, tx storage.Tx, groupID, userID string) (*models.Membership, error) {
	membership, err := tx.InsertMembership(ctx, groupID, userID)
	if err != nil {
		return nil, mapStorageErr(err)
	}

	members, err := tx.MemberIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	others := make([]string, 0, len(members))
	for _, id := range members {
		if id != userID {
			others = append(others, id)
		}
	}

	// First member of a group has no peer to balance against.
	if len(others) == 0 {
		return membership, nil
	}

	left, right := pairSides(userID, others)
	if err := tx.InsertLedgerPairs(ctx, groupID, left, right); err != nil {
		return nil, err
	}
	return membership, nil
}

// PostTransaction records a transaction between two current group members
// and applies the signed delta to their mirrored balance rows. The
// transaction row keeps the declared amount and kind; only the ledger rows
// receive the normalized delta (negated for debit).
func (s *Service) PostTransaction(ctx context.Context, groupID, payerID, payeeID string, amount int64, kind models.TxKind, metadata map[string]string) (*models.Transaction, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid transaction kind %q", kind)
	}
	if payerID == payeeID {
		return nil, ErrSelfTransaction
	}

	// Membership checks happen before any write is attempted.
	members, err := s.store.MemberIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !contains(members, payerID) || !contains(members, payeeID) {
		return nil, ErrNotAMember
	}

	signed := amount
	if kind == models.TxDebit {
		signed = -amount
	}

	txn := &models.Transaction{
		GroupID:   groupID,
		PayerID:   payerID,
		PayeeID:   payeeID,
		Amount:    amount,
		Kind:      kind,
		AckStatus: models.AckPending,
		Metadata:  metadata,
	}

	err = s.run(ctx, opPostTransaction, func(tx storage.Tx) error {
		if err := tx.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		if err := s.applyDelta(ctx, tx, groupID, payerID, payeeID, signed); err != nil {
			return err
		}
		return s.applyDelta(ctx, tx, groupID, payeeID, payerID, -signed)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *Service) applyDelta(ctx context.Context, tx storage.Tx, groupID, thisUser, otherUser string, delta int64) error {
	ok, err := tx.AddToLedgerAmount(ctx, groupID, thisUser, otherUser, delta)
	if err != nil {
		return err
	}
	if !ok {
		metrics.IntegrityTrips.Inc()
		s.logger.Error("integrity guard tripped: ledger row missing",
			"group_id", groupID,
			"this_user", thisUser,
			"other_user", otherUser,
		)
		return ErrLedgerRowMissing
	}
	return nil
}

// Members returns the user ids of all current members of a group. The
// result is also the membership test: a user is in the group iff their id
// is in the returned set.
func (s *Service) Members(ctx context.Context, groupID string) ([]string, error) {
	return s.store.MemberIDs(ctx, groupID)
}

// Balance returns how much a is owed by b within the group. By the mirror
// invariant, Balance(g, a, b) == -Balance(g, b, a).
func (s *Service) Balance(ctx context.Context, groupID, a, b string) (int64, error) {
	if a == b {
		return 0, ErrSelfBalance
	}
	entry, err := s.store.GetLedgerEntry(ctx, groupID, a, b)
	if err == nil {
		return entry.Amount, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	// Missing row: either the two are not co-members (caller error) or the
	// pair was never initialized (integrity violation).
	members, memberErr := s.store.MemberIDs(ctx, groupID)
	if memberErr != nil {
		return 0, memberErr
	}
	if !contains(members, a) || !contains(members, b) {
		return 0, ErrNotAMember
	}
	metrics.IntegrityTrips.Inc()
	s.logger.Error("integrity guard tripped: ledger row missing",
		"group_id", groupID,
		"this_user", a,
		"other_user", b,
	)
	return 0, ErrLedgerRowMissing
}

// run wraps one logical operation in a storage transaction, emitting
// attempt/commit/rollback events only at the boundaries.
func (s *Service) run(ctx context.Context, op string, fn func(tx storage.Tx) error) error {
	metrics.OpsAttempted.WithLabelValues(op).Inc()
	s.logger.Debug("ledger operation started", "op", op)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		metrics.OpsRolledBack.WithLabelValues(op, "begin").Inc()
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		reason := rollbackReason(err)
		metrics.OpsRolledBack.WithLabelValues(op, reason).Inc()
		s.logger.Warn("ledger operation rolled back", "op", op, "reason", reason, "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		metrics.OpsRolledBack.WithLabelValues(op, "commit").Inc()
		s.logger.Warn("ledger operation failed to commit", "op", op, "error", err)
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}

	metrics.OpsCommitted.WithLabelValues(op).Inc()
	s.logger.Debug("ledger operation committed", "op", op)
	return nil
}

// mapStorageErr translates storage sentinel errors into the engine's
// taxonomy. Anything unmapped is a storage failure and propagates as-is so
// callers can treat it as retryable infrastructure trouble.
func mapStorageErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrDuplicateMembership):
		return ErrDuplicateMembership
	case errors.Is(err, storage.ErrDuplicateGroupName):
		return ErrDuplicateGroupName
	case errors.Is(err, storage.ErrUnknownUser):
		return ErrUnknownUser
	case errors.Is(err, storage.ErrUnknownGroup):
		return ErrUnknownGroup
	default:
		return err
	}
}

func rollbackReason(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateMembership):
		return "duplicate_membership"
	case errors.Is(err, ErrDuplicateGroupName):
		return "duplicate_group_name"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrUnknownGroup):
		return "unknown_group"
	case errors.Is(err, ErrLedgerRowMissing):
		return "ledger_row_missing"
	default:
		return "storage"
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
