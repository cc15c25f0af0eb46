package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jsandh/splitbook/internal/models"
	"github.com/jsandh/splitbook/internal/storage"
)

// InsertLedgerPairs bulk-inserts zero-amount balance rows from the two
// parallel id arrays in a single multi-row statement.
func (t *pgTx) InsertLedgerPairs(ctx context.Context, groupID string, thisUsers, otherUsers []string) error {
	if len(thisUsers) != len(otherUsers) {
		return fmt.Errorf("mismatched pair arrays: %d vs %d", len(thisUsers), len(otherUsers))
	}
	if len(thisUsers) == 0 {
		return nil
	}

	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (group_id, this_user, other_user, amount)
		 SELECT $1, this_user, other_user, 0
		 FROM unnest($2::text[], $3::text[]) AS pairs(this_user, other_user)`,
		groupID, thisUsers, otherUsers,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger pairs: %w", err)
	}
	return nil
}

// AddToLedgerAmount adjusts one directed balance row and reports whether
// the target row existed.
func (t *pgTx) AddToLedgerAmount(ctx context.Context, groupID, thisUser, otherUser string, delta int64) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE ledger_entries
		 SET amount = amount + $1
		 WHERE group_id = $2 AND this_user = $3 AND other_user = $4`,
		delta, groupID, thisUser, otherUser,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update ledger entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check ledger update result: %w", err)
	}
	return n == 1, nil
}

// GetLedgerEntry retrieves the directed balance row (group, thisUser, otherUser).
func (s *Store) GetLedgerEntry(ctx context.Context, groupID, thisUser, otherUser string) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{
		GroupID:   groupID,
		ThisUser:  thisUser,
		OtherUser: otherUser,
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT amount FROM ledger_entries
		 WHERE group_id = $1 AND this_user = $2 AND other_user = $3`,
		groupID, thisUser, otherUser,
	).Scan(&entry.Amount)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return entry, nil
}
