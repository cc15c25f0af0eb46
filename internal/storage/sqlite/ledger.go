package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jsandh/splitbook/internal/models"
	"github.com/jsandh/splitbook/internal/storage"
)

// InsertLedgerPairs bulk-inserts zero-amount balance rows from the two
// parallel id arrays. SQLite has no unnest, so the batch is a loop of
// inserts inside the transaction; any constraint violation fails the whole
// unit of work, so no partial pair set can persist.
func (t *sqliteTx) InsertLedgerPairs(ctx context.Context, groupID string, thisUsers, otherUsers []string) error {
	if len(thisUsers) != len(otherUsers) {
		return fmt.Errorf("mismatched pair arrays: %d vs %d", len(thisUsers), len(otherUsers))
	}

	stmt, err := t.tx.PrepareContext(ctx,
		"INSERT INTO ledger_entries (group_id, this_user, other_user, amount) VALUES (?, ?, ?, 0)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for i := range thisUsers {
		if _, err := stmt.ExecContext(ctx, groupID, thisUsers[i], otherUsers[i]); err != nil {
			return fmt.Errorf("failed to insert ledger pair (%s, %s): %w", thisUsers[i], otherUsers[i], err)
		}
	}
	return nil
}

// AddToLedgerAmount adjusts one directed balance row. The boolean result
// reports whether the row existed; a missing row is the caller's integrity
// signal, not an error at this layer.
func (t *sqliteTx) AddToLedgerAmount(ctx context.Context, groupID, thisUser, otherUser string, delta int64) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE ledger_entries
		 SET amount = amount + ?
		 WHERE group_id = ? AND this_user = ? AND other_user = ?`,
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
		 WHERE group_id = ? AND this_user = ? AND other_user = ?`,
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
