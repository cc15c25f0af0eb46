package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jsandh/splitbook/internal/models"
)

// InsertTransaction persists a transaction record inside the transaction.
func (t *pgTx) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	if txn.Metadata == nil {
		txn.Metadata = map[string]string{}
	}

	metadata, err := json.Marshal(txn.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, group_id, payer_id, payee_id, amount, kind, ack_status, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		txn.ID, txn.GroupID, txn.PayerID, txn.PayeeID,
		txn.Amount, string(txn.Kind), string(txn.AckStatus), string(metadata), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// TransactionsByGroup retrieves all transactions for a group, newest first.
func (s *Store) TransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, payee_id, amount, kind, ack_status, metadata, created_at
		 FROM transactions WHERE group_id = $1 ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn := &models.Transaction{}
		var kind, ack string
		var metadata []byte
		if err := rows.Scan(&txn.ID, &txn.GroupID, &txn.PayerID, &txn.PayeeID,
			&txn.Amount, &kind, &ack, &metadata, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Kind = models.TxKind(kind)
		txn.AckStatus = models.AckStatus(ack)
		if err := json.Unmarshal(metadata, &txn.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}
