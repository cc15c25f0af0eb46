package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jsandh/splitbook/internal/models"
	"github.com/jsandh/splitbook/internal/storage"
)

// InsertGroup persists a new group inside the transaction.
func (t *sqliteTx) InsertGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
		group.ID, group.Name, group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateGroupName
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// InsertMembership adds user to group. The schema has no way to tell which
// foreign key tripped, so on an FK failure the still-open transaction probes
// the two referenced tables to classify the error.
func (t *sqliteTx) InsertMembership(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	membership := &models.Membership{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		UserID:    userID,
		CreatedAt: time.Now().Unix(),
	}
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO memberships (id, group_id, user_id, created_at) VALUES (?, ?, ?, ?)",
		membership.ID, membership.GroupID, membership.UserID, membership.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, storage.ErrDuplicateMembership
	}
	if isForeignKeyViolation(err) {
		return nil, t.classifyMembershipFK(ctx, groupID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}
	return membership, nil
}

func (t *sqliteTx) classifyMembershipFK(ctx context.Context, groupID, userID string) error {
	var n int
	if err := t.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", userID).Scan(&n); err != nil {
		return fmt.Errorf("failed to classify constraint violation: %w", err)
	}
	if n == 0 {
		return storage.ErrUnknownUser
	}
	return storage.ErrUnknownGroup
}

func (t *sqliteTx) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	return memberIDs(ctx, t.tx, groupID)
}

// MemberIDs returns the user ids of all current members of a group.
func (s *Store) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	return memberIDs(ctx, s.db, groupID)
}

func memberIDs(ctx context.Context, q querier, groupID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT user_id FROM memberships WHERE group_id = ? ORDER BY created_at, user_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return ids, nil
}

// GetGroup retrieves a group by ID.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// GroupsByUser retrieves every group the user belongs to.
func (s *Store) GroupsByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.created_at
		 FROM groups g
		 INNER JOIN memberships m ON g.id = m.group_id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups by user: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// UpdateGroupName renames a group.
func (s *Store) UpdateGroupName(ctx context.Context, groupID, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE groups SET name = ? WHERE id = ?",
		name, groupID,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateGroupName
	}
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
