package postgres

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
func (t *pgTx) InsertGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_at) VALUES ($1, $2, $3)",
		group.ID, group.Name, group.CreatedAt,
	)
	if err != nil {
		err = onConstraint(err, "groups_name_key", storage.ErrDuplicateGroupName)
		if err == storage.ErrDuplicateGroupName {
			return err
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// InsertMembership adds user to group. Postgres names the violated
// constraint, so referential failures map directly.
func (t *pgTx) InsertMembership(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	membership := &models.Membership{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		UserID:    userID,
		CreatedAt: time.Now().Unix(),
	}
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO memberships (id, group_id, user_id, created_at) VALUES ($1, $2, $3, $4)",
		membership.ID, membership.GroupID, membership.UserID, membership.CreatedAt,
	)
	if err != nil {
		err = onConstraint(err, "memberships_group_id_user_id_key", storage.ErrDuplicateMembership)
		err = onConstraint(err, "memberships_user_id_fkey", storage.ErrUnknownUser)
		err = onConstraint(err, "memberships_group_id_fkey", storage.ErrUnknownGroup)
		switch err {
		case storage.ErrDuplicateMembership, storage.ErrUnknownUser, storage.ErrUnknownGroup:
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}
	return membership, nil
}

func (t *pgTx) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	return scanMemberIDs(t.tx.QueryContext(ctx, memberIDsQuery, groupID))
}

// MemberIDs returns the user ids of all current members of a group.
func (s *Store) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	return scanMemberIDs(s.db.QueryContext(ctx, memberIDsQuery, groupID))
}

const memberIDsQuery = "SELECT user_id FROM memberships WHERE group_id = $1 ORDER BY created_at, user_id"

func scanMemberIDs(rows *sql.Rows, err error) ([]string, error) {
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
		"SELECT id, name, created_at FROM groups WHERE id = $1",
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
		 WHERE m.user_id = $1
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
		"UPDATE groups SET name = $1 WHERE id = $2",
		name, groupID,
	)
	if err != nil {
		if onConstraint(err, "groups_name_key", storage.ErrDuplicateGroupName) == storage.ErrDuplicateGroupName {
			return storage.ErrDuplicateGroupName
		}
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
