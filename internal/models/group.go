package models

// Group represents a set of users who split expenses with each other.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name, unique across all groups.
	Name string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Membership ties one user to one group. A (group, user) pair exists at
// most once and is never mutated after creation.
type Membership struct {
	// ID is the unique identifier for the membership (UUID format).
	ID string

	// GroupID is the group the user belongs to.
	GroupID string

	// UserID is the member.
	UserID string

	// CreatedAt is the Unix timestamp when the user joined.
	CreatedAt int64
}
