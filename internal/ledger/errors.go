package ledger

import "errors"

var (
	// ErrUnknownUser means a referenced user does not exist.
	ErrUnknownUser = errors.New("user does not exist")

	// ErrUnknownGroup means a referenced group does not exist.
	ErrUnknownGroup = errors.New("group does not exist")

	// ErrDuplicateMembership means the user is already in the group.
	ErrDuplicateMembership = errors.New("user is already a member of the group")

	// ErrDuplicateGroupName means the group name is taken.
	ErrDuplicateGroupName = errors.New("group name taken")

	// ErrNotAMember means a transaction names a user who is not a current
	// member of the group. No write happens when this is returned.
	ErrNotAMember = errors.New("user is not a member of the group")

	// ErrSelfTransaction means payer and payee are the same user.
	ErrSelfTransaction = errors.New("payer and payee must be different users")

	// ErrSelfBalance means a balance was requested between a user and
	// themself. No self row exists by construction, so this is caller
	// input, never an integrity violation.
	ErrSelfBalance = errors.New("balance requires two different users")

	// ErrLedgerRowMissing means a balance row that membership guarantees
	// should exist was not found. This is an integrity violation, not a
	// validation failure: the whole unit of work is rolled back and the
	// trip is logged and counted.
	ErrLedgerRowMissing = errors.New("ledger row missing for member pair")
)
