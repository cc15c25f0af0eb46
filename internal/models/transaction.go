package models

// TxKind declares the direction of a transaction as stated by the caller.
type TxKind string

const (
	// TxCredit means the payer is owed the amount by the payee.
	TxCredit TxKind = "CREDIT"
	// TxDebit means the payer owes the amount to the payee.
	TxDebit TxKind = "DEBIT"
)

// Valid reports whether k is one of the declared kinds.
func (k TxKind) Valid() bool {
	return k == TxCredit || k == TxDebit
}

// AckStatus tracks whether the payee has acknowledged a transaction.
type AckStatus string

const (
	AckPending AckStatus = "NOT_ACK"
	Acked      AckStatus = "ACK"
)

// Transaction is an immutable record of a posting between two group members.
//
// Amount and Kind preserve exactly what the caller declared; the signed
// delta applied to the ledger rows is derived from them (negated for
// TxDebit) and is not stored here.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// GroupID is the group both parties belong to.
	GroupID string

	// PayerID is the user posting the transaction.
	PayerID string

	// PayeeID is the counterparty.
	PayeeID string

	// Amount is the declared amount, before sign normalization.
	Amount int64

	// Kind is the declared direction (credit or debit).
	Kind TxKind

	// AckStatus starts at AckPending for every new transaction.
	AckStatus AckStatus

	// Metadata is free-form caller data, stored unmodified.
	Metadata map[string]string

	// CreatedAt is the Unix timestamp when the transaction was posted.
	CreatedAt int64
}
