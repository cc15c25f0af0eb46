package models

// LedgerEntry is one directed half of a pairwise balance.
//
// Within GroupID, ThisUser is owed Amount by OtherUser; a negative amount
// means ThisUser owes. The mirrored row (OtherUser, ThisUser) always exists
// and carries the negated amount. Both rows are created with amount zero
// when the later of the two users joins the group, and only transaction
// postings adjust them afterwards.
type LedgerEntry struct {
	GroupID   string
	ThisUser  string
	OtherUser string
	Amount    int64
}
