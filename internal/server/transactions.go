package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jsandh/splitbook/internal/middleware"
	"github.com/jsandh/splitbook/internal/models"
)

// txBody wraps all transaction requests and responses.
type txBody[T any] struct {
	Transaction T `json:"transaction"`
}

type newTransactionRequest struct {
	GroupID  string            `json:"group_id"`
	PayeeID  string            `json:"payee_id"`
	Amount   int64             `json:"amount"`
	Kind     string            `json:"kind"`
	Metadata map[string]string `json:"metadata"`
}

type transactionResponse struct {
	ID        string            `json:"id"`
	GroupID   string            `json:"group_id"`
	PayerID   string            `json:"payer_id"`
	PayeeID   string            `json:"payee_id"`
	Amount    int64             `json:"amount"`
	Kind      string            `json:"kind"`
	AckStatus string            `json:"ack_status"`
	Metadata  map[string]string `json:"metadata"`
}

func toTransactionResponse(txn *models.Transaction) transactionResponse {
	return transactionResponse{
		ID:        txn.ID,
		GroupID:   txn.GroupID,
		PayerID:   txn.PayerID,
		PayeeID:   txn.PayeeID,
		Amount:    txn.Amount,
		Kind:      string(txn.Kind),
		AckStatus: string(txn.AckStatus),
		Metadata:  txn.Metadata,
	}
}

// createTransaction posts a transaction from the authenticated user (the
// payer) to the payee.
func (s *Server) createTransaction(c echo.Context) error {
	var req txBody[newTransactionRequest]
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	kind := models.TxKind(req.Transaction.Kind)
	if !kind.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "kind must be CREDIT or DEBIT")
	}

	txn, err := s.ledger.PostTransaction(
		c.Request().Context(),
		req.Transaction.GroupID,
		middleware.UserID(c),
		req.Transaction.PayeeID,
		req.Transaction.Amount,
		kind,
		req.Transaction.Metadata,
	)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, txBody[transactionResponse]{Transaction: toTransactionResponse(txn)})
}
