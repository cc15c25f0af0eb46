// Package server exposes the ledger engine over a JSON HTTP API.
package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jsandh/splitbook/internal/auth"
	"github.com/jsandh/splitbook/internal/ledger"
	"github.com/jsandh/splitbook/internal/middleware"
	"github.com/jsandh/splitbook/internal/storage"
)

// Server holds the handler dependencies.
type Server struct {
	ledger *ledger.Service
	store  storage.Store
	authn  auth.Authenticator
	jwt    *auth.JWTManager
}

// New creates a Server.
func New(ledgerSvc *ledger.Service, store storage.Store, authn auth.Authenticator, jwtManager *auth.JWTManager) *Server {
	return &Server{
		ledger: ledgerSvc,
		store:  store,
		authn:  authn,
		jwt:    jwtManager,
	}
}

// Register mounts all routes on the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/users", s.registerUser)
	e.POST("/v1/users/login", s.loginUser)

	authed := e.Group("", middleware.RequireAuth(s.jwt))
	authed.GET("/v1/me", s.currentUser)
	authed.PUT("/v1/me", s.updateUser)
	authed.GET("/v1/groups", s.listGroups)
	authed.POST("/v1/groups", s.createGroup)
	authed.GET("/v1/groups/:id", s.getGroup)
	authed.PUT("/v1/groups/:id", s.updateGroup)
	authed.POST("/v1/groups/:id/members", s.addMember)
	authed.GET("/v1/groups/:id/members", s.listMembers)
	authed.GET("/v1/groups/:id/balances/:other", s.getBalance)
	authed.GET("/v1/groups/:id/transactions", s.listTransactions)
	authed.POST("/v1/transactions", s.createTransaction)
}

// httpError maps engine and storage errors onto HTTP statuses. Validation
// failures are 422, conflicts 409, membership refusals 403. Integrity trips
// surface as opaque 500s: they are bugs, not caller mistakes. Anything
// unmapped is treated as retryable infrastructure trouble.
func httpError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrDuplicateMembership),
		errors.Is(err, ledger.ErrDuplicateGroupName),
		errors.Is(err, storage.ErrDuplicateGroupName),
		errors.Is(err, storage.ErrDuplicateUser),
		errors.Is(err, auth.ErrUserExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrUnknownUser),
		errors.Is(err, ledger.ErrUnknownGroup),
		errors.Is(err, ledger.ErrSelfTransaction),
		errors.Is(err, ledger.ErrSelfBalance),
		errors.Is(err, auth.ErrWeakPassword):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrNotAMember):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, ledger.ErrLedgerRowMissing):
		return echo.NewHTTPError(http.StatusInternalServerError, "internal consistency error")
	default:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}
}

// requireMember rejects the request unless userID is in the group.
func (s *Server) requireMember(c echo.Context, groupID, userID string) error {
	members, err := s.ledger.Members(c.Request().Context(), groupID)
	if err != nil {
		return httpError(err)
	}
	for _, id := range members {
		if id == userID {
			return nil
		}
	}
	return echo.NewHTTPError(http.StatusForbidden, ledger.ErrNotAMember.Error())
}
