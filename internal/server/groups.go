package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jsandh/splitbook/internal/middleware"
	"github.com/jsandh/splitbook/internal/models"
)

// groupBody wraps all group requests and responses.
type groupBody[T any] struct {
	Group T `json:"group"`
}

type newGroupRequest struct {
	Name string `json:"name"`
}

type groupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type addMemberRequest struct {
	// UserID is the user to add; defaults to the caller.
	UserID string `json:"user_id"`
}

type membershipResponse struct {
	MembershipID string `json:"membership_id"`
	GroupID      string `json:"group_id"`
	UserID       string `json:"user_id"`
}

type balanceResponse struct {
	GroupID   string `json:"group_id"`
	ThisUser  string `json:"this_user"`
	OtherUser string `json:"other_user"`
	Amount    int64  `json:"amount"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{ID: g.ID, Name: g.Name}
}

func (s *Server) createGroup(c echo.Context) error {
	var req groupBody[newGroupRequest]
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Group.Name == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "group name is required")
	}

	group, err := s.ledger.CreateGroup(c.Request().Context(), req.Group.Name, middleware.UserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, groupBody[groupResponse]{Group: toGroupResponse(group)})
}

func (s *Server) listGroups(c echo.Context) error {
	groups, err := s.store.GroupsByUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return httpError(err)
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, toGroupResponse(g))
	}
	return c.JSON(http.StatusOK, groupBody[[]groupResponse]{Group: resp})
}

func (s *Server) getGroup(c echo.Context) error {
	groupID := c.Param("id")
	if err := s.requireMember(c, groupID, middleware.UserID(c)); err != nil {
		return err
	}

	group, err := s.store.GetGroup(c.Request().Context(), groupID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, groupBody[groupResponse]{Group: toGroupResponse(group)})
}

func (s *Server) updateGroup(c echo.Context) error {
	var req groupBody[newGroupRequest]
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Group.Name == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "group name is required")
	}

	groupID := c.Param("id")
	if err := s.requireMember(c, groupID, middleware.UserID(c)); err != nil {
		return err
	}

	if err := s.store.UpdateGroupName(c.Request().Context(), groupID, req.Group.Name); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, groupBody[groupResponse]{Group: groupResponse{ID: groupID, Name: req.Group.Name}})
}

func (s *Server) addMember(c echo.Context) error {
	var req addMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	groupID := c.Param("id")
	userID := req.UserID
	if userID == "" {
		userID = middleware.UserID(c)
	}

	membership, err := s.ledger.AddMember(c.Request().Context(), groupID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, membershipResponse{
		MembershipID: membership.ID,
		GroupID:      membership.GroupID,
		UserID:       membership.UserID,
	})
}

func (s *Server) listMembers(c echo.Context) error {
	groupID := c.Param("id")
	if err := s.requireMember(c, groupID, middleware.UserID(c)); err != nil {
		return err
	}

	members, err := s.ledger.Members(c.Request().Context(), groupID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"members": members})
}

func (s *Server) getBalance(c echo.Context) error {
	groupID := c.Param("id")
	userID := middleware.UserID(c)
	otherID := c.Param("other")

	amount, err := s.ledger.Balance(c.Request().Context(), groupID, userID, otherID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]balanceResponse{"balance": {
		GroupID:   groupID,
		ThisUser:  userID,
		OtherUser: otherID,
		Amount:    amount,
	}})
}

func (s *Server) listTransactions(c echo.Context) error {
	groupID := c.Param("id")
	if err := s.requireMember(c, groupID, middleware.UserID(c)); err != nil {
		return err
	}

	txns, err := s.store.TransactionsByGroup(c.Request().Context(), groupID)
	if err != nil {
		return httpError(err)
	}

	resp := make([]transactionResponse, 0, len(txns))
	for _, txn := range txns {
		resp = append(resp, toTransactionResponse(txn))
	}
	return c.JSON(http.StatusOK, txBody[[]transactionResponse]{Transaction: resp})
}
