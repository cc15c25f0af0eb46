package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsandh/splitbook/internal/auth"
	"github.com/jsandh/splitbook/internal/ledger"
	"github.com/jsandh/splitbook/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	svc := ledger.New(store, slog.Default())

	e := echo.New()
	New(svc, store, auth.NewPasswordAuthenticator(store), jwtManager).Register(e)
	return e
}

// doJSON performs a request against the echo instance and decodes the JSON
// response into out (if out is non-nil).
func doJSON(t *testing.T, e *echo.Echo, method, path, token string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if out != nil && rec.Code < http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

// registerUser creates an account through the API and returns (id, token).
func registerTestUser(t *testing.T, e *echo.Echo, name string) (string, string) {
	t.Helper()

	var resp userBody[userResponse]
	rec := doJSON(t, e, http.MethodPost, "/v1/users", "", userBody[newUserRequest]{User: newUserRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: "a long enough password",
	}}, &resp)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, resp.User.ID)
	require.NotEmpty(t, resp.User.Token)
	return resp.User.ID, resp.User.Token
}

func TestRegisterAndLogin(t *testing.T) {
	e := newTestServer(t)
	registerTestUser(t, e, "alice")

	t.Run("login returns a fresh token", func(t *testing.T) {
		var resp userBody[userResponse]
		rec := doJSON(t, e, http.MethodPost, "/v1/users/login", "", userBody[loginRequest]{User: loginRequest{
			Email:    "alice@example.com",
			Password: "a long enough password",
		}}, &resp)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, resp.User.Token)
		assert.Equal(t, "alice", resp.User.Username)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/v1/users/login", "", userBody[loginRequest]{User: loginRequest{
			Email:    "alice@example.com",
			Password: "wrong password",
		}}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/v1/users", "", userBody[newUserRequest]{User: newUserRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "a long enough password",
		}}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/v1/users", "", userBody[newUserRequest]{User: newUserRequest{
			Username: "bob",
			Email:    "bob@example.com",
			Password: "short",
		}}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("protected route requires token", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/v1/me", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCurrentUser(t *testing.T) {
	e := newTestServer(t)
	aliceID, token := registerTestUser(t, e, "alice")

	var resp userBody[userResponse]
	rec := doJSON(t, e, http.MethodGet, "/v1/me", token, nil, &resp)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, aliceID, resp.User.ID)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	t.Run("update username", func(t *testing.T) {
		name := "alice2"
		var updated userBody[userResponse]
		rec := doJSON(t, e, http.MethodPut, "/v1/me", token,
			userBody[updateUserRequest]{User: updateUserRequest{Username: &name}}, &updated)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice2", updated.User.Username)
	})

	t.Run("empty update rejected", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, "/v1/me", token,
			userBody[updateUserRequest]{}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestGroupFlow(t *testing.T) {
	e := newTestServer(t)
	aliceID, aliceToken := registerTestUser(t, e, "alice")
	bobID, bobToken := registerTestUser(t, e, "bob")

	var created groupBody[groupResponse]
	rec := doJSON(t, e, http.MethodPost, "/v1/groups", aliceToken,
		groupBody[newGroupRequest]{Group: newGroupRequest{Name: "Trip"}}, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	groupID := created.Group.ID
	require.NotEmpty(t, groupID)

	t.Run("creator is the first member", func(t *testing.T) {
		var resp map[string][]string
		rec := doJSON(t, e, http.MethodGet, "/v1/groups/"+groupID+"/members", aliceToken, nil, &resp)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{aliceID}, resp["members"])
	})

	t.Run("duplicate group name conflicts", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/v1/groups", bobToken,
			groupBody[newGroupRequest]{Group: newGroupRequest{Name: "Trip"}}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("non-member cannot read the group", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/v1/groups/"+groupID, bobToken, nil, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("join defaults to the caller", func(t *testing.T) {
		var resp membershipResponse
		rec := doJSON(t, e, http.MethodPost, "/v1/groups/"+groupID+"/members", bobToken,
			addMemberRequest{}, &resp)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, bobID, resp.UserID)
		assert.NotEmpty(t, resp.MembershipID)
	})

	t.Run("rejoining conflicts", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/v1/groups/"+groupID+"/members", bobToken,
			addMemberRequest{}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("member lists own groups", func(t *testing.T) {
		var resp groupBody[[]groupResponse]
		rec := doJSON(t, e, http.MethodGet, "/v1/groups", bobToken, nil, &resp)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, resp.Group, 1)
		assert.Equal(t, groupID, resp.Group[0].ID)
	})

	t.Run("rename group", func(t *testing.T) {
		var resp groupBody[groupResponse]
		rec := doJSON(t, e, http.MethodPut, "/v1/groups/"+groupID, aliceToken,
			groupBody[newGroupRequest]{Group: newGroupRequest{Name: "Road Trip"}}, &resp)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Road Trip", resp.Group.Name)
	})
}

func TestTransactionFlow(t *testing.T) {
	e := newTestServer(t)
	aliceID, aliceToken := registerTestUser(t, e, "alice")
	bobID, bobToken := registerTestUser(t, e, "bob")
	_, carolToken := registerTestUser(t, e, "carol")

	var created groupBody[groupResponse]
	rec := doJSON(t, e, http.MethodPost, "/v1/groups", aliceToken,
		groupBody[newGroupRequest]{Group: newGroupRequest{Name: "Dinner"}}, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	groupID := created.Group.ID

	rec = doJSON(t, e, http.MethodPost, "/v1/groups/"+groupID+"/members", bobToken, addMemberRequest{}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("post credit and read both balance directions", func(t *testing.T) {
		var resp txBody[transactionResponse]
		rec := doJSON(t, e, http.MethodPost, "/v1/transactions", aliceToken,
			txBody[newTransactionRequest]{Transaction: newTransactionRequest{
				GroupID:  groupID,
				PayeeID:  bobID,
				Amount:   500,
				Kind:     "CREDIT",
				Metadata: map[string]string{"note": "sushi"},
			}}, &resp)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, aliceID, resp.Transaction.PayerID)
		assert.Equal(t, int64(500), resp.Transaction.Amount)
		assert.Equal(t, "NOT_ACK", resp.Transaction.AckStatus)

		var aliceView map[string]balanceResponse
		rec = doJSON(t, e, http.MethodGet, "/v1/groups/"+groupID+"/balances/"+bobID, aliceToken, nil, &aliceView)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(500), aliceView["balance"].Amount)

		var bobView map[string]balanceResponse
		rec = doJSON(t, e, http.MethodGet, "/v1/groups/"+groupID+"/balances/"+aliceID, bobToken, nil, &bobView)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(-500), bobView["balance"].Amount)
	})

	t.Run("transaction listing preserves declared form", func(t *testing.T) {
		var resp txBody[[]transactionResponse]
		rec := doJSON(t, e, http.MethodGet, "/v1/groups/"+groupID+"/transactions", bobToken, nil, &resp)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, resp.Transaction, 1)
		assert.Equal(t, "CREDIT", resp.Transaction[0].Kind)
		assert.Equal(t, map[string]string{"note": "sushi"}, resp.Transaction[0].Metadata)
	})

	t.Run("invalid kind rejected", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/v1/transactions", aliceToken,
			txBody[newTransactionRequest]{Transaction: newTransactionRequest{
				GroupID: groupID, PayeeID: bobID, Amount: 100, Kind: "TRANSFER",
			}}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("non-member payer forbidden", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/v1/transactions", carolToken,
			txBody[newTransactionRequest]{Transaction: newTransactionRequest{
				GroupID: groupID, PayeeID: bobID, Amount: 100, Kind: "CREDIT",
			}}, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("balance against own id rejected", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/v1/groups/"+groupID+"/balances/"+aliceID, aliceToken, nil, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("self transaction rejected", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/v1/transactions", aliceToken,
			txBody[newTransactionRequest]{Transaction: newTransactionRequest{
				GroupID: groupID, PayeeID: aliceID, Amount: 100, Kind: "CREDIT",
			}}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
