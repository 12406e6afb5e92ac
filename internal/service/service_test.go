package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/splitsync/splitsync/internal/auth"
	"github.com/splitsync/splitsync/internal/storage/sqlite"
)

type testServer struct {
	t      *testing.T
	router *mux.Router
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	return &testServer{t: t, router: NewRouter(store, authenticator, jwtManager)}
}

// do issues a request against the router. token may be empty for
// unauthenticated calls; body is JSON-encoded when non-nil.
func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			ts.t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
}

// register creates a user and returns its ID and session token.
func (ts *testServer) register(name, email string) (string, string) {
	ts.t.Helper()

	rr := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "correct-horse",
	})
	if rr.Code != http.StatusCreated {
		ts.t.Fatalf("register(%s) status = %d, body %s", email, rr.Code, rr.Body.String())
	}
	var session sessionResponse
	decodeJSON(ts.t, rr, &session)
	return session.User.ID, session.Token
}

// createGroup creates a group with the given extra members.
func (ts *testServer) createGroup(token, name string, memberIDs ...string) string {
	ts.t.Helper()

	rr := ts.do(http.MethodPost, "/api/groups", token, map[string]any{
		"name":       name,
		"member_ids": memberIDs,
	})
	if rr.Code != http.StatusCreated {
		ts.t.Fatalf("createGroup(%s) status = %d, body %s", name, rr.Code, rr.Body.String())
	}
	var group groupResponse
	decodeJSON(ts.t, rr, &group)
	return group.ID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	if rr := ts.do(http.MethodGet, "/healthz", "", nil); rr.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rr.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	_, aliceToken := ts.register("Alice", "alice@example.com")

	t.Run("duplicate email rejected", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Alice Again",
			"email":    "alice@example.com",
			"password": "correct-horse",
		})
		if rr.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rr.Code)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Bob",
			"email":    "bob@example.com",
			"password": "short",
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong-password",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("login and introspect", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "correct-horse",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("login status = %d, body %s", rr.Code, rr.Body.String())
		}
		var session sessionResponse
		decodeJSON(t, rr, &session)

		me := ts.do(http.MethodGet, "/api/auth/me", session.Token, nil)
		if me.Code != http.StatusOK {
			t.Fatalf("me status = %d", me.Code)
		}
		var user userResponse
		decodeJSON(t, me, &user)
		if user.Email != "alice@example.com" {
			t.Errorf("me email = %s, want alice@example.com", user.Email)
		}
	})

	t.Run("missing token rejected", func(t *testing.T) {
		if rr := ts.do(http.MethodGet, "/api/auth/me", "", nil); rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		if rr := ts.do(http.MethodGet, "/api/auth/me", "not-a-jwt", nil); rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("logout", func(t *testing.T) {
		if rr := ts.do(http.MethodPost, "/api/auth/logout", aliceToken, nil); rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
	})
}

func TestGroupLifecycle(t *testing.T) {
	ts := newTestServer(t)

	aliceID, aliceToken := ts.register("Alice", "alice@example.com")
	bobID, bobToken := ts.register("Bob", "bob@example.com")
	_, eveToken := ts.register("Eve", "eve@example.com")

	groupID := ts.createGroup(aliceToken, "Trip", bobID)

	t.Run("creator and invitee are members", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/api/groups/"+groupID, aliceToken, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("get status = %d", rr.Code)
		}
		var group groupResponse
		decodeJSON(t, rr, &group)
		if len(group.Members) != 2 {
			t.Fatalf("members = %d, want 2", len(group.Members))
		}
		found := map[string]bool{}
		for _, m := range group.Members {
			found[m.UserID] = true
		}
		if !found[aliceID] || !found[bobID] {
			t.Errorf("members %v missing alice or bob", found)
		}
	})

	t.Run("non-member cannot view", func(t *testing.T) {
		if rr := ts.do(http.MethodGet, "/api/groups/"+groupID, eveToken, nil); rr.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rr.Code)
		}
	})

	t.Run("duplicate group name rejected", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/api/groups", aliceToken, map[string]any{"name": "Trip"})
		if rr.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rr.Code)
		}
	})

	t.Run("list shows membership", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/api/groups", bobToken, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("list status = %d", rr.Code)
		}
		var groups []groupResponse
		decodeJSON(t, rr, &groups)
		if len(groups) != 1 || groups[0].ID != groupID {
			t.Errorf("list = %+v, want the one group", groups)
		}
	})

	t.Run("add unknown user", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/api/groups/"+groupID+"/members", aliceToken,
			map[string]string{"user_id": "no-such-user"})
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})

	t.Run("duplicate member rejected", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/api/groups/"+groupID+"/members", aliceToken,
			map[string]string{"user_id": bobID})
		if rr.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rr.Code)
		}
	})

	t.Run("remove member with zero balance", func(t *testing.T) {
		rr := ts.do(http.MethodDelete, "/api/groups/"+groupID+"/members/"+bobID, aliceToken, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, body %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("delete group", func(t *testing.T) {
		if rr := ts.do(http.MethodDelete, "/api/groups/"+groupID, aliceToken, nil); rr.Code != http.StatusOK {
			t.Fatalf("delete status = %d", rr.Code)
		}
		if rr := ts.do(http.MethodGet, "/api/groups/"+groupID, aliceToken, nil); rr.Code != http.StatusNotFound {
			t.Errorf("get after delete status = %d, want 404", rr.Code)
		}
	})
}

func TestExpensesAndBalances(t *testing.T) {
	ts := newTestServer(t)

	aliceID, aliceToken := ts.register("Alice", "alice@example.com")
	bobID, bobToken := ts.register("Bob", "bob@example.com")
	carolID, _ := ts.register("Carol", "carol@example.com")

	groupID := ts.createGroup(aliceToken, "Apartment", bobID, carolID)

	// Alice pays 100.00: she keeps 50, Bob owes 30, Carol owes 20.
	rr := ts.do(http.MethodPost, "/api/expenses", aliceToken, map[string]any{
		"group_id":     groupID,
		"amount":       "100.00",
		"description":  "Groceries",
		"paid_by":      aliceID,
		"split_type":   "custom",
		"participants": []string{aliceID, bobID, carolID},
		"custom_splits": map[string]string{
			aliceID: "50.00",
			bobID:   "30.00",
			carolID: "20.00",
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d, body %s", rr.Code, rr.Body.String())
	}
	var expense expenseResponse
	decodeJSON(t, rr, &expense)
	if len(expense.Shares) != 3 {
		t.Fatalf("shares = %d, want 3", len(expense.Shares))
	}

	t.Run("get expense", func(t *testing.T) {
		get := ts.do(http.MethodGet, "/api/expenses/"+expense.ID, bobToken, nil)
		if get.Code != http.StatusOK {
			t.Fatalf("status = %d", get.Code)
		}
		var got expenseResponse
		decodeJSON(t, get, &got)
		if got.Amount.Cents() != 10000 {
			t.Errorf("amount = %d cents, want 10000", got.Amount.Cents())
		}
	})

	t.Run("list expenses", func(t *testing.T) {
		list := ts.do(http.MethodGet, "/api/groups/"+groupID+"/expenses", aliceToken, nil)
		if list.Code != http.StatusOK {
			t.Fatalf("status = %d", list.Code)
		}
		var expenses []expenseResponse
		decodeJSON(t, list, &expenses)
		if len(expenses) != 1 {
			t.Errorf("expenses = %d, want 1", len(expenses))
		}
	})

	fetchBalances := func(t *testing.T) balancesResponse {
		t.Helper()
		rr := ts.do(http.MethodGet, "/api/groups/"+groupID+"/balances", aliceToken, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("balances status = %d, body %s", rr.Code, rr.Body.String())
		}
		var resp balancesResponse
		decodeJSON(t, rr, &resp)
		return resp
	}

	t.Run("balances after expense", func(t *testing.T) {
		resp := fetchBalances(t)

		nets := map[string]int64{}
		for _, m := range resp.Members {
			nets[m.UserID] = m.Net.Cents()
		}
		if nets[aliceID] != 5000 || nets[bobID] != -3000 || nets[carolID] != -2000 {
			t.Errorf("nets = %v, want alice +5000, bob -3000, carol -2000", nets)
		}
		if len(resp.Suggested) != 2 {
			t.Fatalf("suggested = %d transfers, want 2", len(resp.Suggested))
		}
		for _, tr := range resp.Suggested {
			if tr.ToUserID != aliceID {
				t.Errorf("transfer to %s, want all to alice", tr.ToUserID)
			}
		}
	})

	t.Run("member with debt cannot be removed", func(t *testing.T) {
		rr := ts.do(http.MethodDelete, "/api/groups/"+groupID+"/members/"+carolID, aliceToken, nil)
		if rr.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rr.Code)
		}
	})

	t.Run("settlement clears debt", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/api/groups/"+groupID+"/settlements", bobToken, map[string]any{
			"to_user_id": aliceID,
			"amount":     "30.00",
			"note":       "groceries share",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("settlement status = %d, body %s", rr.Code, rr.Body.String())
		}

		resp := fetchBalances(t)
		nets := map[string]int64{}
		for _, m := range resp.Members {
			nets[m.UserID] = m.Net.Cents()
		}
		if nets[bobID] != 0 {
			t.Errorf("bob net = %d, want 0", nets[bobID])
		}
		if nets[aliceID] != 2000 {
			t.Errorf("alice net = %d, want 2000", nets[aliceID])
		}
		if len(resp.Suggested) != 1 {
			t.Fatalf("suggested = %d transfers, want 1", len(resp.Suggested))
		}
		got := resp.Suggested[0]
		if got.FromUserID != carolID || got.ToUserID != aliceID || got.Amount.Cents() != 2000 {
			t.Errorf("suggested = %+v, want carol pays alice 20.00", got)
		}
	})

	t.Run("settled member can leave", func(t *testing.T) {
		rr := ts.do(http.MethodDelete, "/api/groups/"+groupID+"/members/"+bobID, aliceToken, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, body %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("list settlements", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/api/groups/"+groupID+"/settlements", aliceToken, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var settlements []settlementResponse
		decodeJSON(t, rr, &settlements)
		if len(settlements) != 1 {
			t.Fatalf("settlements = %d, want 1", len(settlements))
		}
		if settlements[0].Amount.Cents() != 3000 {
			t.Errorf("amount = %d cents, want 3000", settlements[0].Amount.Cents())
		}
	})
}

func TestEqualSplitOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	aliceID, aliceToken := ts.register("Alice", "alice@example.com")
	bobID, _ := ts.register("Bob", "bob@example.com")
	carolID, _ := ts.register("Carol", "carol@example.com")

	groupID := ts.createGroup(aliceToken, "Dinner", bobID, carolID)

	rr := ts.do(http.MethodPost, "/api/expenses", aliceToken, map[string]any{
		"group_id":     groupID,
		"amount":       "100.00",
		"description":  "Dinner",
		"paid_by":      aliceID,
		"split_type":   "equal",
		"participants": []string{aliceID, bobID, carolID},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d, body %s", rr.Code, rr.Body.String())
	}

	var expense expenseResponse
	decodeJSON(t, rr, &expense)

	var sum int64
	counts := map[int64]int{}
	for _, share := range expense.Shares {
		sum += share.Amount.Cents()
		counts[share.Amount.Cents()]++
	}
	if sum != 10000 {
		t.Errorf("share sum = %d cents, want 10000", sum)
	}
	if counts[3334] != 1 || counts[3333] != 2 {
		t.Errorf("share distribution = %v, want one 33.34 and two 33.33", counts)
	}
}

func TestExpenseValidation(t *testing.T) {
	ts := newTestServer(t)

	aliceID, aliceToken := ts.register("Alice", "alice@example.com")
	bobID, _ := ts.register("Bob", "bob@example.com")
	_, eveToken := ts.register("Eve", "eve@example.com")

	groupID := ts.createGroup(aliceToken, "Trip", bobID)

	tests := []struct {
		name  string
		token string
		body  map[string]any
		want  int
	}{
		{
			name:  "custom splits must sum to amount",
			token: aliceToken,
			body: map[string]any{
				"group_id": groupID, "amount": "100.00", "description": "x",
				"paid_by": aliceID, "split_type": "custom",
				"participants":  []string{aliceID, bobID},
				"custom_splits": map[string]string{aliceID: "60.00", bobID: "60.00"},
			},
			want: http.StatusBadRequest,
		},
		{
			name:  "zero amount rejected",
			token: aliceToken,
			body: map[string]any{
				"group_id": groupID, "amount": "0.00", "description": "x",
				"paid_by": aliceID, "split_type": "equal",
				"participants": []string{aliceID, bobID},
			},
			want: http.StatusBadRequest,
		},
		{
			name:  "sub-cent amount rejected",
			token: aliceToken,
			body: map[string]any{
				"group_id": groupID, "amount": "10.005", "description": "x",
				"paid_by": aliceID, "split_type": "equal",
				"participants": []string{aliceID, bobID},
			},
			want: http.StatusBadRequest,
		},
		{
			name:  "unknown split type rejected",
			token: aliceToken,
			body: map[string]any{
				"group_id": groupID, "amount": "10.00", "description": "x",
				"paid_by": aliceID, "split_type": "percentage",
				"participants": []string{aliceID, bobID},
			},
			want: http.StatusBadRequest,
		},
		{
			name:  "non-member cannot add expense",
			token: eveToken,
			body: map[string]any{
				"group_id": groupID, "amount": "10.00", "description": "x",
				"paid_by": aliceID, "split_type": "equal",
				"participants": []string{aliceID, bobID},
			},
			want: http.StatusForbidden,
		},
		{
			name:  "payer must be a member",
			token: aliceToken,
			body: map[string]any{
				"group_id": groupID, "amount": "10.00", "description": "x",
				"paid_by": "no-such-user", "split_type": "equal",
				"participants": []string{aliceID, bobID},
			},
			want: http.StatusForbidden,
		},
		{
			name:  "unknown group",
			token: aliceToken,
			body: map[string]any{
				"group_id": "no-such-group", "amount": "10.00", "description": "x",
				"paid_by": aliceID, "split_type": "equal",
				"participants": []string{aliceID},
			},
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(http.MethodPost, "/api/expenses", tt.token, tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestSettlementValidation(t *testing.T) {
	ts := newTestServer(t)

	aliceID, aliceToken := ts.register("Alice", "alice@example.com")
	bobID, _ := ts.register("Bob", "bob@example.com")
	_, eveToken := ts.register("Eve", "eve@example.com")

	groupID := ts.createGroup(aliceToken, "Trip", bobID)

	tests := []struct {
		name  string
		token string
		body  map[string]any
		want  int
	}{
		{
			name:  "self settlement rejected",
			token: aliceToken,
			body:  map[string]any{"to_user_id": aliceID, "amount": "10.00"},
			want:  http.StatusBadRequest,
		},
		{
			name:  "negative amount rejected",
			token: aliceToken,
			body:  map[string]any{"to_user_id": bobID, "amount": "-5.00"},
			want:  http.StatusBadRequest,
		},
		{
			name:  "payee must be a member",
			token: aliceToken,
			body:  map[string]any{"to_user_id": "no-such-user", "amount": "10.00"},
			want:  http.StatusForbidden,
		},
		{
			name:  "payer must be a member",
			token: eveToken,
			body:  map[string]any{"to_user_id": aliceID, "amount": "10.00"},
			want:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(http.MethodPost, "/api/groups/"+groupID+"/settlements", tt.token, tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)

	aliceID, aliceToken := ts.register("Alice", "alice@example.com")
	bobID, bobToken := ts.register("Bob", "bob@example.com")

	tripID := ts.createGroup(aliceToken, "Trip", bobID)
	rentID := ts.createGroup(bobToken, "Rent", aliceID)

	// Trip: alice pays 40, bob owes 20. Rent: bob pays 60, alice owes 30.
	for _, exp := range []struct {
		groupID, payer, token string
		amount                string
	}{
		{tripID, aliceID, aliceToken, "40.00"},
		{rentID, bobID, bobToken, "60.00"},
	} {
		rr := ts.do(http.MethodPost, "/api/expenses", exp.token, map[string]any{
			"group_id": exp.groupID, "amount": exp.amount, "description": "x",
			"paid_by": exp.payer, "split_type": "equal",
			"participants": []string{aliceID, bobID},
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("create expense status = %d, body %s", rr.Code, rr.Body.String())
		}
	}

	rr := ts.do(http.MethodGet, "/api/users/me/dashboard", aliceToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp dashboardResponse
	decodeJSON(t, rr, &resp)

	if resp.TotalOwedToYou.Cents() != 2000 {
		t.Errorf("owed to you = %d cents, want 2000", resp.TotalOwedToYou.Cents())
	}
	if resp.TotalYouOwe.Cents() != 3000 {
		t.Errorf("you owe = %d cents, want 3000", resp.TotalYouOwe.Cents())
	}
	if len(resp.Groups) != 2 {
		t.Errorf("groups = %d, want 2", len(resp.Groups))
	}
}

func TestProfileManagement(t *testing.T) {
	ts := newTestServer(t)

	_, token := ts.register("Alice", "alice@example.com")

	t.Run("update profile", func(t *testing.T) {
		rr := ts.do(http.MethodPatch, "/api/users/me", token, map[string]string{
			"name": "Alice B",
			"upi":  "alice@upi",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}
		var user userResponse
		decodeJSON(t, rr, &user)
		if user.Name != "Alice B" || user.UPI != "alice@upi" {
			t.Errorf("profile = %+v, want updated name and upi", user)
		}
	})

	t.Run("change password", func(t *testing.T) {
		rr := ts.do(http.MethodPut, "/api/users/me/password", token, map[string]string{
			"current_password": "correct-horse",
			"new_password":     "battery-staple",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}

		login := ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "battery-staple",
		})
		if login.Code != http.StatusOK {
			t.Errorf("login with new password status = %d", login.Code)
		}
	})

	t.Run("change password with wrong current", func(t *testing.T) {
		rr := ts.do(http.MethodPut, "/api/users/me/password", token, map[string]string{
			"current_password": "wrong",
			"new_password":     "battery-staple2",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("delete account", func(t *testing.T) {
		if rr := ts.do(http.MethodDelete, "/api/users/me", token, nil); rr.Code != http.StatusOK {
			t.Fatalf("delete status = %d", rr.Code)
		}
		if rr := ts.do(http.MethodGet, "/api/users/me", token, nil); rr.Code != http.StatusNotFound {
			t.Errorf("get after delete status = %d, want 404", rr.Code)
		}
	})
}

func TestDeleteAccountWithHistory(t *testing.T) {
	ts := newTestServer(t)

	aliceID, aliceToken := ts.register("Alice", "alice@example.com")
	bobID, _ := ts.register("Bob", "bob@example.com")

	groupID := ts.createGroup(aliceToken, "Trip", bobID)

	rr := ts.do(http.MethodPost, "/api/expenses", aliceToken, map[string]any{
		"group_id": groupID, "amount": "40.00", "description": "Dinner",
		"paid_by": aliceID, "split_type": "equal",
		"participants": []string{aliceID, bobID},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d, body %s", rr.Code, rr.Body.String())
	}

	// Recorded expenses pin the account: deletion conflicts until the
	// group (and its history) is gone.
	if rr := ts.do(http.MethodDelete, "/api/users/me", aliceToken, nil); rr.Code != http.StatusConflict {
		t.Errorf("delete with history status = %d, want 409 (body %s)", rr.Code, rr.Body.String())
	}

	if rr := ts.do(http.MethodDelete, "/api/groups/"+groupID, aliceToken, nil); rr.Code != http.StatusOK {
		t.Fatalf("delete group status = %d", rr.Code)
	}
	if rr := ts.do(http.MethodDelete, "/api/users/me", aliceToken, nil); rr.Code != http.StatusOK {
		t.Errorf("delete after history cleared status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
}
