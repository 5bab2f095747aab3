package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"walletpalz/internal/budget"
	apperrors "walletpalz/internal/errors"
	"walletpalz/internal/models"
	"walletpalz/internal/services"
)

const testBudgetID = "0190a1b2-0000-7000-8000-0000000000bb"

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn    func(userID string, in services.BudgetInput) (*models.Budget, error)
	getUserBudgetsFn  func(userID string) ([]services.BudgetWithStatus, error)
	getBudgetByIDFn   func(userID, budgetID string) (*models.Budget, error)
	getBudgetStatusFn func(userID, budgetID string) (*services.BudgetWithStatus, error)
	deleteBudgetFn    func(userID, budgetID string) error
}

func (m *mockBudgetService) CreateBudget(_ context.Context, userID string, in services.BudgetInput) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, in)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetUserBudgets(_ context.Context, userID string) ([]services.BudgetWithStatus, error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID)
	}
	return []services.BudgetWithStatus{}, nil
}

func (m *mockBudgetService) GetBudgetByID(_ context.Context, userID, budgetID string) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetStatus(_ context.Context, userID, budgetID string) (*services.BudgetWithStatus, error) {
	if m.getBudgetStatusFn != nil {
		return m.getBudgetStatusFn(userID, budgetID)
	}
	return &services.BudgetWithStatus{}, nil
}

func (m *mockBudgetService) DeleteBudget(_ context.Context, userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.GetBudgets)
	auth.GET("/budgets/:id", handler.GetBudget)
	auth.GET("/budgets/:id/status", handler.GetBudgetStatus)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)
	return r
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.BudgetInput
		svc := &mockBudgetService{
			createBudgetFn: func(userID string, in services.BudgetInput) (*models.Budget, error) {
				got = in
				return &models.Budget{
					Base:       models.Base{ID: testBudgetID},
					UserID:     userID,
					Categories: in.Categories,
					StartDate:  in.StartDate,
					EndDate:    in.EndDate,
					Limit:      in.Limit,
				}, nil
			},
		}
		audit := &mockAuditService{}
		handler := NewBudgetHandler(svc, audit)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"categories":["Food","Shopping"],"start_date":"2024-01-01","end_date":"2024-01-31","limit":"100"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(got.Categories) != 2 || got.StartDate != models.NewDate(2024, time.January, 1) {
			t.Errorf("unexpected input %+v", got)
		}
		b := parseJSON(t, rec)["budget"].(map[string]interface{})
		if b["id"] != testBudgetID || b["limit"] != "100" {
			t.Errorf("unexpected budget %v", b)
		}
		if !audit.logged(services.AuditCreateBudget) {
			t.Error("expected budget creation to be audited")
		}
	})

	t.Run("returns service validation error", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(string, services.BudgetInput) (*models.Budget, error) {
				return nil, apperrors.ErrInvalidBudgetRange
			},
		}
		audit := &mockAuditService{}
		handler := NewBudgetHandler(svc, audit)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"categories":["Food"],"start_date":"2024-02-01","end_date":"2024-01-31","limit":"100"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_BUDGET_RANGE")
		if audit.logged(services.AuditCreateBudget) {
			t.Error("rejected budget must not be audited")
		}
	})

	t.Run("returns 400 on malformed date", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"categories":["Food"],"start_date":"January","end_date":"2024-01-31","limit":"100"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestBudgetHandler_GetBudgets(t *testing.T) {
	spent := decimal.NewFromInt(60)
	svc := &mockBudgetService{
		getUserBudgetsFn: func(string) ([]services.BudgetWithStatus, error) {
			return []services.BudgetWithStatus{{
				Budget: models.Budget{Base: models.Base{ID: testBudgetID}, Categories: []models.Category{models.CategoryFood}},
				Status: budget.Status{Status: budget.StatusGood, Message: "2.50/day left", Spent: &spent, DaysRemaining: 16},
			}}, nil
		},
	}
	handler := NewBudgetHandler(svc, &mockAuditService{})
	r := setupBudgetRouter(handler)

	rec := doRequest(r, "GET", "/budgets", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	budgets := parseJSON(t, rec)["budgets"].([]interface{})
	if len(budgets) != 1 {
		t.Fatalf("expected 1 budget, got %d", len(budgets))
	}
	first := budgets[0].(map[string]interface{})
	status := first["status"].(map[string]interface{})
	if first["id"] != testBudgetID || status["status"] != "good" || status["spent"] != "60" {
		t.Errorf("unexpected budget %v", first)
	}
}

func TestBudgetHandler_GetBudget(t *testing.T) {
	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetByIDFn: func(_, _ string) (*models.Budget, error) { return nil, apperrors.ErrBudgetNotFound },
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})

	t.Run("returns 400 on invalid ID", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetBudgetStatus(t *testing.T) {
	remaining := decimal.NewFromInt(-5)
	svc := &mockBudgetService{
		getBudgetStatusFn: func(_, id string) (*services.BudgetWithStatus, error) {
			return &services.BudgetWithStatus{
				Budget: models.Budget{Base: models.Base{ID: id}},
				Status: budget.Status{Status: budget.StatusOver, Message: "Exceeded by 5.00", Remaining: &remaining},
			}, nil
		},
	}
	handler := NewBudgetHandler(svc, &mockAuditService{})
	r := setupBudgetRouter(handler)

	rec := doRequest(r, "GET", "/budgets/"+testBudgetID+"/status", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	status := parseJSON(t, rec)["status"].(map[string]interface{})
	if status["status"] != "over" || status["remaining"] != "-5" {
		t.Errorf("unexpected status %v", status)
	}
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var deleted string
		svc := &mockBudgetService{
			deleteBudgetFn: func(_, id string) error {
				deleted = id
				return nil
			},
		}
		audit := &mockAuditService{}
		handler := NewBudgetHandler(svc, audit)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deleted != testBudgetID {
			t.Errorf("expected %s deleted, got %q", testBudgetID, deleted)
		}
		if !audit.logged(services.AuditDeleteBudget) {
			t.Error("expected deletion to be audited")
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockBudgetService{
			deleteBudgetFn: func(_, _ string) error { return apperrors.ErrBudgetNotFound },
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
