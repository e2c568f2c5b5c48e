package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-poi-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreatePlan(ctx context.Context, req PlanRequest) (*types.Plan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Plan), args.Error(1)
}

func (m *MockService) GetPlan(ctx context.Context, planID uuid.UUID) (*types.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Plan), args.Error(1)
}

func (m *MockService) ReplaceOption(ctx context.Context, planID uuid.UUID, sectionIndex, optionIndex int) (*types.Plan, error) {
	args := m.Called(ctx, planID, sectionIndex, optionIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Plan), args.Error(1)
}

func setupHandlerTest() (*chi.Mux, *MockService) {
	service := new(MockService)
	h := NewHandlerImpl(service, discardLogger())
	r := chi.NewRouter()
	r.Post("/api/v1/plans", h.CreatePlan)
	r.Get("/api/v1/plans/{planID}", h.GetPlan)
	r.Post("/api/v1/plans/{planID}/replace", h.ReplaceOption)
	return r, service
}

func samplePlan() *types.Plan {
	p := scoredPlaces(1)[0]
	return &types.Plan{
		ID:       uuid.New(),
		Title:    "Кофе",
		City:     "Almaty",
		Mode:     types.PlanModeSearch,
		Source:   types.PlanSourceFallback,
		Sections: []types.PlanSection{{Title: "Рекомендации", Options: []types.PlanOption{newOption(p.CatalogPlace, "", "")}}},
		Pool:     []uuid.UUID{uuid.New()},
	}
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerImpl_CreatePlan(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		r, service := setupHandlerTest()
		plan := samplePlan()
		want := PlanRequest{City: "Almaty", Intent: "хочу кофе", Interests: []string{"coffee"}}
		service.On("CreatePlan", mock.Anything, want).Return(plan, nil)

		rec := serve(r, http.MethodPost, "/api/v1/plans", `{"city":"Almaty","intent":"хочу кофе","interests":["coffee"]}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, plan.ID.String(), body["id"])
		assert.Equal(t, "fallback", body["source"])
		assert.NotContains(t, body, "Pool")
		sections := body["sections"].([]any)
		require.Len(t, sections, 1)
		service.AssertExpectations(t)
	})

	t.Run("missing city", func(t *testing.T) {
		r, service := setupHandlerTest()
		rec := serve(r, http.MethodPost, "/api/v1/plans", `{"intent":"кофе"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything)
	})

	t.Run("unknown field", func(t *testing.T) {
		r, _ := setupHandlerTest()
		rec := serve(r, http.MethodPost, "/api/v1/plans", `{"city":"Almaty","intent":"кофе","budget":3}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no places for city", func(t *testing.T) {
		r, service := setupHandlerTest()
		service.On("CreatePlan", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: Nowhere", catalog.ErrNoPlacesForCity))

		rec := serve(r, http.MethodPost, "/api/v1/plans", `{"city":"Nowhere","intent":"кофе"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlerImpl_GetPlan(t *testing.T) {
	t.Run("bad id", func(t *testing.T) {
		r, _ := setupHandlerTest()
		rec := serve(r, http.MethodGet, "/api/v1/plans/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		r, service := setupHandlerTest()
		id := uuid.New()
		service.On("GetPlan", mock.Anything, id).Return(nil, ErrPlanNotFound)

		rec := serve(r, http.MethodGet, "/api/v1/plans/"+id.String(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("found", func(t *testing.T) {
		r, service := setupHandlerTest()
		plan := samplePlan()
		service.On("GetPlan", mock.Anything, plan.ID).Return(plan, nil)

		rec := serve(r, http.MethodGet, "/api/v1/plans/"+plan.ID.String(), "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), plan.ID.String())
	})
}

func TestHandlerImpl_ReplaceOption(t *testing.T) {
	r, service := setupHandlerTest()
	plan := samplePlan()
	service.On("ReplaceOption", mock.Anything, plan.ID, 0, 0).Return(plan, nil)

	rec := serve(r, http.MethodPost, "/api/v1/plans/"+plan.ID.String()+"/replace", `{"sectionIndex":0,"optionIndex":0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}
