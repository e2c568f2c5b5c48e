package planner

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/FACorreiaa/go-poi-planner/app/middleware"
	"github.com/FACorreiaa/go-poi-planner/internal/api"
	"github.com/FACorreiaa/go-poi-planner/internal/api/catalog"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

type replaceRequest struct {
	SectionIndex int `json:"sectionIndex"`
	OptionIndex  int `json:"optionIndex"`
}

// CreatePlan godoc
// @Summary      Create Plan
// @Description  Scores the city's catalog against the intent and interests and returns a validated plan. Travel times are added in the background.
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        request body PlanRequest true "City, free-text intent, interests and optional location"
// @Success      201 {object} types.Plan "Plan"
// @Failure      400 {object} api.ErrorEnvelope "Invalid Input"
// @Failure      401 {object} api.ErrorEnvelope "Unauthorized"
// @Failure      404 {object} api.ErrorEnvelope "No places for city"
// @Failure      429 {object} api.ErrorEnvelope "Too Many Requests"
// @Failure      500 {object} api.ErrorEnvelope "Internal Server Error"
// @Security     BearerAuth
// @Router       /plans [post]
func (h *HandlerImpl) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "CreatePlan", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/plans"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreatePlan"))
	if userID, ok := appMiddleware.GetUserIDFromContext(ctx); ok {
		l = l.With(slog.String("userID", userID))
	}

	var req PlanRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid plan request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.City) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "city is required")
		return
	}
	if strings.TrimSpace(req.Intent) == "" && len(req.Interests) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "intent or interests are required")
		return
	}

	plan, err := h.service.CreatePlan(ctx, req)
	if err != nil {
		if errors.Is(err, catalog.ErrNoPlacesForCity) {
			l.InfoContext(ctx, "No places for city", slog.String("city", req.City))
			api.ErrorResponse(w, r, http.StatusNotFound, "No places found for city")
			return
		}
		l.ErrorContext(ctx, "Failed to create plan", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create plan")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, plan.Snapshot())
}

// GetPlan godoc
// @Summary      Get Plan
// @Description  Returns a previously created plan, including any travel times added since it was created.
// @Tags         Plans
// @Produce      json
// @Param        planID path string true "Plan ID (UUID)"
// @Success      200 {object} types.Plan "Plan"
// @Failure      400 {object} api.ErrorEnvelope "Invalid Plan ID"
// @Failure      401 {object} api.ErrorEnvelope "Unauthorized"
// @Failure      404 {object} api.ErrorEnvelope "Plan Not Found"
// @Security     BearerAuth
// @Router       /plans/{planID} [get]
func (h *HandlerImpl) GetPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "GetPlan", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/plans/{planID}"),
	))
	defer span.End()

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	plan, err := h.service.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Plan not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to get plan", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get plan")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan.Snapshot())
}

// ReplaceOption godoc
// @Summary      Replace Plan Option
// @Description  Swaps one shown option for the section's first reserve or the next unused scored place. Out-of-range indices return the plan unchanged.
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        planID path string true "Plan ID (UUID)"
// @Param        request body replaceRequest true "Section and option position"
// @Success      200 {object} types.Plan "Updated Plan"
// @Failure      400 {object} api.ErrorEnvelope "Invalid Input"
// @Failure      401 {object} api.ErrorEnvelope "Unauthorized"
// @Failure      404 {object} api.ErrorEnvelope "Plan Not Found"
// @Security     BearerAuth
// @Router       /plans/{planID}/replace [post]
func (h *HandlerImpl) ReplaceOption(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "ReplaceOption", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/plans/{planID}/replace"),
	))
	defer span.End()

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var req replaceRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.ReplaceOption(ctx, planID, req.SectionIndex, req.OptionIndex)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Plan not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to replace option", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to replace option")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan.Snapshot())
}
