package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"supplychain-backend/internal/domains/location/model"
	"supplychain-backend/internal/domains/location/service"
	"supplychain-backend/internal/shared/response"
	"supplychain-backend/pkg/logger"
)

type Handler struct {
	svc service.ServiceInterface
}

func NewHandler(svc service.ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func respondLocationError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", verrs)
	case errors.Is(err, model.ErrLocationNotFound):
		response.NotFound(c, "Location not found")
	case errors.Is(err, model.ErrDuplicateCode):
		response.Conflict(c, err.Error())
	default:
		logger.Error("location operation failed", err)
		response.InternalServerError(c, "Failed to process location operation")
	}
}

// CreateLocation registers a new factory, warehouse or storefront.
// POST /api/v1/locations
func (h *Handler) CreateLocation(c *gin.Context) {
	var req model.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	loc, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondLocationError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, loc)
}

// GetLocation returns one location.
// GET /api/v1/locations/:id
func (h *Handler) GetLocation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid location ID")
		return
	}

	loc, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondLocationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, loc)
}

// UpdateLocation renames or (de)activates a location.
// PUT /api/v1/locations/:id
func (h *Handler) UpdateLocation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid location ID")
		return
	}

	var req model.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	loc, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondLocationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, loc)
}

// ListLocations lists locations with optional company, kind and active
// filters.
// GET /api/v1/locations?company_id=&kind=&is_active=
func (h *Handler) ListLocations(c *gin.Context) {
	var filter model.ListLocationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if filter.Kind != nil && !model.IsValidKind(*filter.Kind) {
		response.BadRequest(c, "Unknown location kind: "+*filter.Kind)
		return
	}

	locations, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondLocationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, locations)
}
