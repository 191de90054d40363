package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/steermate/steermate-backend-go/internal/models"
	"github.com/steermate/steermate-backend-go/internal/service"
	"github.com/steermate/steermate-backend-go/pkg/response"
)

// TripHandler handles HTTP requests for trips
type TripHandler struct {
	service *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(service *service.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// UploadTrip handles POST /api/v1/trips/upload
func (h *TripHandler) UploadTrip(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var upload models.TripUpload
	if err := c.ShouldBindJSON(&upload); err != nil {
		response.Unprocessable(c, err.Error())
		return
	}

	trip, err := h.service.Upload(c.Request.Context(), userID, &upload)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, trip)
}

// GetTrips handles GET /api/v1/trips
func (h *TripHandler) GetTrips(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var filter models.TripFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Unprocessable(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// GetTripByID handles GET /api/v1/trips/:id
func (h *TripHandler) GetTripByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	tripID, ok := parseID(c, "id")
	if !ok {
		return
	}

	trip, err := h.service.Get(c.Request.Context(), userID, tripID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, trip)
}
