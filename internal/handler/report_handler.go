package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steermate/steermate-backend-go/internal/inference"
	"github.com/steermate/steermate-backend-go/internal/models"
	"github.com/steermate/steermate-backend-go/internal/service"
	"github.com/steermate/steermate-backend-go/pkg/response"
)

// MaxImageSize caps predict_sign uploads.
const MaxImageSize = 10 << 20

// ReportHandler handles HTTP requests for reports and sign prediction
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// GetTripReport handles GET /api/v1/reports/:trip_id
func (h *ReportHandler) GetTripReport(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	tripID, ok := parseID(c, "trip_id")
	if !ok {
		return
	}

	report, err := h.service.Generate(c.Request.Context(), userID, tripID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, report)
}

// GetTrends handles GET /api/v1/reports/analytics/trends
func (h *ReportHandler) GetTrends(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var filter models.TrendFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Unprocessable(c, "Invalid query parameters: "+err.Error())
		return
	}

	trends, err := h.service.Trends(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, trends)
}

// PredictSign handles POST /api/v1/reports/predict_sign (multipart field "file")
func (h *ReportHandler) PredictSign(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	if !h.service.PredictionAvailable() {
		writeError(c, inference.ErrUnavailable)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageSize+1<<20)
	header, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || (err == nil && header.Size > MaxImageSize) {
		response.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Image exceeds %d bytes", MaxImageSize))
		return
	}
	if err != nil {
		response.Unprocessable(c, "An image upload in field \"file\" is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()

	prediction, err := h.service.PredictSign(c.Request.Context(), file)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, prediction)
}
