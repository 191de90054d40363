package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/steermate/steermate-backend-go/internal/inference"
	"github.com/steermate/steermate-backend-go/internal/middleware"
	"github.com/steermate/steermate-backend-go/internal/service"
	"github.com/steermate/steermate-backend-go/pkg/response"
)

// writeError maps service errors to HTTP responses. Unknown errors are
// recorded on the context for the access log and hidden from the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTripNotFound):
		response.NotFound(c, "Trip not found")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, "User not found")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		response.Unauthorized(c, "Incorrect email or password")
	case errors.Is(err, service.ErrInvalidTrip):
		response.Unprocessable(c, err.Error())
	case errors.Is(err, inference.ErrInvalidImage):
		response.Unprocessable(c, "Uploaded file is not a valid image")
	case errors.Is(err, inference.ErrUnavailable):
		response.ServiceUnavailable(c, "Sign inference service not available")
	default:
		_ = c.Error(err)
		response.InternalError(c, "Internal server error")
	}
}

// currentUser returns the authenticated user id, writing a 401 when absent.
func currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
	}
	return id, ok
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Unprocessable(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
