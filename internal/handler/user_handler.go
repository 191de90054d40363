package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/steermate/steermate-backend-go/internal/service"
	"github.com/steermate/steermate-backend-go/pkg/response"
)

// UserHandler handles HTTP requests for user profiles
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GetProfile handles GET /api/v1/users/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}
