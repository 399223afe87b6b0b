package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// authHandler handles registration and login.
type authHandler struct {
	userService portssvc.UserSvcFacade
}

func newAuthHandler(userService portssvc.UserSvcFacade) *authHandler {
	return &authHandler{userService: userService}
}

// register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterUserRequest true "Registration details"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// login godoc
// @Summary Exchange credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	token, user, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, User: dto.ToUserResponse(user)})
}

func registerAuthRoutes(r *gin.Engine, userService portssvc.UserSvcFacade) {
	h := newAuthHandler(userService)
	auth := r.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
}
