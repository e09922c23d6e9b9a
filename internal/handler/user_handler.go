package handler

import (
	"net/http"

	"accessapi/internal/auth"
	"accessapi/internal/middleware"
	"accessapi/internal/service"
	"accessapi/pkg/pagination"
	"accessapi/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	authService service.AuthService
	tokens      *auth.TokenService
}

// NewUserHandler sets up the routing dependencies for User endpoints
func NewUserHandler(userService service.UserService, authService service.AuthService, tokens *auth.TokenService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService, tokens: tokens}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("/login", h.Login)
		users.POST("/refresh", h.RefreshToken)
		users.POST("/", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUserByID)
	}

	router.GET("/me", middleware.RequireAuth(h.tokens), h.GetMe)
	router.POST("/assign-role/:user_id/:role_id", h.AssignRole)
}

// Login handles POST /users/login to authenticate and return a token pair
// @Summary      Login user
// @Description  Authenticates by username and password. Failures are reported in the body with success=false.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest  true  "Login Credentials"
// @Success      200      {object}  service.LoginResponse
// @Failure      400      {object}  service.LoginResponse
// @Router       /users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, service.LoginResponse{Message: service.MsgInvalidPayload})
		return
	}

	c.JSON(http.StatusOK, h.authService.Login(c.Request.Context(), req))
}

// RefreshToken handles POST /users/refresh to rotate the token pair
// @Summary      Refresh token
// @Description  Issues a new access token and refresh token using a valid refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest  true  "Refresh Token"
// @Success      200      {object}  service.LoginResponse
// @Failure      400      {object}  service.LoginResponse
// @Router       /users/refresh [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req service.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, service.LoginResponse{Message: service.MsgInvalidPayload})
		return
	}

	c.JSON(http.StatusOK, h.authService.Refresh(c.Request.Context(), req))
}

// CreateUser handles POST /users/ registration
// @Summary      Register a new user
// @Description  Validates the payload, hashes the password and stores the user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  response.Response{data=service.UserRead}
// @Failure      400      {object}  response.Response
// @Router       /users/ [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// ListUsers handles GET /users and extracts pagination controls
// @Summary      List users
// @Description  Retrieves a paginated list of users
// @Tags         users
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=pagination.Page[service.UserRead]}
// @Failure      500    {object}  response.Response
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	p := pagination.Parse(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		writeError(c, err, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(users, total, p)))
}

// GetUserByID handles GET /users/:id
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserRead}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// GetMe handles GET /me to return current authenticated user based on JWT
// @Summary      Get current user
// @Description  Get the authenticated user with the (resource, permission) pairs granted by their role
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=service.MeResponse}
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	me, err := h.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, me))
}

// AssignRole handles POST /assign-role/:user_id/:role_id
// @Summary      Assign role to user
// @Description  Overwrites the user's role. Both ids must exist.
// @Tags         users
// @Produce      json
// @Param        user_id  path      int  true  "User ID"
// @Param        role_id  path      int  true  "Role ID"
// @Success      200      {object}  response.Response{data=service.AssignRoleResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /assign-role/{user_id}/{role_id} [post]
func (h *UserHandler) AssignRole(c *gin.Context) {
	userID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}
	roleID, ok := uintParam(c, "role_id")
	if !ok {
		return
	}

	res, err := h.userService.AssignRole(c.Request.Context(), userID, roleID)
	if err != nil {
		writeError(c, err, "Failed to assign role")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
