package handler

import (
	"net/http"

	"chatlab/internal/services"
	"chatlab/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles user discovery and contact endpoints.
type UserHandler struct {
	users         *services.UserService
	conversations *services.ConversationService
}

func NewUserHandler(users *services.UserService, conversations *services.ConversationService) *UserHandler {
	return &UserHandler{users: users, conversations: conversations}
}

// Search finds users by username prefix, excluding the caller.
func (h *UserHandler) Search(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.SearchUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	users, err := h.users.Search(c.Request.Context(), userID, req.Query)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewUserDTOs(users)))
}

// AddContact adds a contact and returns the direct conversation with them,
// creating it if the pair never talked before.
func (h *UserHandler) AddContact(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.AddContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	contactID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	if err := h.users.AddContact(c.Request.Context(), userID, contactID); err != nil {
		writeServiceError(c, err)
		return
	}

	conv, err := h.conversations.GetOrCreateDirect(c.Request.Context(), userID, contactID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AddContactResponse{
		Message:      "contact added",
		Conversation: conv,
	}))
}

// Contacts lists the caller's contacts.
func (h *UserHandler) Contacts(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	contacts, err := h.users.Contacts(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewUserDTOs(contacts)))
}

// UpdateProfile changes the caller's username or profile photo.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), userID, req.Username, req.ProfilePhoto)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewUserDTO(u)))
}
