package handlers

import (
	"net/http"

	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles HTTP requests related to friend requests and friendships
type FriendshipHandler struct {
	relationships *services.RelationshipService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(relationships *services.RelationshipService) *FriendshipHandler {
	return &FriendshipHandler{relationships: relationships}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/requests", h.SendFriendRequest)
	g.GET("/friends/requests/received", h.GetReceivedRequests)
	g.GET("/friends/requests/sent", h.GetSentRequests)
	g.PUT("/friends/requests/:id/accept", h.AcceptFriendRequest)
	g.PUT("/friends/requests/:id/reject", h.RejectFriendRequest)
	g.DELETE("/friends/requests/:id", h.CancelFriendRequest)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:userId", h.RemoveFriend) // Unfriend
}

// SendFriendRequest handles sending a friend request. When the receiver
// already asked the caller, their request is accepted and its id returned.
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	requestID, err := h.relationships.SendRequest(c.Request().Context(), currentUserID, req.ReceiverID)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, http.StatusCreated, echo.Map{"request_id": requestID})
}

func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	req, err := h.relationships.Accept(c.Request().Context(), currentUserID, requestID)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, http.StatusOK, req)
}

func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	req, err := h.relationships.Reject(c.Request().Context(), currentUserID, requestID)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, http.StatusOK, req)
}

func (h *FriendshipHandler) CancelFriendRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.relationships.Cancel(c.Request().Context(), currentUserID, requestID); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RemoveFriend ends a friendship regardless of who sent the original request
func (h *FriendshipHandler) RemoveFriend(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	otherID, err := parseIDParam(c, "userId")
	if err != nil {
		return err
	}

	if err := h.relationships.Remove(c.Request().Context(), currentUserID, otherID); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *FriendshipHandler) GetReceivedRequests(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, err := h.relationships.ListReceived(c.Request().Context(), currentUserID, queryParams(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, page)
}

func (h *FriendshipHandler) GetSentRequests(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, err := h.relationships.ListSent(c.Request().Context(), currentUserID, queryParams(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, page)
}

// GetFriends lists accepted friendships; each row describes the other user
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, err := h.relationships.ListFriends(c.Request().Context(), currentUserID, queryParams(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, page)
}
