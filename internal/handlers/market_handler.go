package handlers

import (
	"net/http"

	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// MarketHandler exposes the player-to-player marketplace
type MarketHandler struct {
	offers *services.PeerOfferService
}

func NewMarketHandler(offers *services.PeerOfferService) *MarketHandler {
	return &MarketHandler{offers: offers}
}

func (h *MarketHandler) RegisterMarketRoutes(g *echo.Group) {
	g.GET("/market/offers", h.ListActiveOffers)
	g.GET("/market/offers/history", h.ListOfferHistory)
	g.POST("/market/offers", h.CreateOffer)
	g.DELETE("/market/offers/:id", h.CancelOffer)
	g.POST("/market/offers/:id/purchase", h.PurchaseOffer)
}

func (h *MarketHandler) CreateOffer(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePeerOfferRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	offer, err := h.offers.CreateOffer(c.Request().Context(), currentUserID, req.ItemInstanceID, req.Price)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusCreated, offer)
}

func (h *MarketHandler) CancelOffer(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	offerID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.offers.CancelOffer(c.Request().Context(), currentUserID, offerID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MarketHandler) PurchaseOffer(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	offerID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	offer, err := h.offers.PurchaseOffer(c.Request().Context(), currentUserID, offerID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, offer)
}

func (h *MarketHandler) ListActiveOffers(c echo.Context) error {
	page, err := h.offers.ListOffers(c.Request().Context(), queryParams(c), true)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, page)
}

func (h *MarketHandler) ListOfferHistory(c echo.Context) error {
	page, err := h.offers.ListOffers(c.Request().Context(), queryParams(c), false)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, page)
}
