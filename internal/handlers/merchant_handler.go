package handlers

import (
	"net/http"

	"github.com/anonto42/gamehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// MerchantHandler exposes merchant catalogs and instant purchases
type MerchantHandler struct {
	merchants *services.MerchantService
}

func NewMerchantHandler(merchants *services.MerchantService) *MerchantHandler {
	return &MerchantHandler{merchants: merchants}
}

func (h *MerchantHandler) RegisterMerchantRoutes(g *echo.Group) {
	g.GET("/merchants/:id/offers", h.ListOffers)
	g.POST("/merchants/offers/:id/purchase", h.PurchaseOffer)
}

func (h *MerchantHandler) ListOffers(c echo.Context) error {
	merchantID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	offers, err := h.merchants.GetOffers(c.Request().Context(), merchantID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, offers)
}

// PurchaseOffer buys one copy of a catalog item; the offer stays available
func (h *MerchantHandler) PurchaseOffer(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	offerID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	instance, err := h.merchants.PurchaseOffer(c.Request().Context(), currentUserID, offerID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusCreated, instance)
}
