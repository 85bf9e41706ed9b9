package handlers

import (
	"net/http"

	"github.com/anonto42/gamehub/backend/internal/query"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/anonto42/gamehub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// WalletHandler serves the caller's balance, inventory and exchange history
type WalletHandler struct {
	accounts *services.AccountService
	events   repositories.ExchangeEventRepository
}

func NewWalletHandler(accounts *services.AccountService, events repositories.ExchangeEventRepository) *WalletHandler {
	return &WalletHandler{accounts: accounts, events: events}
}

func (h *WalletHandler) RegisterWalletRoutes(g *echo.Group) {
	g.GET("/wallet", h.GetWallet)
	g.GET("/inventory", h.GetInventory)
	g.GET("/exchange/history", h.GetExchangeHistory)
}

func (h *WalletHandler) GetWallet(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	account, err := h.accounts.GetWallet(c.Request().Context(), currentUserID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, http.StatusOK, account)
}

func (h *WalletHandler) GetInventory(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, err := h.accounts.ListInventory(c.Request().Context(), currentUserID, queryParams(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, page)
}

// GetExchangeHistory lists the caller's purchases and sales from the event log
func (h *WalletHandler) GetExchangeHistory(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	p := queryParams(c)
	events, total, err := h.events.ListByUser(c.Request().Context(), currentUserID, p)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, query.NewPage(events, p, total))
}
