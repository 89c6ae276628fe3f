package http

import (
	"github.com/labstack/echo/v4"

	"papertrade/internal/delivery/http/dto"
	"papertrade/internal/middleware"
	"papertrade/internal/usecase"
)

// TradeHandler handles trading and portfolio requests
type TradeHandler struct {
	tradeService *usecase.TradeService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(tradeService *usecase.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// GetPortfolio returns the user's holdings valued at current prices
// GET /api/portfolio
func (h *TradeHandler) GetPortfolio(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	valuation, err := h.tradeService.ValuePortfolio(c.Request().Context(), userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, dto.FromValuation(valuation))
}

// GetQuote returns the current quote for a symbol
// GET /api/quote/:symbol
func (h *TradeHandler) GetQuote(c echo.Context) error {
	quote, err := h.tradeService.Quote(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, dto.FromQuote(quote))
}

// Buy executes a buy order
// POST /api/trade/buy
func (h *TradeHandler) Buy(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	var req dto.TradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	holding, err := h.tradeService.Buy(c.Request().Context(), userID, req.Symbol, req.Shares)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessMessageResponse(c, "Purchase successful", dto.FromHolding(holding))
}

// Sell executes a sell order
// POST /api/trade/sell
func (h *TradeHandler) Sell(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	var req dto.TradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	remaining, err := h.tradeService.Sell(c.Request().Context(), userID, req.Symbol, req.Shares)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessMessageResponse(c, "Shares sold", dto.SellOutput{
		Symbol:          req.Symbol,
		SharesSold:      req.Shares,
		RemainingShares: remaining,
	})
}

// GetHistory returns the user's activity log
// GET /api/history
func (h *TradeHandler) GetHistory(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	entries, err := h.tradeService.History(c.Request().Context(), userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, dto.FromHistory(entries))
}
