package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	lenderDomain "lending-backoffice/internal/domain/lender"
	lenderUC "lending-backoffice/internal/usecase/lender"
)

type LenderHandler struct{ uc *lenderUC.Usecase }

func NewLenderHandler(uc *lenderUC.Usecase) *LenderHandler { return &LenderHandler{uc: uc} }

type createLenderReq struct {
	Account        string          `json:"account"`
	LenderName     string          `json:"lender_name" validate:"required"`
	Address        string          `json:"address"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
}

func (h *LenderHandler) Create(c echo.Context) error {
	var req createLenderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	l, err := h.uc.Create(c.Request().Context(), lenderUC.CreateInput{
		Account:        req.Account,
		LenderName:     req.LenderName,
		Address:        req.Address,
		PortfolioValue: req.PortfolioValue,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *LenderHandler) Get(c echo.Context) error {
	l, err := h.uc.Get(c.Request().Context(), c.Param("lender_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LenderHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type trustTransactionReq struct {
	Type            string          `json:"type"        validate:"required"`
	Date            string          `json:"date"        validate:"required,datetime=2006-01-02"`
	Description     string          `json:"description" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	RelatedLoanID   string          `json:"related_loan_id"   validate:"omitempty,hex32"`
	RelatedLoanCode string          `json:"related_loan_code"`
}

// AddTrustTransaction mirrors the server-side atomic trust operation: one
// validated event, one balance move, persisted together or not at all.
func (h *LenderHandler) AddTrustTransaction(c echo.Context) error {
	var req trustTransactionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
	}
	l, err := h.uc.AddTrustTransaction(c.Request().Context(), sessionFrom(c), c.Param("lender_id"),
		lenderDomain.TransactionInput{
			Type:            lenderDomain.EventType(req.Type),
			Date:            date.UTC(),
			Description:     req.Description,
			Amount:          req.Amount,
			RelatedLoanID:   req.RelatedLoanID,
			RelatedLoanCode: req.RelatedLoanCode,
		})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}
