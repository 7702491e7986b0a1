package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	prospectDomain "lending-backoffice/internal/domain/prospect"
	fundingUC "lending-backoffice/internal/usecase/funding"
)

type FundingHandler struct{ uc *fundingUC.Usecase }

func NewFundingHandler(uc *fundingUC.Usecase) *FundingHandler {
	return &FundingHandler{uc: uc}
}

type distributionReq struct {
	FunderID string          `json:"funder_id" validate:"required,hex32"`
	Amount   decimal.Decimal `json:"amount"`
}

type eventReq struct {
	// canonical date, aligns with the DATE column semantics
	Date          string            `json:"date"          validate:"required,datetime=2006-01-02"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Notes         string            `json:"notes"`
	Distributions []distributionReq `json:"distributions" validate:"required,min=1,dive"`
}

func (r eventReq) toInput() (fundingUC.EventInput, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return fundingUC.EventInput{}, err
	}
	dists := make([]prospectDomain.Distribution, 0, len(r.Distributions))
	for _, d := range r.Distributions {
		dists = append(dists, prospectDomain.Distribution{FunderID: d.FunderID, Amount: d.Amount})
	}
	return fundingUC.EventInput{
		Date:          date.UTC(),
		TotalAmount:   r.TotalAmount,
		Notes:         r.Notes,
		Distributions: dists,
	}, nil
}

func (h *FundingHandler) bindEvent(c echo.Context) (fundingUC.EventInput, bool, error) {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return fundingUC.EventInput{}, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return fundingUC.EventInput{}, false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	in, err := req.toInput()
	if err != nil {
		return fundingUC.EventInput{}, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
	}
	return in, true, nil
}

func (h *FundingHandler) RecordFunding(c echo.Context) error {
	in, ok, resp := h.bindEvent(c)
	if !ok {
		return resp
	}
	p, err := h.uc.RecordFunding(c.Request().Context(), sessionFrom(c), c.Param("prospect_id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *FundingHandler) RecordPayment(c echo.Context) error {
	in, ok, resp := h.bindEvent(c)
	if !ok {
		return resp
	}
	p, err := h.uc.RecordPayment(c.Request().Context(), sessionFrom(c), c.Param("prospect_id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *FundingHandler) DeleteHistoryEvent(c echo.Context) error {
	p, err := h.uc.DeleteHistoryEvent(c.Request().Context(), sessionFrom(c),
		c.Param("prospect_id"), c.Param("event_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type addFunderReq struct {
	LenderID       string                        `json:"lender_id"       validate:"required,hex32"`
	OriginalAmount decimal.Decimal               `json:"original_amount"`
	LenderRate     decimal.Decimal               `json:"lender_rate"`
	ServicingFees  *prospectDomain.ServicingFees `json:"servicing_fees"`
}

func (h *FundingHandler) AddFunder(c echo.Context) error {
	var req addFunderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	p, err := h.uc.AddFunder(c.Request().Context(), sessionFrom(c), c.Param("prospect_id"),
		fundingUC.AddFunderInput{
			LenderID:       req.LenderID,
			OriginalAmount: req.OriginalAmount,
			LenderRate:     req.LenderRate,
			ServicingFees:  req.ServicingFees,
		})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}
