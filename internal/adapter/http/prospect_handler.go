package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	prospectDomain "lending-backoffice/internal/domain/prospect"
	"lending-backoffice/internal/infrastructure/blob"
	prospectUC "lending-backoffice/internal/usecase/prospect"
)

type ProspectHandler struct {
	uc    *prospectUC.Usecase
	blobs blob.Store
}

func NewProspectHandler(uc *prospectUC.Usecase, blobs blob.Store) *ProspectHandler {
	return &ProspectHandler{uc: uc, blobs: blobs}
}

type createProspectReq struct {
	Code         string          `json:"code"`
	BorrowerName string          `json:"borrower_name" validate:"required"`
	BorrowerType string          `json:"borrower_type" validate:"required,oneof=individual company both"`
	LoanType     string          `json:"loan_type"     validate:"required,oneof=purchase refinance"`
	LoanAmount   decimal.Decimal `json:"loan_amount"`
	AssignedTo   string          `json:"assigned_to"   validate:"omitempty,hex32"`
}

func (h *ProspectHandler) Create(c echo.Context) error {
	var req createProspectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	p, err := h.uc.Create(c.Request().Context(), prospectUC.CreateInput{
		Code:         req.Code,
		BorrowerName: req.BorrowerName,
		BorrowerType: prospectDomain.BorrowerType(req.BorrowerType),
		LoanType:     prospectDomain.LoanType(req.LoanType),
		LoanAmount:   req.LoanAmount,
		AssignedTo:   req.AssignedTo,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProspectHandler) Get(c echo.Context) error {
	p, err := h.uc.Get(c.Request().Context(), c.Param("prospect_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProspectHandler) List(c echo.Context) error {
	f := prospectDomain.ListFilter{
		Status:     prospectDomain.Status(c.QueryParam("status")),
		AssignedTo: c.QueryParam("assigned_to"),
	}
	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type updateProspectReq struct {
	BorrowerName    *string                         `json:"borrower_name"`
	BorrowerType    *prospectDomain.BorrowerType    `json:"borrower_type"`
	LoanType        *prospectDomain.LoanType        `json:"loan_type"`
	LoanAmount      *decimal.Decimal                `json:"loan_amount"`
	AssignedTo      *string                         `json:"assigned_to"`
	Terms           *prospectDomain.Terms           `json:"terms"`
	Funders         *[]prospectDomain.Funder        `json:"funders"`
	History         *[]prospectDomain.HistoryEvent  `json:"history"`
	Properties      datatypes.JSON                  `json:"properties"`
	CoBorrowers     datatypes.JSON                  `json:"co_borrowers"`
	BorrowerDetails datatypes.JSON                  `json:"borrower_details"`
}

// Update is the orchestrated partial update; every nil field is untouched.
func (h *ProspectHandler) Update(c echo.Context) error {
	var req updateProspectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	p, err := h.uc.ApplyUpdate(c.Request().Context(), sessionFrom(c), c.Param("prospect_id"), prospectUC.Patch{
		BorrowerName:    req.BorrowerName,
		BorrowerType:    req.BorrowerType,
		LoanType:        req.LoanType,
		LoanAmount:      req.LoanAmount,
		AssignedTo:      req.AssignedTo,
		Terms:           req.Terms,
		Funders:         req.Funders,
		History:         req.History,
		Properties:      req.Properties,
		CoBorrowers:     req.CoBorrowers,
		BorrowerDetails: req.BorrowerDetails,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProspectHandler) Reject(c echo.Context) error {
	p, err := h.uc.Reject(c.Request().Context(), sessionFrom(c), c.Param("prospect_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProspectHandler) Reopen(c echo.Context) error {
	p, err := h.uc.Reopen(c.Request().Context(), sessionFrom(c), c.Param("prospect_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type setDocumentStatusReq struct {
	Status string `json:"status" validate:"required,oneof=missing ready_for_review approved rejected"`
}

func (h *ProspectHandler) SetDocumentStatus(c echo.Context) error {
	stageID, err := strconv.Atoi(c.Param("stage_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid stage_id"})
	}
	var req setDocumentStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	p, err := h.uc.SetDocumentStatus(c.Request().Context(), sessionFrom(c),
		c.Param("prospect_id"), stageID, c.Param("doc_id"), prospectDomain.DocumentStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type closingFlagsReq struct {
	Sent   *bool `json:"sent"`
	Signed *bool `json:"signed"`
	Filled *bool `json:"filled"`
}

func (h *ProspectHandler) SetClosingFlags(c echo.Context) error {
	stageID, err := strconv.Atoi(c.Param("stage_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid stage_id"})
	}
	var req closingFlagsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	p, err := h.uc.SetClosingFlags(c.Request().Context(), sessionFrom(c),
		c.Param("prospect_id"), stageID, c.Param("doc_id"), prospectUC.ClosingFlags{
			Sent:   req.Sent,
			Signed: req.Signed,
			Filled: req.Filled,
		})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type addDocumentReq struct {
	Bucket   string `json:"bucket"   validate:"required,oneof=individual company property general closing_final_approval"`
	Name     string `json:"name"     validate:"required"`
	Optional bool   `json:"optional"`
	Category string `json:"category" validate:"omitempty,oneof=disclosures loan_docs"`
}

func (h *ProspectHandler) AddDocument(c echo.Context) error {
	stageID, err := strconv.Atoi(c.Param("stage_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid stage_id"})
	}
	var req addDocumentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	p, err := h.uc.AddCustomDocument(c.Request().Context(), sessionFrom(c), c.Param("prospect_id"),
		prospectUC.AddDocumentInput{
			StageID:  stageID,
			Bucket:   req.Bucket,
			Name:     req.Name,
			Optional: req.Optional,
			Category: prospectDomain.ClosingCategory(req.Category),
		})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProspectHandler) RemoveDocument(c echo.Context) error {
	stageID, err := strconv.Atoi(c.Param("stage_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid stage_id"})
	}
	p, err := h.uc.RemoveCustomDocument(c.Request().Context(), sessionFrom(c),
		c.Param("prospect_id"), stageID, c.Param("doc_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// UploadDocumentFile stores the file in the blob bucket and records the URL on
// the document, promoting a missing document to ready_for_review.
func (h *ProspectHandler) UploadDocumentFile(c echo.Context) error {
	stageID, err := strconv.Atoi(c.Param("stage_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid stage_id"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing file"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable file"})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable file"})
	}

	prospectID := c.Param("prospect_id")
	docID := c.Param("doc_id")
	path := fmt.Sprintf("prospects/%s/stage-%d/%s/%s", prospectID, stageID, docID, fh.Filename)
	contentType := fh.Header.Get("Content-Type")
	url, err := h.blobs.Put(c.Request().Context(), path, data, contentType)
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "blob store: " + err.Error()})
	}

	p, err := h.uc.AttachDocumentFile(c.Request().Context(), sessionFrom(c), prospectID, stageID, docID, url)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
