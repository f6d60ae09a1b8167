package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
	"github.com/noah-isme/admissions-crm-api/pkg/response"
)

type leadService interface {
	List(ctx context.Context) ([]models.LeadDetail, error)
	Create(ctx context.Context, req models.LeadRequest) (*models.Lead, error)
	Import(ctx context.Context, file io.Reader) (*models.LeadImportResult, error)
}

// LeadHandler exposes prospect intake endpoints.
type LeadHandler struct {
	service leadService
}

// NewLeadHandler constructs LeadHandler.
func NewLeadHandler(svc leadService) *LeadHandler {
	return &LeadHandler{service: svc}
}

// List godoc
// @Summary List leads
// @Tags Leads
// @Produce json
// @Success 200 {array} models.LeadDetail
// @Router /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	leads, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, leads)
}

// Create godoc
// @Summary Create lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param payload body models.LeadRequest true "Lead payload"
// @Success 201 {object} models.Lead
// @Failure 400 {object} response.ErrorBody
// @Router /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req models.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lead payload"))
		return
	}
	lead, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lead)
}

// Import godoc
// @Summary Import leads from a spreadsheet
// @Description Reads the first sheet of an .xlsx upload. The first row is the header.
// @Tags Leads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet"
// @Success 201 {object} models.LeadImportResult
// @Failure 400 {object} response.ErrorBody
// @Router /leads/import [post]
func (h *LeadHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload"))
		return
	}
	defer file.Close()

	result, err := h.service.Import(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
