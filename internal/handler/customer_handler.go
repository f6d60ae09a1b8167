package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
	"github.com/noah-isme/admissions-crm-api/pkg/response"
)

type customerService interface {
	List(ctx context.Context) ([]models.Customer, error)
	Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error)
}

// CustomerHandler exposes customer contact endpoints.
type CustomerHandler struct {
	service customerService
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(svc customerService) *CustomerHandler {
	return &CustomerHandler{service: svc}
}

// List godoc
// @Summary List customers
// @Tags Customers
// @Produce json
// @Success 200 {array} models.Customer
// @Router /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, customers)
}

// Create godoc
// @Summary Create customer
// @Description The signed-in user owns the customer unless addedByUserId is given.
// @Tags Customers
// @Accept json
// @Produce json
// @Param payload body models.CustomerRequest true "Customer payload"
// @Success 201 {object} models.Customer
// @Failure 400 {object} response.ErrorBody
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid customer payload"))
		return
	}
	if req.AddedByUserID == nil {
		if claims := claimsFromContext(c); claims != nil {
			owner := claims.UserID
			req.AddedByUserID = &owner
		}
	}
	customer, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, customer)
}
