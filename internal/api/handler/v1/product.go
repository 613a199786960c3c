package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apocighol/cevicheria-api/internal/api/handler/v1/request"
	"github.com/apocighol/cevicheria-api/internal/api/handler/v1/response"
	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/service"
)

type ProductService interface {
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	GetByID(ctx context.Context, id uint) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id uint) error
}

type ProductHandler struct {
	svc ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{
		svc: svc,
	}
}

// HandleCreateProduct godoc
// @Summary      Add a product to the menu
// @Tags         products
// @Produce      json
// @Param        request   body      request.ProductRequest true "request body"
// @Success      201      {object}   domain.Product
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products [post]
// @Security     BearerAuth
func (h *ProductHandler) HandleCreateProduct(ctx *gin.Context) {
	var req request.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	product, err := h.svc.Create(ctx.Request.Context(), domain.Product{
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Available: available,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNameExists):
			response.RenderErr(ctx, response.ErrConflict(service.ErrProductNameExists))
		case errors.Is(err, service.ErrInvalidPrice):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidPrice))
		default:
			err = fmt.Errorf("v1.HandleCreateProduct -> h.svc.Create -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

// HandleListProducts godoc
// @Summary      List menu products
// @Tags         products
// @Produce      json
// @Success      200      {array}    domain.Product
// @Failure      500      {object}   response.Err
// @Router       /products [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleListProducts(ctx *gin.Context) {
	products, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListProducts -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, products)
}

// HandleGetProduct godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        productID   path  int true "product ID"
// @Success      200      {object}   domain.Product
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID} [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleGetProduct(ctx *gin.Context) {
	productID, respErr := parseUintParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	product, err := h.svc.GetByID(ctx.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("product", "ID", productID))
			return
		}

		err = fmt.Errorf("v1.HandleGetProduct -> h.svc.GetByID -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleUpdateProduct godoc
// @Summary      Update a product
// @Description  Past orders keep their price snapshots; only future orders see the change.
// @Tags         products
// @Produce      json
// @Param        productID   path  int true "product ID"
// @Param        request   body      request.ProductRequest true "request body"
// @Success      200      {object}   domain.Product
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID} [put]
// @Security     BearerAuth
func (h *ProductHandler) HandleUpdateProduct(ctx *gin.Context) {
	productID, respErr := parseUintParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	product, err := h.svc.Update(ctx.Request.Context(), domain.Product{
		ID:        productID,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Available: available,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrNotFound("product", "ID", productID))
		case errors.Is(err, service.ErrProductNameExists):
			response.RenderErr(ctx, response.ErrConflict(service.ErrProductNameExists))
		default:
			err = fmt.Errorf("v1.HandleUpdateProduct -> h.svc.Update -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleDeleteProduct godoc
// @Summary      Remove a product and its recipe
// @Tags         products
// @Produce      json
// @Param        productID   path  int true "product ID"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID} [delete]
// @Security     BearerAuth
func (h *ProductHandler) HandleDeleteProduct(ctx *gin.Context) {
	productID, respErr := parseUintParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), productID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("product", "ID", productID))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteProduct -> h.svc.Delete -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}
