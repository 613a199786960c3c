package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/apocighol/cevicheria-api/internal/api/handler/v1/request"
	"github.com/apocighol/cevicheria-api/internal/api/handler/v1/response"
	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/service"
)

type InventoryService interface {
	Create(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error)
	GetByID(ctx context.Context, id uint) (domain.Ingredient, error)
	List(ctx context.Context) ([]domain.Ingredient, error)
	Search(ctx context.Context, term string) ([]domain.Ingredient, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Ingredient, error)
	ListLowStock(ctx context.Context) ([]domain.Ingredient, error)
	ListDepleted(ctx context.Context) ([]domain.Ingredient, error)
	Update(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error)
	Delete(ctx context.Context, id uint) error
	IncreaseStock(ctx context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, error)
	DeductStock(ctx context.Context, id uint, qty decimal.Decimal) (domain.Ingredient, decimal.Decimal, bool, error)
	SetStock(ctx context.Context, id uint, stock decimal.Decimal) (domain.Ingredient, decimal.Decimal, error)
	Stats(ctx context.Context) (domain.InventoryStats, error)
}

type InventoryHandler struct {
	svc InventoryService
}

func NewInventoryHandler(svc InventoryService) *InventoryHandler {
	return &InventoryHandler{
		svc: svc,
	}
}

// HandleCreateIngredient godoc
// @Summary      Register an ingredient
// @Tags         inventory
// @Produce      json
// @Param        request   body      request.IngredientRequest true "request body"
// @Success      201      {object}   domain.Ingredient
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ingredients [post]
// @Security     BearerAuth
func (h *InventoryHandler) HandleCreateIngredient(ctx *gin.Context) {
	var req request.IngredientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ingredient, err := h.svc.Create(ctx.Request.Context(), domain.Ingredient{
		Name:     req.Name,
		Category: req.Category,
		Unit:     req.Unit,
		Stock:    req.Stock,
		MinStock: req.MinStock,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIngredientNameExists):
			response.RenderErr(ctx, response.ErrConflict(service.ErrIngredientNameExists))
		case errors.Is(err, service.ErrInvalidStock):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidStock))
		default:
			err = fmt.Errorf("v1.HandleCreateIngredient -> h.svc.Create -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, ingredient)
}

// HandleListIngredients godoc
// @Summary      List ingredients
// @Tags         inventory
// @Produce      json
// @Param        search     query    string false "search by name"
// @Param        category   query    string false "filter by category"
// @Param        low        query    bool   false "only low stock"
// @Param        depleted   query    bool   false "only depleted"
// @Success      200      {array}    domain.Ingredient
// @Failure      500      {object}   response.Err
// @Router       /ingredients [get]
// @Security     BearerAuth
func (h *InventoryHandler) HandleListIngredients(ctx *gin.Context) {
	var (
		ingredients []domain.Ingredient
		err         error
	)

	switch {
	case ctx.Query("search") != "":
		ingredients, err = h.svc.Search(ctx.Request.Context(), ctx.Query("search"))
	case ctx.Query("category") != "":
		ingredients, err = h.svc.ListByCategory(ctx.Request.Context(), ctx.Query("category"))
	case ctx.Query("low") == "true":
		ingredients, err = h.svc.ListLowStock(ctx.Request.Context())
	case ctx.Query("depleted") == "true":
		ingredients, err = h.svc.ListDepleted(ctx.Request.Context())
	default:
		ingredients, err = h.svc.List(ctx.Request.Context())
	}
	if err != nil {
		err = fmt.Errorf("v1.HandleListIngredients -> h.svc -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, ingredients)
}

// HandleGetIngredient godoc
// @Summary      Get an ingredient
// @Tags         inventory
// @Produce      json
// @Param        ingredientID   path  int true "ingredient ID"
// @Success      200      {object}   domain.Ingredient
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ingredients/{ingredientID} [get]
// @Security     BearerAuth
func (h *InventoryHandler) HandleGetIngredient(ctx *gin.Context) {
	ingredientID, respErr := parseUintParam(ctx, "ingredientID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ingredient, err := h.svc.GetByID(ctx.Request.Context(), ingredientID)
	if err != nil {
		if errors.Is(err, service.ErrIngredientNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ingredient", "ID", ingredientID))
			return
		}

		err = fmt.Errorf("v1.HandleGetIngredient -> h.svc.GetByID -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, ingredient)
}

// HandleUpdateIngredient godoc
// @Summary      Update an ingredient
// @Tags         inventory
// @Produce      json
// @Param        ingredientID   path  int true "ingredient ID"
// @Param        request   body      request.IngredientRequest true "request body"
// @Success      200      {object}   domain.Ingredient
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ingredients/{ingredientID} [put]
// @Security     BearerAuth
func (h *InventoryHandler) HandleUpdateIngredient(ctx *gin.Context) {
	ingredientID, respErr := parseUintParam(ctx, "ingredientID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.IngredientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ingredient, err := h.svc.Update(ctx.Request.Context(), domain.Ingredient{
		ID:       ingredientID,
		Name:     req.Name,
		Category: req.Category,
		Unit:     req.Unit,
		Stock:    req.Stock,
		MinStock: req.MinStock,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIngredientNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ingredient", "ID", ingredientID))
		case errors.Is(err, service.ErrIngredientNameExists):
			response.RenderErr(ctx, response.ErrConflict(service.ErrIngredientNameExists))
		default:
			err = fmt.Errorf("v1.HandleUpdateIngredient -> h.svc.Update -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, ingredient)
}

// HandleDeleteIngredient godoc
// @Summary      Delete an ingredient
// @Tags         inventory
// @Produce      json
// @Param        ingredientID   path  int true "ingredient ID"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ingredients/{ingredientID} [delete]
// @Security     BearerAuth
func (h *InventoryHandler) HandleDeleteIngredient(ctx *gin.Context) {
	ingredientID, respErr := parseUintParam(ctx, "ingredientID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), ingredientID); err != nil {
		switch {
		case errors.Is(err, service.ErrIngredientNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ingredient", "ID", ingredientID))
		case errors.Is(err, service.ErrIngredientInUse):
			response.RenderErr(ctx, response.ErrConflict(service.ErrIngredientInUse))
		default:
			err = fmt.Errorf("v1.HandleDeleteIngredient -> h.svc.Delete -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleIncreaseStock godoc
// @Summary      Increase ingredient stock
// @Tags         inventory
// @Produce      json
// @Param        ingredientID   path  int true "ingredient ID"
// @Param        request   body      request.StockAdjustmentRequest true "request body"
// @Success      200      {object}   domain.Ingredient
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ingredients/{ingredientID}/stock/increase [post]
// @Security     BearerAuth
func (h *InventoryHandler) HandleIncreaseStock(ctx *gin.Context) {
	ingredientID, respErr := parseUintParam(ctx, "ingredientID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.StockAdjustmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ingredient, err := h.svc.IncreaseStock(ctx.Request.Context(), ingredientID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIngredientNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ingredient", "ID", ingredientID))
		case errors.Is(err, service.ErrInvalidAmount):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidAmount))
		default:
			err = fmt.Errorf("v1.HandleIncreaseStock -> h.svc.IncreaseStock -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, ingredient)
}

// HandleDeductStock godoc
// @Summary      Deduct ingredient stock manually
// @Description  Clamps at zero; the response reports how much actually came off.
// @Tags         inventory
// @Produce      json
// @Param        ingredientID   path  int true "ingredient ID"
// @Param        request   body      request.StockAdjustmentRequest true "request body"
// @Success      200      {object}   map[string]any
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ingredients/{ingredientID}/stock/deduct [post]
// @Security     BearerAuth
func (h *InventoryHandler) HandleDeductStock(ctx *gin.Context) {
	ingredientID, respErr := parseUintParam(ctx, "ingredientID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.StockAdjustmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ingredient, applied, full, err := h.svc.DeductStock(ctx.Request.Context(), ingredientID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIngredientNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ingredient", "ID", ingredientID))
		case errors.Is(err, service.ErrInvalidAmount):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidAmount))
		default:
			err = fmt.Errorf("v1.HandleDeductStock -> h.svc.DeductStock -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"ingredient": ingredient,
		"applied":    applied,
		"full":       full,
	})
}

// HandleSetStock godoc
// @Summary      Set ingredient stock after a recount
// @Tags         inventory
// @Produce      json
// @Param        ingredientID   path  int true "ingredient ID"
// @Param        request   body      request.SetStockRequest true "request body"
// @Success      200      {object}   map[string]any
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ingredients/{ingredientID}/stock [put]
// @Security     BearerAuth
func (h *InventoryHandler) HandleSetStock(ctx *gin.Context) {
	ingredientID, respErr := parseUintParam(ctx, "ingredientID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SetStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ingredient, previous, err := h.svc.SetStock(ctx.Request.Context(), ingredientID, req.Stock)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIngredientNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ingredient", "ID", ingredientID))
		case errors.Is(err, service.ErrInvalidStock):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidStock))
		default:
			err = fmt.Errorf("v1.HandleSetStock -> h.svc.SetStock -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"ingredient":     ingredient,
		"previous_stock": previous,
	})
}

// HandleInventoryStats godoc
// @Summary      Inventory stats
// @Tags         stats
// @Produce      json
// @Success      200      {object}   domain.InventoryStats
// @Failure      500      {object}   response.Err
// @Router       /stats/inventory [get]
// @Security     BearerAuth
func (h *InventoryHandler) HandleInventoryStats(ctx *gin.Context) {
	stats, err := h.svc.Stats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleInventoryStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
