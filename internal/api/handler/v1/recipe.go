package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/apocighol/cevicheria-api/internal/api/handler/v1/request"
	"github.com/apocighol/cevicheria-api/internal/api/handler/v1/response"
	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/service"
)

type RecipeService interface {
	Define(ctx context.Context, productID uint, lines []domain.RecipeLine) ([]domain.RecipeLine, error)
	Get(ctx context.Context, productID uint) ([]domain.RecipeLine, error)
	UpsertLine(ctx context.Context, line domain.RecipeLine) (domain.RecipeLine, error)
	RemoveLine(ctx context.Context, productID, ingredientID uint) error
	Remove(ctx context.Context, productID uint) error
	CheckAvailability(ctx context.Context, productID uint, quantity int) (domain.AvailabilityCheck, error)
}

type RecipeHandler struct {
	svc RecipeService
}

func NewRecipeHandler(svc RecipeService) *RecipeHandler {
	return &RecipeHandler{
		svc: svc,
	}
}

// HandleDefineRecipe godoc
// @Summary      Define or replace a product's recipe
// @Tags         recipes
// @Produce      json
// @Param        productID   path  int true "product ID"
// @Param        request   body      request.DefineRecipeRequest true "request body"
// @Success      200      {array}    domain.RecipeLine
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID}/recipe [put]
// @Security     BearerAuth
func (h *RecipeHandler) HandleDefineRecipe(ctx *gin.Context) {
	productID, respErr := parseUintParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.DefineRecipeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	for _, line := range req.Lines {
		if err := line.Validate(); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
	}

	lines := make([]domain.RecipeLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, domain.RecipeLine{
			IngredientID:    line.IngredientID,
			QuantityPerUnit: line.QuantityPerUnit,
		})
	}

	replaced, err := h.svc.Define(ctx.Request.Context(), productID, lines)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrNotFound("product", "ID", productID))
		case errors.Is(err, service.ErrRecipeIngredientUnknown),
			errors.Is(err, service.ErrEmptyRecipe),
			errors.Is(err, service.ErrInvalidRecipeQuantity):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleDefineRecipe -> h.svc.Define -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, replaced)
}

// HandleGetRecipe godoc
// @Summary      Get a product's recipe
// @Tags         recipes
// @Produce      json
// @Param        productID   path  int true "product ID"
// @Success      200      {array}    domain.RecipeLine
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID}/recipe [get]
// @Security     BearerAuth
func (h *RecipeHandler) HandleGetRecipe(ctx *gin.Context) {
	productID, respErr := parseUintParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	lines, err := h.svc.Get(ctx.Request.Context(), productID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetRecipe -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, lines)
}

// HandleUpsertRecipeLine godoc
// @Summary      Add or update one recipe line
// @Tags         recipes
// @Produce      json
// @Param        productID   path  int true "product ID"
// @Param        request   body      request.RecipeLineRequest true "request body"
// @Success      200      {object}   domain.RecipeLine
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID}/recipe/lines [post]
// @Security     BearerAuth
func (h *RecipeHandler) HandleUpsertRecipeLine(ctx *gin.Context) {
	productID, respErr := parseUintParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RecipeLineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	line, err := h.svc.UpsertLine(ctx.Request.Context(), domain.RecipeLine{
		ProductID:       productID,
		IngredientID:    req.IngredientID,
		QuantityPerUnit: req.QuantityPerUnit,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrNotFound("product", "ID", productID))
		case errors.Is(err, service.ErrIngredientNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ingredient", "ID", req.IngredientID))
		case errors.Is(err, service.ErrInvalidRecipeQuantity):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidRecipeQuantity))
		default:
			err = fmt.Errorf("v1.HandleUpsertRecipeLine -> h.svc.UpsertLine -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, line)
}

// HandleDeleteRecipeLine godoc
// @Summary      Remove one recipe line
// @Tags         recipes
// @Produce      json
// @Param        productID      path  int true "product ID"
// @Param        ingredientID   path  int true "ingredient ID"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID}/recipe/lines/{ingredientID} [delete]
// @Security     BearerAuth
func (h *RecipeHandler) HandleDeleteRecipeLine(ctx *gin.Context) {
	productID, respErr := parseUintParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ingredientID, respErr := parseUintParam(ctx, "ingredientID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.RemoveLine(ctx.Request.Context(), productID, ingredientID); err != nil {
		err = fmt.Errorf("v1.HandleDeleteRecipeLine -> h.svc.RemoveLine -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleDeleteRecipe godoc
// @Summary      Remove a product's whole recipe
// @Tags         recipes
// @Produce      json
// @Param        productID   path  int true "product ID"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID}/recipe [delete]
// @Security     BearerAuth
func (h *RecipeHandler) HandleDeleteRecipe(ctx *gin.Context) {
	productID, respErr := parseUintParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Remove(ctx.Request.Context(), productID); err != nil {
		err = fmt.Errorf("v1.HandleDeleteRecipe -> h.svc.Remove -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleCheckAvailability godoc
// @Summary      Check whether stock covers a quantity of a product
// @Description  Advisory only; nothing is reserved.
// @Tags         recipes
// @Produce      json
// @Param        productID   path   int true "product ID"
// @Param        quantity    query  int false "quantity (default 1)"
// @Success      200      {object}   domain.AvailabilityCheck
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID}/availability [get]
// @Security     BearerAuth
func (h *RecipeHandler) HandleCheckAvailability(ctx *gin.Context) {
	productID, respErr := parseUintParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	quantity := 1
	if raw := ctx.Query("quantity"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid quantity")))
			return
		}
		quantity = parsed
	}

	check, err := h.svc.CheckAvailability(ctx.Request.Context(), productID, quantity)
	if err != nil {
		err = fmt.Errorf("v1.HandleCheckAvailability -> h.svc.CheckAvailability -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, check)
}
