package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/apocighol/cevicheria-api/internal/api/handler/v1/request"
	"github.com/apocighol/cevicheria-api/internal/api/handler/v1/response"
	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/service"
)

type PurchaseService interface {
	Register(ctx context.Context, supplier, notes string, inputs []service.PurchaseDetailInput) (domain.Purchase, error)
	GetByID(ctx context.Context, id uint) (domain.Purchase, error)
	GetByCode(ctx context.Context, code string) (domain.Purchase, error)
	List(ctx context.Context) ([]domain.Purchase, error)
	ListByDay(ctx context.Context, day time.Time) ([]domain.Purchase, error)
	SumByDay(ctx context.Context, day time.Time) (decimal.Decimal, error)
}

type PurchaseHandler struct {
	svc PurchaseService
}

func NewPurchaseHandler(svc PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		svc: svc,
	}
}

// HandleRegisterPurchase godoc
// @Summary      Register a goods arrival
// @Description  Every detail bumps its ingredient's stock in the same transaction.
// @Tags         purchases
// @Produce      json
// @Param        request   body      request.RegisterPurchaseRequest true "request body"
// @Success      201      {object}   domain.Purchase
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /purchases [post]
// @Security     BearerAuth
func (h *PurchaseHandler) HandleRegisterPurchase(ctx *gin.Context) {
	var req request.RegisterPurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	for _, detail := range req.Details {
		if err := detail.Validate(); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
	}

	inputs := make([]service.PurchaseDetailInput, 0, len(req.Details))
	for _, detail := range req.Details {
		inputs = append(inputs, service.PurchaseDetailInput{
			IngredientID: detail.IngredientID,
			Quantity:     detail.Quantity,
			UnitCost:     detail.UnitCost,
		})
	}

	purchase, err := h.svc.Register(ctx.Request.Context(), req.Supplier, req.Notes, inputs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIngredientNotFound):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrIngredientNotFound))
		case errors.Is(err, service.ErrEmptyPurchase),
			errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrInvalidUnitCost):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleRegisterPurchase -> h.svc.Register -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, purchase)
}

// HandleListPurchases godoc
// @Summary      List purchases
// @Tags         purchases
// @Produce      json
// @Param        day      query      string false "day (YYYY-MM-DD)"
// @Param        code     query      string false "purchase code"
// @Success      200      {array}    domain.Purchase
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /purchases [get]
// @Security     BearerAuth
func (h *PurchaseHandler) HandleListPurchases(ctx *gin.Context) {
	if code := ctx.Query("code"); code != "" {
		purchase, err := h.svc.GetByCode(ctx.Request.Context(), code)
		if err != nil {
			if errors.Is(err, service.ErrPurchaseNotFound) {
				response.RenderErr(ctx, response.ErrNotFound("purchase", "code", code))
				return
			}

			err = fmt.Errorf("v1.HandleListPurchases -> h.svc.GetByCode -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}

		ctx.JSON(http.StatusOK, []domain.Purchase{purchase})
		return
	}

	var (
		purchases []domain.Purchase
		err       error
	)

	if ctx.Query("day") != "" {
		day, respErr := parseDayQuery(ctx)
		if respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}
		purchases, err = h.svc.ListByDay(ctx.Request.Context(), day)
	} else {
		purchases, err = h.svc.List(ctx.Request.Context())
	}
	if err != nil {
		err = fmt.Errorf("v1.HandleListPurchases -> h.svc -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, purchases)
}

// HandleGetPurchase godoc
// @Summary      Get a purchase
// @Tags         purchases
// @Produce      json
// @Param        purchaseID   path  int true "purchase ID"
// @Success      200      {object}   domain.Purchase
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /purchases/{purchaseID} [get]
// @Security     BearerAuth
func (h *PurchaseHandler) HandleGetPurchase(ctx *gin.Context) {
	purchaseID, respErr := parseUintParam(ctx, "purchaseID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	purchase, err := h.svc.GetByID(ctx.Request.Context(), purchaseID)
	if err != nil {
		if errors.Is(err, service.ErrPurchaseNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("purchase", "ID", purchaseID))
			return
		}

		err = fmt.Errorf("v1.HandleGetPurchase -> h.svc.GetByID -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, purchase)
}
