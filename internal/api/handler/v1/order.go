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

type OrderService interface {
	Create(ctx context.Context, tableNumber int, server, note string, inputs []service.OrderLineInput) (domain.Order, domain.DeductionSummary, error)
	AdvanceState(ctx context.Context, id uint, target domain.OrderState) (domain.Order, error)
	Void(ctx context.Context, id uint, reason, actor string) (domain.Order, error)
	ApplyDiscount(ctx context.Context, id uint, discount decimal.Decimal) (domain.Order, error)
	CollectPayment(ctx context.Context, id uint, payments []service.PaymentInput, actor string) (domain.Order, error)
	CollectTable(ctx context.Context, tableNumber int, method domain.PaymentMethod, actor string) ([]domain.Order, error)
	GetByID(ctx context.Context, id uint) (domain.Order, error)
	GetByCode(ctx context.Context, code string) (domain.Order, error)
	ListByTable(ctx context.Context, tableNumber int, activeOnly bool) ([]domain.Order, error)
	ListByState(ctx context.Context, state domain.OrderState) ([]domain.Order, error)
	ListByDay(ctx context.Context, day time.Time, server string) ([]domain.Order, error)
	ListVoided(ctx context.Context, from, to *time.Time, actor string) ([]domain.Order, error)
	Stats(ctx context.Context) (domain.OrderStats, error)
}

type OrderHandler struct {
	svc  OrderService
	uSvc UserService
}

func NewOrderHandler(svc OrderService, uSvc UserService) *OrderHandler {
	return &OrderHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateOrder godoc
// @Summary      Create an order for an occupied table
// @Tags         orders
// @Produce      json
// @Param        request   body      request.CreateOrderRequest true "request body"
// @Success      201      {object}   response.OrderCreatedResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /orders [post]
// @Security     BearerAuth
func (h *OrderHandler) HandleCreateOrder(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	inputs := make([]service.OrderLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		inputs = append(inputs, service.OrderLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Note:      line.Note,
		})
	}

	order, summary, err := h.svc.Create(ctx.Request.Context(), req.TableNumber, user.Name, req.Note, inputs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTableNotFound):
			response.RenderErr(ctx, response.ErrNotFound("table", "number", req.TableNumber))
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrProductNotFound))
		case errors.Is(err, service.ErrTableNotOccupied),
			errors.Is(err, service.ErrProductUnavailable),
			errors.Is(err, service.ErrEmptyOrder),
			errors.Is(err, service.ErrInvalidQuantity):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleCreateOrder -> h.svc.Create -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, response.OrderCreatedResponse{
		Order:     order,
		Deduction: summary,
	})
}

// HandleListOrders godoc
// @Summary      List orders
// @Description  Filters by table, state, code, day or server. State "voided" also accepts from/to/actor.
// @Tags         orders
// @Produce      json
// @Param        table    query      int    false "table number"
// @Param        active   query      bool   false "with table, only active orders"
// @Param        state    query      string false "order state"
// @Param        code     query      string false "order code"
// @Param        day      query      string false "day (YYYY-MM-DD)"
// @Param        server   query      string false "server name"
// @Success      200      {array}    domain.Order
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /orders [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleListOrders(ctx *gin.Context) {
	if code := ctx.Query("code"); code != "" {
		order, err := h.svc.GetByCode(ctx.Request.Context(), code)
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				response.RenderErr(ctx, response.ErrNotFound("order", "code", code))
				return
			}

			err = fmt.Errorf("v1.HandleListOrders -> h.svc.GetByCode -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}

		ctx.JSON(http.StatusOK, []domain.Order{order})
		return
	}

	var (
		orders []domain.Order
		err    error
	)

	switch {
	case ctx.Query("table") != "":
		var number int
		if _, convErr := fmt.Sscanf(ctx.Query("table"), "%d", &number); convErr != nil {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid table number")))
			return
		}
		orders, err = h.svc.ListByTable(ctx.Request.Context(), number, ctx.Query("active") == "true")
	case ctx.Query("state") == string(domain.OrderVoided):
		from, to, respErr := parseVoidedRange(ctx)
		if respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}
		orders, err = h.svc.ListVoided(ctx.Request.Context(), from, to, ctx.Query("actor"))
	case ctx.Query("state") != "":
		state := domain.OrderState(ctx.Query("state"))
		if !state.IsValid() {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("unknown order state")))
			return
		}
		orders, err = h.svc.ListByState(ctx.Request.Context(), state)
	default:
		day, respErr := parseDayQuery(ctx)
		if respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}
		orders, err = h.svc.ListByDay(ctx.Request.Context(), day, ctx.Query("server"))
	}
	if err != nil {
		err = fmt.Errorf("v1.HandleListOrders -> h.svc -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

func parseVoidedRange(ctx *gin.Context) (*time.Time, *time.Time, *response.Err) {
	var from, to *time.Time

	if raw := ctx.Query("from"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return nil, nil, response.ErrBadRequest(errors.New("invalid from, expected YYYY-MM-DD"))
		}
		from = &parsed
	}
	if raw := ctx.Query("to"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return nil, nil, response.ErrBadRequest(errors.New("invalid to, expected YYYY-MM-DD"))
		}
		to = &parsed
	}

	return from, to, nil
}

// HandleGetOrder godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        orderID   path      int true "order ID"
// @Success      200      {object}   domain.Order
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /orders/{orderID} [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleGetOrder(ctx *gin.Context) {
	orderID, respErr := parseUintParam(ctx, "orderID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	order, err := h.svc.GetByID(ctx.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
			return
		}

		err = fmt.Errorf("v1.HandleGetOrder -> h.svc.GetByID -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleChangeOrderState godoc
// @Summary      Advance an order along the kitchen chain
// @Tags         orders
// @Produce      json
// @Param        orderID   path      int true "order ID"
// @Param        request   body      request.ChangeOrderStateRequest true "request body"
// @Success      200      {object}   domain.Order
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /orders/{orderID}/state [post]
// @Security     BearerAuth
func (h *OrderHandler) HandleChangeOrderState(ctx *gin.Context) {
	orderID, respErr := parseUintParam(ctx, "orderID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ChangeOrderStateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	order, err := h.svc.AdvanceState(ctx.Request.Context(), orderID, domain.OrderState(req.State))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
		case errors.Is(err, service.ErrInvalidTransition):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidTransition))
		case errors.Is(err, service.ErrOrderTerminal), errors.Is(err, service.ErrOrderStateChanged):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleChangeOrderState -> h.svc.AdvanceState -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleVoidOrder godoc
// @Summary      Void an order
// @Tags         orders
// @Produce      json
// @Param        orderID   path      int true "order ID"
// @Param        request   body      request.VoidOrderRequest true "request body"
// @Success      200      {object}   domain.Order
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /orders/{orderID}/void [post]
// @Security     BearerAuth
func (h *OrderHandler) HandleVoidOrder(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	orderID, respErr := parseUintParam(ctx, "orderID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.VoidOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	order, err := h.svc.Void(ctx.Request.Context(), orderID, req.Reason, user.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
		case errors.Is(err, service.ErrOrderTerminal):
			response.RenderErr(ctx, response.ErrConflict(service.ErrOrderTerminal))
		default:
			err = fmt.Errorf("v1.HandleVoidOrder -> h.svc.Void -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleApplyDiscount godoc
// @Summary      Apply a discount to an order
// @Tags         orders
// @Produce      json
// @Param        orderID   path      int true "order ID"
// @Param        request   body      request.DiscountRequest true "request body"
// @Success      200      {object}   domain.Order
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /orders/{orderID}/discount [post]
// @Security     BearerAuth
func (h *OrderHandler) HandleApplyDiscount(ctx *gin.Context) {
	orderID, respErr := parseUintParam(ctx, "orderID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.DiscountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	order, err := h.svc.ApplyDiscount(ctx.Request.Context(), orderID, req.Discount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
		case errors.Is(err, service.ErrInvalidDiscount):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidDiscount))
		case errors.Is(err, service.ErrOrderTerminal):
			response.RenderErr(ctx, response.ErrConflict(service.ErrOrderTerminal))
		default:
			err = fmt.Errorf("v1.HandleApplyDiscount -> h.svc.ApplyDiscount -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleCollectPayment godoc
// @Summary      Collect payment for an order
// @Description  Split payments must add up to the exact order total. Requires an open cash session.
// @Tags         orders
// @Produce      json
// @Param        orderID   path      int true "order ID"
// @Param        request   body      request.CollectPaymentRequest true "request body"
// @Success      200      {object}   domain.Order
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /orders/{orderID}/payment [post]
// @Security     BearerAuth
func (h *OrderHandler) HandleCollectPayment(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	orderID, respErr := parseUintParam(ctx, "orderID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CollectPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	for _, p := range req.Payments {
		if err := p.Validate(); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
	}

	payments := make([]service.PaymentInput, 0, len(req.Payments))
	for _, p := range req.Payments {
		payments = append(payments, service.PaymentInput{
			Method:   domain.PaymentMethod(p.Method),
			Amount:   p.Amount,
			Tendered: p.Tendered,
		})
	}

	order, err := h.svc.CollectPayment(ctx.Request.Context(), orderID, payments, user.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
		case errors.Is(err, service.ErrPaymentMismatch),
			errors.Is(err, service.ErrInvalidPaymentMethod),
			errors.Is(err, service.ErrInsufficientTendered):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrOrderTerminal),
			errors.Is(err, service.ErrNoOpenSession),
			errors.Is(err, service.ErrOrderStateChanged):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleCollectPayment -> h.svc.CollectPayment -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleCollectTable godoc
// @Summary      Collect every active order on a table
// @Description  Settles the whole table with one payment method, one sale movement per order. Requires an open cash session.
// @Tags         orders
// @Produce      json
// @Param        tableNumber   path   int true "table number"
// @Param        request   body      request.CollectTableRequest true "request body"
// @Success      200      {array}    domain.Order
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tables/{tableNumber}/collect [post]
// @Security     BearerAuth
func (h *OrderHandler) HandleCollectTable(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tableNumber, respErr := parseIntParam(ctx, "tableNumber")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CollectTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	orders, err := h.svc.CollectTable(ctx.Request.Context(), tableNumber, domain.PaymentMethod(req.Method), user.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTableNotFound):
			response.RenderErr(ctx, response.ErrNotFound("table", "number", tableNumber))
		case errors.Is(err, service.ErrInvalidPaymentMethod), errors.Is(err, service.ErrNoActiveOrders):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrNoOpenSession), errors.Is(err, service.ErrOrderTerminal):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleCollectTable -> h.svc.CollectTable -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleOrderStats godoc
// @Summary      Today's order stats
// @Tags         stats
// @Produce      json
// @Success      200      {object}   domain.OrderStats
// @Failure      500      {object}   response.Err
// @Router       /stats/orders [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleOrderStats(ctx *gin.Context) {
	stats, err := h.svc.Stats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleOrderStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
