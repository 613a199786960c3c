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

type TableService interface {
	Create(ctx context.Context, number, capacity int) (domain.Table, error)
	GetByNumber(ctx context.Context, number int) (domain.Table, error)
	List(ctx context.Context) ([]domain.Table, error)
	ListByState(ctx context.Context, state domain.TableState) ([]domain.Table, error)
	ListByServer(ctx context.Context, server string) ([]domain.Table, error)
	Occupy(ctx context.Context, number, partySize int, server string, override bool) (domain.Table, error)
	Release(ctx context.Context, number int, reason string, force bool) (domain.Table, error)
	Reserve(ctx context.Context, number int) (domain.Table, error)
	SetConsumptionTotal(ctx context.Context, number int, total decimal.Decimal) (domain.Table, error)
	Delete(ctx context.Context, number int) error
	Stats(ctx context.Context) (domain.TableStats, error)
}

type TableHandler struct {
	svc TableService
}

func NewTableHandler(svc TableService) *TableHandler {
	return &TableHandler{
		svc: svc,
	}
}

// HandleCreateTable godoc
// @Summary      Register a floor table
// @Tags         tables
// @Produce      json
// @Param        request   body      request.CreateTableRequest true "request body"
// @Success      201      {object}   domain.Table
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tables [post]
// @Security     BearerAuth
func (h *TableHandler) HandleCreateTable(ctx *gin.Context) {
	var req request.CreateTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	table, err := h.svc.Create(ctx.Request.Context(), req.Number, req.Capacity)
	if err != nil {
		if errors.Is(err, service.ErrTableNumberExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrTableNumberExists))
			return
		}

		err = fmt.Errorf("v1.HandleCreateTable -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, table)
}

// HandleListTables godoc
// @Summary      List floor tables
// @Tags         tables
// @Produce      json
// @Param        state    query      string false "filter by state (available|occupied|reserved)"
// @Param        server   query      string false "filter by assigned server"
// @Success      200      {array}    domain.Table
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tables [get]
// @Security     BearerAuth
func (h *TableHandler) HandleListTables(ctx *gin.Context) {
	var (
		tables []domain.Table
		err    error
	)

	switch {
	case ctx.Query("state") != "":
		state := domain.TableState(ctx.Query("state"))
		if state != domain.TableAvailable && state != domain.TableOccupied && state != domain.TableReserved {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("unknown table state")))
			return
		}
		tables, err = h.svc.ListByState(ctx.Request.Context(), state)
	case ctx.Query("server") != "":
		tables, err = h.svc.ListByServer(ctx.Request.Context(), ctx.Query("server"))
	default:
		tables, err = h.svc.List(ctx.Request.Context())
	}
	if err != nil {
		err = fmt.Errorf("v1.HandleListTables -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tables)
}

// HandleGetTable godoc
// @Summary      Get a table by number
// @Tags         tables
// @Produce      json
// @Param        tableNumber   path   int true "table number"
// @Success      200      {object}   domain.Table
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tables/{tableNumber} [get]
// @Security     BearerAuth
func (h *TableHandler) HandleGetTable(ctx *gin.Context) {
	number, respErr := parseIntParam(ctx, "tableNumber")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	table, err := h.svc.GetByNumber(ctx.Request.Context(), number)
	if err != nil {
		if errors.Is(err, service.ErrTableNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("table", "number", number))
			return
		}

		err = fmt.Errorf("v1.HandleGetTable -> h.svc.GetByNumber -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, table)
}

// HandleOccupyTable godoc
// @Summary      Seat a party at a table
// @Tags         tables
// @Produce      json
// @Param        tableNumber   path   int true "table number"
// @Param        request   body      request.OccupyTableRequest true "request body"
// @Success      200      {object}   domain.Table
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tables/{tableNumber}/occupy [post]
// @Security     BearerAuth
func (h *TableHandler) HandleOccupyTable(ctx *gin.Context) {
	number, respErr := parseIntParam(ctx, "tableNumber")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.OccupyTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	table, err := h.svc.Occupy(ctx.Request.Context(), number, req.PartySize, req.Server, req.Override)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTableNotFound):
			response.RenderErr(ctx, response.ErrNotFound("table", "number", number))
		case errors.Is(err, service.ErrCapacityExceeded):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrCapacityExceeded))
		case errors.Is(err, service.ErrTableOccupied), errors.Is(err, service.ErrTableStateChanged):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleOccupyTable -> h.svc.Occupy -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, table)
}

// HandleReleaseTable godoc
// @Summary      Release a table
// @Tags         tables
// @Produce      json
// @Param        tableNumber   path   int true "table number"
// @Param        request   body      request.ReleaseTableRequest true "request body"
// @Success      200      {object}   domain.Table
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tables/{tableNumber}/release [post]
// @Security     BearerAuth
func (h *TableHandler) HandleReleaseTable(ctx *gin.Context) {
	number, respErr := parseIntParam(ctx, "tableNumber")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReleaseTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	table, err := h.svc.Release(ctx.Request.Context(), number, req.Reason, req.Force)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTableNotFound):
			response.RenderErr(ctx, response.ErrNotFound("table", "number", number))
		case errors.Is(err, service.ErrTableNotOccupied):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrTableNotOccupied))
		case errors.Is(err, service.ErrTableHasActiveOrders), errors.Is(err, service.ErrTableStateChanged):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleReleaseTable -> h.svc.Release -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, table)
}

// HandleReserveTable godoc
// @Summary      Reserve a table
// @Tags         tables
// @Produce      json
// @Param        tableNumber   path   int true "table number"
// @Success      200      {object}   domain.Table
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tables/{tableNumber}/reserve [post]
// @Security     BearerAuth
func (h *TableHandler) HandleReserveTable(ctx *gin.Context) {
	number, respErr := parseIntParam(ctx, "tableNumber")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	table, err := h.svc.Reserve(ctx.Request.Context(), number)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTableNotFound):
			response.RenderErr(ctx, response.ErrNotFound("table", "number", number))
		case errors.Is(err, service.ErrTableNotAvailable), errors.Is(err, service.ErrTableStateChanged):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleReserveTable -> h.svc.Reserve -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, table)
}

// HandleSetTableTotal godoc
// @Summary      Correct the accumulated table total
// @Tags         tables
// @Produce      json
// @Param        tableNumber   path   int true "table number"
// @Param        request   body      request.TableTotalRequest true "request body"
// @Success      200      {object}   domain.Table
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tables/{tableNumber}/total [put]
// @Security     BearerAuth
func (h *TableHandler) HandleSetTableTotal(ctx *gin.Context) {
	number, respErr := parseIntParam(ctx, "tableNumber")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.TableTotalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	table, err := h.svc.SetConsumptionTotal(ctx.Request.Context(), number, req.Total)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTableNotFound):
			response.RenderErr(ctx, response.ErrNotFound("table", "number", number))
		case errors.Is(err, service.ErrNegativeTotal):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrNegativeTotal))
		default:
			err = fmt.Errorf("v1.HandleSetTableTotal -> h.svc.SetConsumptionTotal -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, table)
}

// HandleDeleteTable godoc
// @Summary      Remove a table from the floor
// @Tags         tables
// @Produce      json
// @Param        tableNumber   path   int true "table number"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tables/{tableNumber} [delete]
// @Security     BearerAuth
func (h *TableHandler) HandleDeleteTable(ctx *gin.Context) {
	number, respErr := parseIntParam(ctx, "tableNumber")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), number); err != nil {
		switch {
		case errors.Is(err, service.ErrTableNotFound):
			response.RenderErr(ctx, response.ErrNotFound("table", "number", number))
		case errors.Is(err, service.ErrTableOccupied):
			response.RenderErr(ctx, response.ErrConflict(service.ErrTableOccupied))
		default:
			err = fmt.Errorf("v1.HandleDeleteTable -> h.svc.Delete -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleTableStats godoc
// @Summary      Floor occupancy stats
// @Tags         stats
// @Produce      json
// @Success      200      {object}   domain.TableStats
// @Failure      500      {object}   response.Err
// @Router       /stats/tables [get]
// @Security     BearerAuth
func (h *TableHandler) HandleTableStats(ctx *gin.Context) {
	stats, err := h.svc.Stats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleTableStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
