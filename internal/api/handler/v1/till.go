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

type TillService interface {
	Open(ctx context.Context, openingFloat decimal.Decimal, openedBy string) (domain.CashSession, error)
	RecordExpense(ctx context.Context, description string, amount decimal.Decimal, recordedBy string) (domain.Movement, error)
	Close(ctx context.Context, counted decimal.Decimal, responsible string) (domain.CashSession, error)
	CurrentSession(ctx context.Context) (domain.CashSession, error)
	GetSession(ctx context.Context, id uint) (domain.CashSession, error)
	ListMovements(ctx context.Context, sessionID uint) ([]domain.Movement, error)
	ListClosedSessions(ctx context.Context) ([]domain.CashSession, error)
	ListSessionsByDay(ctx context.Context, day time.Time) ([]domain.CashSession, error)
	Stats(ctx context.Context) (domain.TillStats, error)
}

type TillHandler struct {
	svc  TillService
	uSvc UserService
}

func NewTillHandler(svc TillService, uSvc UserService) *TillHandler {
	return &TillHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleOpenSession godoc
// @Summary      Open the cash session
// @Tags         till
// @Produce      json
// @Param        request   body      request.OpenSessionRequest true "request body"
// @Success      201      {object}   domain.CashSession
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /till/open [post]
// @Security     BearerAuth
func (h *TillHandler) HandleOpenSession(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.OpenSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	session, err := h.svc.Open(ctx.Request.Context(), req.OpeningFloat, user.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionAlreadyOpen):
			response.RenderErr(ctx, response.ErrConflict(service.ErrSessionAlreadyOpen))
		case errors.Is(err, service.ErrInvalidOpeningFloat):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidOpeningFloat))
		default:
			err = fmt.Errorf("v1.HandleOpenSession -> h.svc.Open -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, session)
}

// HandleRecordExpense godoc
// @Summary      Record an expense against the open session
// @Tags         till
// @Produce      json
// @Param        request   body      request.ExpenseRequest true "request body"
// @Success      201      {object}   domain.Movement
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /till/expenses [post]
// @Security     BearerAuth
func (h *TillHandler) HandleRecordExpense(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ExpenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	movement, err := h.svc.RecordExpense(ctx.Request.Context(), req.Description, req.Amount, user.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoOpenSession):
			response.RenderErr(ctx, response.ErrConflict(service.ErrNoOpenSession))
		case errors.Is(err, service.ErrInvalidAmount):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidAmount))
		default:
			err = fmt.Errorf("v1.HandleRecordExpense -> h.svc.RecordExpense -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, movement)
}

// HandleCloseSession godoc
// @Summary      Close the cash session
// @Description  Reconciles the counted cash against the expected drawer amount.
// @Tags         till
// @Produce      json
// @Param        request   body      request.CloseSessionRequest true "request body"
// @Success      200      {object}   domain.CashSession
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /till/close [post]
// @Security     BearerAuth
func (h *TillHandler) HandleCloseSession(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CloseSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	session, err := h.svc.Close(ctx.Request.Context(), req.CountedCash, user.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoOpenSession):
			response.RenderErr(ctx, response.ErrConflict(service.ErrNoOpenSession))
		case errors.Is(err, service.ErrInvalidCount):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidCount))
		default:
			err = fmt.Errorf("v1.HandleCloseSession -> h.svc.Close -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// HandleCurrentSession godoc
// @Summary      Get the open cash session
// @Tags         till
// @Produce      json
// @Success      200      {object}   domain.CashSession
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /till/current [get]
// @Security     BearerAuth
func (h *TillHandler) HandleCurrentSession(ctx *gin.Context) {
	session, err := h.svc.CurrentSession(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoOpenSession) {
			response.RenderErr(ctx, response.ErrNotFound("session", "state", "open"))
			return
		}

		err = fmt.Errorf("v1.HandleCurrentSession -> h.svc.CurrentSession -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// HandleListSessions godoc
// @Summary      List closed sessions
// @Tags         till
// @Produce      json
// @Param        day      query      string false "day (YYYY-MM-DD)"
// @Success      200      {array}    domain.CashSession
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /till/sessions [get]
// @Security     BearerAuth
func (h *TillHandler) HandleListSessions(ctx *gin.Context) {
	var (
		sessions []domain.CashSession
		err      error
	)

	if ctx.Query("day") != "" {
		day, respErr := parseDayQuery(ctx)
		if respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}
		sessions, err = h.svc.ListSessionsByDay(ctx.Request.Context(), day)
	} else {
		sessions, err = h.svc.ListClosedSessions(ctx.Request.Context())
	}
	if err != nil {
		err = fmt.Errorf("v1.HandleListSessions -> h.svc -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, sessions)
}

// HandleGetSession godoc
// @Summary      Get a session by ID
// @Tags         till
// @Produce      json
// @Param        sessionID   path    int true "session ID"
// @Success      200      {object}   domain.CashSession
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /till/sessions/{sessionID} [get]
// @Security     BearerAuth
func (h *TillHandler) HandleGetSession(ctx *gin.Context) {
	sessionID, respErr := parseUintParam(ctx, "sessionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	session, err := h.svc.GetSession(ctx.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("session", "ID", sessionID))
			return
		}

		err = fmt.Errorf("v1.HandleGetSession -> h.svc.GetSession -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// HandleListMovements godoc
// @Summary      List the movements of a session
// @Tags         till
// @Produce      json
// @Param        sessionID   path    int true "session ID"
// @Success      200      {array}    domain.Movement
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /till/sessions/{sessionID}/movements [get]
// @Security     BearerAuth
func (h *TillHandler) HandleListMovements(ctx *gin.Context) {
	sessionID, respErr := parseUintParam(ctx, "sessionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	movements, err := h.svc.ListMovements(ctx.Request.Context(), sessionID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMovements -> h.svc.ListMovements -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, movements)
}

// HandleTillStats godoc
// @Summary      Live till stats
// @Tags         stats
// @Produce      json
// @Success      200      {object}   domain.TillStats
// @Failure      500      {object}   response.Err
// @Router       /stats/till [get]
// @Security     BearerAuth
func (h *TillHandler) HandleTillStats(ctx *gin.Context) {
	stats, err := h.svc.Stats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleTillStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
