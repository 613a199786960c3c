package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apocighol/cevicheria-api/internal/api/handler/v1/response"
	"github.com/apocighol/cevicheria-api/internal/api/middleware"
	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

func getUserFromContext(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	val, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return domain.User{}, response.ErrUnauthorized(errors.New("missing authentication"))
	}

	userID, ok := val.(uint)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errors.New("invalid authentication"))
	}

	user, err := svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrUnauthorized(errors.New("unknown user"))
		}

		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("getUserFromContext -> svc.GetUser -> %w", err))
	}

	return user, nil
}

func parseUintParam(ctx *gin.Context, name string) (uint, *response.Err) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %v", name))
	}

	return uint(value), nil
}

func parseIntParam(ctx *gin.Context, name string) (int, *response.Err) {
	value, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %v", name))
	}

	return value, nil
}

// parseDayQuery reads a "day" query in YYYY-MM-DD form, defaulting to today.
func parseDayQuery(ctx *gin.Context) (time.Time, *response.Err) {
	raw := ctx.Query("day")
	if raw == "" {
		return time.Now(), nil
	}

	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, response.ErrBadRequest(errors.New("invalid day, expected YYYY-MM-DD"))
	}

	return day, nil
}
