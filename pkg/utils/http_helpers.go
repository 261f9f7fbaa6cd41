package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/types"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	IdempotencyHeader = "Idempotency-Key"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

// ParseFilterFromQuery reads page, limit, offset, search, sort[field] and filter[field].
// Repeated filter keys are joined with commas.
func ParseFilterFromQuery(values url.Values) types.Filter {
	filterReq := types.Filter{
		Sort:           make(map[string]string),
		Filter:         make(map[string]interface{}),
		Limit:          DefaultLimit,
		Page:           1,
		WithPagination: values.Get("withPagination") != "false",
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filterReq.Limit = min(l, MaxLimit)
		}
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filterReq.Page = p
		}
	}

	filterReq.Offset = (filterReq.Page - 1) * filterReq.Limit
	if offsetStr := values.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filterReq.Offset = o
			filterReq.Page = o/filterReq.Limit + 1
		}
	}

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}

		if key == "search" {
			filterReq.Search = vals[0]
			continue
		}

		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			field := key[5 : len(key)-1]
			direction := strings.ToLower(vals[0])
			if direction == "asc" || direction == "desc" {
				filterReq.Sort[field] = direction
			}
			continue
		}

		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			field := key[7 : len(key)-1]
			filterReq.Filter[field] = strings.Join(vals, ",")
		}
	}

	return filterReq
}

// ParseUUIDParam reads a path parameter that must be a UUID.
func ParseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewHttpError(http.StatusBadRequest, fmt.Sprintf("Invalid %s", name), err, map[string]interface{}{name: raw})
	}
	return id, nil
}

func IdempotencyKey(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(IdempotencyHeader))
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HTTPResponse{Status: true, Body: body, Message: message})
}

// ErrorResponse is the only place where errors become HTTP status codes.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Warn("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}
		return c.JSON(httpErr.Code, &HTTPResponse{Status: false, Message: httpErr.Message, Body: httpErr.Details})
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make(map[string][]string, len(validationErrors))
		for _, e := range validationErrors {
			details[e.Field()] = append(details[e.Field()], fmt.Sprintf("failed on the '%s' rule", e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, &HTTPResponse{Status: false, Message: "Validation failed", Body: details})
	}

	var domainValidation *apperrors.ValidationError
	if errors.As(err, &domainValidation) {
		return c.JSON(http.StatusBadRequest, &HTTPResponse{Status: false, Message: "Validation failed", Body: domainValidation.Errors})
	}

	var invalidOp *apperrors.InvalidOperationError
	if errors.As(err, &invalidOp) {
		return c.JSON(http.StatusConflict, &HTTPResponse{Status: false, Message: invalidOp.Reason})
	}

	switch {
	case apperrors.IsNotFound(err):
		return c.JSON(http.StatusNotFound, &HTTPResponse{Status: false, Message: err.Error()})
	case apperrors.IsConflict(err):
		return c.JSON(http.StatusConflict, &HTTPResponse{Status: false, Message: err.Error()})
	case errors.Is(err, apperrors.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, &HTTPResponse{Status: false, Message: err.Error()})
	case isAuthError(err):
		return c.JSON(http.StatusUnauthorized, &HTTPResponse{Status: false, Message: err.Error()})
	}

	logger.Error("Непредвиденная ошибка", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, &HTTPResponse{Status: false, Message: "Internal server error"})
}

func isAuthError(err error) bool {
	for _, target := range []error{
		apperrors.ErrUnauthorized,
		apperrors.ErrEmptyAuthHeader,
		apperrors.ErrInvalidAuthHeader,
		apperrors.ErrInvalidToken,
		apperrors.ErrInvalidSigningMethod,
		apperrors.ErrTokenExpired,
		apperrors.ErrTokenNotYetValid,
		apperrors.ErrUserIDNotFoundInContext,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
