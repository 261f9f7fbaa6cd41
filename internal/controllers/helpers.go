package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "equipment-system/pkg/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func badRequest(err error) error {
	return apperrors.NewHttpError(http.StatusBadRequest, "Invalid request body", err, nil)
}

func respondWithXLSX(ctx echo.Context, prefix string, content []byte, now time.Time) error {
	fileName := fmt.Sprintf("%s_%s.xlsx", prefix, now.Format("2006-01-02"))
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	return ctx.Stream(http.StatusOK, xlsxContentType, bytes.NewReader(content))
}

// pageLimit is the limit reported back to the client; 0 when the list is unpaged.
func pageLimit(withPagination bool, limit int) int {
	if !withPagination {
		return 0
	}
	return limit
}

// expectedVersionParam читает необязательный ?expected_version= у DELETE запросов.
func expectedVersionParam(ctx echo.Context) (*int, error) {
	raw := ctx.QueryParam("expected_version")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Invalid expected_version", err, nil)
	}
	return &v, nil
}
