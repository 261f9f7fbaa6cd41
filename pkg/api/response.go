package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"equipment-system/pkg/types"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
}

type ListBody[T any] struct {
	List       []T               `json:"list"`
	Pagination *types.Pagination `json:"pagination,omitempty"`
}

func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{Status: true, Message: message, Body: data})
}

// SuccessList wraps a page. A limit of 0 means the list is complete and carries no pagination.
func SuccessList[T any](c echo.Context, message string, list []T, total uint64, page, limit int) error {
	if list == nil {
		list = make([]T, 0)
	}
	body := ListBody[T]{List: list}
	if limit > 0 {
		p := types.NewPagination(total, page, limit)
		body.Pagination = &p
	}
	return c.JSON(http.StatusOK, Response[ListBody[T]]{Status: true, Message: message, Body: body})
}
