package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/response"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/service"
)

// failFromService maps service sentinel errors onto the response envelope.
// Unrecognized errors become 500 INTERNAL_ERROR without leaking detail.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidState):
		response.Fail(c, http.StatusConflict, response.ErrInvalidState)
	case errors.Is(err, service.ErrInvalidArgument):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidArgument)
	case errors.Is(err, service.ErrConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
