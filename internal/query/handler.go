package query

import (
	"errors"
	"net/http"

	httperr "github.com/envmon-lab/env-server/internal/core/errors"
	"github.com/envmon-lab/env-server/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the query service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/v0/query", s.QueryHandler)
}

// QueryHandler handles POST /api/v0/query.
func (s *Service) QueryHandler(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
			Details:   err.Error(),
		})
		return
	}

	measurements, err := s.Query(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidIntervalError,
				Message:   "Query interval must be at least one second",
				Details:   err.Error(),
			})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpUnknownNameError,
				Message:   "Unknown location or sensor",
				Details:   err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   "Failed to query readings",
			})
		}
		return
	}

	c.JSON(http.StatusOK, measurements)
}
