package fakecontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kvctl.io/kvctl/models"
)

// respondSuccess sends {"data": data} with the given status.
func respondSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{"data": data})
}

// respondNoContent sends 204 with an empty body.
func respondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// respondError maps a models error to a status and sends the error envelope.
// The message is the full error text so callers can surface it verbatim.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNamespaceNotFound),
		errors.Is(err, models.ErrClusterNotFound),
		errors.Is(err, models.ErrShardNotFound),
		errors.Is(err, models.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, models.ErrInvalidRequest):
		status = http.StatusBadRequest
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorBody{Message: err.Error()},
	})
}
