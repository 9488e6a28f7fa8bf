package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/repository"
	"github.com/mamadbah2/dairy/internal/service/entry"
	"github.com/mamadbah2/dairy/internal/service/members"
	"github.com/mamadbah2/dairy/internal/service/rates"
	"github.com/mamadbah2/dairy/internal/service/reporting"
)

// errUnavailable marks a feature that is switched off by configuration.
var errUnavailable = errors.New("feature not configured")

var errorStatuses = []struct {
	target error
	status int
}{
	{repository.ErrNotFound, http.StatusNotFound},
	{entry.ErrRowIndexOutOfRange, http.StatusNotFound},
	{rates.ErrRateNotConfigured, http.StatusConflict},
	{reporting.ErrReportPending, http.StatusConflict},
	{reporting.ErrFactoryEntryExists, http.StatusConflict},
	{reporting.ErrAlreadyExported, http.StatusConflict},
	{rates.ErrInvalidRate, http.StatusBadRequest},
	{members.ErrBlankName, http.StatusBadRequest},
	{members.ErrEmptyArchive, http.StatusBadRequest},
	{members.ErrUnrecognizedArchive, http.StatusBadRequest},
	{reporting.ErrInvalidFactoryEntry, http.StatusBadRequest},
	{reporting.ErrInvalidShift, http.StatusBadRequest},
	{reporting.ErrAmbiguousSession, http.StatusBadRequest},
	{reporting.ErrExportDisabled, http.StatusServiceUnavailable},
	{errUnavailable, http.StatusServiceUnavailable},
}

// writeError maps service errors to a status and a user facing message.
// Unknown errors are logged and reported as 500 without details.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			c.JSON(e.status, gin.H{"error": e.target.Error()})
			return
		}
	}
	logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
