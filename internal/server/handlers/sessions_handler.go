package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/service/reporting"
	"github.com/mamadbah2/dairy/internal/service/whatsapp"
)

// SessionsHandler exposes saved sessions, factory entries and reports.
type SessionsHandler struct {
	svc       *reporting.Service
	messaging whatsapp.MessagingService
	logger    *zap.Logger
}

// NewSessionsHandler constructs the sessions handler. messaging may be nil
// when WhatsApp is not configured.
func NewSessionsHandler(svc *reporting.Service, messaging whatsapp.MessagingService, logger *zap.Logger) *SessionsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionsHandler{svc: svc, messaging: messaging, logger: logger}
}

type reportResponse struct {
	SessionID string                  `json:"session_id"`
	Report    models.ProductionReport `json:"report"`
	Text      string                  `json:"text"`
}

type summaryResponse struct {
	SessionID string        `json:"session_id"`
	Totals    models.Totals `json:"totals"`
	Text      string        `json:"text"`
}

// List returns sessions filtered by shift and a date query.
func (h *SessionsHandler) List(c *gin.Context) {
	list, err := h.svc.ListSessions(c.Request.Context(), reporting.SessionFilter{
		Shift: c.Query("shift"),
		Query: c.Query("q"),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get returns one session.
func (h *SessionsHandler) Get(c *gin.Context) {
	session, err := h.svc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Delete removes a session. Member histories are left untouched.
func (h *SessionsHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetFactory records the factory entry of a session.
func (h *SessionsHandler) SetFactory(c *gin.Context) {
	var req reporting.FactoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	session, err := h.svc.SetFactoryEntry(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ClearFactory removes the factory entry so it can be entered again.
func (h *SessionsHandler) ClearFactory(c *gin.Context) {
	session, err := h.svc.ClearFactoryEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Report returns the production report of a session.
func (h *SessionsHandler) Report(c *gin.Context) {
	id := c.Param("id")
	report, err := h.svc.Report(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reportResponse{SessionID: id, Report: report, Text: reporting.FormatReport(report)})
}

// Summary returns record totals and the shareable text of a session.
func (h *SessionsHandler) Summary(c *gin.Context) {
	session, err := h.svc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summaryResponse{
		SessionID: session.ID,
		Totals:    reporting.Totals(session.Records),
		Text:      h.svc.FormatSessionSummary(session),
	})
}

// Export appends a session to the configured sheet.
func (h *SessionsHandler) Export(c *gin.Context) {
	rows, err := h.svc.ExportSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// Share sends the session summary over WhatsApp. An empty body sends it to
// the configured operator.
func (h *SessionsHandler) Share(c *gin.Context) {
	if h.messaging == nil {
		writeError(c, h.logger, errUnavailable)
		return
	}
	var req models.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, h.logger, err)
		return
	}
	session, err := h.svc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.messaging.SendToOperator(c.Request.Context(), req.To, h.svc.FormatSessionSummary(session)); err != nil {
		if errors.Is(err, whatsapp.ErrNoRecipient) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed sharing session", zap.String("session_id", session.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}
	c.Status(http.StatusAccepted)
}
