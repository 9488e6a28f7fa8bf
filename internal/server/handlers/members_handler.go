package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/service/members"
)

// MembersHandler manages suppliers and archive transfer.
type MembersHandler struct {
	svc    *members.Service
	logger *zap.Logger
}

// NewMembersHandler constructs the members handler.
func NewMembersHandler(svc *members.Service, logger *zap.Logger) *MembersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MembersHandler{svc: svc, logger: logger}
}

type addMemberRequest struct {
	Name string `json:"name" binding:"required"`
}

// List returns members ordered by name.
func (h *MembersHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Add creates a member.
func (h *MembersHandler) Add(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	member, err := h.svc.Add(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// Get returns one member with its history.
func (h *MembersHandler) Get(c *gin.Context) {
	member, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// Delete removes a member.
func (h *MembersHandler) Delete(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearHistory empties a member's history.
func (h *MembersHandler) ClearHistory(c *gin.Context) {
	if err := h.svc.ClearHistory(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export streams the archive. scope=members exports the member list only.
func (h *MembersHandler) Export(c *gin.Context) {
	export := h.svc.ExportAll
	switch c.DefaultQuery("scope", "all") {
	case "all":
	case "members":
		export = h.svc.ExportMembers
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope must be all or members"})
		return
	}

	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := export(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("archive export failed", zap.Error(err))
	}
}

// Import reads an archive from the request body.
func (h *MembersHandler) Import(c *gin.Context) {
	result, err := h.svc.Import(c.Request.Context(), c.Request.Body)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
