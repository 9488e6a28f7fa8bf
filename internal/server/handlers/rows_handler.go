package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/service/entry"
)

// RowsHandler drives the entry grid of the current shift.
type RowsHandler struct {
	engine *entry.Engine
	logger *zap.Logger
}

// NewRowsHandler constructs the rows handler.
func NewRowsHandler(engine *entry.Engine, logger *zap.Logger) *RowsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RowsHandler{engine: engine, logger: logger}
}

// updateRowRequest carries the fields to change. Absent fields are kept.
type updateRowRequest struct {
	Name    *string `json:"name"`
	FatRate *string `json:"fat_rate"`
	MilkQty *string `json:"milk_qty"`
}

type spokenRequest struct {
	Text string `json:"text" binding:"required"`
}

// Snapshot returns the grid with totals.
func (h *RowsHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot(c.Request.Context()))
}

// Add appends an empty row.
func (h *RowsHandler) Add(c *gin.Context) {
	c.JSON(http.StatusCreated, h.engine.AddEmptyRow(c.Request.Context()))
}

// Init replaces the grid with one blank row per stored member.
func (h *RowsHandler) Init(c *gin.Context) {
	snap, err := h.engine.InitializeFromStore(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Update edits one row by its zero based index.
func (h *RowsHandler) Update(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a number"})
		return
	}
	var req updateRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	row, err := h.engine.UpdateRow(c.Request.Context(), index, func(row models.RowState) models.RowState {
		if req.Name != nil {
			row.Name = *req.Name
		}
		if req.FatRate != nil {
			row.FatRate = *req.FatRate
		}
		if req.MilkQty != nil {
			row.MilkQty = *req.MilkQty
		}
		return row
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// Spoken applies one recognized utterance.
func (h *RowsHandler) Spoken(c *gin.Context) {
	var req spokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.engine.ProcessSpokenInput(c.Request.Context(), req.Text))
}

// Save persists the grid as a session and resets it.
func (h *RowsHandler) Save(c *gin.Context) {
	result, err := h.engine.Save(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	status := http.StatusCreated
	if result.Session == nil {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// Discard drops the grid and its draft.
func (h *RowsHandler) Discard(c *gin.Context) {
	if err := h.engine.Discard(c.Request.Context()); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
