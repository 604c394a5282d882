package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/logstore/core/internal/api/middleware"
	"github.com/logstore/core/internal/database"
	"github.com/logstore/core/internal/database/models"
	"github.com/logstore/core/internal/services"
)

// LogHandler exposes the log lifecycle over HTTP
type LogHandler struct {
	logService *services.LogService
	logger     *slog.Logger
}

// NewLogHandler creates a new LogHandler instance
func NewLogHandler(logService *services.LogService, logger *slog.Logger) *LogHandler {
	return &LogHandler{
		logService: logService,
		logger:     logger.With("source", "logs"),
	}
}

// CreateLogRequest represents the request to store a log record
type CreateLogRequest struct {
	SenderApplication string          `json:"sender_application"`
	Environment       string          `json:"environment"`
	Level             string          `json:"level"`
	Message           string          `json:"message"`
	Details           json.RawMessage `json:"details,omitempty"`
}

// LogListResponse is the body of a successful query
type LogListResponse struct {
	Total int          `json:"total"`
	Logs  []models.Log `json:"logs"`
}

// ListLogs returns the caller's logs, optionally filtered by the sender,
// environment and level query parameters
// GET /api/logs
func (h *LogHandler) ListLogs(c *gin.Context) {
	h.query(c, database.LogFilter{
		SenderApplication: c.Query("sender"),
		Environment:       c.Query("environment"),
		Level:             c.Query("level"),
	})
}

// GetBySender returns the caller's logs sent by one application
// GET /api/logs/sender/:sender
func (h *LogHandler) GetBySender(c *gin.Context) {
	h.query(c, database.LogFilter{SenderApplication: c.Param("sender")})
}

// GetByEnvironment returns the caller's logs from one environment
// GET /api/logs/environment/:environment
func (h *LogHandler) GetByEnvironment(c *gin.Context) {
	h.query(c, database.LogFilter{Environment: c.Param("environment")})
}

// GetByLevel returns the caller's logs of one level
// GET /api/logs/level/:level
func (h *LogHandler) GetByLevel(c *gin.Context) {
	h.query(c, database.LogFilter{Level: c.Param("level")})
}

func (h *LogHandler) query(c *gin.Context, filter database.LogFilter) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		unauthenticated(c)
		return
	}

	logs, err := h.logService.Query(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": LogListResponse{
			Total: len(logs),
			Logs:  logs,
		},
	})
}

// CreateLog stores a new log record for the caller
// POST /api/logs
func (h *LogHandler) CreateLog(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		unauthenticated(c)
		return
	}

	var req CreateLogRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		errorJSONWithDetails(c, http.StatusNotAcceptable, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	input := services.CreateLogInput{
		SenderApplication: req.SenderApplication,
		Environment:       req.Environment,
		Level:             req.Level,
		Message:           req.Message,
	}
	if len(req.Details) > 0 && string(req.Details) != "null" {
		input.Details = string(req.Details)
	}

	log, err := h.logService.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    log,
	})
}

// DeleteLog soft-deletes one of the caller's logs
// DELETE /api/logs/:id
func (h *LogHandler) DeleteLog(c *gin.Context) {
	h.mutateOne(c, h.logService.SoftDelete, "Deleted successfully")
}

// DeleteAllLogs soft-deletes every active log of the caller
// DELETE /api/logs
func (h *LogHandler) DeleteAllLogs(c *gin.Context) {
	h.mutateAll(c, h.logService.SoftDeleteAll, "Deleted successfully")
}

// RestoreLog restores one of the caller's soft-deleted logs
// POST /api/logs/:id/restore
func (h *LogHandler) RestoreLog(c *gin.Context) {
	h.mutateOne(c, h.logService.Restore, "Log restored successfully")
}

// RestoreAllLogs restores every soft-deleted log of the caller
// POST /api/logs/restore
func (h *LogHandler) RestoreAllLogs(c *gin.Context) {
	h.mutateAll(c, h.logService.RestoreAll, "All logs restored successfully")
}

// PurgeLog permanently removes one of the caller's logs
// DELETE /api/logs/:id/purge
func (h *LogHandler) PurgeLog(c *gin.Context) {
	h.mutateOne(c, h.logService.Purge, "Deleted successfully, this action cannot be undone")
}

// PurgeAllLogs permanently removes every log of the caller
// DELETE /api/logs/purge
func (h *LogHandler) PurgeAllLogs(c *gin.Context) {
	h.mutateAll(c, h.logService.PurgeAll, "All logs deleted successfully, this action cannot be undone")
}

type oneLogOp func(ctx context.Context, userID, id uint) error

type allLogsOp func(ctx context.Context, userID uint) error

func (h *LogHandler) mutateOne(c *gin.Context, op oneLogOp, message string) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		unauthenticated(c)
		return
	}

	id, ok := parseLogID(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

func (h *LogHandler) mutateAll(c *gin.Context, op allLogsOp, message string) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		unauthenticated(c)
		return
	}

	if err := op(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// parseLogID reads the :id path parameter; it responds 406 when malformed
func parseLogID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 63)
	if err != nil || id == 0 {
		errorJSON(c, http.StatusNotAcceptable, "VALIDATION_ERROR", "Invalid log ID")
		return 0, false
	}
	return uint(id), true
}
