package controller

import (
	"ai-ragchat-be/internal/dto"
	"ai-ragchat-be/internal/pkg/logger"
	"ai-ragchat-be/internal/pkg/serverutils"
	"ai-ragchat-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Remove(ctx *fiber.Ctx) error
	StoreStats(ctx *fiber.Ctx) error
}

type sessionController struct {
	store  store.ContextStore
	logger logger.ILogger
}

func NewSessionController(ctxStore store.ContextStore, logger logger.ILogger) ISessionController {
	return &sessionController{
		store:  ctxStore,
		logger: logger,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Get("stats", c.StoreStats)
	h.Get("", c.Status)
	h.Post("", c.Create)
	h.Delete("", c.Remove)
}

// Status reports existence and stats for a session. Without a session_id
// it issues a fresh identifier instead.
func (c *sessionController) Status(ctx *fiber.Ctx) error {
	sessionID := ctx.Query("session_id", "")
	if sessionID == "" {
		return ctx.JSON(dto.SessionStatusResponse{
			SessionID: store.GenerateSessionID(),
			Exists:    false,
		})
	}
	if !store.ValidateSessionID(sessionID) {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid session_id"))
	}

	stats, err := c.store.GetSessionStats(ctx.Context(), sessionID)
	if err != nil {
		return err
	}
	res := dto.SessionStatusResponse{SessionID: sessionID, Exists: stats != nil}
	if stats != nil {
		res.Stats = &dto.SessionStatsDTO{
			Collections: stats.Collections,
			Documents:   stats.Documents,
			TotalTokens: stats.TotalTokens,
			AgeSeconds:  stats.AgeSeconds,
			CreatedAt:   stats.CreatedAt,
		}
	}
	return ctx.JSON(res)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	sessionID := store.GenerateSessionID()
	if _, err := c.store.CreateSession(ctx.Context(), sessionID, store.CreateOptions{}); err != nil {
		return err
	}
	c.logger.Info("Session", "Created context session", map[string]interface{}{
		"session_id": sessionID,
	})
	return ctx.Status(fiber.StatusCreated).JSON(dto.CreateContextSessionResponse{SessionID: sessionID})
}

// Remove clears (default) or deletes a session. A missing session is not
// an HTTP error; Success=false marks it.
func (c *sessionController) Remove(ctx *fiber.Ctx) error {
	sessionID := ctx.Query("session_id", "")
	if !store.ValidateSessionID(sessionID) {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid session_id"))
	}

	action := ctx.Query("action", "clear")
	existed, err := c.store.HasSession(ctx.Context(), sessionID)
	if err != nil {
		return err
	}

	switch action {
	case "clear":
		err = c.store.ClearSession(ctx.Context(), sessionID)
	case "delete":
		err = c.store.DeleteSession(ctx.Context(), sessionID)
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "action must be clear or delete"))
	}
	if err != nil {
		return err
	}

	return ctx.JSON(dto.SessionActionResponse{
		SessionID: sessionID,
		Action:    action,
		Success:   existed,
	})
}

// StoreStats exposes the aggregate view for operational monitoring. Only
// the in-memory backend can enumerate its sessions; the Redis backend
// reports the backend name with zeroed counters.
func (c *sessionController) StoreStats(ctx *fiber.Ctx) error {
	if mem, ok := c.store.(*store.MemoryStore); ok {
		stats := mem.Stats()
		return ctx.JSON(dto.StoreStatsResponse{
			Backend:     "memory",
			Sessions:    stats.Sessions,
			Documents:   stats.Documents,
			TotalTokens: stats.TotalTokens,
		})
	}
	return ctx.JSON(dto.StoreStatsResponse{Backend: "redis"})
}
