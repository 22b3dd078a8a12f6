package bootstrap

import (
	"ai-ragchat-be/internal/config"
	"ai-ragchat-be/internal/controller"
	"ai-ragchat-be/internal/pkg/logger"
	"ai-ragchat-be/pkg/store"
)

type Container struct {
	SessionController controller.ISessionController

	// ContextStore is exposed so main.go can close it on shutdown and so
	// the retrieval/orchestration layer can consume it directly.
	ContextStore store.ContextStore
	Logger       logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// One backend per process lifetime, selected by configuration and
	// passed down explicitly.
	ctxStore := store.New(store.Config{
		RedisURL:             cfg.App.RedisURL,
		SessionTTL:           cfg.ContextStore.SessionTTL,
		MaxDocsPerCollection: cfg.ContextStore.MaxDocsPerCollection,
		MaxTotalTokens:       cfg.ContextStore.MaxTotalTokens,
		TokenDivisor:         cfg.ContextStore.TokenDivisor,
		SweepInterval:        cfg.ContextStore.SweepInterval,
	}, sysLogger)

	backend := "memory"
	if cfg.App.RedisURL != "" {
		backend = "redis"
	}
	sysLogger.Info("Bootstrap", "Context store initialized", map[string]interface{}{
		"backend":     backend,
		"session_ttl": cfg.ContextStore.SessionTTL.String(),
	})

	return &Container{
		SessionController: controller.NewSessionController(ctxStore, sysLogger),
		ContextStore:      ctxStore,
		Logger:            sysLogger,
	}
}

// Close releases the context store and flushes buffered log entries.
func (c *Container) Close() error {
	err := c.ContextStore.Close()
	_ = c.Logger.Sync()
	return err
}
