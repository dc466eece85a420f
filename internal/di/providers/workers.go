package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/shoefit/shoefit-server/internal/config"
	"github.com/shoefit/shoefit-server/internal/logger"
	"github.com/shoefit/shoefit-server/internal/recommend"
)

// sessionCleanupInterval is how often expired sessions are purged.
const sessionCleanupInterval = time.Hour

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	job := &SessionCleanupJob{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(job.done)

		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := storeHandle.DeleteExpiredSessions(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := storeHandle.DeleteExpiredSessions(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return job, nil
}

// ConfigWatcherHandle wraps the config file watcher. Watcher is nil when no
// config file was loaded.
type ConfigWatcherHandle struct {
	Watcher *config.Watcher
}

// Shutdown implements do.Shutdownable.
func (h *ConfigWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	return h.Watcher.Close()
}

// ProvideConfigWatcher reloads the config file when it changes and applies
// the settings that are safe to change at runtime: the log level. Other
// changes are logged and take effect on restart.
func ProvideConfigWatcher(i do.Injector) (*ConfigWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	args := do.MustInvoke[Args](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.File == "" {
		return &ConfigWatcherHandle{}, nil
	}

	w, err := config.Watch(cfg.File, func() {
		next, err := config.Load(args)
		if err != nil {
			log.Warn("Config reload failed, keeping current settings", "file", cfg.File, "error", err)
			return
		}

		if level, ok := logger.LookupLevel(next.Logger.Level); ok && level != log.Level() {
			log.SetLevel(level)
			log.Info("Log level changed", "level", next.Logger.Level)
		}
		if next.Recommend.Policy != cfg.Recommend.Policy {
			if _, err := recommend.ParsePolicy(next.Recommend.Policy); err == nil {
				log.Info("Size system policy change takes effect on restart",
					"current", cfg.Recommend.Policy,
					"configured", next.Recommend.Policy,
				)
			}
		}
	}, func(err error) {
		log.Warn("Config watcher error", "error", err)
	})
	if err != nil {
		// Non-fatal: the server runs fine without live reload.
		log.Warn("Config file watching unavailable", "file", cfg.File, "error", err)
		return &ConfigWatcherHandle{}, nil
	}

	log.Info("Watching config file", "file", cfg.File)

	return &ConfigWatcherHandle{Watcher: w}, nil
}
