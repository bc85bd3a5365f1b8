package app

import (
	"github.com/openagora/opinion-engine/internal/platform/envutil"
	"github.com/openagora/opinion-engine/internal/platform/logger"
	"github.com/openagora/opinion-engine/internal/services"
)

type Config struct {
	Port   string
	Engine services.EngineConfig
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.String("PORT", "8080")
	engine := services.LoadEngineConfig()
	log.Info("Loaded config",
		"port", port,
		"kmeans_runs", engine.KMeansRuns,
		"kmeans_max_iter", engine.KMeansMaxIter,
		"lock_ttl", engine.LockTTL,
	)
	return Config{
		Port:   port,
		Engine: engine,
	}
}
