package services

import (
	"time"

	"github.com/openagora/opinion-engine/internal/math/affinity"
	"github.com/openagora/opinion-engine/internal/platform/envutil"
)

// EngineConfig carries the numeric knobs of the clustering engine. Defaults
// mirror the platform the engine was extracted for: 10 restarts and 1000
// iterations bound the unsupervised search, the epsilon guards affinity
// divisions.
type EngineConfig struct {
	KMeansRuns      int
	KMeansMaxIter   int
	AffinityEpsilon float64
	LockTTL         time.Duration
}

func LoadEngineConfig() EngineConfig {
	return EngineConfig{
		KMeansRuns:      envutil.Int("KMEANS_RUNS", 10),
		KMeansMaxIter:   envutil.Int("KMEANS_MAX_ITER", 1000),
		AffinityEpsilon: envutil.Float("AFFINITY_EPSILON", affinity.DefaultEpsilon),
		LockTTL:         time.Duration(envutil.Int("CLUSTERIZE_LOCK_TTL_SECONDS", 120)) * time.Second,
	}
}
