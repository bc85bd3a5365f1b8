package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagora/opinion-engine/internal/math/affinity"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

func TestGetShapeData(t *testing.T) {
	w := newToyWorld(t)
	ctx := context.Background()

	// Run the manager first so memberships are persisted.
	_, err := w.service(t).Update(ctx, w.conversationID, false)
	require.NoError(t, err)

	log, err := logger.New("test")
	require.NoError(t, err)
	matrix := NewMatrixService(nil, log, w.commentRepo, w.voteRepo)
	svc := NewShapeService(nil, log, EngineConfig{AffinityEpsilon: 1e-12}, matrix, w.czRepo, w.clusterRepo)

	shape, err := svc.GetShapeData(ctx, w.cz.ID, w.users[0])
	require.NoError(t, err)

	require.Len(t, shape.Clusters, 2)
	assert.Equal(t, "optimists", shape.Clusters[0].Name)
	assert.Len(t, shape.Clusters[0].Users, 3)
	assert.Equal(t, 0, shape.UserGroup)

	var sets []affinity.Set
	require.NoError(t, json.Unmarshal([]byte(shape.AffinityJSON), &sets))
	require.GreaterOrEqual(t, len(sets), 2)
	assert.Equal(t, []int{0}, sets[0].Sets)
	assert.InDelta(t, 3, sets[0].Size, 1e-9)
	assert.Equal(t, []int{1}, sets[1].Sets)
	assert.InDelta(t, 3, sets[1].Size, 1e-9)
	for _, s := range sets {
		assert.GreaterOrEqual(t, s.Size, 0.0)
	}
}

func TestGetShapeDataViewerUnclustered(t *testing.T) {
	w := newToyWorld(t)
	ctx := context.Background()

	_, err := w.service(t).Update(ctx, w.conversationID, false)
	require.NoError(t, err)

	log, err := logger.New("test")
	require.NoError(t, err)
	matrix := NewMatrixService(nil, log, w.commentRepo, w.voteRepo)
	svc := NewShapeService(nil, log, EngineConfig{AffinityEpsilon: 1e-12}, matrix, w.czRepo, w.clusterRepo)

	shape, err := svc.GetShapeData(ctx, w.cz.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, -1, shape.UserGroup)
}

func TestGetShapeDataMissingClusterization(t *testing.T) {
	w := newToyWorld(t)
	log, err := logger.New("test")
	require.NoError(t, err)
	matrix := NewMatrixService(nil, log, w.commentRepo, w.voteRepo)
	svc := NewShapeService(nil, log, EngineConfig{}, matrix, w.czRepo, w.clusterRepo)

	_, err = svc.GetShapeData(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
