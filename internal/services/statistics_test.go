package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/math/stats"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

func TestCommentStatisticsBalancedComment(t *testing.T) {
	conversationID := uuid.New()
	commentRepo := &fakeCommentRepo{}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	comment := &types.Comment{
		ID:             uuid.New(),
		ConversationID: conversationID,
		AuthorID:       uuid.New(),
		Content:        "balanced",
		Status:         types.CommentStatusApproved,
		CreatedAt:      base,
	}
	commentRepo.comments = append(commentRepo.comments, comment)

	voteRepo := &fakeVoteRepo{comments: commentRepo}
	for i := 0; i < 6; i++ {
		choice := types.ChoiceAgree
		if i >= 3 {
			choice = types.ChoiceDisagree
		}
		voteRepo.votes = append(voteRepo.votes, &types.Vote{
			ID:        uuid.New(),
			AuthorID:  uuid.New(),
			CommentID: comment.ID,
			Choice:    choice,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	log, err := logger.New("test")
	require.NoError(t, err)
	svc := NewStatisticsService(nil, log, commentRepo, voteRepo, &fakeClusterRepo{})

	rows, err := svc.CommentStatistics(context.Background(), conversationID, nil, 100, stats.ByAgree, true)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.InDelta(t, 50, rows[0].Agree, 1e-9)
	assert.InDelta(t, 50, rows[0].Disagree, 1e-9)
	assert.InDelta(t, 0, rows[0].Skipped, 1e-9)
	assert.InDelta(t, 50, rows[0].Convergence, 1e-9)
	assert.InDelta(t, 100, rows[0].Participation, 1e-9)
	assert.Empty(t, rows[0].Group)
}

func TestStatisticsRestrictedToCluster(t *testing.T) {
	w := newToyWorld(t)
	log, err := logger.New("test")
	require.NoError(t, err)

	members, err := json.Marshal([]uuid.UUID{w.users[0], w.users[1], w.users[2]})
	require.NoError(t, err)
	w.clusters[0].Users = members

	svc := NewStatisticsService(nil, log, w.commentRepo, w.voteRepo, w.clusterRepo)
	ctx := context.Background()

	rows, err := svc.CommentStatistics(ctx, w.conversationID, &w.clusters[0].ID, 1, stats.ByAgree, false)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, "optimists", row.Group)
		// The agree camp never disagrees.
		assert.Zero(t, row.Disagree)
	}

	users, err := svc.UserStatistics(ctx, w.conversationID, &w.clusters[0].ID, 1)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	for _, u := range users {
		assert.Equal(t, "optimists", u.Group)
		assert.InDelta(t, 1.0, u.Participation, 1e-9)
	}
}

func TestStatisticsMissingCluster(t *testing.T) {
	w := newToyWorld(t)
	log, err := logger.New("test")
	require.NoError(t, err)
	svc := NewStatisticsService(nil, log, w.commentRepo, w.voteRepo, w.clusterRepo)

	missing := uuid.New()
	_, err = svc.CommentStatistics(context.Background(), w.conversationID, &missing, 1, stats.ByAgree, false)
	assert.ErrorIs(t, err, ErrNotFound)
}
