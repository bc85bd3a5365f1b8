package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/math/votes"
)

func TestBalancedComment(t *testing.T) {
	// 3 agree, 3 disagree, 0 skip, normalisation 100.
	tally := votes.Tally{CommentID: uuid.UUID{1}, Agree: 3, Disagree: 3}
	rows := Comments([]votes.Tally{tally}, nil, 6, 100, "")
	require.Len(t, rows, 1)
	r := rows[0]
	assert.InDelta(t, 50, r.Agree, 1e-12)
	assert.InDelta(t, 50, r.Disagree, 1e-12)
	assert.InDelta(t, 0, r.Skipped, 1e-12)
	assert.InDelta(t, 50, r.Convergence, 1e-12)
	assert.InDelta(t, 100, r.Participation, 1e-12)
}

func TestFractionsSumToOne(t *testing.T) {
	tally := votes.Tally{CommentID: uuid.UUID{1}, Agree: 2, Disagree: 1, Skip: 4}
	rows := Comments([]votes.Tally{tally}, nil, 10, 1, "")
	r := rows[0]
	assert.InDelta(t, 1, r.Agree+r.Disagree+r.Skipped, 1e-12)
	assert.InDelta(t, r.Skipped, 4.0/7.0, 1e-12)
	// Convergence is max(agree, disagree), not max including skips.
	assert.InDelta(t, r.Agree, r.Convergence, 1e-12)
}

func TestZeroParticipants(t *testing.T) {
	tally := votes.Tally{CommentID: uuid.UUID{1}}
	rows := Comments([]votes.Tally{tally}, nil, 5, 100, "grp")
	r := rows[0]
	assert.Zero(t, r.Agree)
	assert.Zero(t, r.Disagree)
	assert.Zero(t, r.Skipped)
	assert.Zero(t, r.Convergence)
	assert.Zero(t, r.Participation)
	assert.Equal(t, "grp", r.Group)
}

func TestSortTieBreak(t *testing.T) {
	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	rows := []CommentRow{
		{CommentID: uuid.UUID{3}, Agree: 0.5, Created: late},
		{CommentID: uuid.UUID{2}, Agree: 0.5, Created: early},
		{CommentID: uuid.UUID{1}, Agree: 0.9, Created: late},
	}
	Sort(rows, ByAgree, true)
	assert.Equal(t, uuid.UUID{1}, rows[0].CommentID)
	// Equal agree: created tie-break.
	assert.Equal(t, uuid.UUID{2}, rows[1].CommentID)
	assert.Equal(t, uuid.UUID{3}, rows[2].CommentID)

	Sort(rows, ByAgree, false)
	assert.Equal(t, uuid.UUID{2}, rows[0].CommentID)
	assert.Equal(t, uuid.UUID{1}, rows[2].CommentID)
}

func TestUsers(t *testing.T) {
	voteList := []*types.Vote{
		{AuthorID: uuid.UUID{1}, CommentID: uuid.UUID{9}, Choice: types.ChoiceAgree},
		{AuthorID: uuid.UUID{1}, CommentID: uuid.UUID{8}, Choice: types.ChoiceAgree},
		{AuthorID: uuid.UUID{1}, CommentID: uuid.UUID{7}, Choice: types.ChoiceSkip},
		{AuthorID: uuid.UUID{2}, CommentID: uuid.UUID{9}, Choice: types.ChoiceDisagree},
	}
	rows := Users(voteList, 4, 1, "")
	require.Len(t, rows, 2)
	assert.Equal(t, uuid.UUID{1}, rows[0].UserID)
	assert.InDelta(t, 2.0/3.0, rows[0].Agree, 1e-12)
	assert.InDelta(t, 1.0/3.0, rows[0].Skipped, 1e-12)
	assert.InDelta(t, 3.0/4.0, rows[0].Participation, 1e-12)
	assert.InDelta(t, 1, rows[1].Disagree, 1e-12)
	assert.InDelta(t, 1.0/4.0, rows[1].Participation, 1e-12)
}
