// Package export renders comment, participant and vote tables to CSV and
// JSON. Column order is part of the wire contract; headers may be localised
// through a caller-supplied translator but the internal identifiers never
// change.
package export

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/math/stats"
)

// Translator localises a column header. Nil keeps the identifiers.
type Translator func(column string) string

func translate(cols []string, tr Translator) []string {
	if tr == nil {
		return cols
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = tr(c)
	}
	return out
}

var CommentColumns = []string{
	"content", "id", "author_email",
	"agree", "disagree", "skipped", "convergence", "participation",
	"group", "created",
}

type CommentRow struct {
	Content       string
	ID            uuid.UUID
	AuthorEmail   string
	Agree         float64
	Disagree      float64
	Skipped       float64
	Convergence   float64
	Participation float64
	Group         string
	Created       time.Time
}

var ParticipantColumns = []string{
	"participant", "id", "name",
	"agree", "disagree", "skipped", "convergence", "participation",
	"group",
}

type ParticipantRow struct {
	Participant   string
	ID            uuid.UUID
	Name          string
	Agree         float64
	Disagree      float64
	Skipped       float64
	Convergence   float64
	Participation float64
	Group         string
}

var VoteColumns = []string{
	"email", "author_name", "author_id",
	"comment", "comment_id", "conversation_id",
	"choice", "created",
}

type VoteRow struct {
	Email          string
	AuthorName     string
	AuthorID       uuid.UUID
	Comment        string
	CommentID      uuid.UUID
	ConversationID uuid.UUID
	Choice         types.Choice
	Created        time.Time
}

// formatFloat renders statistics with three decimals, the export precision.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// CommentRows joins comments with their statistics and authors. Statistics
// rows without a matching comment are skipped; the stats ordering wins.
func CommentRows(comments []*types.Comment, authors map[uuid.UUID]*types.User, statRows []stats.CommentRow) []CommentRow {
	byID := make(map[uuid.UUID]*types.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	out := make([]CommentRow, 0, len(statRows))
	for _, s := range statRows {
		c, ok := byID[s.CommentID]
		if !ok {
			continue
		}
		row := CommentRow{
			Content:       c.Content,
			ID:            c.ID,
			Agree:         s.Agree,
			Disagree:      s.Disagree,
			Skipped:       s.Skipped,
			Convergence:   s.Convergence,
			Participation: s.Participation,
			Group:         s.Group,
			Created:       c.CreatedAt,
		}
		if a, ok := authors[c.AuthorID]; ok {
			row.AuthorEmail = a.Email
		}
		out = append(out, row)
	}
	return out
}

// ParticipantRows joins user statistics with the user records.
func ParticipantRows(users map[uuid.UUID]*types.User, statRows []stats.UserRow) []ParticipantRow {
	out := make([]ParticipantRow, 0, len(statRows))
	for _, s := range statRows {
		row := ParticipantRow{
			ID:            s.UserID,
			Agree:         s.Agree,
			Disagree:      s.Disagree,
			Skipped:       s.Skipped,
			Convergence:   s.Convergence,
			Participation: s.Participation,
			Group:         s.Group,
		}
		if u, ok := users[s.UserID]; ok {
			row.Participant = u.Email
			row.Name = u.Name
		}
		out = append(out, row)
	}
	return out
}

// VoteRows flattens raw votes with their author and comment context.
func VoteRows(conversationID uuid.UUID, voteList []*types.Vote, users map[uuid.UUID]*types.User, comments map[uuid.UUID]*types.Comment) []VoteRow {
	out := make([]VoteRow, 0, len(voteList))
	for _, v := range voteList {
		row := VoteRow{
			AuthorID:       v.AuthorID,
			CommentID:      v.CommentID,
			ConversationID: conversationID,
			Choice:         v.Choice,
			Created:        v.CreatedAt,
		}
		if u, ok := users[v.AuthorID]; ok {
			row.Email = u.Email
			row.AuthorName = u.Name
		}
		if c, ok := comments[v.CommentID]; ok {
			row.Comment = c.Content
		}
		out = append(out, row)
	}
	return out
}
