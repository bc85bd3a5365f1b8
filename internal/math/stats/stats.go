// Package stats derives per-comment and per-participant statistics from the
// vote tallies.
package stats

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/math/votes"
)

// CommentRow carries the five statistics of one comment. Group is the cluster
// name when the row was computed over a single cluster's participants, empty
// for the whole conversation.
type CommentRow struct {
	CommentID     uuid.UUID `json:"comment_id"`
	Agree         float64   `json:"agree"`
	Disagree      float64   `json:"disagree"`
	Skipped       float64   `json:"skipped"`
	Convergence   float64   `json:"convergence"`
	Participation float64   `json:"participation"`
	Group         string    `json:"group"`
	Created       time.Time `json:"created"`
}

// Comments computes one row per tally. nVoters is the number of distinct
// voters in the conversation; norm scales every fraction (pass 100 for
// percentage display). A comment without participants yields all zeros.
func Comments(tallies []votes.Tally, created map[uuid.UUID]time.Time, nVoters int, norm float64, group string) []CommentRow {
	rows := make([]CommentRow, 0, len(tallies))
	for _, t := range tallies {
		row := CommentRow{CommentID: t.CommentID, Group: group, Created: created[t.CommentID]}
		n := t.Participants()
		if n > 0 {
			row.Agree = norm * float64(t.Agree) / float64(n)
			row.Disagree = norm * float64(t.Disagree) / float64(n)
			row.Skipped = norm * float64(t.Skip) / float64(n)
			if row.Agree > row.Disagree {
				row.Convergence = row.Agree
			} else {
				row.Convergence = row.Disagree
			}
			if nVoters > 0 {
				row.Participation = norm * float64(n) / float64(nVoters)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// OrderBy selects the sort column for comment rows.
type OrderBy int

const (
	ByAgree OrderBy = iota
	ByDisagree
	ByConvergence
	ByParticipation
)

// Sort orders rows by the chosen column, ascending or descending, with a
// stable tie-break by created then comment id.
func Sort(rows []CommentRow, by OrderBy, descending bool) {
	key := func(r CommentRow) float64 {
		switch by {
		case ByDisagree:
			return r.Disagree
		case ByConvergence:
			return r.Convergence
		case ByParticipation:
			return r.Participation
		default:
			return r.Agree
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ki, kj := key(rows[i]), key(rows[j])
		if ki != kj {
			if descending {
				return ki > kj
			}
			return ki < kj
		}
		if !rows[i].Created.Equal(rows[j].Created) {
			return rows[i].Created.Before(rows[j].Created)
		}
		return bytes.Compare(rows[i].CommentID[:], rows[j].CommentID[:]) < 0
	})
}

// UserRow carries the per-participant statistics: fractions over the user's
// own votes plus participation against the approved comment count.
type UserRow struct {
	UserID        uuid.UUID `json:"user_id"`
	Agree         float64   `json:"agree"`
	Disagree      float64   `json:"disagree"`
	Skipped       float64   `json:"skipped"`
	Convergence   float64   `json:"convergence"`
	Participation float64   `json:"participation"`
	Group         string    `json:"group"`
}

// Users computes one row per distinct voter. approvedComments is the
// denominator of the participation ratio.
func Users(voteList []*types.Vote, approvedComments int, norm float64, group string) []UserRow {
	type counts struct{ agree, disagree, skip int }
	byUser := make(map[uuid.UUID]*counts)
	order := make([]uuid.UUID, 0)
	for _, v := range voteList {
		c, ok := byUser[v.AuthorID]
		if !ok {
			c = &counts{}
			byUser[v.AuthorID] = c
			order = append(order, v.AuthorID)
		}
		switch v.Choice {
		case types.ChoiceAgree:
			c.agree++
		case types.ChoiceDisagree:
			c.disagree++
		default:
			c.skip++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return bytes.Compare(order[i][:], order[j][:]) < 0
	})

	rows := make([]UserRow, 0, len(order))
	for _, id := range order {
		c := byUser[id]
		n := c.agree + c.disagree + c.skip
		row := UserRow{UserID: id, Group: group}
		if n > 0 {
			row.Agree = norm * float64(c.agree) / float64(n)
			row.Disagree = norm * float64(c.disagree) / float64(n)
			row.Skipped = norm * float64(c.skip) / float64(n)
			if row.Agree > row.Disagree {
				row.Convergence = row.Agree
			} else {
				row.Convergence = row.Disagree
			}
			if approvedComments > 0 {
				row.Participation = norm * float64(n) / float64(approvedComments)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
