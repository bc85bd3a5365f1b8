// Package votes materialises the sparse participant × comment matrix and the
// per-comment tallies every downstream stage reads from.
package votes

import (
	"bytes"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	types "github.com/openagora/opinion-engine/internal/domain"
)

// Fill selects how missing entries are encoded.
type Fill int

const (
	// FillRaw leaves missing entries as NaN.
	FillRaw Fill = iota
	// FillMean replaces missing entries with the column mean over cast votes.
	FillMean
	// FillZero replaces missing entries with 0.
	FillZero
)

// Tally holds the per-comment vote counts.
type Tally struct {
	CommentID uuid.UUID
	Agree     int
	Disagree  int
	Skip      int
}

func (t Tally) Participants() int { return t.Agree + t.Disagree + t.Skip }

// Matrix is the dense vote matrix. Row order is participant first-vote time
// ascending, column order is comment created ascending; both tie-break on id.
// The ordering is part of the contract: projection output is only
// reproducible because successive builds agree bit for bit.
type Matrix struct {
	Participants []uuid.UUID
	Comments     []uuid.UUID
	Data         [][]float64

	rowIndex map[uuid.UUID]int
	colIndex map[uuid.UUID]int
	colMeans []float64
}

func lessUUID(a, b uuid.UUID) bool { return bytes.Compare(a[:], b[:]) < 0 }

// Build constructs the matrix from approved comments and their votes.
// Comments with a status other than approved are dropped; votes on unknown
// comments are ignored. An empty conversation yields a 0 × 0 matrix.
func Build(comments []*types.Comment, voteList []*types.Vote, fill Fill) *Matrix {
	approved := make([]*types.Comment, 0, len(comments))
	for _, c := range comments {
		if c.Status == types.CommentStatusApproved {
			approved = append(approved, c)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		if !approved[i].CreatedAt.Equal(approved[j].CreatedAt) {
			return approved[i].CreatedAt.Before(approved[j].CreatedAt)
		}
		return lessUUID(approved[i].ID, approved[j].ID)
	})

	colIndex := make(map[uuid.UUID]int, len(approved))
	cols := make([]uuid.UUID, len(approved))
	for i, c := range approved {
		colIndex[c.ID] = i
		cols[i] = c.ID
	}

	firstVote := make(map[uuid.UUID]time.Time)
	for _, v := range voteList {
		if _, ok := colIndex[v.CommentID]; !ok {
			continue
		}
		if t, ok := firstVote[v.AuthorID]; !ok || v.CreatedAt.Before(t) {
			firstVote[v.AuthorID] = v.CreatedAt
		}
	}

	rows := make([]uuid.UUID, 0, len(firstVote))
	for id := range firstVote {
		rows = append(rows, id)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := firstVote[rows[i]], firstVote[rows[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return lessUUID(rows[i], rows[j])
	})
	rowIndex := make(map[uuid.UUID]int, len(rows))
	for i, id := range rows {
		rowIndex[id] = i
	}

	data := make([][]float64, len(rows))
	for i := range data {
		row := make([]float64, len(cols))
		for j := range row {
			row[j] = math.NaN()
		}
		data[i] = row
	}
	for _, v := range voteList {
		j, ok := colIndex[v.CommentID]
		if !ok {
			continue
		}
		i, ok := rowIndex[v.AuthorID]
		if !ok {
			continue
		}
		data[i][j] = float64(v.Choice)
	}

	m := &Matrix{
		Participants: rows,
		Comments:     cols,
		Data:         data,
		rowIndex:     rowIndex,
		colIndex:     colIndex,
	}
	m.colMeans = m.computeColumnMeans()

	switch fill {
	case FillMean:
		for _, row := range data {
			for j, v := range row {
				if math.IsNaN(v) {
					row[j] = m.colMeans[j]
				}
			}
		}
	case FillZero:
		for _, row := range data {
			for j, v := range row {
				if math.IsNaN(v) {
					row[j] = 0
				}
			}
		}
	}
	return m
}

func (m *Matrix) computeColumnMeans() []float64 {
	means := make([]float64, len(m.Comments))
	counts := make([]int, len(m.Comments))
	for _, row := range m.Data {
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			means[j] += v
			counts[j]++
		}
	}
	for j := range means {
		if counts[j] == 0 {
			// Column without a single cast vote; keep the matrix finite.
			means[j] = 0
			continue
		}
		means[j] /= float64(counts[j])
	}
	return means
}

func (m *Matrix) Empty() bool {
	return len(m.Participants) == 0 || len(m.Comments) == 0
}

func (m *Matrix) Rows() int { return len(m.Participants) }
func (m *Matrix) Cols() int { return len(m.Comments) }

// ColumnMeans returns the per-comment mean over cast votes (the training
// means used to impute stereotype vectors).
func (m *Matrix) ColumnMeans() []float64 { return m.colMeans }

// Row returns the vote row of a participant.
func (m *Matrix) Row(userID uuid.UUID) ([]float64, bool) {
	i, ok := m.rowIndex[userID]
	if !ok {
		return nil, false
	}
	return m.Data[i], true
}

// ColumnOf returns the matrix column index of a comment.
func (m *Matrix) ColumnOf(commentID uuid.UUID) (int, bool) {
	j, ok := m.colIndex[commentID]
	return j, ok
}

// Tallies computes the per-comment counts in column order.
func Tallies(comments []*types.Comment, voteList []*types.Vote) []Tally {
	m := Build(comments, voteList, FillRaw)
	byComment := make(map[uuid.UUID]*Tally, len(m.Comments))
	out := make([]Tally, len(m.Comments))
	for j, id := range m.Comments {
		out[j] = Tally{CommentID: id}
		byComment[id] = &out[j]
	}
	for _, v := range voteList {
		t, ok := byComment[v.CommentID]
		if !ok {
			continue
		}
		switch v.Choice {
		case types.ChoiceAgree:
			t.Agree++
		case types.ChoiceDisagree:
			t.Disagree++
		default:
			t.Skip++
		}
	}
	return out
}
