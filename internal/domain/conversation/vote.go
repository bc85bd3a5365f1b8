package conversation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Choice is the value of a cast vote: agree (+1), skip (0) or disagree (-1).
type Choice int8

const (
	ChoiceAgree    Choice = 1
	ChoiceSkip     Choice = 0
	ChoiceDisagree Choice = -1
)

var ErrInvalidChoice = errors.New("invalid vote choice")

// ParseChoice maps the wire encoding ("agree"/"disagree"/"skip") to a Choice.
// Input is accepted case-insensitively but always normalised to lowercase
// before comparison, so stored values stay canonical.
func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "agree":
		return ChoiceAgree, nil
	case "disagree":
		return ChoiceDisagree, nil
	case "skip":
		return ChoiceSkip, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
	}
}

func (c Choice) Label() string {
	switch c {
	case ChoiceAgree:
		return "agree"
	case ChoiceDisagree:
		return "disagree"
	default:
		return "skip"
	}
}

func (c Choice) Valid() bool {
	return c == ChoiceAgree || c == ChoiceSkip || c == ChoiceDisagree
}

// Vote is the atomic datum of the engine. (author_id, comment_id) is unique;
// there is no unvote besides deleting the row.
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vote_author_comment;column:author_id" json:"author_id"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vote_author_comment;index;column:comment_id" json:"comment_id"`
	Choice    Choice    `gorm:"not null;column:choice" json:"choice"`
	Channel   string    `gorm:"not null;default:site;column:channel" json:"channel"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Vote) TableName() string { return "vote" }
