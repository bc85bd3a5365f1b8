package conversation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Title    string    `gorm:"not null;column:title" json:"title"`
	Text     string    `gorm:"column:text" json:"text"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Conversation) TableName() string { return "conversation" }

const (
	CommentStatusApproved = "approved"
	CommentStatusPending  = "pending"
	CommentStatusRejected = "rejected"
)

// Comment is a short statement inside a conversation. Only approved comments
// enter the vote matrix. (author_id, content) is unique among non-rejected
// comments of the same conversation; enforced at the repo layer because the
// partial unique index depends on status.
type Comment struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index;column:conversation_id" json:"conversation_id"`
	AuthorID       uuid.UUID `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Content        string    `gorm:"not null;column:content" json:"content"`
	Status         string    `gorm:"not null;default:pending;column:status" json:"status"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Comment) TableName() string { return "comment" }
