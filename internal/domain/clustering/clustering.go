package clustering

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/domain/conversation"
)

// Stereotype is a named reference persona. Its vote profile seeds clustering
// and labels the resulting group. Stereotypes outlive clusters.
type Stereotype struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index;column:owner_id" json:"owner_id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_stereotype_owner_name;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Stereotype) TableName() string { return "stereotype" }

// StereotypeVote records the persona's stance on one comment. Unique per
// (stereotype_id, comment_id).
type StereotypeVote struct {
	ID           uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StereotypeID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_stereotype_vote_pair;column:stereotype_id" json:"stereotype_id"`
	CommentID    uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_stereotype_vote_pair;index;column:comment_id" json:"comment_id"`
	Choice       conversation.Choice `gorm:"not null;column:choice" json:"choice"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (StereotypeVote) TableName() string { return "stereotype_vote" }

const (
	ClusterizationStatusPendingData = "pending_data"
	ClusterizationStatusActive      = "active"
	ClusterizationStatusDisabled    = "disabled"
)

// Clusterization is the per-conversation container of clusters. Modified is
// the timestamp of the last successful recomputation and drives the dirty
// check: the clusterization is stale once votes newer than Modified exist.
type Clusterization struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:conversation_id" json:"conversation_id"`
	Status         string    `gorm:"not null;default:pending_data;column:status" json:"status"`
	Modified       time.Time `gorm:"not null;default:now();column:modified" json:"modified"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Clusterization) TableName() string { return "clusterization" }

// Cluster groups participants by vote similarity. Users holds the member ids
// as a JSON array; it is replaced wholesale on every recomputation so readers
// always see a full snapshot. Index fixes the label → cluster mapping for
// seeded k-means (order of declaration).
type Cluster struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClusterizationID uuid.UUID     `gorm:"type:uuid;not null;index;column:clusterization_id" json:"clusterization_id"`
	Index           int            `gorm:"not null;column:index" json:"index"`
	Name            string         `gorm:"not null;column:name" json:"name"`
	Description     string         `gorm:"column:description" json:"description"`
	Users           datatypes.JSON `gorm:"not null;default:'[]';column:users" json:"users"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Cluster) TableName() string { return "cluster" }

// ClusterStereotype attaches a persona to a cluster. A cluster may carry
// several stereotypes; their votes are averaged into one seed vector.
type ClusterStereotype struct {
	ClusterID    uuid.UUID `gorm:"type:uuid;primaryKey;column:cluster_id" json:"cluster_id"`
	StereotypeID uuid.UUID `gorm:"type:uuid;primaryKey;column:stereotype_id" json:"stereotype_id"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ClusterStereotype) TableName() string { return "cluster_stereotype" }

// SegmentFilter is a saved participant subselection: cluster membership
// (empty set means any cluster), a minimum engagement level in [0,100], and
// exact per-comment choices.
type SegmentFilter struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID  uuid.UUID      `gorm:"type:uuid;not null;index;column:conversation_id" json:"conversation_id"`
	Clusters        datatypes.JSON `gorm:"not null;default:'[]';column:clusters" json:"clusters"`
	EngagementLevel int            `gorm:"not null;default:0;column:engagement_level" json:"engagement_level"`
	Comments        datatypes.JSON `gorm:"not null;default:'{}';column:comments" json:"comments"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SegmentFilter) TableName() string { return "segment_filter" }
