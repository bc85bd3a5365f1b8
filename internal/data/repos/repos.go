package repos

import (
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/data/repos/clustering"
	"github.com/openagora/opinion-engine/internal/data/repos/conversation"
	"github.com/openagora/opinion-engine/internal/data/repos/user"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type UserRepo = user.UserRepo

type ConversationRepo = conversation.ConversationRepo
type CommentRepo = conversation.CommentRepo
type VoteRepo = conversation.VoteRepo

type StereotypeRepo = clustering.StereotypeRepo
type ClusterizationRepo = clustering.ClusterizationRepo
type ClusterRepo = clustering.ClusterRepo
type SegmentFilterRepo = clustering.SegmentFilterRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return conversation.NewConversationRepo(db, baseLog)
}
func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return conversation.NewCommentRepo(db, baseLog)
}
func NewVoteRepo(db *gorm.DB, baseLog *logger.Logger) VoteRepo {
	return conversation.NewVoteRepo(db, baseLog)
}

func NewStereotypeRepo(db *gorm.DB, baseLog *logger.Logger) StereotypeRepo {
	return clustering.NewStereotypeRepo(db, baseLog)
}
func NewClusterizationRepo(db *gorm.DB, baseLog *logger.Logger) ClusterizationRepo {
	return clustering.NewClusterizationRepo(db, baseLog)
}
func NewClusterRepo(db *gorm.DB, baseLog *logger.Logger) ClusterRepo {
	return clustering.NewClusterRepo(db, baseLog)
}
func NewSegmentFilterRepo(db *gorm.DB, baseLog *logger.Logger) SegmentFilterRepo {
	return clustering.NewSegmentFilterRepo(db, baseLog)
}
