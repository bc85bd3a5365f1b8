package app

import (
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/data/repos"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type Repos struct {
	User           repos.UserRepo
	Conversation   repos.ConversationRepo
	Comment        repos.CommentRepo
	Vote           repos.VoteRepo
	Stereotype     repos.StereotypeRepo
	Clusterization repos.ClusterizationRepo
	Cluster        repos.ClusterRepo
	SegmentFilter  repos.SegmentFilterRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:           repos.NewUserRepo(db, log),
		Conversation:   repos.NewConversationRepo(db, log),
		Comment:        repos.NewCommentRepo(db, log),
		Vote:           repos.NewVoteRepo(db, log),
		Stereotype:     repos.NewStereotypeRepo(db, log),
		Clusterization: repos.NewClusterizationRepo(db, log),
		Cluster:        repos.NewClusterRepo(db, log),
		SegmentFilter:  repos.NewSegmentFilterRepo(db, log),
	}
}
