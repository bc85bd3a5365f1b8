package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/data/repos"
	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/export"
	"github.com/openagora/opinion-engine/internal/math/stats"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

// ExportService assembles the export tables: statistics joined with the
// user and comment records they reference.
type ExportService interface {
	Comments(ctx context.Context, conversationID uuid.UUID, clusterID *uuid.UUID, norm float64) ([]export.CommentRow, error)
	Participants(ctx context.Context, conversationID uuid.UUID, clusterID *uuid.UUID, norm float64) ([]export.ParticipantRow, error)
	Votes(ctx context.Context, conversationID uuid.UUID) ([]export.VoteRow, error)
}

type exportService struct {
	db                *gorm.DB
	log               *logger.Logger
	statisticsService StatisticsService
	commentRepo       repos.CommentRepo
	voteRepo          repos.VoteRepo
	userRepo          repos.UserRepo
}

func NewExportService(
	db *gorm.DB,
	baseLog *logger.Logger,
	statisticsService StatisticsService,
	commentRepo repos.CommentRepo,
	voteRepo repos.VoteRepo,
	userRepo repos.UserRepo,
) ExportService {
	serviceLog := baseLog.With("service", "ExportService")
	return &exportService{
		db:                db,
		log:               serviceLog,
		statisticsService: statisticsService,
		commentRepo:       commentRepo,
		voteRepo:          voteRepo,
		userRepo:          userRepo,
	}
}

func (es *exportService) Comments(ctx context.Context, conversationID uuid.UUID, clusterID *uuid.UUID, norm float64) ([]export.CommentRow, error) {
	rows, err := es.statisticsService.CommentStatistics(ctx, conversationID, clusterID, norm, stats.ByAgree, true)
	if err != nil {
		return nil, err
	}
	comments, err := es.commentRepo.ListApproved(ctx, nil, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list approved comments: %w", err)
	}

	authorIDs := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := es.usersByID(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	return export.CommentRows(comments, authors, rows), nil
}

func (es *exportService) Participants(ctx context.Context, conversationID uuid.UUID, clusterID *uuid.UUID, norm float64) ([]export.ParticipantRow, error) {
	rows, err := es.statisticsService.UserStatistics(ctx, conversationID, clusterID, norm)
	if err != nil {
		return nil, err
	}
	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		userIDs = append(userIDs, r.UserID)
	}
	users, err := es.usersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	return export.ParticipantRows(users, rows), nil
}

func (es *exportService) Votes(ctx context.Context, conversationID uuid.UUID) ([]export.VoteRow, error) {
	comments, err := es.commentRepo.ListApproved(ctx, nil, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list approved comments: %w", err)
	}
	voteList, err := es.voteRepo.ListByConversation(ctx, nil, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}

	byComment := make(map[uuid.UUID]*types.Comment, len(comments))
	for _, c := range comments {
		byComment[c.ID] = c
	}
	voterIDs := make([]uuid.UUID, 0, len(voteList))
	seen := make(map[uuid.UUID]bool)
	for _, v := range voteList {
		if !seen[v.AuthorID] {
			seen[v.AuthorID] = true
			voterIDs = append(voterIDs, v.AuthorID)
		}
	}
	users, err := es.usersByID(ctx, voterIDs)
	if err != nil {
		return nil, err
	}
	return export.VoteRows(conversationID, voteList, users, byComment), nil
}

func (es *exportService) usersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*types.User, error) {
	users, err := es.userRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	out := make(map[uuid.UUID]*types.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
