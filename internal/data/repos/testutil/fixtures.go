package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openagora/opinion-engine/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:    uuid.New(),
		Email: email,
		Name:  "participant",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID uuid.UUID) *types.Conversation {
	tb.Helper()
	c := &types.Conversation{
		ID:       uuid.New(),
		AuthorID: authorID,
		Title:    "conversation",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}

func SeedComment(tb testing.TB, ctx context.Context, tx *gorm.DB, conversationID, authorID uuid.UUID, content, status string) *types.Comment {
	tb.Helper()
	c := &types.Comment{
		ID:             uuid.New(),
		ConversationID: conversationID,
		AuthorID:       authorID,
		Content:        content,
		Status:         status,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed comment: %v", err)
	}
	return c
}

func SeedVote(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID, commentID uuid.UUID, choice types.Choice) *types.Vote {
	tb.Helper()
	v := &types.Vote{
		ID:        uuid.New(),
		AuthorID:  authorID,
		CommentID: commentID,
		Choice:    choice,
		Channel:   "site",
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed vote: %v", err)
	}
	return v
}

func SeedStereotype(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) *types.Stereotype {
	tb.Helper()
	s := &types.Stereotype{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    name,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed stereotype: %v", err)
	}
	return s
}

func SeedClusterization(tb testing.TB, ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, status string) *types.Clusterization {
	tb.Helper()
	c := &types.Clusterization{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Status:         status,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed clusterization: %v", err)
	}
	return c
}

func SeedCluster(tb testing.TB, ctx context.Context, tx *gorm.DB, clusterizationID uuid.UUID, index int, name string) *types.Cluster {
	tb.Helper()
	c := &types.Cluster{
		ID:               uuid.New(),
		ClusterizationID: clusterizationID,
		Index:            index,
		Name:             name,
		Users:            []byte("[]"),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cluster: %v", err)
	}
	return c
}
