package conversation

import (
	"context"
	"testing"

	"github.com/openagora/opinion-engine/internal/data/repos/testutil"
	types "github.com/openagora/opinion-engine/internal/domain"
)

func TestCommentRepoListApproved(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewCommentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "comment-owner@example.com")
	conv := testutil.SeedConversation(t, ctx, tx, owner.ID)

	first := testutil.SeedComment(t, ctx, tx, conv.ID, owner.ID, "first", types.CommentStatusApproved)
	testutil.SeedComment(t, ctx, tx, conv.ID, owner.ID, "second", types.CommentStatusPending)
	third := testutil.SeedComment(t, ctx, tx, conv.ID, owner.ID, "third", types.CommentStatusApproved)

	approved, err := repo.ListApproved(ctx, tx, conv.ID)
	if err != nil {
		t.Fatalf("ListApproved: %v", err)
	}
	if len(approved) != 2 {
		t.Fatalf("expected 2 approved comments, got %d", len(approved))
	}
	if approved[0].ID != first.ID || approved[1].ID != third.ID {
		t.Fatalf("expected creation order, got %v then %v", approved[0].ID, approved[1].ID)
	}

	if err := repo.UpdateStatus(ctx, tx, third.ID, types.CommentStatusRejected); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	approved, err = repo.ListApproved(ctx, tx, conv.ID)
	if err != nil {
		t.Fatalf("ListApproved (after reject): %v", err)
	}
	if len(approved) != 1 {
		t.Fatalf("expected 1 approved comment after reject, got %d", len(approved))
	}
}
