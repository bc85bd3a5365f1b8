package clustering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/data/repos/testutil"
	types "github.com/openagora/opinion-engine/internal/domain"
)

func TestClusterizationRepoGetOrCreate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewClusterizationRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "cz-owner@example.com")
	conv := testutil.SeedConversation(t, ctx, tx, owner.ID)

	first, err := repo.GetOrCreateByConversation(ctx, tx, conv.ID)
	if err != nil {
		t.Fatalf("GetOrCreateByConversation: %v", err)
	}
	if first.Status != types.ClusterizationStatusPendingData {
		t.Fatalf("expected pending_data, got %q", first.Status)
	}

	second, err := repo.GetOrCreateByConversation(ctx, tx, conv.ID)
	if err != nil {
		t.Fatalf("GetOrCreateByConversation (second): %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same clusterization, got %v and %v", first.ID, second.ID)
	}

	if err := repo.UpdateStatus(ctx, tx, first.ID, types.ClusterizationStatusActive); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	modified := time.Now().UTC().Truncate(time.Millisecond)
	if err := repo.Touch(ctx, tx, first.ID, modified); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	got, err := repo.GetByConversation(ctx, tx, conv.ID)
	if err != nil {
		t.Fatalf("GetByConversation: %v", err)
	}
	if got.Status != types.ClusterizationStatusActive {
		t.Fatalf("expected active, got %q", got.Status)
	}
	if !got.Modified.Equal(modified) {
		t.Fatalf("expected modified %v, got %v", modified, got.Modified)
	}

	if err := repo.UpdateStatus(ctx, tx, uuid.New(), types.ClusterizationStatusActive); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for unknown id, got %v", err)
	}
}

func TestClusterRepoOrderAndMembership(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewClusterRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "cluster-owner@example.com")
	conv := testutil.SeedConversation(t, ctx, tx, owner.ID)
	cz := testutil.SeedClusterization(t, ctx, tx, conv.ID, types.ClusterizationStatusPendingData)

	// Seeded out of order on purpose.
	b := testutil.SeedCluster(t, ctx, tx, cz.ID, 1, "optimists")
	a := testutil.SeedCluster(t, ctx, tx, cz.ID, 0, "skeptics")

	clusters, err := repo.ListByClusterization(ctx, tx, cz.ID)
	if err != nil {
		t.Fatalf("ListByClusterization: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if clusters[0].ID != a.ID || clusters[1].ID != b.ID {
		t.Fatalf("expected index order, got %q then %q", clusters[0].Name, clusters[1].Name)
	}

	member := testutil.SeedUser(t, ctx, tx, "member@example.com")
	users := []byte(`["` + member.ID.String() + `"]`)
	if err := repo.SetUsers(ctx, tx, a.ID, users); err != nil {
		t.Fatalf("SetUsers: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if string(got.Users) != string(users) {
		t.Fatalf("expected users %s, got %s", users, got.Users)
	}
}

func TestStereotypeRepoUpsertVote(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewStereotypeRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "st-owner@example.com")
	conv := testutil.SeedConversation(t, ctx, tx, owner.ID)
	comment := testutil.SeedComment(t, ctx, tx, conv.ID, owner.ID, "statement", types.CommentStatusApproved)
	st := testutil.SeedStereotype(t, ctx, tx, owner.ID, "contrarian")

	if _, err := repo.UpsertVote(ctx, tx, &types.StereotypeVote{
		StereotypeID: st.ID,
		CommentID:    comment.ID,
		Choice:       types.ChoiceAgree,
	}); err != nil {
		t.Fatalf("UpsertVote: %v", err)
	}
	if _, err := repo.UpsertVote(ctx, tx, &types.StereotypeVote{
		StereotypeID: st.ID,
		CommentID:    comment.ID,
		Choice:       types.ChoiceDisagree,
	}); err != nil {
		t.Fatalf("UpsertVote (replace): %v", err)
	}

	votes, err := repo.ListVotes(ctx, tx, nil)
	if err != nil {
		t.Fatalf("ListVotes (empty): %v", err)
	}
	if len(votes) != 0 {
		t.Fatalf("expected no votes for empty id list, got %d", len(votes))
	}

	votes, err = repo.ListVotes(ctx, tx, []uuid.UUID{st.ID})
	if err != nil {
		t.Fatalf("ListVotes: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("expected 1 stereotype vote after replace, got %d", len(votes))
	}
	if votes[0].Choice != types.ChoiceDisagree {
		t.Fatalf("expected disagree after replace, got %v", votes[0].Choice)
	}
}
