package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/openagora/opinion-engine/internal/domain"
)

// In-memory repo fakes. They ignore the tx argument the way the gorm
// implementations fall back to their own handle.

type fakeCommentRepo struct {
	comments []*types.Comment
}

func (f *fakeCommentRepo) Create(_ context.Context, _ *gorm.DB, cs []*types.Comment) ([]*types.Comment, error) {
	f.comments = append(f.comments, cs...)
	return cs, nil
}

func (f *fakeCommentRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Comment, error) {
	var out []*types.Comment
	for _, c := range f.comments {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) ListByConversation(_ context.Context, _ *gorm.DB, conversationID uuid.UUID) ([]*types.Comment, error) {
	var out []*types.Comment
	for _, c := range f.comments {
		if c.ConversationID == conversationID {
			out = append(out, c)
		}
	}
	sortComments(out)
	return out, nil
}

func (f *fakeCommentRepo) ListApproved(_ context.Context, _ *gorm.DB, conversationID uuid.UUID) ([]*types.Comment, error) {
	var out []*types.Comment
	for _, c := range f.comments {
		if c.ConversationID == conversationID && c.Status == types.CommentStatusApproved {
			out = append(out, c)
		}
	}
	sortComments(out)
	return out, nil
}

func (f *fakeCommentRepo) UpdateStatus(_ context.Context, _ *gorm.DB, commentID uuid.UUID, status string) error {
	for _, c := range f.comments {
		if c.ID == commentID {
			c.Status = status
		}
	}
	return nil
}

func sortComments(cs []*types.Comment) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return cs[i].ID.String() < cs[j].ID.String()
	})
}

type fakeVoteRepo struct {
	votes    []*types.Vote
	comments *fakeCommentRepo
}

func (f *fakeVoteRepo) Upsert(_ context.Context, _ *gorm.DB, v *types.Vote) (*types.Vote, error) {
	for i, existing := range f.votes {
		if existing.AuthorID == v.AuthorID && existing.CommentID == v.CommentID {
			f.votes[i] = v
			return v, nil
		}
	}
	f.votes = append(f.votes, v)
	return v, nil
}

func (f *fakeVoteRepo) ListByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.Vote, error) {
	comments, _ := f.comments.ListByConversation(ctx, tx, conversationID)
	inConv := make(map[uuid.UUID]bool)
	for _, c := range comments {
		inConv[c.ID] = true
	}
	var out []*types.Vote
	for _, v := range f.votes {
		if inConv[v.CommentID] {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (f *fakeVoteRepo) ListByComments(_ context.Context, _ *gorm.DB, commentIDs []uuid.UUID) ([]*types.Vote, error) {
	want := make(map[uuid.UUID]bool)
	for _, id := range commentIDs {
		want[id] = true
	}
	var out []*types.Vote
	for _, v := range f.votes {
		if want[v.CommentID] {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVoteRepo) CountSince(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, since time.Time) (int64, error) {
	all, _ := f.ListByConversation(ctx, tx, conversationID)
	var count int64
	for _, v := range all {
		if v.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

type fakeStereotypeRepo struct {
	stereotypes []*types.Stereotype
	votes       []*types.StereotypeVote
}

func (f *fakeStereotypeRepo) Create(_ context.Context, _ *gorm.DB, sts []*types.Stereotype) ([]*types.Stereotype, error) {
	f.stereotypes = append(f.stereotypes, sts...)
	return sts, nil
}

func (f *fakeStereotypeRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Stereotype, error) {
	var out []*types.Stereotype
	for _, s := range f.stereotypes {
		for _, id := range ids {
			if s.ID == id {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (f *fakeStereotypeRepo) ListByOwner(_ context.Context, _ *gorm.DB, ownerID uuid.UUID) ([]*types.Stereotype, error) {
	var out []*types.Stereotype
	for _, s := range f.stereotypes {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStereotypeRepo) UpsertVote(_ context.Context, _ *gorm.DB, v *types.StereotypeVote) (*types.StereotypeVote, error) {
	for i, existing := range f.votes {
		if existing.StereotypeID == v.StereotypeID && existing.CommentID == v.CommentID {
			f.votes[i] = v
			return v, nil
		}
	}
	f.votes = append(f.votes, v)
	return v, nil
}

func (f *fakeStereotypeRepo) ListVotes(_ context.Context, _ *gorm.DB, stereotypeIDs []uuid.UUID) ([]*types.StereotypeVote, error) {
	want := make(map[uuid.UUID]bool)
	for _, id := range stereotypeIDs {
		want[id] = true
	}
	var out []*types.StereotypeVote
	for _, v := range f.votes {
		if want[v.StereotypeID] {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeClusterizationRepo struct {
	items []*types.Clusterization
}

func (f *fakeClusterizationRepo) GetOrCreateByConversation(_ context.Context, _ *gorm.DB, conversationID uuid.UUID) (*types.Clusterization, error) {
	for _, c := range f.items {
		if c.ConversationID == conversationID {
			return c, nil
		}
	}
	cz := &types.Clusterization{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Status:         types.ClusterizationStatusPendingData,
		Modified:       time.Now().UTC(),
	}
	f.items = append(f.items, cz)
	return cz, nil
}

func (f *fakeClusterizationRepo) GetByConversation(_ context.Context, _ *gorm.DB, conversationID uuid.UUID) (*types.Clusterization, error) {
	for _, c := range f.items {
		if c.ConversationID == conversationID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeClusterizationRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Clusterization, error) {
	for _, c := range f.items {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeClusterizationRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status string) error {
	for _, c := range f.items {
		if c.ID == id {
			c.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeClusterizationRepo) Touch(_ context.Context, _ *gorm.DB, id uuid.UUID, modified time.Time) error {
	for _, c := range f.items {
		if c.ID == id {
			c.Modified = modified
		}
	}
	return nil
}

type fakeClusterRepo struct {
	clusters     []*types.Cluster
	links        []*types.ClusterStereotype
	setUsersCall int
}

func (f *fakeClusterRepo) Create(_ context.Context, _ *gorm.DB, cs []*types.Cluster) ([]*types.Cluster, error) {
	f.clusters = append(f.clusters, cs...)
	return cs, nil
}

func (f *fakeClusterRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Cluster, error) {
	for _, c := range f.clusters {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeClusterRepo) ListByClusterization(_ context.Context, _ *gorm.DB, clusterizationID uuid.UUID) ([]*types.Cluster, error) {
	var out []*types.Cluster
	for _, c := range f.clusters {
		if c.ClusterizationID == clusterizationID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (f *fakeClusterRepo) SetUsers(_ context.Context, _ *gorm.DB, clusterID uuid.UUID, users datatypes.JSON) error {
	f.setUsersCall++
	for _, c := range f.clusters {
		if c.ID == clusterID {
			c.Users = users
		}
	}
	return nil
}

func (f *fakeClusterRepo) AddStereotype(_ context.Context, _ *gorm.DB, clusterID, stereotypeID uuid.UUID) error {
	f.links = append(f.links, &types.ClusterStereotype{ClusterID: clusterID, StereotypeID: stereotypeID})
	return nil
}

func (f *fakeClusterRepo) ListStereotypes(_ context.Context, _ *gorm.DB, clusterIDs []uuid.UUID) ([]*types.ClusterStereotype, error) {
	want := make(map[uuid.UUID]bool)
	for _, id := range clusterIDs {
		want[id] = true
	}
	var out []*types.ClusterStereotype
	for _, l := range f.links {
		if want[l.ClusterID] {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeSegmentFilterRepo struct {
	filters []*types.SegmentFilter
}

func (f *fakeSegmentFilterRepo) Create(_ context.Context, _ *gorm.DB, filter *types.SegmentFilter) (*types.SegmentFilter, error) {
	f.filters = append(f.filters, filter)
	return filter, nil
}

func (f *fakeSegmentFilterRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.SegmentFilter, error) {
	for _, filter := range f.filters {
		if filter.ID == id {
			return filter, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSegmentFilterRepo) ListByConversation(_ context.Context, _ *gorm.DB, conversationID uuid.UUID) ([]*types.SegmentFilter, error) {
	var out []*types.SegmentFilter
	for _, filter := range f.filters {
		if filter.ConversationID == conversationID {
			out = append(out, filter)
		}
	}
	return out, nil
}

func (f *fakeSegmentFilterRepo) Update(_ context.Context, _ *gorm.DB, filter *types.SegmentFilter) error {
	for i, existing := range f.filters {
		if existing.ID == filter.ID {
			f.filters[i] = filter
		}
	}
	return nil
}

func (f *fakeSegmentFilterRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	out := f.filters[:0]
	for _, filter := range f.filters {
		if filter.ID != id {
			out = append(out, filter)
		}
	}
	f.filters = out
	return nil
}

type fakeLocker struct {
	held     bool
	acquired int
	released int
}

func (f *fakeLocker) Acquire(_ context.Context, _, _ string, _ time.Duration) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	f.acquired++
	return true, nil
}

func (f *fakeLocker) Release(_ context.Context, _, _ string) error {
	f.held = false
	f.released++
	return nil
}

func (f *fakeLocker) Close() error { return nil }
