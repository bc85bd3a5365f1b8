package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/data/repos"
	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

// SegmentService evaluates saved segment filters over a conversation's
// participants: cluster membership ∩ engagement ∩ exact comment choices.
// Evaluation short-circuits as soon as an intermediate set is empty.
type SegmentService interface {
	Create(ctx context.Context, filter *types.SegmentFilter) (*types.SegmentFilter, error)
	Get(ctx context.Context, filterID uuid.UUID) (*types.SegmentFilter, error)
	List(ctx context.Context, conversationID uuid.UUID) ([]*types.SegmentFilter, error)
	Delete(ctx context.Context, filterID uuid.UUID) error
	Toggle(ctx context.Context, filterID, commentID uuid.UUID, choice string) (*types.SegmentFilter, error)
	FilterParticipants(ctx context.Context, filter *types.SegmentFilter) ([]uuid.UUID, error)
}

type segmentService struct {
	db          *gorm.DB
	log         *logger.Logger
	filterRepo  repos.SegmentFilterRepo
	clusterRepo repos.ClusterRepo
	commentRepo repos.CommentRepo
	voteRepo    repos.VoteRepo
}

func NewSegmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	filterRepo repos.SegmentFilterRepo,
	clusterRepo repos.ClusterRepo,
	commentRepo repos.CommentRepo,
	voteRepo repos.VoteRepo,
) SegmentService {
	serviceLog := baseLog.With("service", "SegmentService")
	return &segmentService{
		db:          db,
		log:         serviceLog,
		filterRepo:  filterRepo,
		clusterRepo: clusterRepo,
		commentRepo: commentRepo,
		voteRepo:    voteRepo,
	}
}

func (ss *segmentService) Create(ctx context.Context, filter *types.SegmentFilter) (*types.SegmentFilter, error) {
	if err := validateEngagement(filter.EngagementLevel); err != nil {
		return nil, err
	}
	if filter.ID == uuid.Nil {
		filter.ID = uuid.New()
	}
	if len(filter.Clusters) == 0 {
		filter.Clusters = []byte("[]")
	}
	if len(filter.Comments) == 0 {
		filter.Comments = []byte("{}")
	}
	return ss.filterRepo.Create(ctx, nil, filter)
}

func (ss *segmentService) Get(ctx context.Context, filterID uuid.UUID) (*types.SegmentFilter, error) {
	filter, err := ss.filterRepo.GetByID(ctx, nil, filterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return filter, nil
}

func (ss *segmentService) List(ctx context.Context, conversationID uuid.UUID) ([]*types.SegmentFilter, error) {
	return ss.filterRepo.ListByConversation(ctx, nil, conversationID)
}

func (ss *segmentService) Delete(ctx context.Context, filterID uuid.UUID) error {
	return ss.filterRepo.Delete(ctx, nil, filterID)
}

// Toggle flips a comment-choice entry: a matching entry is removed, anything
// else is upserted. The sole mutation path of the comment predicate.
func (ss *segmentService) Toggle(ctx context.Context, filterID, commentID uuid.UUID, choice string) (*types.SegmentFilter, error) {
	parsed, err := types.ParseChoice(choice)
	if err != nil {
		return nil, err
	}

	filter, err := ss.Get(ctx, filterID)
	if err != nil {
		return nil, err
	}

	choices, err := decodeChoices(filter.Comments)
	if err != nil {
		return nil, err
	}
	key := commentID.String()
	if stored, ok := choices[key]; ok && stored == parsed.Label() {
		delete(choices, key)
	} else {
		choices[key] = parsed.Label()
	}

	raw, err := json.Marshal(choices)
	if err != nil {
		return nil, fmt.Errorf("encode comment choices: %w", err)
	}
	filter.Comments = raw
	if err := ss.filterRepo.Update(ctx, nil, filter); err != nil {
		return nil, err
	}
	return filter, nil
}

// FilterParticipants applies the predicate chain. The result preserves the
// deterministic participant order of the vote listing (first vote, then id).
func (ss *segmentService) FilterParticipants(ctx context.Context, filter *types.SegmentFilter) ([]uuid.UUID, error) {
	if err := validateEngagement(filter.EngagementLevel); err != nil {
		return nil, err
	}

	comments, err := ss.commentRepo.ListApproved(ctx, nil, filter.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("list approved comments: %w", err)
	}
	voteList, err := ss.voteRepo.ListByConversation(ctx, nil, filter.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}

	approved := make(map[uuid.UUID]bool, len(comments))
	for _, c := range comments {
		approved[c.ID] = true
	}

	order := make([]uuid.UUID, 0)
	kept := make(map[uuid.UUID]bool)
	nonSkip := make(map[uuid.UUID]int)
	byComment := make(map[uuid.UUID]map[uuid.UUID]types.Choice)
	for _, v := range voteList {
		if !approved[v.CommentID] {
			continue
		}
		if !kept[v.AuthorID] {
			kept[v.AuthorID] = true
			order = append(order, v.AuthorID)
		}
		if v.Choice != types.ChoiceSkip {
			nonSkip[v.AuthorID]++
		}
		m, ok := byComment[v.CommentID]
		if !ok {
			m = make(map[uuid.UUID]types.Choice)
			byComment[v.CommentID] = m
		}
		m[v.AuthorID] = v.Choice
	}
	if len(order) == 0 {
		return nil, nil
	}

	// Cluster predicate: empty selection keeps everyone.
	clusterIDs, err := decodeClusterIDs(filter.Clusters)
	if err != nil {
		return nil, err
	}
	if len(clusterIDs) > 0 {
		inCluster := make(map[uuid.UUID]bool)
		for _, clusterID := range clusterIDs {
			cluster, err := ss.clusterRepo.GetByID(ctx, nil, clusterID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, fmt.Errorf("get cluster: %w", err)
			}
			members, err := ParseMembers(cluster.Users)
			if err != nil {
				return nil, err
			}
			for _, id := range members {
				inCluster[id] = true
			}
		}
		for id := range kept {
			if !inCluster[id] {
				delete(kept, id)
			}
		}
		if len(kept) == 0 {
			return nil, nil
		}
	}

	// Engagement predicate.
	if filter.EngagementLevel > 0 && len(comments) > 0 {
		threshold := float64(filter.EngagementLevel) / 100
		for id := range kept {
			ratio := float64(nonSkip[id]) / float64(len(comments))
			if ratio < threshold {
				delete(kept, id)
			}
		}
		if len(kept) == 0 {
			return nil, nil
		}
	}

	// Comment-choice predicate: exact equality per entry.
	choices, err := decodeChoices(filter.Comments)
	if err != nil {
		return nil, err
	}
	for key, label := range choices {
		commentID, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("segment filter comment id %q: %w", key, err)
		}
		want, err := types.ParseChoice(label)
		if err != nil {
			return nil, err
		}
		cast := byComment[commentID]
		for id := range kept {
			if got, ok := cast[id]; !ok || got != want {
				delete(kept, id)
			}
		}
		if len(kept) == 0 {
			return nil, nil
		}
	}

	out := make([]uuid.UUID, 0, len(kept))
	for _, id := range order {
		if kept[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func validateEngagement(level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidEngagement, level)
	}
	return nil
}

func decodeChoices(raw []byte) (map[string]string, error) {
	out := make(map[string]string)
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode comment choices: %w", err)
	}
	return out, nil
}

func decodeClusterIDs(raw []byte) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []uuid.UUID
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode cluster selection: %w", err)
	}
	return out, nil
}
