package domain

import (
	"github.com/openagora/opinion-engine/internal/domain/clustering"
	"github.com/openagora/opinion-engine/internal/domain/conversation"
	"github.com/openagora/opinion-engine/internal/domain/user"
)

const (
	CommentStatusApproved = conversation.CommentStatusApproved
	CommentStatusPending  = conversation.CommentStatusPending
	CommentStatusRejected = conversation.CommentStatusRejected

	ClusterizationStatusPendingData = clustering.ClusterizationStatusPendingData
	ClusterizationStatusActive      = clustering.ClusterizationStatusActive
	ClusterizationStatusDisabled    = clustering.ClusterizationStatusDisabled

	ChoiceAgree    = conversation.ChoiceAgree
	ChoiceSkip     = conversation.ChoiceSkip
	ChoiceDisagree = conversation.ChoiceDisagree
)

var ErrInvalidChoice = conversation.ErrInvalidChoice

type User = user.User

type Conversation = conversation.Conversation
type Comment = conversation.Comment
type Vote = conversation.Vote
type Choice = conversation.Choice

type Stereotype = clustering.Stereotype
type StereotypeVote = clustering.StereotypeVote
type Clusterization = clustering.Clusterization
type Cluster = clustering.Cluster
type ClusterStereotype = clustering.ClusterStereotype
type SegmentFilter = clustering.SegmentFilter

func ParseChoice(s string) (Choice, error) { return conversation.ParseChoice(s) }
