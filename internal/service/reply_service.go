package service

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

const maxReplyLen = 5000

// ReplyService owns the threaded reply tree of a post.
type ReplyService struct {
	replyRepo repository.ReplyRepository
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
}

type CreateReplyInput struct {
	PostID        uint
	ParentReplyID *uint
	ExternalID    string
	Content       string
}

// ReplyNode is a reply with its direct children attached.
type ReplyNode struct {
	*models.Reply
	Replies []*ReplyNode `json:"replies"`
}

func NewReplyService(replyRepo repository.ReplyRepository, postRepo repository.PostRepository, userRepo repository.UserRepository) *ReplyService {
	return &ReplyService{replyRepo: replyRepo, postRepo: postRepo, userRepo: userRepo}
}

// ListByPost returns the post's reply forest: top-level replies newest-first,
// each carrying its children oldest-first.
func (s *ReplyService) ListByPost(ctx context.Context, postID uint) ([]*ReplyNode, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}

	replies, err := s.replyRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return buildReplyForest(replies), nil
}

// buildReplyForest assembles the tree, to any depth, from rows ordered
// oldest first. A reply is always created after its parent, so a parent
// precedes its children in that order and one pass suffices. Replies whose
// parent row no longer exists are dropped rather than promoted.
func buildReplyForest(replies []*models.Reply) []*ReplyNode {
	nodes := make(map[uint]*ReplyNode, len(replies))
	roots := make([]*ReplyNode, 0, len(replies))

	for _, reply := range replies {
		node := &ReplyNode{Reply: reply, Replies: []*ReplyNode{}}
		if reply.ParentReplyID == nil {
			nodes[reply.ID] = node
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*reply.ParentReplyID]
		if !ok {
			continue
		}
		nodes[reply.ID] = node
		parent.Replies = append(parent.Replies, node)
	}

	// Children stay chronological; reverse the top level to show newest
	// threads first.
	for i, j := 0, len(roots)-1; i < j; i, j = i+1, j-1 {
		roots[i], roots[j] = roots[j], roots[i]
	}
	return roots
}

// Create adds a reply to the post, nested under a parent when given. The
// parent must exist and belong to the same post.
func (s *ReplyService) Create(ctx context.Context, in CreateReplyInput) (*models.Reply, error) {
	author, err := s.resolveUser(ctx, in.ExternalID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required", "content")
	}
	if len(in.Content) > maxReplyLen {
		return nil, models.NewValidationError("Reply too long (max 5000 characters)", "content")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}

	if in.ParentReplyID != nil {
		parent, err := s.replyRepo.GetByID(ctx, *in.ParentReplyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Parent reply")
			}
			return nil, models.NewInternalError(err)
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent reply belongs to a different post", "parentReplyId")
		}
	}

	reply := &models.Reply{
		PostID:        in.PostID,
		ParentReplyID: in.ParentReplyID,
		AuthorID:      author.ID,
		Content:       in.Content,
	}
	if err := s.replyRepo.Create(ctx, reply); err != nil {
		return nil, models.NewInternalError(err)
	}
	created, err := s.replyRepo.GetByID(ctx, reply.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

// Delete removes the reply and its direct children. Only the reply's author
// may delete it.
func (s *ReplyService) Delete(ctx context.Context, replyID uint, externalID string) error {
	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Reply")
		}
		return models.NewInternalError(err)
	}

	user, err := s.resolveUser(ctx, externalID)
	if err != nil {
		return err
	}
	if reply.AuthorID != user.ID {
		return models.NewForbiddenError("You can only delete your own replies")
	}

	if err := s.replyRepo.Delete(ctx, reply); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the caller's like on the reply.
func (s *ReplyService) ToggleLike(ctx context.Context, replyID uint, externalID string) (*models.LikeResult, error) {
	user, err := s.resolveUser(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if _, err := s.replyRepo.GetByID(ctx, replyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reply")
		}
		return nil, models.NewInternalError(err)
	}

	result, err := s.replyRepo.ToggleLike(ctx, replyID, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return result, nil
}

func (s *ReplyService) resolveUser(ctx context.Context, externalID string) (*models.User, error) {
	if externalID == "" {
		return nil, models.NewValidationError("externalId is required")
	}
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}
