package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/store"
	"github.com/telecomnet/telecom-social/internal/validate"
)

type PostService struct {
	base
	connections *ConnectionService
}

func NewPostService(db store.DB, connections *ConnectionService, log zerolog.Logger, opts ...Option) *PostService {
	return &PostService{base: newBase(db, log, "posts", opts), connections: connections}
}

func (s *PostService) Create(ctx context.Context, authorID, content string) (*model.Post, error) {
	if err := validate.PostContent(content); err != nil {
		return nil, model.Validation("%s", err.Error())
	}
	var out *model.Post
	err := s.inTx(ctx, "posts.create", func(tx store.Tx) error {
		if _, err := requireUsers(ctx, tx, authorID); err != nil {
			return err
		}
		now := s.clock()
		p, err := tx.Posts().Create(ctx, &model.Post{
			PostID:    uuid.New().String(),
			AuthorID:  authorID,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		})
		out = p
		return err
	})
	return out, err
}

// List returns everyone's posts, newest first.
func (s *PostService) List(ctx context.Context, limit int) ([]*model.Post, error) {
	return read(ctx, &s.base, "posts.list", func(ctx context.Context) ([]*model.Post, error) {
		return s.db.Posts().List(ctx, nil, clampLimit(limit))
	})
}

// Feed returns posts by viewerID and their connections, newest first.
func (s *PostService) Feed(ctx context.Context, viewerID string, limit int) ([]*model.Post, error) {
	peers, err := s.connections.ConnectedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authors := lo.Uniq(append([]string{viewerID}, peers...))
	return read(ctx, &s.base, "posts.feed", func(ctx context.Context) ([]*model.Post, error) {
		return s.db.Posts().List(ctx, authors, clampLimit(limit))
	})
}
