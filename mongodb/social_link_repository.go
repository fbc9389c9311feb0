package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/socialkit-dev/identity/domain"
)

// SocialLinkRepository implements domain.SocialLinkRepository on MongoDB.
type SocialLinkRepository struct {
	links *mongo.Collection
}

// NewSocialLinkRepository creates the repository and ensures a compound
// unique index on (user_id, provider), so link uniqueness holds even when two
// callback requests race past the application-level check.
func NewSocialLinkRepository(ctx context.Context, db *mongo.Database) (domain.SocialLinkRepository, error) {
	repo := &SocialLinkRepository{links: db.Collection(SocialLinksCollection)}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "provider", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}
	if _, err := repo.links.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warn().Err(err).Msg("failed to create connected account indexes (may already exist)")
	}
	return repo, nil
}

func (r *SocialLinkRepository) Create(ctx context.Context, link *domain.SocialLink) error {
	if link.ID == "" {
		link.ID = NewObjectID()
	}
	now := time.Now().UTC()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	link.UpdatedAt = now

	if _, err := r.links.InsertOne(ctx, link); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEntity
		}
		log.Error().Err(err).Str("userID", link.UserID).Str("provider", string(link.Provider)).
			Msg("error storing connected account")
		return err
	}
	return nil
}

func (r *SocialLinkRepository) GetByUserAndProvider(ctx context.Context, userID string, provider domain.Provider) (*domain.SocialLink, error) {
	var link domain.SocialLink
	err := r.links.FindOne(ctx, bson.M{"user_id": userID, "provider": provider}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		log.Error().Err(err).Str("userID", userID).Str("provider", string(provider)).
			Msg("error getting connected account")
		return nil, err
	}
	return &link, nil
}

func (r *SocialLinkRepository) ListByUser(ctx context.Context, userID string) ([]*domain.SocialLink, error) {
	cursor, err := r.links.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("error listing connected accounts")
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []*domain.SocialLink
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *SocialLinkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.links.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error().Err(err).Str("linkID", id).Msg("error deleting connected account")
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.SocialLinkRepository = (*SocialLinkRepository)(nil)
