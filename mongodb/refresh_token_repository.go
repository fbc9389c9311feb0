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

// RefreshTokenRepository implements domain.RefreshTokenRepository on MongoDB.
type RefreshTokenRepository struct {
	tokens *mongo.Collection
}

// NewRefreshTokenRepository creates the repository and ensures its indexes:
// one active record per session id, and a TTL index so expired records are
// eventually purged without a sweep of our own.
func NewRefreshTokenRepository(ctx context.Context, db *mongo.Database) (domain.RefreshTokenRepository, error) {
	repo := &RefreshTokenRepository{tokens: db.Collection(RefreshTokensCollection)}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
	if _, err := repo.tokens.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warn().Err(err).Msg("failed to create refresh token indexes (may already exist)")
	}
	return repo, nil
}

func (r *RefreshTokenRepository) Create(ctx context.Context, rec *domain.RefreshTokenRecord) error {
	if rec.ID == "" {
		rec.ID = NewObjectID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if _, err := r.tokens.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEntity
		}
		log.Error().Err(err).Str("sessionID", rec.SessionID).Msg("error storing refresh token")
		return err
	}
	return nil
}

func (r *RefreshTokenRepository) GetByTokenAndSession(ctx context.Context, token, sessionID string) (*domain.RefreshTokenRecord, error) {
	var rec domain.RefreshTokenRecord
	err := r.tokens.FindOne(ctx, bson.M{"token": token, "session_id": sessionID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		log.Error().Err(err).Str("sessionID", sessionID).Msg("error getting refresh token")
		return nil, err
	}
	return &rec, nil
}

// Replace swaps the session's record in a single upsert keyed by session_id.
// Rotation therefore never leaves a window with zero valid tokens for the
// session.
func (r *RefreshTokenRepository) Replace(ctx context.Context, rec *domain.RefreshTokenRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	// _id is immutable, so the existing document's id is kept; a fresh one is
	// assigned only when the upsert inserts.
	update := bson.M{
		"$set": bson.M{
			"user_id":    rec.UserID,
			"token":      rec.Token,
			"expires_at": rec.ExpiresAt,
			"created_at": rec.CreatedAt,
		},
		"$setOnInsert": bson.M{"_id": NewObjectID()},
	}
	opts := options.UpdateOne().SetUpsert(true)
	if _, err := r.tokens.UpdateOne(ctx, bson.M{"session_id": rec.SessionID}, update, opts); err != nil {
		log.Error().Err(err).Str("sessionID", rec.SessionID).Msg("error replacing refresh token")
		return err
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	result, err := r.tokens.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("error deleting refresh tokens")
		return 0, err
	}
	return result.DeletedCount, nil
}

var _ domain.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
