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

// ProfileRepository implements domain.ProfileRepository on MongoDB.
type ProfileRepository struct {
	profiles *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) domain.ProfileRepository {
	return &ProfileRepository{profiles: db.Collection(ProfilesCollection)}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if profile.ID == "" {
		profile.ID = NewObjectID()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	if _, err := r.profiles.InsertOne(ctx, profile); err != nil {
		log.Error().Err(err).Msg("error creating profile")
		return err
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.profiles.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		log.Error().Err(err).Str("profileID", id).Msg("error getting profile")
		return nil, err
	}
	return &profile, nil
}

// Update applies only the fields present in the patch.
func (r *ProfileRepository) Update(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.Profile, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.DateOfBirth != nil {
		set["date_of_birth"] = *patch.DateOfBirth
	}
	if patch.PhoneNumber != nil {
		set["phone_number"] = *patch.PhoneNumber
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Website != nil {
		set["website"] = *patch.Website
	}
	if patch.PictureURL != nil {
		set["picture_url"] = *patch.PictureURL
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var profile domain.Profile
	err := r.profiles.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		log.Error().Err(err).Str("profileID", id).Msg("error updating profile")
		return nil, err
	}
	return &profile, nil
}

var _ domain.ProfileRepository = (*ProfileRepository)(nil)
