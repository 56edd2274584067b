// File: database/repository/profile/profile_mongo.go
package profileRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flat2study/config"
	"flat2study/database"
	"flat2study/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound reports a lookup that found no document.
var ErrNotFound = errors.New("profile not found")

// ProfileRepository defines read access to profiles and listings. Both are
// owned by the marketplace surface; this subsystem only consults them for
// identity and ownership checks.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetListingByID(ctx context.Context, id string) (*models.Listing, error)
}

// MongoProfileRepo implements ProfileRepository using MongoDB.
type MongoProfileRepo struct {
	profiles *mongo.Collection
	listings *mongo.Collection
}

// NewMongoProfileRepo creates a new ProfileRepository.
func NewMongoProfileRepo() ProfileRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoProfileRepo{
		profiles: db.Collection("profiles"),
		listings: db.Collection("listings"),
	}
}

func (r *MongoProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var profile models.Profile
	err := r.profiles.FindOne(ctx, bson.M{"id": id}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile %s: %w", id, err)
	}
	return &profile, nil
}

func (r *MongoProfileRepo) GetListingByID(ctx context.Context, id string) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var listing models.Listing
	err := r.listings.FindOne(ctx, bson.M{"id": id}).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing %s: %w", id, err)
	}
	return &listing, nil
}
