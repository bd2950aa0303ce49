package kid

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "kids"

var ErrNotFound = errors.New("kid not found")

type Repository interface {
	UpsertByCaseID(ctx context.Context, k *Kid) (bool, error)
	FindByCaseID(ctx context.Context, caseID int64) (*Kid, error)
}

type mongoRepository struct {
	col    *mongo.Collection
	logger *log.Logger
}

func NewMongoKidRepository(db *mongo.Database, logger *log.Logger) (Repository, error) {
	col := db.Collection(CollectionName)

	repo := &mongoRepository{
		col:    col,
		logger: logger,
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// ensureIndexes keeps one document per case number and orders by publish time.
func (r *mongoRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "caseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "publishedAt", Value: 1}},
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)

	if err != nil && r.logger != nil {
		r.logger.Printf("failed to create indexes: %v", err)
	}
	return err
}

// UpsertByCaseID inserts a case seen for the first time. An existing case is
// rewritten when the feed republished it later, and its names are filled in
// when a detail lookup succeeded for the first time.
// returns true if a document was created / updated.
func (r *mongoRepository) UpsertByCaseID(ctx context.Context, k *Kid) (bool, error) {
	now := time.Now()

	res := r.col.FindOne(ctx, bson.M{"caseId": k.CaseID})
	if errors.Is(res.Err(), mongo.ErrNoDocuments) {
		if r.logger != nil {
			r.logger.Printf("inserting new case: %d", k.CaseID)
		}

		k.CreatedAt = now
		k.ModifiedAt = now

		_, err := r.col.InsertOne(ctx, k)
		if err != nil {
			return false, err
		}

		return true, nil
	}

	if res.Err() != nil {
		return false, res.Err()
	}

	existing := Kid{}
	if err := res.Decode(&existing); err != nil {
		return false, err
	}

	shouldUpdateRecord := !k.PublishedAt.IsZero() && k.PublishedAt.After(existing.PublishedAt)
	shouldUpdateDetail := k.DetailFetched && !existing.DetailFetched

	if !shouldUpdateRecord && !shouldUpdateDetail {
		return false, nil
	}

	set := bson.M{}
	if shouldUpdateRecord {
		if r.logger != nil {
			r.logger.Printf("updating case with newer publishedAt: %d", k.CaseID)
		}

		set["recordType"] = k.RecordType
		set["name"] = k.Name
		set["state"] = k.State
		set["publishedAt"] = k.PublishedAt
		set["webpageUrl"] = k.WebpageURL
		set["imageUrl"] = k.ImageURL
		set["contactName"] = k.ContactName
		set["contactPhone"] = k.ContactPhone
	}

	if shouldUpdateDetail {
		if r.logger != nil {
			r.logger.Printf("storing detail names for case: %d", k.CaseID)
		}

		set["firstName"] = k.FirstName
		set["lastName"] = k.LastName
		set["detailFetched"] = true
	}

	set["modifiedAt"] = now

	_, err := r.col.UpdateOne(
		ctx,
		bson.M{"caseId": k.CaseID},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *mongoRepository) FindByCaseID(ctx context.Context, caseID int64) (*Kid, error) {
	var k Kid
	err := r.col.FindOne(ctx, bson.M{"caseId": caseID}).Decode(&k)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}
