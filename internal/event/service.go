package event

import (
	"context"
	"log"

	"missing-kids/internal/kid"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Publisher interface {
	PublishKidUpdated(ctx context.Context, k *kid.Kid) error
}

type Service struct {
	col       *mongo.Collection
	publisher Publisher
	logger    *log.Logger
}

func NewService(col *mongo.Collection, publisher Publisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		col:       col,
		publisher: publisher,
		logger:    logger,
	}
}

// Run forwards every insert or update on the kids collection to the
// publisher until ctx is cancelled. Needs a replica set.
func (s *Service) Run(ctx context.Context) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": bson.M{"$in": bson.A{"insert", "update", "replace"}}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := s.col.Watch(ctx, pipeline, opts)
	if err != nil {
		s.logger.Printf("events: failed to open change stream: %v", err)
		return
	}
	defer stream.Close(ctx)

	s.logger.Println("events: watching MongoDB change stream...")

	for stream.Next(ctx) {
		var event changeEvent
		if err := stream.Decode(&event); err != nil {
			s.logger.Printf("events: failed decoding change event: %v", err)
			continue
		}

		k, ok := event.changedKid()
		if !ok {
			s.logger.Printf("events: skip %s event missing caseId", event.OperationType)
			continue
		}

		if err := s.publisher.PublishKidUpdated(ctx, k); err != nil {
			s.logger.Printf("events: failed publishing case %d: %v", k.CaseID, err)
			continue
		}

		s.logger.Printf("events: published case %d to message bus", k.CaseID)
	}

	if err := stream.Err(); err != nil {
		s.logger.Printf("events: change stream closed with error: %v", err)
	} else {
		s.logger.Println("events: change stream stopped")
	}
}

// changeEvent is the part of a change stream document we use. FullDocument
// is the post-update state because the stream is opened with UpdateLookup.
type changeEvent struct {
	OperationType string   `bson:"operationType"`
	FullDocument  *kid.Kid `bson:"fullDocument"`
}

func (e changeEvent) changedKid() (*kid.Kid, bool) {
	if e.FullDocument == nil || e.FullDocument.CaseID == 0 {
		return nil, false
	}
	return e.FullDocument, true
}
