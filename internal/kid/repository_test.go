package kid_test

import (
	"context"
	"testing"
	"time"

	"missing-kids/internal/db"
	"missing-kids/internal/kid"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
)

type KidRepositorySuite struct {
	suite.Suite

	ctx    context.Context
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection

	repo kid.Repository
}

func TestKidRepositorySuite(t *testing.T) {
	suite.Run(t, new(KidRepositorySuite))
}

func (s *KidRepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	mongoURI := "mongodb://localhost:27017"
	mongoDBName := "test_kidsdb"

	connectCtx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()

	client, err := db.ConnectMongo(connectCtx, mongoURI)
	if err != nil {
		s.T().Skipf("mongo not reachable at %s: %v", mongoURI, err)
	}
	s.client = client

	s.db = client.Database(mongoDBName)
	s.col = s.db.Collection(kid.CollectionName)
}

func (s *KidRepositorySuite) TearDownSuite() {
	if s.client != nil {
		_ = s.db.Drop(s.ctx)
		_ = s.client.Disconnect(s.ctx)
	}
}

func (s *KidRepositorySuite) SetupTest() {
	// fresh collection and indexes before each test
	_ = s.db.Drop(s.ctx)

	repo, err := kid.NewMongoKidRepository(s.db, nil)
	s.Require().NoError(err, "failed to create kid repository")
	s.repo = repo
}

func published(day int) time.Time {
	return time.Date(2024, time.January, day, 10, 0, 0, 0, time.UTC)
}

func (s *KidRepositorySuite) TestUpsertByCaseIDEndToEnd() {
	k1 := kid.Kid{
		CaseID:      1001,
		RecordType:  "Missing",
		Name:        "John Q. Public",
		State:       "Texas",
		PublishedAt: published(1),
	}

	changed, err := s.repo.UpsertByCaseID(s.ctx, &k1)
	s.Require().NoError(err)
	s.Require().True(changed, "first insert")

	got, err := s.repo.FindByCaseID(s.ctx, 1001)
	s.Require().NoError(err)
	s.Equal("John Q. Public", got.Name)
	s.True(published(1).Equal(got.PublishedAt))
	s.False(got.DetailFetched)

	// same publish time, nothing to do
	changed, err = s.repo.UpsertByCaseID(s.ctx, &kid.Kid{CaseID: 1001, Name: "Other", PublishedAt: published(1)})
	s.Require().NoError(err)
	s.False(changed, "same publishedAt must not update")

	// republished later
	k2 := k1
	k2.State = "Ohio"
	k2.PublishedAt = published(5)
	changed, err = s.repo.UpsertByCaseID(s.ctx, &k2)
	s.Require().NoError(err)
	s.True(changed, "newer publishedAt should update")

	got, err = s.repo.FindByCaseID(s.ctx, 1001)
	s.Require().NoError(err)
	s.Equal("Ohio", got.State)
	s.True(published(5).Equal(got.PublishedAt))

	// detail arrives for the first time
	k3 := k2
	k3.FirstName = "John"
	k3.LastName = "Public"
	k3.DetailFetched = true
	changed, err = s.repo.UpsertByCaseID(s.ctx, &k3)
	s.Require().NoError(err)
	s.True(changed, "first detail should update")

	got, err = s.repo.FindByCaseID(s.ctx, 1001)
	s.Require().NoError(err)
	s.Equal("John", got.FirstName)
	s.Equal("Public", got.LastName)
	s.True(got.DetailFetched)

	changed, err = s.repo.UpsertByCaseID(s.ctx, &k3)
	s.Require().NoError(err)
	s.False(changed, "detail already stored")
}

func (s *KidRepositorySuite) TestFindByCaseIDNotFound() {
	_, err := s.repo.FindByCaseID(s.ctx, 424242)
	s.ErrorIs(err, kid.ErrNotFound)
}
