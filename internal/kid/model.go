package kid

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Kid struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CaseID        int64              `bson:"caseId" json:"caseId"`
	RecordType    string             `bson:"recordType" json:"recordType"`
	Name          string             `bson:"name" json:"name"`
	State         string             `bson:"state" json:"state"`
	PublishedAt   time.Time          `bson:"publishedAt" json:"publishedAt"`
	WebpageURL    string             `bson:"webpageUrl" json:"webpageUrl"`
	ImageURL      string             `bson:"imageUrl" json:"imageUrl"`
	ContactName   string             `bson:"contactName" json:"contactName"`
	ContactPhone  string             `bson:"contactPhone" json:"contactPhone"`
	FirstName     string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName      string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	DetailFetched bool               `bson:"detailFetched" json:"detailFetched"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	ModifiedAt    time.Time          `bson:"modifiedAt" json:"modifiedAt"`
}
