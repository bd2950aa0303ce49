package ingest

import (
	"testing"
	"time"

	"missing-kids/internal/detail"

	"github.com/stretchr/testify/assert"
)

func TestMapRecordToKid(t *testing.T) {
	rec := ParsedRecord{
		CaseID:       9,
		RecordType:   "Missing",
		Name:         "Ann Lee",
		State:        "California",
		PublishedAt:  time.Date(2024, time.January, 2, 8, 30, 0, 0, time.UTC),
		WebpageURL:   "http://a/?caseNum=9",
		ImageURL:     "http://a/9.jpg",
		ContactName:  "NCMEC",
		ContactPhone: "1-800-843-5678",
	}

	k := MapRecordToKid(rec, nil)
	assert.Equal(t, int64(9), k.CaseID)
	assert.Equal(t, "Ann Lee", k.Name)
	assert.Equal(t, "California", k.State)
	assert.Equal(t, rec.PublishedAt, k.PublishedAt)
	assert.Equal(t, "1-800-843-5678", k.ContactPhone)
	assert.False(t, k.DetailFetched)
	assert.Empty(t, k.FirstName)

	k = MapRecordToKid(rec, &detail.Detail{FirstName: "Ann", LastName: "Lee"})
	assert.True(t, k.DetailFetched)
	assert.Equal(t, "Ann", k.FirstName)
	assert.Equal(t, "Lee", k.LastName)
}
