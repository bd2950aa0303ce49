package ingest

import (
	"missing-kids/internal/detail"
	"missing-kids/internal/kid"
)

// MapRecordToKid builds the stored document. d may be nil when no detail
// lookup was made or it failed.
func MapRecordToKid(rec ParsedRecord, d *detail.Detail) kid.Kid {
	k := kid.Kid{
		CaseID:       rec.CaseID,
		RecordType:   rec.RecordType,
		Name:         rec.Name,
		State:        rec.State,
		PublishedAt:  rec.PublishedAt,
		WebpageURL:   rec.WebpageURL,
		ImageURL:     rec.ImageURL,
		ContactName:  rec.ContactName,
		ContactPhone: rec.ContactPhone,
	}
	if d != nil {
		k.FirstName = d.FirstName
		k.LastName = d.LastName
		k.DetailFetched = true
	}
	return k
}
