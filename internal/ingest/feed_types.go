package ingest

// RawFeedItem is one entry of the missing-kids RSS document as handed over by
// the feed client. Links[0] is the case webpage, Links[1] the photo.
type RawFeedItem struct {
	Title       string `json:"title"`
	Published   string `json:"published"`
	Links       []Link `json:"links"`
	Description string `json:"description"`
}

type Link struct {
	Href string `json:"href"`
}
