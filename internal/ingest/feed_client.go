package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mmcdole/gofeed"
)

type rssClient struct {
	feedURL string
	parser  *gofeed.Parser
}

// NewRSSClient returns a FeedClient reading the RSS/Atom document at feedURL.
func NewRSSClient(feedURL, userAgent string, httpClient *http.Client) FeedClient {
	fp := gofeed.NewParser()
	fp.Client = httpClient
	if userAgent != "" {
		fp.UserAgent = userAgent
	}
	return &rssClient{
		feedURL: feedURL,
		parser:  fp,
	}
}

func (c *rssClient) Fetch(ctx context.Context) ([]RawFeedItem, error) {
	feed, err := c.parser.ParseURLWithContext(c.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", c.feedURL, err)
	}
	return toRawItems(feed), nil
}

// ParseFeed decodes an already downloaded feed document.
func ParseFeed(r io.Reader) ([]RawFeedItem, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return toRawItems(feed), nil
}

func toRawItems(feed *gofeed.Feed) []RawFeedItem {
	items := make([]RawFeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		items = append(items, RawFeedItem{
			Title:       it.Title,
			Published:   it.Published,
			Links:       itemLinks(it),
			Description: it.Description,
		})
	}
	return items
}

// itemLinks orders links the way the case parser expects them: the item
// link first, then any other links, then enclosures (the photo).
func itemLinks(it *gofeed.Item) []Link {
	var links []Link
	seen := make(map[string]struct{})
	add := func(href string) {
		if href == "" {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		links = append(links, Link{Href: href})
	}

	add(it.Link)
	for _, l := range it.Links {
		add(l)
	}
	for _, enc := range it.Enclosures {
		if enc != nil {
			add(enc.URL)
		}
	}
	if it.Image != nil {
		add(it.Image.URL)
	}
	return links
}
