package ingest

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// non-ASCII letters count as word characters in titles
	titleRE       = regexp.MustCompile(`(?P<type>[\p{L}\p{N}_]*): ?(?P<name>.*) \((?P<state>[\p{L}\p{N}_]{2})\)`)
	descriptionRE = regexp.MustCompile(`CONTACT: ?(?P<contact>.*) (?P<phone>\d?-?\d{3}-\d{3}-\d{4}).?`)
	caseIDRE      = regexp.MustCompile(`caseNum=(?P<id>\d+)`)
)

// publishedLayout is the feed's pubDate once the trailing zone is cut off.
const publishedLayout = "Mon, 2 Jan 2006 15:04:05"

// zoneSuffixLen is how many bytes are dropped from the end of the published
// string. The feed always ends in " GMT"; anything of another width will
// not parse.
const zoneSuffixLen = 4

// ParsedRecord is the structured form of one feed item.
type ParsedRecord struct {
	CaseID       int64
	RecordType   string
	Name         string
	State        string
	PublishedAt  time.Time
	WebpageURL   string
	ImageURL     string
	ContactName  string
	ContactPhone string
}

func (r ParsedRecord) String() string {
	return fmt.Sprintf("%s: %s from %s", r.RecordType, r.Name, r.State)
}

// Parse extracts a ParsedRecord from a raw feed item. The first step that
// fails ends the record and the returned error is a *ParseError.
func Parse(item RawFeedItem) (ParsedRecord, error) {
	var rec ParsedRecord

	m := titleRE.FindStringSubmatch(item.Title)
	if m == nil {
		return ParsedRecord{}, newParseError(ErrTitleFormat, item, "title %q does not match <type>: <name> (<state>)", item.Title)
	}
	rec.RecordType = m[titleRE.SubexpIndex("type")]
	rec.Name = TitleCase(m[titleRE.SubexpIndex("name")])
	rec.State = StateName(m[titleRE.SubexpIndex("state")])

	publishedAt, err := parsePublished(item.Published)
	if err != nil {
		return ParsedRecord{}, newParseError(ErrTimeFormat, item, "%v", err)
	}
	rec.PublishedAt = publishedAt

	if len(item.Links) < 2 {
		return ParsedRecord{}, newParseError(ErrLinkIndex, item, "need webpage and image links, got %d", len(item.Links))
	}
	rec.WebpageURL = item.Links[0].Href
	rec.ImageURL = item.Links[1].Href

	id, ok := caseIDFromURL(rec.WebpageURL)
	if !ok {
		return ParsedRecord{}, newParseError(ErrCaseIDNotFound, item, "no caseNum in %q", rec.WebpageURL)
	}
	rec.CaseID = id

	m = descriptionRE.FindStringSubmatch(item.Description)
	if m == nil {
		return ParsedRecord{}, newParseError(ErrDescriptionFormat, item, "no CONTACT: <name> <phone> in description")
	}
	rec.ContactName = m[descriptionRE.SubexpIndex("contact")]
	rec.ContactPhone = m[descriptionRE.SubexpIndex("phone")]

	return rec, nil
}

// ParseAll lazily parses items in order. A failed item yields a zero record
// and its *ParseError; iteration always continues with the next item.
func ParseAll(items []RawFeedItem) iter.Seq2[ParsedRecord, error] {
	return func(yield func(ParsedRecord, error) bool) {
		for _, item := range items {
			if !yield(Parse(item)) {
				return
			}
		}
	}
}

// CaseIDs yields only the case id of every item, reading it from the webpage
// link. Items without one yield ErrLinkIndex or ErrCaseIDNotFound.
func CaseIDs(items []RawFeedItem) iter.Seq2[int64, error] {
	return func(yield func(int64, error) bool) {
		for _, item := range items {
			if len(item.Links) == 0 {
				if !yield(0, newParseError(ErrLinkIndex, item, "no webpage link")) {
					return
				}
				continue
			}
			id, ok := caseIDFromURL(item.Links[0].Href)
			if !ok {
				if !yield(0, newParseError(ErrCaseIDNotFound, item, "no caseNum in %q", item.Links[0].Href)) {
					return
				}
				continue
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}

// TitleCase upper-cases the first letter of every whitespace separated word
// and lower-cases the rest.
func TitleCase(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	wordStart := true
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			wordStart = true
			b.WriteRune(r)
		case wordStart:
			wordStart = false
			b.WriteRune(unicode.ToTitle(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// parsePublished returns the wall clock of a pubDate such as
// "Mon, 01 Jan 2024 10:00:00 GMT". The zone is discarded, not applied, so the
// result carries the UTC location only as a placeholder.
func parsePublished(raw string) (time.Time, error) {
	if len(raw) < zoneSuffixLen {
		return time.Time{}, fmt.Errorf("published %q too short", raw)
	}
	t, err := time.Parse(publishedLayout, raw[:len(raw)-zoneSuffixLen])
	if err != nil {
		return time.Time{}, fmt.Errorf("published %q: %w", raw, err)
	}
	return t, nil
}

func caseIDFromURL(href string) (int64, bool) {
	m := caseIDRE.FindStringSubmatch(href)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[caseIDRE.SubexpIndex("id")], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
