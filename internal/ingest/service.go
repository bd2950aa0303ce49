package ingest

import (
	"context"
	"errors"
	"log"
	"time"

	"missing-kids/internal/detail"
	"missing-kids/internal/kid"
)

const runTimeout = 5 * time.Minute // hard limit for a single poll

type FeedClient interface {
	Fetch(ctx context.Context) ([]RawFeedItem, error)
}

type DetailClient interface {
	Lookup(ctx context.Context, caseNum int64) (detail.Detail, error)
}

// ticker is an interface so we can swap out time.Ticker in tests.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type tickerFactory func(d time.Duration) ticker

// timeTicker is the real implementation backed by time.Ticker.
type timeTicker struct {
	*time.Ticker
}

func (t *timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func (t *timeTicker) Stop() {
	t.Ticker.Stop()
}

type Service struct {
	repo      kid.Repository
	client    FeedClient
	details   DetailClient
	maxPolls  int
	logger    *log.Logger
	newTicker tickerFactory
}

// NewService builds the poller. details may be nil to skip detail lookups.
func NewService(repo kid.Repository, client FeedClient, details DetailClient, maxPolls int, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		repo:     repo,
		client:   client,
		details:  details,
		maxPolls: maxPolls,
		logger:   logger,
		newTicker: func(d time.Duration) ticker {
			return &timeTicker{time.NewTicker(d)}
		},
	}
}

// RunOnce fetches the feed and stores every item that parses. Bad items and
// store failures are logged and skipped; only a failed fetch is returned.
func (s *Service) RunOnce(ctx context.Context) error {
	items, err := s.client.Fetch(ctx)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		s.logger.Println("feed returned no items")
		return nil
	}

	stored, unchanged, failed := 0, 0, 0
	seen := make(map[int64]struct{}) // the feed occasionally lists a case twice

	for rec, err := range ParseAll(items) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			failed++
			s.logger.Printf("skipping feed item: %v", err)
			continue
		}

		if _, ok := seen[rec.CaseID]; ok {
			continue
		}
		seen[rec.CaseID] = struct{}{}

		var d *detail.Detail
		if s.details != nil && s.needsDetail(ctx, rec.CaseID) {
			got, err := s.details.Lookup(ctx, rec.CaseID)
			if err != nil {
				s.logger.Printf("detail lookup for case %d failed: %v", rec.CaseID, err)
			} else {
				d = &got
			}
		}

		k := MapRecordToKid(rec, d)
		changed, err := s.repo.UpsertByCaseID(ctx, &k)
		if err != nil {
			failed++
			s.logger.Printf("failed to upsert case %d: %v", rec.CaseID, err)
			continue
		}
		if changed {
			stored++
		} else {
			unchanged++
		}
	}

	s.logger.Printf("run complete: %d items, %d stored, %d unchanged, %d failed",
		len(items), stored, unchanged, failed)
	return nil
}

// needsDetail reports whether the stored case still lacks detail names.
// A store error counts as missing so the lookup is still attempted.
func (s *Service) needsDetail(ctx context.Context, caseID int64) bool {
	existing, err := s.repo.FindByCaseID(ctx, caseID)
	if errors.Is(err, kid.ErrNotFound) {
		return true
	}
	if err != nil {
		s.logger.Printf("failed to load case %d: %v", caseID, err)
		return true
	}
	return !existing.DetailFetched
}

func (s *Service) StartPolling(ctx context.Context, interval time.Duration) {
	t := s.newTicker(interval)
	defer t.Stop()

	pollCount := 0

	s.logger.Printf("polling every %v...", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Println("poller stopping, context cancelled")
			return

		case <-t.C():
			// stop after maxPolls
			if s.maxPolls > 0 && pollCount >= s.maxPolls {
				s.logger.Printf("poller stopping after %d polls (max reached)", pollCount)
				return
			}

			pollCount++
			s.logger.Printf("poll #%d starting ingestion...", pollCount)

			pollCtx, cancel := context.WithTimeout(ctx, runTimeout)

			if err := s.RunOnce(pollCtx); err != nil {
				s.logger.Printf("poll error: %v", err)
			}

			cancel()
		}
	}
}
