package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"missing-kids/internal/detail"
	"missing-kids/internal/ingest"

	"github.com/jessevdk/go-flags"
)

type options struct {
	FeedURL   string        `long:"feed-url" env:"FEED_URL" default:"http://www.missingkids.com/missingkids/servlet/XmlServlet?act=rss" description:"RSS feed listing the cases"`
	DetailURL string        `long:"detail-url" env:"DETAIL_URL" default:"http://www.missingkids.com/missingkids/servlet/JSONDataServlet" description:"JSON endpoint for per-case details"`
	UserAgent string        `long:"user-agent" env:"USER_AGENT" default:"missing-kids/1.0" description:"User agent for HTTP requests"`
	Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"Timeout for each HTTP request"`
	Mode      string        `long:"mode" short:"m" default:"details" choice:"details" choice:"ids" choice:"records" description:"details: look up every case; ids: print case ids; records: print parsed feed records"`
}

func main() {
	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stderr, "[kid-lookup] ", log.LstdFlags|log.Lshortfile)

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, opts options, out io.Writer, logger *log.Logger) error {
	httpClient := &http.Client{Timeout: opts.Timeout}

	items, err := ingest.NewRSSClient(opts.FeedURL, opts.UserAgent, httpClient).Fetch(ctx)
	if err != nil {
		return err
	}
	logger.Printf("fetched %d feed items", len(items))

	switch opts.Mode {
	case "records":
		for rec, err := range ingest.ParseAll(items) {
			if err != nil {
				logger.Printf("skipping feed item: %v", err)
				continue
			}
			fmt.Fprintln(out, rec)
		}

	case "ids":
		for id, err := range ingest.CaseIDs(items) {
			if err != nil {
				logger.Printf("skipping feed item: %v", err)
				continue
			}
			fmt.Fprintln(out, id)
		}

	default:
		details := detail.NewClient(opts.DetailURL, httpClient)
		for id, err := range ingest.CaseIDs(items) {
			if err != nil {
				logger.Printf("skipping feed item: %v", err)
				continue
			}
			d, err := details.Lookup(ctx, id)
			if err != nil {
				if !errors.Is(err, detail.ErrDetailLookup) {
					logger.Printf("case %d: %v", id, err)
				}
				fmt.Fprintf(out, "Failed to get %d\n", id)
				continue
			}
			fmt.Fprintln(out, d)
		}
	}

	return nil
}
