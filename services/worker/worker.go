package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"sjsage522/listingscraper/config"
	"sjsage522/listingscraper/helpers"
	"sjsage522/listingscraper/internal/scraper"
	"sjsage522/listingscraper/logger"
	scrapeerrors "sjsage522/listingscraper/pkg/errors"
	"sjsage522/listingscraper/services/cache"
	"sjsage522/listingscraper/services/export"
	"sjsage522/listingscraper/services/publisher"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// RegionWalker scrapes every page of one region
type RegionWalker interface {
	Walk(ctx context.Context, region config.Region, searchPath string, headers map[string]string) (*scraper.Dataset, error)
}

// Options holds the optional collaborators of a Worker
type Options struct {
	// Publisher receives every exported row; nil disables publishing
	Publisher publisher.Publisher
	// Cache stores rate-limit block markers; nil disables blocking
	Cache cache.CacheService
	// BlockTime is how long a rate-limited region is skipped
	BlockTime time.Duration
	// Cron schedules repeated runs; empty runs once
	Cron string
}

// Worker scrapes the configured regions one after another
type Worker struct {
	ctx        context.Context
	regions    []config.Region
	searchPath string
	headers    map[string]string
	walker     RegionWalker
	exporter   export.Exporter
	logger     helpers.LoggerInterface
	opts       Options
}

// rowMessage is the published form of one row
type rowMessage struct {
	RunID  string `json:"run_id"`
	Region string `json:"region"`
	scraper.ListingRow
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	cfg *config.Config,
	walker RegionWalker,
	exporter export.Exporter,
	logger helpers.LoggerInterface,
	opts Options,
) *Worker {
	return &Worker{
		ctx:        ctx,
		regions:    cfg.ResolveRegions(),
		searchPath: cfg.SearchPath,
		headers:    cfg.Headers,
		walker:     walker,
		exporter:   exporter,
		logger:     logger,
		opts:       opts,
	}
}

// Start runs once, or on every tick of the cron schedule until the context ends
func (w *Worker) Start() error {
	if w.opts.Cron == "" {
		return w.RunOnce()
	}

	log := logger.ForWorker().WithFields(logger.Fields{"cron": w.opts.Cron})
	// a tick that fires while a run is still in progress is dropped
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: log})))
	_, err := c.AddFunc(w.opts.Cron, func() {
		if err := w.RunOnce(); err != nil {
			log.Error().Err(err).Msg("Scheduled run finished with errors")
		}
	})
	if err != nil {
		return scrapeerrors.NewConfiguration("invalid cron expression "+w.opts.Cron, err)
	}

	log.Info().Msg("Starting scheduler")
	c.Start()
	<-w.ctx.Done()
	<-c.Stop().Done()
	return nil
}

// cronLogger routes scheduler messages to the worker logger
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// RunOnce scrapes every region in order. A failing region is logged and
// the next one still runs; the returned error lists every failure.
func (w *Worker) RunOnce() error {
	runID := uuid.NewString()
	log := logger.ForWorker().WithField("run_id", runID)
	start := time.Now()
	w.logger.LogInfo("Starting run %s over %d regions", runID, len(w.regions))

	var failures []error
	for _, region := range w.regions {
		if err := w.ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		err := w.runRegion(runID, region)
		if err == nil {
			continue
		}

		w.logger.LogError(region.Slug, err)
		failures = append(failures, fmt.Errorf("%s: %w", region.Slug, err))

		var se *scrapeerrors.ScrapeError
		if errors.As(err, &se) && se.IsFatal() {
			break
		}
	}

	if w.opts.Publisher != nil {
		if err := w.opts.Publisher.TrimStreams(); err != nil {
			w.logger.LogError("StreamTrimming", err)
		}
	}

	log.Info().
		Int("regions", len(w.regions)).
		Int("failed", len(failures)).
		Dur("elapsed", time.Since(start)).
		Msg("Run finished")

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d regions failed: %w", len(failures), len(w.regions), errors.Join(failures...))
	}
	return nil
}

// runRegion walks one region, exports its dataset and publishes the rows
func (w *Worker) runRegion(runID string, region config.Region) error {
	log := logger.ForRegion(region.Slug).WithField("run_id", runID)

	if w.isBlocked(region.Slug) {
		log.Warn().Msg("Region is rate limited, skipping")
		return nil
	}

	ds, err := w.walker.Walk(w.ctx, region, w.searchPath, w.headers)
	if err != nil {
		if scrapeerrors.Is(err, scrapeerrors.ErrorTypeRateLimit) {
			w.block(region.Slug)
		}
		return err
	}

	path, err := w.exporter.Export(ds)
	if err != nil {
		return err
	}

	published := w.publish(runID, ds)

	log.Info().
		Int("rows", len(ds.Rows)).
		Int("published", published).
		Str("path", path).
		Msg("Region finished")
	return nil
}

// publish sends every row to the publisher and returns how many succeeded
func (w *Worker) publish(runID string, ds *scraper.Dataset) int {
	if w.opts.Publisher == nil {
		return 0
	}

	published := 0
	for _, row := range ds.Rows {
		data, err := json.Marshal(rowMessage{RunID: runID, Region: ds.Region, ListingRow: row})
		if err != nil {
			w.logger.LogError(ds.Region, err)
			continue
		}
		if err := w.opts.Publisher.Publish(ds.Region, data); err != nil {
			w.logger.LogError(ds.Region, scrapeerrors.NewPublisher(ds.Region, "failed to publish row", err))
			return published
		}
		published++
	}
	return published
}

func (w *Worker) isBlocked(region string) bool {
	if w.opts.Cache == nil {
		return false
	}
	_, err := w.opts.Cache.Get(cache.BlockKey(region))
	return err == nil
}

func (w *Worker) block(region string) {
	if w.opts.Cache == nil || w.opts.BlockTime <= 0 {
		return
	}
	seconds := strconv.Itoa(int(w.opts.BlockTime / time.Second))
	if err := w.opts.Cache.Set(cache.BlockKey(region), []byte(seconds), w.opts.BlockTime); err != nil {
		w.logger.LogError(region, scrapeerrors.NewCache(region, "failed to store rate limit block", err))
		return
	}
	logger.ForCache().Warn().
		Str("region", region).
		Dur("block", w.opts.BlockTime).
		Msg("Region blocked after rate limit")
}
