package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/cybernews-relay/internal/config"
	"github.com/DeafMist/cybernews-relay/internal/models"
	"github.com/DeafMist/cybernews-relay/internal/news"
	"github.com/DeafMist/cybernews-relay/internal/stream"
	"github.com/DeafMist/cybernews-relay/internal/webhook"
)

// Trigger names attached to every run.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
	TriggerCLI       = "cli"
)

const mirrorSource = "perplexity"

type poster interface {
	Post(ctx context.Context, items []models.NewsItem) error
}

type mirror interface {
	Publish(ctx context.Context, items []models.NewsItem) error
	Close() error
}

// Report summarises one run. Err is recorded for callers that want it; Run never
// returns it.
type Report struct {
	RunID    string
	Trigger  string
	Fetched  int
	Posted   int
	Mirrored bool
	Err      error
}

// Workflow sequences fetch, relay and the optional mirror for one invocation.
type Workflow struct {
	log        *slog.Logger
	newFetcher func(cfg *config.Relay, httpClient *http.Client) news.Fetcher
	newPoster  func(url string, httpClient *http.Client) poster
	newMirror  func(cfg config.Mirror) mirror
}

// New returns a Workflow wired to the real news API, webhook and Kafka clients.
func New(log *slog.Logger) *Workflow {
	return &Workflow{
		log:        log,
		newFetcher: news.New,
		newPoster: func(url string, httpClient *http.Client) poster {
			return webhook.NewPoster(url, httpClient)
		},
		newMirror: func(cfg config.Mirror) mirror {
			return stream.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, mirrorSource)
		},
	}
}

// Invoke resolves configuration with load and runs the workflow. Configuration
// errors are logged like any other run failure.
func (w *Workflow) Invoke(ctx context.Context, trigger string, load func() (*config.Relay, error)) Report {
	cfg, err := load()
	if err != nil {
		rep := Report{RunID: uuid.NewString(), Trigger: trigger, Err: fmt.Errorf("load relay config: %w", err)}
		w.runLogger(rep).Error("workflow failed", slog.String("step", "config"), slog.Any("err", rep.Err))
		return rep
	}
	return w.Run(ctx, trigger, cfg)
}

// Run fetches news and relays every item to the webhook. All errors are logged and
// swallowed.
func (w *Workflow) Run(ctx context.Context, trigger string, cfg *config.Relay) Report {
	rep := Report{RunID: uuid.NewString(), Trigger: trigger}
	log := w.runLogger(rep)
	start := time.Now()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	fetcher := w.newFetcher(cfg, httpClient)

	log.Info("workflow started", slog.String("fetcher", fetcher.Name()), slog.Int("max_items", cfg.MaxItems))

	items, err := fetcher.Fetch(ctx, cfg.MaxItems)
	if err != nil {
		return w.fail(log, rep, "fetch", err)
	}
	rep.Fetched = len(items)

	if len(items) == 0 {
		log.Info("no news items returned", slog.Duration("took", time.Since(start)))
		return rep
	}

	if err := w.newPoster(cfg.WebhookURL, httpClient).Post(ctx, items); err != nil {
		return w.fail(log, rep, "post", err)
	}
	rep.Posted = len(items)
	log.Info("posted news items", slog.Int("items", rep.Posted), slog.Duration("took", time.Since(start)))

	if cfg.Mirror.Enabled() {
		if err := w.publishMirror(ctx, cfg.Mirror, items); err != nil {
			return w.fail(log, rep, "mirror", err)
		}
		rep.Mirrored = true
		log.Info("mirrored news items", slog.Int("items", rep.Posted), slog.String("topic", cfg.Mirror.KafkaTopic))
	}

	return rep
}

func (w *Workflow) publishMirror(ctx context.Context, cfg config.Mirror, items []models.NewsItem) (err error) {
	m := w.newMirror(cfg)
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close mirror: %w", cerr)
		}
	}()
	return m.Publish(ctx, items)
}

func (w *Workflow) fail(log *slog.Logger, rep Report, step string, err error) Report {
	rep.Err = err
	log.Error("workflow failed",
		slog.String("step", step),
		slog.Int("fetched", rep.Fetched),
		slog.Int("posted", rep.Posted),
		slog.Any("err", err),
	)
	return rep
}

func (w *Workflow) runLogger(rep Report) *slog.Logger {
	return w.log.With(slog.String("run_id", rep.RunID), slog.String("trigger", rep.Trigger))
}
