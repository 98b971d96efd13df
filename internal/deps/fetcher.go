package deps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"api-test-generator/internal/logger"
)

// Status is what happened to one artifact
type Status int

const (
	Downloaded Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Downloaded:
		return "downloaded"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Event is reported once per artifact as it finishes
type Event struct {
	Artifact Artifact
	Status   Status
	Err      error
}

// Failure records an artifact that could not be fetched
type Failure struct {
	Artifact Artifact
	Err      error
}

// Summary counts the outcome of a Fetch
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
	Failures   []Failure
}

// Ready reports whether every artifact is now present
func (s Summary) Ready() bool {
	return s.Failed == 0
}

// Config holds configuration for the fetcher
type Config struct {
	Repository  string
	LibsDir     string
	Concurrency int
	Timeout     time.Duration
}

// Fetcher downloads jars from a Maven repository into a directory
type Fetcher struct {
	config   Config
	client   *http.Client
	log      *zap.Logger
	progress func(Event)
}

// NewFetcher creates a new fetcher
func NewFetcher(config Config, log *zap.Logger) *Fetcher {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Fetcher{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		log:    logger.OrNop(log),
	}
}

// OnProgress registers fn to be called after each artifact. Calls are
// serialized.
func (f *Fetcher) OnProgress(fn func(Event)) {
	f.progress = fn
}

// Fetch downloads every artifact not already present in the libs directory.
// Individual failures are counted in the summary; the error is reserved for
// a missing libs directory or a canceled context.
func (f *Fetcher) Fetch(ctx context.Context, artifacts []Artifact) (Summary, error) {
	var summary Summary
	if err := os.MkdirAll(f.config.LibsDir, 0755); err != nil {
		return summary, fmt.Errorf("failed to create libs directory: %w", err)
	}

	var mu sync.Mutex
	record := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		switch ev.Status {
		case Downloaded:
			summary.Downloaded++
		case Skipped:
			summary.Skipped++
		case Failed:
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Artifact: ev.Artifact, Err: ev.Err})
		}
		if f.progress != nil {
			f.progress(ev)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.config.Concurrency)
	for _, artifact := range artifacts {
		artifact := artifact
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			record(f.fetchOne(gctx, artifact))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	f.log.Info("Dependency download finished",
		zap.Int("downloaded", summary.Downloaded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, artifact Artifact) Event {
	dest := filepath.Join(f.config.LibsDir, artifact.FileName())
	if _, err := os.Stat(dest); err == nil {
		f.log.Debug("Artifact already present", zap.String("file", dest))
		return Event{Artifact: artifact, Status: Skipped}
	}

	url := artifact.URL(f.config.Repository)
	if err := f.download(ctx, url, dest); err != nil {
		f.log.Warn("Artifact download failed", zap.String("url", url), zap.Error(err))
		return Event{Artifact: artifact, Status: Failed, Err: err}
	}
	f.log.Debug("Artifact downloaded", zap.String("url", url), zap.String("file", dest))
	return Event{Artifact: artifact, Status: Downloaded}
}

// download streams into a temp file next to dest and renames it into place
// once the body is complete
func (f *Fetcher) download(ctx context.Context, url, dest string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(dest), err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(dest), err)
	}
	return nil
}

// Missing lists the artifacts not yet present in dir
func Missing(dir string, artifacts []Artifact) []Artifact {
	var missing []Artifact
	for _, a := range artifacts {
		if _, err := os.Stat(filepath.Join(dir, a.FileName())); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, a)
		}
	}
	return missing
}
