package harvest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sportsbettor/ingest/internal/checkpoint"
	"github.com/sportsbettor/ingest/internal/clock"
	"github.com/sportsbettor/ingest/internal/media"
	"github.com/sportsbettor/ingest/internal/metrics"
	"github.com/sportsbettor/ingest/internal/xsearch"
)

// Searcher issues one recent-search request per tick.
type Searcher interface {
	RecentSearch(ctx context.Context, req xsearch.SearchRequest) (*xsearch.SearchResponse, error)
}

// Sideloader materializes a post's attachments into owned storage.
type Sideloader interface {
	Sideload(ctx context.Context, postID, day string, attachments []xsearch.RawMedia) []media.Asset
}

// Pacer blocks until the next tick is due.
type Pacer interface {
	Wait(ctx context.Context) error
}

// CycleSummary describes one committed cycle for the ledger and notifier.
type CycleSummary struct {
	RunID        uuid.UUID `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Posts        int       `json:"posts"`
	SkippedPosts int       `json:"skipped_posts"`
	MediaAssets  int       `json:"media_assets"`
	ArtifactURI  string    `json:"artifact_uri"`
	Checkpoint   string    `json:"checkpoint,omitempty"`
}

// Ledger records committed cycles for operational audit.
type Ledger interface {
	RecordCycle(ctx context.Context, summary CycleSummary) error
}

// Notifier announces committed artifacts to downstream consumers.
type Notifier interface {
	PublishCommit(ctx context.Context, summary CycleSummary) error
}

// Deps wires the collaborators of the harvest loop.
type Deps struct {
	Batches     []Batch
	Rotor       *Rotor
	Tracker     *CycleTracker
	Normalizer  *Normalizer
	Searcher    Searcher
	Sideloader  Sideloader
	Committer   *Committer
	Checkpoints *checkpoint.Store
	Rotations   *checkpoint.RotationStore
	Pacer       Pacer
	Ledger      Ledger
	Notifier    Notifier
	Clock       clock.Clock
	MaxResults  int
	Logger      *zap.Logger
}

// Loop runs the tick-based harvest: one request per tick, one batch per
// request, one consolidated commit per cycle. It is single-threaded by
// design; every stage of a tick completes before the next tick starts.
type Loop struct {
	deps  Deps
	accum *Accumulator

	runID        uuid.UUID
	cycleStarted time.Time
	skippedPosts int
	mediaAssets  int

	mu          sync.RWMutex
	lastSummary *CycleSummary
}

// LastSummary returns the most recently committed cycle, if any. Safe to
// call from other goroutines (the status endpoint uses it).
func (l *Loop) LastSummary() (CycleSummary, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.lastSummary == nil {
		return CycleSummary{}, false
	}
	return *l.lastSummary, true
}

func (l *Loop) setLastSummary(summary CycleSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSummary = &summary
}

// NewLoop constructs the harvest loop.
func NewLoop(deps Deps) *Loop {
	return &Loop{
		deps:  deps,
		accum: NewAccumulator(),
	}
}

// Run executes ticks until the context finishes. Non-fatal errors inside a
// tick are contained per stage and logged; only context cancellation ends
// the loop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.deps.Pacer.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		l.tick(ctx)
	}
}

func (l *Loop) tick(ctx context.Context) {
	sel := l.deps.Rotor.Tick()

	if sel.CycleStart {
		// The buffer is cleared unconditionally, even after a failed
		// commit: a lost cycle never blocks the loop.
		l.deps.Tracker.OnCycleStart()
		l.accum.Reset()
		l.runID = uuid.New()
		l.cycleStarted = l.deps.Clock.Now()
		l.skippedPosts = 0
		l.mediaAssets = 0
		metrics.SetBufferedPosts(0)
		l.deps.Logger.Debug("cycle started",
			zap.String("run_id", l.runID.String()),
			zap.String("baseline", string(l.deps.Tracker.Baseline())),
		)
	}

	batch := l.deps.Batches[sel.Index]
	started := time.Now()
	resp, err := l.deps.Searcher.RecentSearch(ctx, xsearch.SearchRequest{
		Query:      batch.Query,
		SinceID:    string(l.deps.Tracker.Baseline()),
		MaxResults: l.deps.MaxResults,
	})
	metrics.ObserveSearchRequest(time.Since(started))
	if err != nil {
		// The tick produced zero posts; the cycle carries on.
		l.deps.Logger.Error("search request failed",
			zap.Int("batch", sel.Index),
			zap.Error(err),
		)
		metrics.ObserveTick("error")
	} else {
		l.ingest(ctx, sel.Index, resp)
	}

	if sel.CycleEnd {
		l.commitCycle(ctx)
	}
}

func (l *Loop) ingest(ctx context.Context, batchIndex int, resp *xsearch.SearchResponse) {
	posts, skipped := l.deps.Normalizer.Normalize(resp)
	l.skippedPosts += skipped
	metrics.ObservePosts(len(posts), skipped)
	if skipped > 0 {
		l.deps.Logger.Warn("skipped malformed posts",
			zap.Int("batch", batchIndex),
			zap.Int("count", skipped),
		)
	}

	day := l.deps.Clock.Now().UTC().Format("2006-01-02")
	for _, post := range posts {
		l.deps.Tracker.Observe(post.Record.ID)

		record := post.Record
		if len(post.Attachments) > 0 {
			assets := l.deps.Sideloader.Sideload(ctx, record.ID, day, post.Attachments)
			metrics.ObserveMediaAssets(len(assets), len(post.Attachments)-len(assets))
			l.mediaAssets += len(assets)
			for _, asset := range assets {
				record.Media = append(record.Media, MediaRef{
					SourceURL: asset.SourceURL,
					StoredAt:  asset.Key,
				})
			}
		}
		l.accum.Append(record)
	}
	metrics.SetBufferedPosts(l.accum.Len())

	if len(posts) == 0 {
		metrics.ObserveTick("empty")
	} else {
		metrics.ObserveTick("ok")
		l.deps.Logger.Info("tick ingested posts",
			zap.Int("batch", batchIndex),
			zap.Int("posts", len(posts)),
			zap.Int("buffered", l.accum.Len()),
		)
	}
}

func (l *Loop) commitCycle(ctx context.Context) {
	now := l.deps.Clock.Now()

	artifactURI, err := l.deps.Committer.Commit(ctx, l.accum.Records(), now)
	switch {
	case err != nil:
		// The buffered records are lost, not retried; the checkpoint
		// below still advances so the loop keeps moving.
		l.deps.Logger.Error("cycle artifact commit failed",
			zap.String("run_id", l.runID.String()),
			zap.Int("posts", l.accum.Len()),
			zap.Error(err),
		)
		metrics.ObserveCommitFailure("artifact")
		metrics.ObserveCycle("commit_error")
	case artifactURI == "":
		metrics.ObserveCycle("empty")
	default:
		metrics.ObserveCycle("committed")
		l.deps.Logger.Info("cycle committed",
			zap.String("run_id", l.runID.String()),
			zap.String("artifact", artifactURI),
			zap.Int("posts", l.accum.Len()),
			zap.Int("media_assets", l.mediaAssets),
		)
	}

	checkpointValue := ""
	if w, ok := l.deps.Tracker.OnCycleEnd(); ok {
		if saveErr := l.deps.Checkpoints.Save(ctx, w); saveErr != nil {
			// Re-derived from the old persisted value next cycle.
			l.deps.Logger.Error("checkpoint persist failed", zap.Error(saveErr))
			metrics.ObserveCommitFailure("checkpoint")
		} else {
			l.deps.Tracker.MarkPersisted(w)
			checkpointValue = string(w)
			metrics.ObserveCheckpointAdvance()
			l.deps.Logger.Info("checkpoint advanced", zap.String("since_id", checkpointValue))
		}
	}

	rotation := checkpoint.Rotation{
		NextIndex:  l.deps.Rotor.NextIndex(),
		BatchCount: l.deps.Rotor.Size(),
		UpdatedAt:  now,
	}
	if rotErr := l.deps.Rotations.Save(ctx, rotation); rotErr != nil {
		l.deps.Logger.Error("rotation pointer persist failed", zap.Error(rotErr))
		metrics.ObserveCommitFailure("rotation")
	}

	if err != nil || artifactURI == "" {
		return
	}

	summary := CycleSummary{
		RunID:        l.runID,
		StartedAt:    l.cycleStarted,
		FinishedAt:   now,
		Posts:        l.accum.Len(),
		SkippedPosts: l.skippedPosts,
		MediaAssets:  l.mediaAssets,
		ArtifactURI:  artifactURI,
		Checkpoint:   checkpointValue,
	}
	l.setLastSummary(summary)
	if l.deps.Ledger != nil {
		if ledgerErr := l.deps.Ledger.RecordCycle(ctx, summary); ledgerErr != nil {
			l.deps.Logger.Error("cycle ledger write failed", zap.Error(ledgerErr))
			metrics.ObserveCommitFailure("ledger")
		}
	}
	if l.deps.Notifier != nil {
		if pubErr := l.deps.Notifier.PublishCommit(ctx, summary); pubErr != nil {
			l.deps.Logger.Error("commit notification failed", zap.Error(pubErr))
			metrics.ObserveCommitFailure("notify")
		}
	}
}
