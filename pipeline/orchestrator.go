// Package pipeline sequences the generation stages for one request:
// script, per-segment narration and imagery, caption alignment, assembly,
// publication.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"brainrotify/assemble"
	"brainrotify/assets"
	"brainrotify/captions"
	"brainrotify/publish"
	"brainrotify/script"
	"brainrotify/tts"
	"brainrotify/types"
	"brainrotify/visuals"
)

// State is the orchestrator's position in the pipeline for one request.
type State string

const (
	StateReceived         State = "received"
	StateScriptGenerated  State = "script_generated"
	StateSegmentsEnriched State = "segments_enriched"
	StateCaptionsAligned  State = "captions_aligned"
	StateAssembled        State = "assembled"
	StatePublished        State = "published"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Orchestrator drives the stages. One Orchestrator serves all requests; the
// only state shared between in-flight requests is the bounded-concurrency
// semaphore protecting upstream rate limits.
type Orchestrator struct {
	script    *script.Generator
	tts       *tts.Synthesizer
	visuals   *visuals.Synthesizer
	assembler *assemble.Assembler
	publisher *publish.Publisher

	captionOpts captions.Options
	workDir     string
	sem         chan struct{}
	log         *zap.Logger
}

// New creates an Orchestrator. segmentConcurrency bounds how many segment
// synthesis calls run at once across all in-flight requests.
func New(
	scriptGen *script.Generator,
	ttsSynth *tts.Synthesizer,
	visualSynth *visuals.Synthesizer,
	assembler *assemble.Assembler,
	publisher *publish.Publisher,
	captionOpts captions.Options,
	workDir string,
	segmentConcurrency int,
	log *zap.Logger,
) *Orchestrator {
	if segmentConcurrency < 1 {
		segmentConcurrency = 1
	}
	return &Orchestrator{
		script:      scriptGen,
		tts:         ttsSynth,
		visuals:     visualSynth,
		assembler:   assembler,
		publisher:   publisher,
		captionOpts: captionOpts,
		workDir:     workDir,
		sem:         make(chan struct{}, segmentConcurrency),
		log:         log,
	}
}

// run tracks one request's progress through the state machine.
type run struct {
	id    string
	state State
	log   *zap.Logger
}

func (r *run) transition(s State) {
	r.state = s
	r.log.Info("pipeline state", zap.String("state", string(s)))
}

// Run executes the whole pipeline for one request. Any stage failure moves
// the run to Failed and tears down every temporary asset; no partial video
// is ever returned. Uploads that committed before a caller abort are left
// as orphans for the caller to discard.
func (o *Orchestrator) Run(ctx context.Context, req types.GenerationRequest) (*types.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	store, err := assets.NewStore(o.workDir)
	if err != nil {
		return nil, types.NewGenerationError(types.StageScript, false, err)
	}
	defer func() {
		if err := store.Release(); err != nil {
			o.log.Warn("asset teardown failed", zap.String("request", store.RequestID()), zap.Error(err))
		}
	}()

	r := &run{
		id:    store.RequestID(),
		state: StateReceived,
		log:   o.log.With(zap.String("request", store.RequestID())),
	}
	r.transition(StateReceived)

	scr, err := o.script.Generate(ctx, req)
	if err != nil {
		return nil, o.fail(r, err)
	}
	r.transition(StateScriptGenerated)

	if err := o.enrichSegments(ctx, store, scr, req.Style); err != nil {
		return nil, o.fail(r, err)
	}
	r.transition(StateSegmentsEnriched)
	r.transition(StateCaptionsAligned)

	segments := make([]*types.Segment, len(scr.Segments))
	for i := range scr.Segments {
		segments[i] = &scr.Segments[i]
	}

	videoPath, err := o.assembler.Assemble(ctx, segments, store.Dir())
	if err != nil {
		return nil, o.fail(r, err)
	}
	r.transition(StateAssembled)

	artifact, err := o.publisher.Publish(ctx, videoPath, req)
	if err != nil {
		return nil, o.fail(r, err)
	}
	r.transition(StatePublished)

	r.transition(StateDone)
	return &types.GenerationResult{
		MetadataURI: artifact.MetadataURI,
		VideoURI:    artifact.VideoURI,
		Script:      scr.Text(),
	}, nil
}

// enrichSegments fans narration and image synthesis out across segments
// under the shared concurrency bound. Caption alignment runs inline as soon
// as a segment's audio lands — it is local arithmetic and needs the
// measured duration. Enrichment may finish out of order; the assembler
// re-sorts by index, so no later stage observes that.
func (o *Orchestrator) enrichSegments(ctx context.Context, store *assets.Store, scr *types.Script, style string) error {
	g, gctx := errgroup.WithContext(ctx)

	for i := range scr.Segments {
		seg := &scr.Segments[i]

		g.Go(func() error {
			return o.withSlot(gctx, func() error {
				if err := o.tts.Synthesize(gctx, store, seg); err != nil {
					return err
				}
				cues, err := captions.Align(seg.Text, seg.DurationSeconds, o.captionOpts)
				if err != nil {
					return types.NewSegmentError(types.StageCaptions, seg.Index, false, err)
				}
				seg.Cues = cues
				return nil
			})
		})

		g.Go(func() error {
			return o.withSlot(gctx, func() error {
				return o.visuals.Synthesize(gctx, store, seg, style)
			})
		})
	}

	return g.Wait()
}

// withSlot runs fn while holding one slot of the shared semaphore.
func (o *Orchestrator) withSlot(ctx context.Context, fn func() error) error {
	select {
	case o.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-o.sem }()
	return fn()
}

// fail records the terminal state and normalizes the error so the caller
// always sees the failing stage and whether a resubmission might succeed.
func (o *Orchestrator) fail(r *run, err error) error {
	r.state = StateFailed

	var genErr *types.GenerationError
	if !errors.As(err, &genErr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			genErr = types.NewGenerationError(types.StageScript, true, fmt.Errorf("request aborted: %w", err))
		} else {
			genErr = types.NewGenerationError(types.StageScript, false, err)
		}
	}

	r.log.Error("pipeline failed",
		zap.String("stage", string(genErr.Stage)),
		zap.Int("segment", genErr.SegmentIndex),
		zap.Bool("retryable", genErr.Retryable),
		zap.Error(genErr.Err))
	return genErr
}
