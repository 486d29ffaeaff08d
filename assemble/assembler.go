// Package assemble composes enriched segments into a single rendered video.
package assemble

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"brainrotify/captions"
	"brainrotify/types"
)

// Renderer is the media renderer capability: it encodes one (image, audio,
// captions) segment, then concatenates segment files into one timeline.
type Renderer interface {
	RenderSegment(ctx context.Context, seg *types.Segment, srtPath, outPath string) error
	Concatenate(ctx context.Context, segmentPaths []string, outPath string) error
}

// Assembler renders segments strictly in index order, regardless of the
// order their enrichment completed in.
type Assembler struct {
	renderer Renderer
	log      *zap.Logger
}

// New creates an Assembler.
func New(renderer Renderer, log *zap.Logger) *Assembler {
	return &Assembler{renderer: renderer, log: log}
}

// Assemble renders each segment and concatenates them into workDir's final
// video. A segment missing audio, image or cues means the orchestrator
// called too early; that and renderer failures are terminal — rendering
// defects are deterministic, so the failure is surfaced, not retried.
func (a *Assembler) Assemble(ctx context.Context, segments []*types.Segment, workDir string) (string, error) {
	if len(segments) == 0 {
		return "", types.NewGenerationError(types.StageAssembly, false, fmt.Errorf("no segments to assemble"))
	}

	ordered := make([]*types.Segment, len(segments))
	copy(ordered, segments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	for _, seg := range ordered {
		if !seg.Enriched() {
			return "", types.NewGenerationError(types.StageAssembly, false,
				fmt.Errorf("segment %d is missing required assets", seg.Index))
		}
	}

	var parts []string
	for _, seg := range ordered {
		srtPath := filepath.Join(workDir, fmt.Sprintf("segment_%03d.srt", seg.Index))
		if err := captions.WriteSRT(seg.Cues, srtPath); err != nil {
			return "", types.NewGenerationError(types.StageAssembly, false, err)
		}

		partPath := filepath.Join(workDir, fmt.Sprintf("part_%03d.mp4", seg.Index))
		a.log.Info("rendering segment", zap.Int("segment", seg.Index), zap.Float64("seconds", seg.DurationSeconds))
		if err := a.renderer.RenderSegment(ctx, seg, srtPath, partPath); err != nil {
			return "", types.NewGenerationError(types.StageAssembly, false,
				fmt.Errorf("render segment %d: %w", seg.Index, err))
		}
		parts = append(parts, partPath)
	}

	outPath := filepath.Join(workDir, "final_video.mp4")
	a.log.Info("concatenating segments", zap.Int("count", len(parts)))
	if err := a.renderer.Concatenate(ctx, parts, outPath); err != nil {
		return "", types.NewGenerationError(types.StageAssembly, false, fmt.Errorf("concatenate: %w", err))
	}
	return outPath, nil
}
