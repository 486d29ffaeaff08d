// Package visuals produces one image per segment, consistent with the
// requested style.
package visuals

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"brainrotify/assets"
	"brainrotify/retry"
	"brainrotify/types"
)

// ImageGenerator is the upstream image model capability.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, style string) ([]byte, error)
}

// Synthesizer generates one image per segment; safe to run concurrently
// across segments.
type Synthesizer struct {
	images ImageGenerator
	retry  retry.Policy
	log    *zap.Logger
}

// New creates a Synthesizer.
func New(images ImageGenerator, policy retry.Policy, log *zap.Logger) *Synthesizer {
	return &Synthesizer{images: images, retry: policy, log: log}
}

// Synthesize generates the segment's image and stores it in the request's
// asset store. There is no fallback image: a generic frame would corrupt
// the output without signaling anything, so exhausted retries fail the
// whole request.
func (s *Synthesizer) Synthesize(ctx context.Context, store *assets.Store, seg *types.Segment, style string) error {
	prompt := fmt.Sprintf("A captivating scene for a short-form video: %s", seg.Text)

	var data []byte
	err := s.retry.Do(ctx, func() error {
		var genErr error
		data, genErr = s.images.GenerateImage(ctx, prompt, style)
		if genErr != nil {
			s.log.Warn("image attempt failed", zap.Int("segment", seg.Index), zap.Error(genErr))
			return genErr
		}
		if len(data) < 100 {
			// An error page, not an image.
			return types.Transient(fmt.Errorf("image response too small (%d bytes)", len(data)))
		}
		return nil
	})
	if err != nil {
		return types.NewSegmentError(types.StageImage, seg.Index, types.IsTransient(err), err)
	}

	asset, err := store.Put(fmt.Sprintf("segment_%03d.png", seg.Index), "image/png", data)
	if err != nil {
		return types.NewSegmentError(types.StageImage, seg.Index, false, err)
	}

	seg.Image = asset
	s.log.Info("image synthesized", zap.Int("segment", seg.Index), zap.Int("bytes", len(data)))
	return nil
}
