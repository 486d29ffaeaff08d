// Package tts converts segment narration into speech audio with a measured
// duration.
package tts

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"brainrotify/assets"
	"brainrotify/retry"
	"brainrotify/types"
)

// SpeechSynthesizer is the upstream text-to-speech capability.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string) (audio []byte, durationSeconds float64, err error)
}

// Synthesizer narrates one segment per call. It holds no mutable state, so
// calls are safe to run concurrently across segments.
type Synthesizer struct {
	speech SpeechSynthesizer
	retry  retry.Policy
	log    *zap.Logger
}

// New creates a Synthesizer.
func New(speech SpeechSynthesizer, policy retry.Policy, log *zap.Logger) *Synthesizer {
	return &Synthesizer{speech: speech, retry: policy, log: log}
}

// Synthesize narrates the segment's text, stores the audio in the request's
// asset store, and replaces the segment's estimated duration with the
// measured one. Caption timing and assembly depend on the narration track,
// so exhausted retries fail the whole request rather than skipping the
// segment.
func (s *Synthesizer) Synthesize(ctx context.Context, store *assets.Store, seg *types.Segment) error {
	var (
		audio []byte
		dur   float64
	)
	err := s.retry.Do(ctx, func() error {
		var synthErr error
		audio, dur, synthErr = s.speech.SynthesizeSpeech(ctx, seg.Text)
		if synthErr != nil {
			s.log.Warn("tts attempt failed", zap.Int("segment", seg.Index), zap.Error(synthErr))
		}
		return synthErr
	})
	if err != nil {
		return types.NewSegmentError(types.StageTTS, seg.Index, types.IsTransient(err), err)
	}
	if dur <= 0 {
		return types.NewSegmentError(types.StageTTS, seg.Index, false,
			fmt.Errorf("synthesizer reported non-positive duration %v", dur))
	}

	asset, err := store.Put(fmt.Sprintf("segment_%03d.mp3", seg.Index), "audio/mpeg", audio)
	if err != nil {
		return types.NewSegmentError(types.StageTTS, seg.Index, false, err)
	}

	seg.Audio = asset
	seg.DurationSeconds = dur
	s.log.Info("narration synthesized",
		zap.Int("segment", seg.Index),
		zap.Float64("seconds", dur),
		zap.Int("bytes", len(audio)))
	return nil
}
