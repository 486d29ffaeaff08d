// Package script turns a generation brief into a narration script split
// into ordered, timed segments.
package script

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"brainrotify/config"
	"brainrotify/retry"
	"brainrotify/types"
)

// TextGenerator is the upstream text model capability.
type TextGenerator interface {
	GenerateScript(ctx context.Context, content, style string, durationSeconds int) (string, error)
}

// Generator produces validated scripts from briefs.
type Generator struct {
	llm   TextGenerator
	cfg   config.ScriptConfig
	retry retry.Policy
	log   *zap.Logger
}

// New creates a Generator.
func New(llm TextGenerator, cfg config.ScriptConfig, policy retry.Policy, log *zap.Logger) *Generator {
	return &Generator{llm: llm, cfg: cfg, retry: policy, log: log}
}

// Generate requests a script for the brief and splits it into segments on
// sentence boundaries, so each segment maps to one narration/image pairing.
// Structural problems in the model output — no segments, estimated duration
// outside tolerance, a segment too long to speak — fail the script stage.
func (g *Generator) Generate(ctx context.Context, req types.GenerationRequest) (*types.Script, error) {
	g.log.Info("generating script",
		zap.String("content", req.Content),
		zap.String("style", req.Style),
		zap.Int("duration", req.DurationSeconds))

	var raw string
	err := g.retry.Do(ctx, func() error {
		var genErr error
		raw, genErr = g.llm.GenerateScript(ctx, req.Content, req.Style, req.DurationSeconds)
		return genErr
	})
	if err != nil {
		return nil, types.NewGenerationError(types.StageScript, types.IsTransient(err), fmt.Errorf("text model: %w", err))
	}

	script, err := g.build(req, raw)
	if err != nil {
		// The model is stochastic; a fresh request may produce a script
		// that passes validation.
		return nil, types.NewGenerationError(types.StageScript, true, err)
	}

	g.log.Info("script ready",
		zap.Int("segments", len(script.Segments)),
		zap.Float64("estimated_seconds", script.TotalDuration()))
	return script, nil
}

// build segments the raw narration and validates its structure.
func (g *Generator) build(req types.GenerationRequest, raw string) (*types.Script, error) {
	sentences := splitSentences(raw)
	if len(sentences) == 0 {
		return nil, fmt.Errorf("model returned no narration")
	}

	maxWords := g.cfg.MaxSegmentSeconds / 60.0 * g.cfg.WordsPerMinute

	var texts []string
	for _, s := range sentences {
		if float64(wordCount(s)) <= maxWords {
			texts = append(texts, s)
			continue
		}
		// Sentence too long to speak in one segment; fall back to clause
		// boundaries.
		for _, clause := range splitClauses(s) {
			if float64(wordCount(clause)) > maxWords {
				return nil, fmt.Errorf("segment exceeds maximum spoken duration (%.0fs): %q",
					g.cfg.MaxSegmentSeconds, clip(clause, 80))
			}
			texts = append(texts, clause)
		}
	}

	totalWords := 0
	for _, t := range texts {
		totalWords += wordCount(t)
	}

	estimated := float64(totalWords) / g.cfg.WordsPerMinute * 60.0
	target := float64(req.DurationSeconds)
	if diff := estimated - target; diff > target*g.cfg.DurationTolerance || -diff > target*g.cfg.DurationTolerance {
		return nil, fmt.Errorf("estimated spoken duration %.1fs outside ±%.0f%% of target %ds",
			estimated, g.cfg.DurationTolerance*100, req.DurationSeconds)
	}

	script := &types.Script{Topic: req.Content, Style: req.Style}
	for i, t := range texts {
		words := wordCount(t)
		script.Segments = append(script.Segments, types.Segment{
			Index:        i,
			Text:         t,
			TargetWeight: float64(words) / float64(totalWords),
			// Estimate; replaced by the measured narration duration.
			DurationSeconds: float64(words) / g.cfg.WordsPerMinute * 60.0,
		})
	}
	return script, nil
}

// splitSentences breaks narration on sentence-ending punctuation, keeping
// the punctuation with its sentence.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range strings.TrimSpace(text) {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(cur.String()); s != "" && wordCount(s) > 0 {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" && wordCount(s) > 0 {
		out = append(out, s)
	}
	return out
}

// splitClauses breaks a long sentence on commas and semicolons.
func splitClauses(sentence string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range sentence {
		cur.WriteRune(r)
		if r == ',' || r == ';' {
			if s := strings.TrimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
