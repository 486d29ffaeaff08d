package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brainrotify/config"
	"brainrotify/retry"
	"brainrotify/types"
)

type fakeLLM struct {
	text  string
	err   error
	calls int
}

func (f *fakeLLM) GenerateScript(_ context.Context, _, _ string, _ int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func testConfig() config.ScriptConfig {
	return config.ScriptConfig{
		WordsPerMinute:    130,
		DurationTolerance: 0.15,
		MaxSegmentSeconds: 20,
	}
}

// thirteenWords reads as one sentence of exactly 13 words, i.e. six
// seconds at 130 wpm.
const thirteenWords = "The reactor core melted down and the night sky turned a deep red."

func newGenerator(llm TextGenerator) *Generator {
	return New(llm, testConfig(), retry.Policy{MaxAttempts: 2}, zap.NewNop())
}

func TestGenerateSplitsSentencesIntoSegments(t *testing.T) {
	// 10 sentences x 13 words = 130 words = 60s at 130 wpm.
	llm := &fakeLLM{text: strings.Repeat(thirteenWords+" ", 10)}
	gen := newGenerator(llm)

	scr, err := gen.Generate(context.Background(), types.GenerationRequest{
		Content: "Chernobyl", Style: "Minecraft Parkour", DurationSeconds: 60,
	})
	require.NoError(t, err)
	require.Len(t, scr.Segments, 10)

	var weightSum float64
	for i, seg := range scr.Segments {
		assert.Equal(t, i, seg.Index)
		assert.Equal(t, strings.TrimSpace(thirteenWords), seg.Text)
		assert.InDelta(t, 6.0, seg.DurationSeconds, 1e-9)
		weightSum += seg.TargetWeight
	}
	assert.InDelta(t, 1.0, weightSum, 1e-9)
	assert.Equal(t, "Chernobyl", scr.Topic)
}

func TestGenerateEstimateWithinTolerance(t *testing.T) {
	llm := &fakeLLM{text: strings.Repeat(thirteenWords+" ", 10)}
	gen := newGenerator(llm)

	scr, err := gen.Generate(context.Background(), types.GenerationRequest{
		Content: "Turtles", Style: "Soap Cutting", DurationSeconds: 60,
	})
	require.NoError(t, err)

	target := 60.0
	assert.InDelta(t, target, scr.TotalDuration(), target*0.15)
}

func TestGenerateRejectsScriptOutsideTolerance(t *testing.T) {
	// Two sentences (~12s estimated) against a 60s target.
	llm := &fakeLLM{text: strings.Repeat(thirteenWords+" ", 2)}
	gen := newGenerator(llm)

	_, err := gen.Generate(context.Background(), types.GenerationRequest{
		Content: "Turtles", Style: "Soap Cutting", DurationSeconds: 60,
	})
	var genErr *types.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, types.StageScript, genErr.Stage)
	assert.True(t, genErr.Retryable)
}

func TestGenerateRejectsEmptyNarration(t *testing.T) {
	gen := newGenerator(&fakeLLM{text: "   "})

	_, err := gen.Generate(context.Background(), types.GenerationRequest{
		Content: "Turtles", Style: "Soap Cutting", DurationSeconds: 60,
	})
	var genErr *types.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, types.StageScript, genErr.Stage)
}

func TestGenerateRejectsUnspeakableSegment(t *testing.T) {
	// One 130-word sentence with no clause boundaries cannot fit the
	// 20-second segment ceiling.
	words := strings.Fields(strings.Repeat(thirteenWords+" ", 10))
	run := strings.ReplaceAll(strings.Join(words, " "), ".", "") + "."
	gen := newGenerator(&fakeLLM{text: run})

	_, err := gen.Generate(context.Background(), types.GenerationRequest{
		Content: "Turtles", Style: "Soap Cutting", DurationSeconds: 60,
	})
	var genErr *types.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, types.StageScript, genErr.Stage)
	assert.Contains(t, genErr.Err.Error(), "maximum spoken duration")
}

func TestGenerateSplitsLongSentenceOnClauses(t *testing.T) {
	// A 130-word sentence with comma boundaries every 13 words becomes 10
	// clause segments.
	clause := strings.TrimSuffix(thirteenWords, ".")
	text := strings.Repeat(clause+", ", 9) + clause + "."
	gen := newGenerator(&fakeLLM{text: text})

	scr, err := gen.Generate(context.Background(), types.GenerationRequest{
		Content: "Turtles", Style: "Soap Cutting", DurationSeconds: 60,
	})
	require.NoError(t, err)
	assert.Len(t, scr.Segments, 10)
}

func TestGenerateRetriesTransientModelFailure(t *testing.T) {
	llm := &fakeLLM{err: types.Transient(errors.New("connection reset"))}
	gen := newGenerator(llm)

	_, err := gen.Generate(context.Background(), types.GenerationRequest{
		Content: "Turtles", Style: "Soap Cutting", DurationSeconds: 60,
	})
	var genErr *types.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, types.StageScript, genErr.Stage)
	assert.True(t, genErr.Retryable)
	assert.Equal(t, 2, llm.calls)
}
