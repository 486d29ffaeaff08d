package assemble

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brainrotify/types"
)

type fakeRenderer struct {
	rendered []int    // segment indexes in render order
	concat   []string // paths passed to Concatenate
	fail     bool
}

func (f *fakeRenderer) RenderSegment(_ context.Context, seg *types.Segment, _, outPath string) error {
	if f.fail {
		return errors.New("codec failure")
	}
	f.rendered = append(f.rendered, seg.Index)
	return nil
}

func (f *fakeRenderer) Concatenate(_ context.Context, segmentPaths []string, _ string) error {
	f.concat = segmentPaths
	return nil
}

func enrichedSegment(index int) *types.Segment {
	return &types.Segment{
		Index:           index,
		Text:            "hello world",
		DurationSeconds: 2,
		Audio:           &types.Asset{Path: "a.mp3"},
		Image:           &types.Asset{Path: "a.png"},
		Cues:            []types.CaptionCue{{Text: "hello world", StartSeconds: 0, EndSeconds: 2}},
	}
}

func TestAssembleConsumesSegmentsInIndexOrder(t *testing.T) {
	// Segments arrive shuffled, as enrichment completion order would have
	// them; assembly order must not change.
	segments := make([]*types.Segment, 8)
	for i := range segments {
		segments[i] = enrichedSegment(i)
	}
	rand.New(rand.NewSource(42)).Shuffle(len(segments), func(i, j int) {
		segments[i], segments[j] = segments[j], segments[i]
	})

	renderer := &fakeRenderer{}
	assembler := New(renderer, zap.NewNop())

	out, err := assembler.Assemble(context.Background(), segments, t.TempDir())
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, renderer.rendered)
	require.Len(t, renderer.concat, 8)
	assert.Contains(t, renderer.concat[0], "part_000.mp4")
	assert.Contains(t, renderer.concat[7], "part_007.mp4")
}

func TestAssembleSingleSegment(t *testing.T) {
	renderer := &fakeRenderer{}
	assembler := New(renderer, zap.NewNop())

	_, err := assembler.Assemble(context.Background(), []*types.Segment{enrichedSegment(0)}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []int{0}, renderer.rendered)
}

func TestAssembleRejectsIncompleteSegment(t *testing.T) {
	missingImage := enrichedSegment(1)
	missingImage.Image = nil

	assembler := New(&fakeRenderer{}, zap.NewNop())
	_, err := assembler.Assemble(context.Background(), []*types.Segment{enrichedSegment(0), missingImage}, t.TempDir())

	var genErr *types.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, types.StageAssembly, genErr.Stage)
	assert.False(t, genErr.Retryable)
}

func TestAssembleRejectsEmptyInput(t *testing.T) {
	assembler := New(&fakeRenderer{}, zap.NewNop())
	_, err := assembler.Assemble(context.Background(), nil, t.TempDir())

	var genErr *types.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, types.StageAssembly, genErr.Stage)
}

func TestAssembleRenderFailureIsNotRetryable(t *testing.T) {
	assembler := New(&fakeRenderer{fail: true}, zap.NewNop())
	_, err := assembler.Assemble(context.Background(), []*types.Segment{enrichedSegment(0)}, t.TempDir())

	var genErr *types.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, types.StageAssembly, genErr.Stage)
	assert.False(t, genErr.Retryable)
}
