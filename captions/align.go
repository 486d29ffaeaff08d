// Package captions derives time-aligned caption cues from a segment's
// narration text and measured audio duration. Alignment is a pure function
// of its inputs — no transcription service is involved.
package captions

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"brainrotify/types"
)

// Options control chunking granularity.
type Options struct {
	// Granularity is "word" (one cue per word) or "line" (words greedily
	// grouped up to MaxCharsPerLine).
	Granularity string
	// MaxCharsPerLine bounds line-granularity cues. Ignored for word
	// granularity.
	MaxCharsPerLine int
}

// Align splits text into caption chunks and distributes durationSeconds
// across them proportional to each chunk's rune count. Equal division would
// drift out of sync with speech cadence on uneven lines; proportional
// weighting keeps long lines on screen longer.
//
// The returned cues are contiguous, non-overlapping, and span exactly
// [0, durationSeconds].
func Align(text string, durationSeconds float64, opts Options) ([]types.CaptionCue, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, fmt.Errorf("align captions: empty text")
	}
	if durationSeconds <= 0 {
		return nil, fmt.Errorf("align captions: non-positive duration %v", durationSeconds)
	}

	var chunks []string
	switch opts.Granularity {
	case "word":
		chunks = words
	case "line", "":
		chunks = lines(words, opts.MaxCharsPerLine)
	default:
		return nil, fmt.Errorf("align captions: unknown granularity %q", opts.Granularity)
	}

	weights := make([]int, len(chunks))
	total := 0
	for i, c := range chunks {
		weights[i] = utf8.RuneCountInString(c)
		total += weights[i]
	}

	// Boundaries come from the cumulative weight so cue N's end is exactly
	// cue N+1's start, and the final end lands on durationSeconds.
	cues := make([]types.CaptionCue, len(chunks))
	acc := 0
	prev := 0.0
	for i, c := range chunks {
		acc += weights[i]
		end := durationSeconds * float64(acc) / float64(total)
		if i == len(chunks)-1 {
			end = durationSeconds
		}
		cues[i] = types.CaptionCue{Text: c, StartSeconds: prev, EndSeconds: end}
		prev = end
	}
	return cues, nil
}

// lines groups words greedily, starting a new line once adding the next
// word would exceed maxChars. A single word longer than maxChars gets its
// own line.
func lines(words []string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 42
	}
	var out []string
	var cur strings.Builder
	for _, w := range words {
		if cur.Len() == 0 {
			cur.WriteString(w)
			continue
		}
		if utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(w) > maxChars {
			out = append(out, cur.String())
			cur.Reset()
			cur.WriteString(w)
			continue
		}
		cur.WriteString(" ")
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
