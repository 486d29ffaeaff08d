package captions

import (
	"fmt"
	"os"
	"strings"

	"brainrotify/types"
)

// WriteSRT renders cues as an SRT file for ffmpeg's subtitles filter.
// Cue times are segment-relative; each segment is rendered with its own
// SRT before concatenation, so no global offset is needed.
func WriteSRT(cues []types.CaptionCue, path string) error {
	var sb strings.Builder
	for i, cue := range cues {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", srtTimestamp(cue.StartSeconds), srtTimestamp(cue.EndSeconds)))
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// srtTimestamp formats seconds as HH:MM:SS,mmm.
func srtTimestamp(seconds float64) string {
	ms := int(seconds*1000 + 0.5)
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
