package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"brainrotify/config"
	"brainrotify/media"
	"brainrotify/types"
)

// FFmpegRenderer encodes segments with the ffmpeg binary: still image as
// the visual track for the narration's duration, captions burned in, all
// parts joined on one continuous timeline.
type FFmpegRenderer struct {
	video    config.VideoConfig
	captions config.CaptionsConfig
}

// NewFFmpegRenderer creates a renderer with the configured frame geometry
// and caption styling.
func NewFFmpegRenderer(video config.VideoConfig, caps config.CaptionsConfig) *FFmpegRenderer {
	return &FFmpegRenderer{video: video, captions: caps}
}

// RenderSegment loops the segment's image for its audio duration, scales
// and pads it to the output frame, burns the cues, and overlays the
// narration track.
func (r *FFmpegRenderer) RenderSegment(ctx context.Context, seg *types.Segment, srtPath, outPath string) error {
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,subtitles=%s:force_style='FontName=%s,FontSize=%d,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,Outline=2,Alignment=2,MarginV=%d'",
		r.video.Width, r.video.Height,
		r.video.Width, r.video.Height,
		escapeFilterPath(srtPath),
		r.captions.Font,
		r.captions.FontSize,
		r.captions.MarginBottom,
	)

	return media.Run(ctx,
		"-loop", "1",
		"-i", seg.Image.Path,
		"-i", seg.Audio.Path,
		"-t", fmt.Sprintf("%.3f", seg.DurationSeconds),
		"-vf", filter,
		"-r", fmt.Sprintf("%d", r.video.FPS),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		outPath,
	)
}

// Concatenate joins the segment files in the given order with a concat
// list, so boundaries stay gapless.
func (r *FFmpegRenderer) Concatenate(ctx context.Context, segmentPaths []string, outPath string) error {
	listPath := filepath.Join(filepath.Dir(outPath), "concat_list.txt")
	var lines []string
	for _, p := range segmentPaths {
		lines = append(lines, fmt.Sprintf("file '%s'", p))
	}
	if err := os.WriteFile(listPath, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	return media.Run(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		outPath,
	)
}

// escapeFilterPath escapes the characters ffmpeg's subtitles filter treats
// specially.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	return path
}
