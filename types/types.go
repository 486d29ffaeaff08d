package types

import "strings"

// DefaultDurationSeconds is used when a request does not specify a duration.
const DefaultDurationSeconds = 60

// GenerationRequest is the brief submitted by the caller. It is immutable
// once accepted by the pipeline.
type GenerationRequest struct {
	Content         string `json:"content"`
	Style           string `json:"style"`
	Ticker          string `json:"ticker"`
	Description     string `json:"description"`
	DurationSeconds int    `json:"duration"`
}

// Validate checks required fields and applies the duration default.
// It is called once at the boundary, before any external call.
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.Style) == "" {
		return &ValidationError{Field: "style", Reason: "must not be empty"}
	}
	if r.DurationSeconds == 0 {
		r.DurationSeconds = DefaultDurationSeconds
	}
	if r.DurationSeconds < 0 {
		return &ValidationError{Field: "duration", Reason: "must be positive"}
	}
	return nil
}

// Asset references generated binary media held in the request's scoped
// temporary store. It is owned by exactly one segment until assembly
// consumes it.
type Asset struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
}

// CaptionCue is a timed text fragment within a segment's audio.
type CaptionCue struct {
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// Segment is one narration line and the media generated for it. Index order
// is the canonical playback order and is never reordered downstream.
type Segment struct {
	Index        int     `json:"index"`
	Text         string  `json:"text"`
	TargetWeight float64 `json:"target_weight"`

	// Filled in by narration synthesis.
	Audio           *Asset  `json:"audio,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`

	// Filled in by visual synthesis.
	Image *Asset `json:"image,omitempty"`

	// Filled in by caption alignment.
	Cues []CaptionCue `json:"cues,omitempty"`
}

// Enriched reports whether the segment carries everything assembly needs.
func (s *Segment) Enriched() bool {
	return s.Audio != nil && s.Image != nil && len(s.Cues) > 0 && s.DurationSeconds > 0
}

// Script is the ordered narration plan for one video.
type Script struct {
	Topic    string    `json:"topic"`
	Style    string    `json:"style"`
	Segments []Segment `json:"segments"`
}

// Text returns the full narration joined in segment order.
func (s *Script) Text() string {
	parts := make([]string, len(s.Segments))
	for i, seg := range s.Segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}

// TotalDuration sums the segment durations (measured when available,
// otherwise zero).
func (s *Script) TotalDuration() float64 {
	var total float64
	for _, seg := range s.Segments {
		total += seg.DurationSeconds
	}
	return total
}

// PublishedArtifact is the pair of content-addressed locators produced by
// the publisher. Immutable once created.
type PublishedArtifact struct {
	VideoURI    string `json:"video_uri"`
	MetadataURI string `json:"metadata_uri"`
}

// GenerationResult is returned to the caller on success.
type GenerationResult struct {
	MetadataURI string `json:"metadata_uri"`
	VideoURI    string `json:"video_uri"`
	Script      string `json:"script"`
}
