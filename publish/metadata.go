package publish

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"brainrotify/types"
)

// metadataDocument is the token metadata uploaded alongside the video. The
// minting layer consumes it as-is.
type metadataDocument struct {
	Name         string      `json:"name"`
	Symbol       string      `json:"symbol,omitempty"`
	Description  string      `json:"description"`
	Image        string      `json:"image"`
	AnimationURL string      `json:"animation_url"`
	Content      contentRef  `json:"content"`
	Attributes   []attribute `json:"attributes"`
}

type contentRef struct {
	URI    string `json:"uri"`
	Mime   string `json:"mime"`
	SHA256 string `json:"sha256"`
}

type attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// buildMetadata assembles the metadata document for a published video.
func buildMetadata(req types.GenerationRequest, videoURI string, video []byte) ([]byte, error) {
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("A brainrot video about %s in the style of %s", req.Content, req.Style)
	}

	sum := sha256.Sum256(video)
	doc := metadataDocument{
		Name:         fmt.Sprintf("Brainrotify: %s - %s", req.Content, req.Style),
		Symbol:       req.Ticker,
		Description:  description,
		Image:        videoURI,
		AnimationURL: videoURI,
		Content: contentRef{
			URI:    videoURI,
			Mime:   "video/mp4",
			SHA256: hex.EncodeToString(sum[:]),
		},
		Attributes: []attribute{
			{TraitType: "Content", Value: req.Content},
			{TraitType: "Style", Value: req.Style},
			{TraitType: "Generator", Value: "Brainrotify"},
		},
	}
	if req.Ticker != "" {
		doc.Attributes = append(doc.Attributes, attribute{TraitType: "Ticker", Value: req.Ticker})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}
