// Package publish uploads the rendered video and its metadata document to
// the content-addressed store.
package publish

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"brainrotify/retry"
	"brainrotify/types"
)

// ContentStore is the content-addressed store capability: it stores bytes
// and returns a locator derived from their content.
type ContentStore interface {
	Pin(ctx context.Context, name string, data []byte) (uri string, err error)
}

// Publisher uploads artifacts in two ordered steps: video first, then the
// metadata document that embeds the video's locator.
type Publisher struct {
	store ContentStore
	retry retry.Policy
	log   *zap.Logger
}

// New creates a Publisher.
func New(store ContentStore, policy retry.Policy, log *zap.Logger) *Publisher {
	return &Publisher{store: store, retry: policy, log: log}
}

// Publish uploads the rendered video, then builds and uploads its metadata.
// The metadata step is never attempted until the video upload has
// succeeded, since the document embeds the video URI. Both uploads are
// retried with backoff; exhaustion fails the publish stage.
func (p *Publisher) Publish(ctx context.Context, videoPath string, req types.GenerationRequest) (*types.PublishedArtifact, error) {
	video, err := os.ReadFile(videoPath)
	if err != nil {
		return nil, types.NewGenerationError(types.StagePublish, false, fmt.Errorf("read rendered video: %w", err))
	}

	var videoURI string
	err = p.retry.Do(ctx, func() error {
		var pinErr error
		videoURI, pinErr = p.store.Pin(ctx, "video.mp4", video)
		if pinErr != nil {
			p.log.Warn("video upload attempt failed", zap.Error(pinErr))
		}
		return pinErr
	})
	if err != nil {
		return nil, types.NewGenerationError(types.StagePublish, types.IsTransient(err), fmt.Errorf("upload video: %w", err))
	}
	p.log.Info("video published", zap.String("uri", videoURI))

	doc, err := buildMetadata(req, videoURI, video)
	if err != nil {
		return nil, types.NewGenerationError(types.StagePublish, false, err)
	}

	var metadataURI string
	err = p.retry.Do(ctx, func() error {
		var pinErr error
		metadataURI, pinErr = p.store.Pin(ctx, "metadata.json", doc)
		if pinErr != nil {
			p.log.Warn("metadata upload attempt failed", zap.Error(pinErr))
		}
		return pinErr
	})
	if err != nil {
		return nil, types.NewGenerationError(types.StagePublish, types.IsTransient(err), fmt.Errorf("upload metadata: %w", err))
	}
	p.log.Info("metadata published", zap.String("uri", metadataURI))

	return &types.PublishedArtifact{VideoURI: videoURI, MetadataURI: metadataURI}, nil
}
