package publish

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/podforge/podforge-api/internal/models"
	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

// Uploader persists bytes to durable storage and returns a stable URL.
// Implemented by the objectstore provider client.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Service publishes the finished artifact: the audio file and, when a
// transcript is present, the transcript next to it.
type Service struct {
	uploader Uploader
}

// NewService creates a new artifact publisher
func NewService(uploader Uploader) *Service {
	return &Service{uploader: uploader}
}

// Publish uploads the artifact's assets and fills in their URLs. The key
// carries a fresh id, so re-publishing the same bytes yields a new valid
// reference rather than overwriting an earlier one.
func (s *Service) Publish(ctx context.Context, artifact *models.PodcastArtifact) error {
	if artifact == nil || len(artifact.Audio) == 0 {
		return apperrors.New(apperrors.ErrCodeValidation, "artifact has no audio to publish")
	}

	id := uuid.New().String()

	audioURL, err := s.uploader.Upload(ctx, fmt.Sprintf("podcasts/%s.wav", id), "audio/wav", artifact.Audio)
	if err != nil {
		return apperrors.UploadFailed(err)
	}
	artifact.AudioURL = audioURL
	log.Printf("[INFO] Published audio (%d bytes) to %s", len(artifact.Audio), audioURL)

	if artifact.Transcript != "" {
		textURL, err := s.uploader.Upload(ctx, fmt.Sprintf("podcasts/%s.txt", id), "text/plain; charset=utf-8", []byte(artifact.Transcript))
		if err != nil {
			return apperrors.UploadFailed(err)
		}
		artifact.TextURL = textURL
	}

	return nil
}
