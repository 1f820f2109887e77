package image

import (
	"context"
	"fmt"

	"github.com/fedotovm/imagestore/internal/model"
)

// processor defines the interface for the image normalization pipeline.
type processor interface {
	Process(raw []byte, originalFormat string, quality, width, height *int) (model.ProcessedImage, error)
}

// repository defines the interface for persisting and loading image records.
type repository interface {
	SaveImage(ctx context.Context, img model.Image) (int64, error)
	GetImage(ctx context.Context, id int64) (model.Image, error)
}

// pool dispatches CPU-bound work onto a bounded set of workers.
type pool interface {
	Submit(ctx context.Context, task func()) error
}

// Service drives an upload end to end: it runs the normalization pipeline on
// a worker so image codec work never blocks request-serving goroutines, then
// persists the result in a single attempt. There is no partial success: a
// pipeline failure persists nothing.
type Service struct {
	processor  processor
	repository repository
	pool       pool
}

// NewService creates a Service with the given pipeline, repository and worker pool.
func NewService(p processor, r repository, wp pool) *Service {
	return &Service{processor: p, repository: r, pool: wp}
}

// Upload normalizes the uploaded image and stores the result, returning the
// persisted record. The context applies to queue admission and persistence;
// a pipeline invocation that has started always runs to completion.
func (s *Service) Upload(ctx context.Context, upload model.UploadedImage) (model.Image, error) {
	done := make(chan struct{})

	var processed model.ProcessedImage
	var processErr error

	err := s.pool.Submit(ctx, func() {
		defer close(done)
		processed, processErr = s.processor.Process(
			upload.Data, upload.Format(), upload.Quality, upload.Width, upload.Height,
		)
	})
	if err != nil {
		return model.Image{}, fmt.Errorf("upload: failed to dispatch pipeline: %w", err)
	}

	<-done

	if processErr != nil {
		return model.Image{}, fmt.Errorf("upload: %w", processErr)
	}

	img := model.Image{
		Filename:       upload.Filename,
		OriginalFormat: upload.Format(),
		ContentType:    "image/jpeg",
		Data:           processed.Data,
		Width:          processed.Width,
		Height:         processed.Height,
		Quality:        processed.Quality,
		FileSize:       len(processed.Data),
	}

	id, err := s.repository.SaveImage(ctx, img)
	if err != nil {
		return model.Image{}, fmt.Errorf("upload: failed to save image: %w", err)
	}

	img.ID = id
	return img, nil
}

// GetImage fetches a stored image by id.
func (s *Service) GetImage(ctx context.Context, id int64) (model.Image, error) {
	img, err := s.repository.GetImage(ctx, id)
	if err != nil {
		return model.Image{}, err
	}

	return img, nil
}
