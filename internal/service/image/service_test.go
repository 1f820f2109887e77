package image

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedotovm/imagestore/internal/model"
	"github.com/fedotovm/imagestore/internal/worker"
)

type stubProcessor struct {
	result model.ProcessedImage
	err    error

	gotFormat  string
	gotQuality *int
}

func (s *stubProcessor) Process(raw []byte, format string, quality, width, height *int) (model.ProcessedImage, error) {
	s.gotFormat = format
	s.gotQuality = quality
	return s.result, s.err
}

type stubRepository struct {
	saved  *model.Image
	id     int64
	err    error
	getErr error
}

func (s *stubRepository) SaveImage(ctx context.Context, img model.Image) (int64, error) {
	s.saved = &img
	return s.id, s.err
}

func (s *stubRepository) GetImage(ctx context.Context, id int64) (model.Image, error) {
	if s.getErr != nil {
		return model.Image{}, s.getErr
	}
	return model.Image{ID: id}, nil
}

func TestUpload_Success(t *testing.T) {
	quality := 85
	proc := &stubProcessor{result: model.ProcessedImage{
		Data:    []byte("jpeg-bytes"),
		Width:   200,
		Height:  150,
		Quality: &quality,
	}}
	repo := &stubRepository{id: 42}

	pool := worker.NewPool(1, 1)
	defer pool.Close()

	svc := NewService(proc, repo, pool)

	img, err := svc.Upload(context.Background(), model.UploadedImage{
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
		Filename:    "cat.png",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), img.ID)
	assert.Equal(t, "cat.png", img.Filename)
	assert.Equal(t, "png", img.OriginalFormat)
	assert.Equal(t, "image/jpeg", img.ContentType)
	assert.Equal(t, 200, img.Width)
	assert.Equal(t, 150, img.Height)
	assert.Equal(t, len("jpeg-bytes"), img.FileSize)
	assert.Equal(t, "png", proc.gotFormat)

	require.NotNil(t, repo.saved)
	assert.Equal(t, []byte("jpeg-bytes"), repo.saved.Data)
}

func TestUpload_PipelineFailurePersistsNothing(t *testing.T) {
	proc := &stubProcessor{err: errors.New("boom")}
	repo := &stubRepository{id: 1}

	pool := worker.NewPool(1, 1)
	defer pool.Close()

	svc := NewService(proc, repo, pool)

	_, err := svc.Upload(context.Background(), model.UploadedImage{
		Data:        []byte("bad"),
		ContentType: "image/jpeg",
		Filename:    "broken.jpg",
	})
	require.Error(t, err)
	assert.Nil(t, repo.saved, "nothing must be persisted when the pipeline fails")
}

func TestUpload_PersistenceErrorSurfaces(t *testing.T) {
	proc := &stubProcessor{result: model.ProcessedImage{Data: []byte("x"), Width: 1, Height: 1}}
	repo := &stubRepository{err: errors.New("connection refused")}

	pool := worker.NewPool(1, 1)
	defer pool.Close()

	svc := NewService(proc, repo, pool)

	_, err := svc.Upload(context.Background(), model.UploadedImage{
		Data:        []byte("x"),
		ContentType: "image/jpeg",
		Filename:    "a.jpg",
	})
	require.Error(t, err)
}
