package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/fedotovm/imagestore/internal/api/respond"
	"github.com/fedotovm/imagestore/internal/config"
	"github.com/fedotovm/imagestore/internal/model"
	"github.com/fedotovm/imagestore/internal/processor"
	imagerepo "github.com/fedotovm/imagestore/internal/repository/image"
	"github.com/fedotovm/imagestore/internal/validate"
)

// chunkSize is the read granularity for streaming the file part. The size
// ceiling is enforced per chunk, so an oversized body is rejected before it
// is fully buffered.
const chunkSize = 8192

var (
	ErrUnsupportedType = errors.New("unsupported image format")
	ErrFileTooLarge    = errors.New("file too large")
	ErrMissingFile     = errors.New("no file provided")
	ErrInvalidFilename = errors.New("invalid filename")
)

// service defines the interface for image upload and retrieval operations.
type service interface {
	Upload(ctx context.Context, upload model.UploadedImage) (model.Image, error)
	GetImage(ctx context.Context, id int64) (model.Image, error)
}

// Handler provides HTTP handlers for the image endpoints. It drives the
// multipart body as a stream, enforcing the MIME allow-list and size ceiling
// before any decoding work happens.
type Handler struct {
	service      service
	allowedMIME  map[string]struct{}
	maxFileSize  int
	maxDimension int
}

// NewHandler creates a Handler with the given service and upload policy.
func NewHandler(s service, cfg *config.Upload) *Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedMimeTypes))
	for _, mime := range cfg.AllowedMimeTypes {
		allowed[mime] = struct{}{}
	}

	return &Handler{
		service:      s,
		allowedMIME:  allowed,
		maxFileSize:  cfg.MaxFileSize,
		maxDimension: cfg.MaxImageDimension,
	}
}

// UploadResponse is the success payload of POST /images.
type UploadResponse struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Quality  *int   `json:"quality"`
	Size     int    `json:"size"`
}

// Upload handles POST /images. It reads the multipart body part by part,
// validates the scalar fields, streams the file under the size ceiling, and
// hands the assembled upload to the service.
func (h *Handler) Upload(c *ginext.Context) {
	reader, err := c.Request.MultipartReader()
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("content type must be multipart/form-data"))
		return
	}

	upload, err := h.readForm(reader)
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("rejected upload")
		respond.Fail(c, statusFor(err), err)
		return
	}

	img, err := h.service.Upload(c.Request.Context(), upload)
	if err != nil {
		if errors.Is(err, processor.ErrDecode) {
			zlog.Logger.Warn().Err(err).Str("filename", upload.Filename).Msg("image processing failed")
			respond.Fail(c, http.StatusUnprocessableEntity, fmt.Errorf("failed to process image"))
			return
		}

		zlog.Logger.Err(err).Str("filename", upload.Filename).Msg("failed to store image")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to store image"))
		return
	}

	respond.Created(c, UploadResponse{
		ID:       img.ID,
		Filename: img.Filename,
		Width:    img.Width,
		Height:   img.Height,
		Quality:  img.Quality,
		Size:     img.FileSize,
	})
}

// readForm consumes the multipart stream: exactly one file part plus the
// optional quality, x and y fields. Any validation failure short-circuits
// the whole request.
func (h *Handler) readForm(reader *multipart.Reader) (model.UploadedImage, error) {
	var upload model.UploadedImage

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.UploadedImage{}, fmt.Errorf("malformed multipart body: %v", err)
		}

		switch part.FormName() {
		case "file":
			contentType := part.Header.Get("Content-Type")
			if _, ok := h.allowedMIME[contentType]; !ok {
				return model.UploadedImage{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
			}

			data, err := h.readFile(part)
			if err != nil {
				return model.UploadedImage{}, err
			}

			upload.Data = data
			upload.ContentType = contentType
			upload.Filename = part.FileName()
		case "quality":
			value, err := readField(part)
			if err != nil {
				return model.UploadedImage{}, err
			}
			if upload.Quality, err = validate.Quality(value); err != nil {
				return model.UploadedImage{}, err
			}
		case "x":
			value, err := readField(part)
			if err != nil {
				return model.UploadedImage{}, err
			}
			if upload.Width, err = validate.Dimension(value, h.maxDimension); err != nil {
				return model.UploadedImage{}, err
			}
		case "y":
			value, err := readField(part)
			if err != nil {
				return model.UploadedImage{}, err
			}
			if upload.Height, err = validate.Dimension(value, h.maxDimension); err != nil {
				return model.UploadedImage{}, err
			}
		}
	}

	if len(upload.Data) == 0 || upload.Filename == "" || upload.ContentType == "" {
		return model.UploadedImage{}, ErrMissingFile
	}

	upload.Filename = filepath.Base(upload.Filename)
	if strings.HasPrefix(upload.Filename, ".") {
		return model.UploadedImage{}, ErrInvalidFilename
	}

	return upload, nil
}

// readFile streams the file part in fixed-size chunks, aborting as soon as
// the accumulated size exceeds the ceiling.
func (h *Handler) readFile(part *multipart.Part) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)

	for {
		n, err := part.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if buf.Len() > h.maxFileSize {
				return nil, ErrFileTooLarge
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read file part: %v", err)
		}
	}

	return buf.Bytes(), nil
}

func readField(part *multipart.Part) (string, error) {
	value, err := io.ReadAll(io.LimitReader(part, 64))
	if err != nil {
		return "", fmt.Errorf("read form field %q: %v", part.FormName(), err)
	}

	return strings.TrimSpace(string(value)), nil
}

// statusFor maps upload and validation failures to client-facing status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

// Get handles GET /images/:id, serving the stored JPEG bytes inline.
func (h *Handler) Get(c *ginext.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid image ID"))
		return
	}

	img, err := h.service.GetImage(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, imagerepo.ErrImageNotFound) {
			zlog.Logger.Warn().Int64("id", id).Msg("image not found")
			respond.Fail(c, http.StatusNotFound, fmt.Errorf("image not found"))
			return
		}

		zlog.Logger.Err(err).Int64("id", id).Msg("failed to get image")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to get image"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.Filename))
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Data(http.StatusOK, img.ContentType, img.Data)
}
