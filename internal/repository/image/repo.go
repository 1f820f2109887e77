package image

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wb-go/wbf/dbpg"

	"github.com/fedotovm/imagestore/internal/model"
)

var ErrImageNotFound = errors.New("image not found")

const schema = `
	CREATE TABLE IF NOT EXISTS images (
		id SERIAL PRIMARY KEY,
		filename VARCHAR(255) NOT NULL,
		original_format VARCHAR(10) NOT NULL,
		content_type VARCHAR(50) NOT NULL DEFAULT 'image/jpeg',
		data BYTEA NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		quality INTEGER,
		file_size INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_images_id ON images(id);
	CREATE INDEX IF NOT EXISTS idx_images_created_at ON images(created_at DESC);
`

type Repository struct {
	db *dbpg.DB
}

func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the images table and its indexes if they do not exist.
// The table is append-only: no update or delete statements exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Master.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	return nil
}

// SaveImage inserts a processed image record and returns the assigned id.
func (r *Repository) SaveImage(ctx context.Context, img model.Image) (int64, error) {
	query := `
		INSERT INTO images (filename, original_format, content_type, data, width, height, quality, file_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var quality sql.NullInt64
	if img.Quality != nil {
		quality = sql.NullInt64{Int64: int64(*img.Quality), Valid: true}
	}

	var id int64
	err := r.db.Master.QueryRowContext(
		ctx, query,
		img.Filename, img.OriginalFormat, img.ContentType, img.Data,
		img.Width, img.Height, quality, img.FileSize,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save: failed to save image: %w", err)
	}

	return id, nil
}

// GetImage fetches a stored image by id.
func (r *Repository) GetImage(ctx context.Context, id int64) (model.Image, error) {
	query := `
		SELECT id, filename, original_format, content_type, data, width, height, quality, file_size, created_at
		FROM images
		WHERE id = $1
	`

	var img model.Image
	var quality sql.NullInt64

	err := r.db.Master.QueryRowContext(ctx, query, id).Scan(
		&img.ID, &img.Filename, &img.OriginalFormat, &img.ContentType, &img.Data,
		&img.Width, &img.Height, &quality, &img.FileSize, &img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Image{}, ErrImageNotFound
		}

		return model.Image{}, fmt.Errorf("get: failed to get image: %w", err)
	}

	if quality.Valid {
		q := int(quality.Int64)
		img.Quality = &q
	}

	return img, nil
}
