package repository

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const tableFile = "invoice_file"

var fileColumns = []string{"id", "source_path", "filename", "file_ext", "content_hash", "pages", "method", "ingested_at"}

type InvoiceFileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceFile, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.InvoiceFile, error)
	Create(ctx context.Context, f *entity.InvoiceFile) error
	UpdatePages(ctx context.Context, id uuid.UUID, pages int, method string) error
	List(ctx context.Context) ([]*entity.InvoiceFile, error)
}

type invoiceFileRepo struct {
	drv    *entsql.Driver
	logger *slog.Logger
}

func NewInvoiceFileRepository(db *DB, logger *slog.Logger) InvoiceFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceFileRepo{
		drv:    db.Driver(),
		logger: logger,
	}
}

func (r *invoiceFileRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

func (r *invoiceFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceFile, error) {
	b := r.builder()
	q, args := b.Select(fileColumns...).From(b.Table(tableFile)).Where(entsql.EQ("id", id.String())).Query()
	return r.one(ctx, q, args)
}

func (r *invoiceFileRepo) GetByHash(ctx context.Context, hash []byte) (*entity.InvoiceFile, error) {
	b := r.builder()
	q, args := b.Select(fileColumns...).From(b.Table(tableFile)).
		Where(entsql.EQ("content_hash", hex.EncodeToString(hash))).Query()
	return r.one(ctx, q, args)
}

func (r *invoiceFileRepo) Create(ctx context.Context, f *entity.InvoiceFile) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.IngestedAt.IsZero() {
		f.IngestedAt = time.Now().UTC()
	}
	q, args := r.builder().Insert(tableFile).
		Columns(fileColumns...).
		Values(f.ID.String(), f.SourcePath, f.Filename, f.FileExt, hex.EncodeToString(f.ContentHash),
			f.Pages, f.Method, formatTime(f.IngestedAt)).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("failed to create invoice file", "source_path", f.SourcePath, "filename", f.Filename, "error", err)
		return fmt.Errorf("%w: create invoice file: %w", common.ErrDatabase, err)
	}
	return nil
}

func (r *invoiceFileRepo) UpdatePages(ctx context.Context, id uuid.UUID, pages int, method string) error {
	q, args := r.builder().Update(tableFile).
		Set("pages", pages).
		Set("method", method).
		Where(entsql.EQ("id", id.String())).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("failed to update invoice file", "file_id", id, "error", err)
		return fmt.Errorf("%w: update invoice file: %w", common.ErrDatabase, err)
	}
	return nil
}

func (r *invoiceFileRepo) List(ctx context.Context) ([]*entity.InvoiceFile, error) {
	b := r.builder()
	q, args := b.Select(fileColumns...).From(b.Table(tableFile)).OrderBy("ingested_at", "filename").Query()
	files, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list invoice files", "error", err)
		return nil, err
	}
	return files, nil
}

func (r *invoiceFileRepo) one(ctx context.Context, q string, args []any) (*entity.InvoiceFile, error) {
	files, err := r.query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, common.ErrNotFound
	}
	return files[0], nil
}

func (r *invoiceFileRepo) query(ctx context.Context, q string, args []any) ([]*entity.InvoiceFile, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.InvoiceFile
	for rows.Next() {
		var (
			f                  entity.InvoiceFile
			id, hash, ingested string
		)
		if err := rows.Scan(&id, &f.SourcePath, &f.Filename, &f.FileExt, &hash, &f.Pages, &f.Method, &ingested); err != nil {
			return nil, fmt.Errorf("%w: scan invoice file: %w", common.ErrDatabase, err)
		}
		var err error
		if f.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: invoice file id %q: %w", common.ErrDatabase, id, err)
		}
		if f.ContentHash, err = hex.DecodeString(hash); err != nil {
			return nil, fmt.Errorf("%w: invoice file hash: %w", common.ErrDatabase, err)
		}
		if f.IngestedAt, err = parseTime(ingested); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q: %w", common.ErrDatabase, s, err)
	}
	return t, nil
}
