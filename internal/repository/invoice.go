package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const (
	tablePage     = "invoice_page"
	tableLineItem = "line_item"
)

var pageColumns = []string{
	"id", "file_id", "page", "status", "needs_review", "issues", "error_message",
	"sku", "size", "qty", "color", "order_no", "ship_to", "seller_name", "seller_gstin",
	"purchase_order_no", "invoice_no", "order_date", "invoice_date", "total_tax", "grand_total",
	"extracted_at",
}

var lineItemColumns = []string{
	"page_id", "position", "description", "hsn", "qty", "gross_amount", "discount",
	"taxable_value", "tax_clause", "total",
}

type InvoiceRepository interface {
	// SavePage stores a page and its line items, replacing an earlier result for the same file page.
	SavePage(ctx context.Context, p *entity.PageResult) error
	ListPages(ctx context.Context, fileID uuid.UUID) ([]entity.PageResult, error)
	ListAllPages(ctx context.Context) ([]entity.PageResult, error)
}

type invoiceRepository struct {
	drv    *entsql.Driver
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{
		drv:    db.Driver(),
		logger: logger,
	}
}

func (r *invoiceRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

func (r *invoiceRepository) SavePage(ctx context.Context, p *entity.PageResult) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ExtractedAt.IsZero() {
		p.ExtractedAt = time.Now().UTC()
	}
	issues, err := json.Marshal(nonNil(p.Issues))
	if err != nil {
		return fmt.Errorf("%w: encode issues: %w", common.ErrInternal, err)
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", common.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("rollback failed", "error", rbErr)
			}
		}
	}()

	b := r.builder()
	if err = r.deleteItemsOfPage(ctx, tx, p.FileID, p.Page); err != nil {
		return err
	}
	q, args := b.Delete(tablePage).
		Where(entsql.And(entsql.EQ("file_id", p.FileID.String()), entsql.EQ("page", p.Page))).
		Query()
	if err = tx.Exec(ctx, q, args, nil); err != nil {
		return r.fail("delete previous page", p, err)
	}

	rec := p.Record
	q, args = b.Insert(tablePage).
		Columns(pageColumns...).
		Values(
			p.ID.String(), p.FileID.String(), p.Page, string(p.Status), boolToInt(p.NeedsReview), string(issues), p.ErrorMessage,
			rec.SKU, rec.Size, rec.Qty, rec.Color, rec.OrderNo, rec.ShipTo, rec.SellerName, rec.SellerGSTIN,
			rec.PurchaseOrderNo, rec.InvoiceNo, rec.OrderDate, rec.InvoiceDate, rec.TotalTax.String(), rec.GrandTotal.String(),
			formatTime(p.ExtractedAt),
		).
		Query()
	if err = tx.Exec(ctx, q, args, nil); err != nil {
		return r.fail("insert page", p, err)
	}

	if len(rec.LineItems) > 0 {
		ins := b.Insert(tableLineItem).Columns(lineItemColumns...)
		for i, it := range rec.LineItems {
			ins.Values(p.ID.String(), i, it.Description, it.HSN, it.Qty, it.GrossAmount.String(), it.Discount.String(),
				it.TaxableValue.String(), it.TaxClause, it.Total.String())
		}
		q, args = ins.Query()
		if err = tx.Exec(ctx, q, args, nil); err != nil {
			return r.fail("insert line items", p, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return r.fail("commit", p, err)
	}
	r.logger.Debug("page saved", "file_id", p.FileID, "page", p.Page, "line_items", len(rec.LineItems))
	return nil
}

// deleteItemsOfPage removes line items explicitly; SQLite only cascades when foreign keys are on
// for the connection in use.
func (r *invoiceRepository) deleteItemsOfPage(ctx context.Context, tx dialect.Tx, fileID uuid.UUID, page int) error {
	b := r.builder()
	sub := b.Select("id").From(b.Table(tablePage)).
		Where(entsql.And(entsql.EQ("file_id", fileID.String()), entsql.EQ("page", page)))
	q, args := b.Delete(tableLineItem).Where(entsql.In("page_id", sub)).Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("%w: delete line items: %w", common.ErrDatabase, err)
	}
	return nil
}

func (r *invoiceRepository) fail(op string, p *entity.PageResult, err error) error {
	r.logger.Error("failed to save page", "op", op, "file_id", p.FileID, "page", p.Page, "error", err)
	return fmt.Errorf("%w: %s: %w", common.ErrDatabase, op, err)
}

func (r *invoiceRepository) ListPages(ctx context.Context, fileID uuid.UUID) ([]entity.PageResult, error) {
	return r.listPages(ctx, entsql.EQ("file_id", fileID.String()))
}

func (r *invoiceRepository) ListAllPages(ctx context.Context) ([]entity.PageResult, error) {
	return r.listPages(ctx, nil)
}

func (r *invoiceRepository) listPages(ctx context.Context, where *entsql.Predicate) ([]entity.PageResult, error) {
	b := r.builder()
	sel := b.Select(pageColumns...).From(b.Table(tablePage))
	if where != nil {
		sel.Where(where)
	}
	q, args := sel.OrderBy("extracted_at", "file_id", "page").Query()

	pages, err := r.scanPages(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list pages", "error", err)
		return nil, err
	}
	if len(pages) == 0 {
		return pages, nil
	}

	ids := make([]any, len(pages))
	byID := make(map[string]int, len(pages))
	for i := range pages {
		ids[i] = pages[i].ID.String()
		byID[pages[i].ID.String()] = i
	}
	q, args = b.Select(lineItemColumns...).From(b.Table(tableLineItem)).
		Where(entsql.In("page_id", ids...)).
		OrderBy("page_id", "position").
		Query()
	if err := r.scanItems(ctx, q, args, func(pageID string, it entity.LineItem) {
		if i, ok := byID[pageID]; ok {
			pages[i].Record.LineItems = append(pages[i].Record.LineItems, it)
		}
	}); err != nil {
		r.logger.Error("failed to list line items", "error", err)
		return nil, err
	}
	return pages, nil
}

func (r *invoiceRepository) scanPages(ctx context.Context, q string, args []any) ([]entity.PageResult, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	out := []entity.PageResult{}
	for rows.Next() {
		var (
			p                                 entity.PageResult
			id, fileID, status, issues, stamp string
			needsReview                       int
			totalTax, grandTotal              string
		)
		rec := entity.NewInvoiceRecord()
		if err := rows.Scan(
			&id, &fileID, &p.Page, &status, &needsReview, &issues, &p.ErrorMessage,
			&rec.SKU, &rec.Size, &rec.Qty, &rec.Color, &rec.OrderNo, &rec.ShipTo, &rec.SellerName, &rec.SellerGSTIN,
			&rec.PurchaseOrderNo, &rec.InvoiceNo, &rec.OrderDate, &rec.InvoiceDate, &totalTax, &grandTotal,
			&stamp,
		); err != nil {
			return nil, fmt.Errorf("%w: scan page: %w", common.ErrDatabase, err)
		}

		var err error
		if p.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: page id %q: %w", common.ErrDatabase, id, err)
		}
		if p.FileID, err = uuid.Parse(fileID); err != nil {
			return nil, fmt.Errorf("%w: file id %q: %w", common.ErrDatabase, fileID, err)
		}
		if p.ExtractedAt, err = parseTime(stamp); err != nil {
			return nil, err
		}
		if err = json.Unmarshal([]byte(issues), &p.Issues); err != nil {
			return nil, fmt.Errorf("%w: page issues: %w", common.ErrDatabase, err)
		}
		if len(p.Issues) == 0 {
			p.Issues = nil
		}
		if rec.TotalTax, err = parseStoredMoney("total_tax", totalTax); err != nil {
			return nil, err
		}
		if rec.GrandTotal, err = parseStoredMoney("grand_total", grandTotal); err != nil {
			return nil, err
		}
		p.Status = constants.PageStatus(status)
		p.NeedsReview = needsReview != 0
		p.Record = rec
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *invoiceRepository) scanItems(ctx context.Context, q string, args []any, add func(pageID string, it entity.LineItem)) error {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it                              entity.LineItem
			pageID                          string
			position                        int
			gross, discount, taxable, total string
		)
		if err := rows.Scan(&pageID, &position, &it.Description, &it.HSN, &it.Qty,
			&gross, &discount, &taxable, &it.TaxClause, &total); err != nil {
			return fmt.Errorf("%w: scan line item: %w", common.ErrDatabase, err)
		}
		amounts := []struct {
			name string
			raw  string
			dst  *entity.Money
		}{
			{"gross_amount", gross, &it.GrossAmount},
			{"discount", discount, &it.Discount},
			{"taxable_value", taxable, &it.TaxableValue},
			{"total", total, &it.Total},
		}
		for _, a := range amounts {
			v, err := parseStoredMoney(a.name, a.raw)
			if err != nil {
				return err
			}
			*a.dst = v
		}
		add(pageID, it)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return nil
}

func parseStoredMoney(column, raw string) (entity.Money, error) {
	m, err := entity.ParseMoney(raw)
	if err != nil {
		return entity.Money{}, fmt.Errorf("%w: column %s value %q: %w", common.ErrDatabase, column, raw, err)
	}
	return m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
