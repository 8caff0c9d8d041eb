package meesho

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
)

// Stage names, in run order.
const (
	stageHeader = "header"
	stageShipTo = "ship_to"
	stageSeller = "seller"
	stageOrder  = "order"
	stageTable  = "table"
	stageTotals = "totals"
)

// StageError is the error that stopped a run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type stageFunc func(text string, rec *entity.InvoiceRecord) error

// Extractor turns the flattened text of one invoice page into an InvoiceRecord.
// It holds only read-only state and is safe for concurrent use.
type Extractor struct {
	lexicon  Lexicon
	patterns *Patterns
	logger   *slog.Logger
}

var _ extract.FieldExtractor = (*Extractor)(nil)

type Option func(*Extractor)

// WithLexicon replaces the built-in colour catalogue.
func WithLexicon(l Lexicon) Option {
	return func(e *Extractor) { e.lexicon = l }
}

// WithPatterns shares an already compiled catalogue.
func WithPatterns(p *Patterns) Option {
	return func(e *Extractor) {
		if p != nil {
			e.patterns = p
		}
	}
}

// NewExtractor builds an Extractor with the default lexicon and patterns unless overridden.
func NewExtractor(logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.lexicon.colors == nil {
		e.lexicon = DefaultLexicon()
	}
	if e.patterns == nil {
		e.patterns = NewPatterns()
	}
	return e
}

// Extract runs every stage over text and returns the record. It never fails:
// a stage error ends the run and the record keeps what earlier stages produced.
func (e *Extractor) Extract(text string) entity.InvoiceRecord {
	return e.ExtractFields(text).Record
}

// ExtractFields is Extract plus the completed stages, the stopping error and a page status.
func (e *Extractor) ExtractFields(text string) (res extract.FieldsResult) {
	rec := entity.NewInvoiceRecord()
	res.Stages = make([]string, 0, 6)

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("%w: panic during extraction: %v", common.ErrInternal, r)
			e.logger.Error("extraction aborted", "error", res.Err, "stages_done", len(res.Stages))
		}
		res.Record = rec
		res.Status = pageStatus(rec, res.Err)
	}()

	stages := []struct {
		name string
		run  stageFunc
	}{
		{stageHeader, e.extractHeader},
		{stageShipTo, e.extractShipTo},
		{stageSeller, e.extractSeller},
		{stageOrder, e.extractOrder},
		{stageTable, e.extractTable},
		{stageTotals, e.extractTotals},
	}

	for _, st := range stages {
		// Stages write into a scratch copy so a failing stage leaves nothing behind.
		scratch := rec.Clone()
		if err := st.run(text, &scratch); err != nil {
			res.Err = &StageError{Stage: st.name, Err: err}
			e.logger.Error("extraction stage failed, skipping remaining stages",
				"stage", st.name, "error", err)
			return res
		}
		rec = scratch
		res.Stages = append(res.Stages, st.name)
	}
	return res
}

func (e *Extractor) notFound(stage, field string) {
	e.logger.Debug("pattern did not match", "stage", stage, "field", field, "error", common.ErrFieldNotFound)
}

// pageStatus classifies a finished run.
func pageStatus(rec entity.InvoiceRecord, err error) constants.PageStatus {
	switch {
	case err != nil:
		return constants.PageStatusFailed
	case rec.IsEmpty():
		return constants.PageStatusEmpty
	case rec.SKU != "" && rec.OrderNo != "" && rec.InvoiceNo != "" && rec.SellerGSTIN != "" &&
		len(rec.LineItems) > 0 && !rec.GrandTotal.IsZero():
		return constants.PageStatusOK
	default:
		return constants.PageStatusPartial
	}
}

// IsMalformedNumeric reports whether err stopped a run on an unparseable number.
func IsMalformedNumeric(err error) bool {
	return errors.Is(err, common.ErrMalformedNumeric)
}
