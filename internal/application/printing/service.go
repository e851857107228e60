package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/amountwords"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/printing"
	"github.com/tn-gestion/backend/internal/domain/shared"
	infra "github.com/tn-gestion/backend/internal/infrastructure/printing"
	"github.com/tn-gestion/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Options configures the print service
type Options struct {
	DefaultPaperSize printing.PaperSize
	CacheTTL         time.Duration
	RenderTimeout    time.Duration
}

// PrintService renders documents to PDF, stores them and remembers where
type PrintService struct {
	documents document.Repository
	engine    *infra.TemplateEngine
	builder   *infra.DocumentDataBuilder
	renderer  infra.PDFRenderer
	storage   infra.PDFStorage
	cache     printing.PDFCache
	calc      *fiscal.Calculator
	metrics   *telemetry.Metrics
	logger    *zap.Logger
	opts      Options
}

// NewPrintService creates a new PrintService. The cache and metrics are
// optional.
func NewPrintService(
	documents document.Repository,
	engine *infra.TemplateEngine,
	builder *infra.DocumentDataBuilder,
	renderer infra.PDFRenderer,
	storage infra.PDFStorage,
	cache printing.PDFCache,
	calc *fiscal.Calculator,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
	opts Options,
) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = fiscal.NewCalculator(fiscal.DefaultSettings())
	}
	if !opts.DefaultPaperSize.IsValid() {
		opts.DefaultPaperSize = printing.PaperSizeA4
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &PrintService{
		documents: documents,
		engine:    engine,
		builder:   builder,
		renderer:  renderer,
		storage:   storage,
		cache:     cache,
		calc:      calc,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
	}
}

// Generate renders a document to PDF and stores it. An unchanged document
// is served from the cache unless opts.Force is set.
func (s *PrintService) Generate(ctx context.Context, docID uuid.UUID, opts PrintOptions) (*PrintResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PrintService", "Generate",
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, docID.String()))
	defer span.End()

	doc, err := s.findDocument(ctx, docID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	paper, err := s.paperSize(opts.PaperSize)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result, err := s.generate(ctx, doc, paper, opts.Force)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentNumber, doc.Number,
		telemetry.SpanAttrDocumentType, string(doc.Type),
		telemetry.SpanAttrPaperSize, string(paper),
		telemetry.SpanAttrPageCount, result.PageCount,
		telemetry.SpanAttrCached, result.Cached,
	)
	return result, nil
}

// Preview returns the HTML of a document without starting a browser
func (s *PrintService) Preview(ctx context.Context, docID uuid.UUID, paperSize string) (string, error) {
	doc, err := s.findDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	paper, err := s.paperSize(paperSize)
	if err != nil {
		return "", err
	}

	html, _, err := s.renderHTML(doc, paper)
	if err != nil {
		return "", toDomainError(err)
	}
	return html, nil
}

// Download returns the PDF bytes of a document, rendering it if needed
func (s *PrintService) Download(ctx context.Context, docID uuid.UUID, paperSize string) (*PDFFile, error) {
	doc, err := s.findDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	paper, err := s.paperSize(paperSize)
	if err != nil {
		return nil, err
	}

	result, err := s.generate(ctx, doc, paper, false)
	if err != nil {
		return nil, err
	}
	data, err := s.storage.Get(ctx, result.StorageKey)
	if errors.Is(err, infra.ErrPDFNotFound) && result.Cached {
		// the cache outlived the stored object
		s.logger.Warn("cached PDF missing from storage, rendering again",
			zap.String("storage_key", result.StorageKey))
		if result, err = s.generate(ctx, doc, paper, true); err != nil {
			return nil, err
		}
		data, err = s.storage.Get(ctx, result.StorageKey)
	}
	if err != nil {
		return nil, toDomainError(err)
	}

	return &PDFFile{
		Filename:  doc.Number + ".pdf",
		Data:      data,
		PageCount: result.PageCount,
	}, nil
}

// AmountInWords spells an amount in dinars and millimes
func (s *PrintService) AmountInWords(amount decimal.Decimal) AmountInWordsResponse {
	return AmountInWordsResponse{
		Amount: amount,
		Words:  amountwords.Capitalize(amountwords.Dinars(amount)),
	}
}

// PreviewTotals computes document totals without persisting anything
func (s *PrintService) PreviewTotals(req TotalsRequest) (*TotalsResponse, error) {
	lines := make([]fiscal.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = fiscal.LineInput{
			Quantity:     l.Quantity,
			UnitPriceHT:  l.UnitPriceHT,
			DiscountRate: l.DiscountRate,
			TVARate:      fiscal.TVARate(l.TVARate),
			FODEC:        l.FODEC,
		}
	}

	totals, amounts, err := s.calc.ComputeTotals(lines, fiscal.Options{
		ApplyStamp:      req.ApplyStamp,
		WithholdingRate: req.WithholdingRate,
	})
	if err != nil {
		return nil, err
	}
	return &TotalsResponse{
		Totals:        totals,
		Lines:         amounts,
		AmountInWords: amountwords.Capitalize(amountwords.Dinars(totals.TotalTTC)),
	}, nil
}

func (s *PrintService) generate(ctx context.Context, doc *document.Document, paper printing.PaperSize, force bool) (*PrintResult, error) {
	cacheKey := printing.CacheKey(doc.ID, doc.Version, paper)
	logger := s.logger.With(
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.Int("version", doc.Version),
		zap.String("paper", string(paper)),
	)

	if !force {
		if cached, ok := s.lookup(ctx, cacheKey, logger); ok {
			s.metrics.IncPDFResult(telemetry.PDFResultCached)
			logger.Debug("PDF served from cache", zap.String("storage_key", cached.StorageKey))
			return &PrintResult{
				StorageKey: cached.StorageKey,
				URL:        cached.URL,
				PageCount:  cached.PageCount,
				SizeBytes:  cached.SizeBytes,
				Cached:     true,
			}, nil
		}
	}

	html, data, err := s.renderHTML(doc, paper)
	if err != nil {
		s.metrics.IncPDFResult(telemetry.PDFResultFailed)
		logger.Error("template rendering failed", zap.Error(err))
		return nil, toDomainError(err)
	}

	layout := printing.DefaultLayout(paper, printing.OrientationPortrait)
	rendered, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:        html,
		PaperSize:   paper,
		Orientation: layout.Orientation,
		Margins:     layout.Margins,
		Title:       fmt.Sprintf("%s %s", data.Meta.Title, doc.Number),
		Timeout:     s.opts.RenderTimeout,
	})
	if err != nil {
		s.metrics.IncPDFResult(telemetry.PDFResultFailed)
		logger.Error("PDF rendering failed",
			zap.String("code", infra.RenderErrorCode(err)),
			zap.Error(err))
		return nil, toDomainError(err)
	}

	storageKey := infra.StorageKey(doc, paper)
	url, err := s.storage.Store(ctx, storageKey, rendered.PDFData)
	if err != nil {
		s.metrics.IncPDFResult(telemetry.PDFResultFailed)
		logger.Error("PDF storage failed", zap.String("storage_key", storageKey), zap.Error(err))
		return nil, toDomainError(err)
	}

	result := &PrintResult{
		StorageKey: storageKey,
		URL:        url,
		PageCount:  rendered.PageCount,
		SizeBytes:  int64(len(rendered.PDFData)),
	}
	s.metrics.ObserveRender(string(doc.Type), string(paper), rendered.RenderDuration, rendered.PageCount)

	if s.cache != nil {
		err := s.cache.Set(ctx, cacheKey, printing.CachedPDF{
			StorageKey: result.StorageKey,
			URL:        result.URL,
			PageCount:  result.PageCount,
			SizeBytes:  result.SizeBytes,
		}, s.opts.CacheTTL)
		if err != nil {
			logger.Warn("failed to cache PDF location", zap.Error(err))
		}
	}

	logger.Info("PDF generated",
		zap.String("storage_key", storageKey),
		zap.Int("pages", result.PageCount),
		zap.Int64("size_bytes", result.SizeBytes),
		zap.Duration("render_duration", rendered.RenderDuration),
	)
	return result, nil
}

// lookup reads the cache; a failing cache counts as a miss
func (s *PrintService) lookup(ctx context.Context, key string, logger *zap.Logger) (printing.CachedPDF, bool) {
	if s.cache == nil {
		return printing.CachedPDF{}, false
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("PDF cache lookup failed", zap.String("cache_key", key), zap.Error(err))
		return printing.CachedPDF{}, false
	}
	return cached, ok
}

func (s *PrintService) renderHTML(doc *document.Document, paper printing.PaperSize) (string, *infra.DocumentData, error) {
	layout := printing.DefaultLayout(paper, printing.OrientationPortrait)
	data := s.builder.Build(doc, layout)
	html, err := s.engine.RenderDocument(data)
	if err != nil {
		return "", nil, err
	}
	return html, data, nil
}

func (s *PrintService) paperSize(value string) (printing.PaperSize, error) {
	if value == "" {
		return s.opts.DefaultPaperSize, nil
	}
	return printing.ParsePaperSize(value)
}

func (s *PrintService) findDocument(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Document")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// toDomainError maps rendering and storage failures to domain errors
func toDomainError(err error) error {
	var re *infra.RenderError
	if !errors.As(err, &re) {
		return fmt.Errorf("failed to print document: %w", err)
	}
	switch re.Code {
	case infra.ErrCodeStorageFailed:
		return shared.NewDomainError(shared.CodeStorageFailed, "PDF storage failed: "+re.Message)
	case infra.ErrCodeInvalidPaperSize:
		return shared.NewDomainError(shared.CodeInvalidInput, re.Message)
	default:
		return shared.NewDomainError(shared.CodeRenderFailed, "PDF rendering failed: "+re.Message)
	}
}
