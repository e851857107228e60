// Package document implements the commercial document use cases: drafting,
// the status machine, conversions and invoice payments.
package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/partner"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TransactionScope runs document work inside one database transaction.
// If fn returns an error every write made through repo is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repo document.Repository) error) error
}

// NoOpTransactionScope runs fn against a plain repository, without a
// transaction. It is meant for tests.
type NoOpTransactionScope struct {
	repo document.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(repo document.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{repo: repo}
}

// Execute runs fn with the wrapped repository
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repo document.Repository) error) error {
	return fn(s.repo)
}

// numberAttempts bounds the number allocations of one create or convert
const numberAttempts = 2

// Options are the configurable defaults applied to new documents
type Options struct {
	InvoiceDueDays         int
	QuoteValidityDays      int
	DefaultWithholdingRate decimal.Decimal
}

// DocumentService handles document-related business operations
type DocumentService struct {
	repo     document.Repository
	partners partner.Repository
	tx       TransactionScope
	calc     *fiscal.Calculator
	opts     Options
	metrics  *telemetry.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	repo document.Repository,
	partners partner.Repository,
	tx TransactionScope,
	calc *fiscal.Calculator,
	opts Options,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tx == nil {
		tx = NewNoOpTransactionScope(repo)
	}
	if calc == nil {
		calc = fiscal.NewCalculator(fiscal.DefaultSettings())
	}
	return &DocumentService{
		repo:     repo,
		partners: partners,
		tx:       tx,
		calc:     calc,
		opts:     opts,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Calculator returns the fiscal calculator used for totals
func (s *DocumentService) Calculator() *fiscal.Calculator {
	return s.calc
}

// =============================================================================
// Drafting
// =============================================================================

// Create creates a draft document numbered in its type and year sequence
func (s *DocumentService) Create(ctx context.Context, req CreateDocumentRequest) (*DocumentResponse, error) {
	docType := document.Type(req.Type)
	if !docType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid document type")
	}

	p, err := s.loadPartner(ctx, docType, req.PartnerID)
	if err != nil {
		return nil, err
	}

	issueDate := s.today()
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issueDate = *req.IssueDate
	}
	header := s.defaultHeader(docType, issueDate)
	if req.DueDate != nil {
		header.DueDate = req.DueDate
	}
	if req.ValidUntil != nil {
		header.ValidUntil = req.ValidUntil
	}
	header.ProjectID = req.ProjectID
	if req.ApplyStamp != nil {
		header.ApplyStamp = *req.ApplyStamp
	}
	if req.WithholdingRate != nil {
		header.WithholdingRate = *req.WithholdingRate
	}
	header.Notes = req.Notes

	var doc *document.Document
	err = s.executeNumbered(ctx, func(repo document.Repository) error {
		number, err := repo.NextNumber(ctx, docType, issueDate.Year())
		if err != nil {
			return fmt.Errorf("failed to allocate document number: %w", err)
		}
		doc, err = document.NewDocument(docType, number, document.SnapshotOf(p), header, ToLineInputs(req.Lines), s.calc)
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, doc); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(doc.Type), string(doc.Status))
	s.logger.Info("document created",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("type", string(doc.Type)))

	response := ToDocumentResponse(doc, s.now())
	return &response, nil
}

// GetByID retrieves a document with its lines and payments
func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(doc, s.now())
	return &response, nil
}

// Find returns the domain document, for the printing pipeline
func (s *DocumentService) Find(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	return s.find(ctx, s.repo, id)
}

// List retrieves a paginated list of documents
func (s *DocumentService) List(ctx context.Context, filter DocumentListFilter) ([]DocumentListItem, int64, error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	docs, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	now := s.now()
	items := make([]DocumentListItem, len(docs))
	for i := range docs {
		items[i] = ToDocumentListItem(&docs[i], now)
	}
	return items, total, nil
}

// Update edits a draft document
func (s *DocumentService) Update(ctx context.Context, id uuid.UUID, req UpdateDocumentRequest) (*DocumentResponse, error) {
	doc, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	loaded := doc.Version
	if req.Version != nil && *req.Version != loaded {
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("Document %s was modified (version %d, expected %d)", doc.Number, loaded, *req.Version))
	}
	if !doc.IsDraft() {
		return nil, shared.NewInvalidStateError("Cannot edit document in %s status", doc.Status)
	}

	if req.PartnerID != nil && *req.PartnerID != doc.Partner.PartnerID {
		p, err := s.loadPartner(ctx, doc.Type, *req.PartnerID)
		if err != nil {
			return nil, err
		}
		if err := doc.UpdatePartner(document.SnapshotOf(p)); err != nil {
			return nil, err
		}
	}

	if req.hasHeaderChanges() {
		header := doc.Header()
		if req.IssueDate != nil {
			header.IssueDate = *req.IssueDate
		}
		if req.DueDate != nil {
			header.DueDate = req.DueDate
		}
		if req.ValidUntil != nil {
			header.ValidUntil = req.ValidUntil
		}
		if req.ProjectID != nil {
			header.ProjectID = req.ProjectID
		}
		if req.ApplyStamp != nil {
			header.ApplyStamp = *req.ApplyStamp
		}
		if req.WithholdingRate != nil {
			header.WithholdingRate = *req.WithholdingRate
		}
		if req.Notes != nil {
			header.Notes = *req.Notes
		}
		if err := doc.UpdateHeader(header, s.calc); err != nil {
			return nil, err
		}
	}

	if len(req.Lines) > 0 {
		if err := doc.ReplaceLines(ToLineInputs(req.Lines), s.calc); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SaveWithLock(ctx, doc, loaded); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	response := ToDocumentResponse(doc, s.now())
	return &response, nil
}

func (r UpdateDocumentRequest) hasHeaderChanges() bool {
	return r.IssueDate != nil || r.DueDate != nil || r.ValidUntil != nil || r.ProjectID != nil ||
		r.ApplyStamp != nil || r.WithholdingRate != nil || r.Notes != nil
}

// Delete deletes a draft document
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.find(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if !doc.CanDelete() {
		return shared.NewInvalidStateError("Only draft documents can be deleted; cancel %s instead", doc.Number)
	}
	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	s.logger.Info("document deleted",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number))
	return nil
}

// =============================================================================
// Status machine
// =============================================================================

// Validate freezes a draft document. A credit note is refused when it
// would credit its invoice beyond what is left.
func (s *DocumentService) Validate(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, id, "validated", func(d *document.Document) error {
		if err := s.checkCredit(ctx, d); err != nil {
			return err
		}
		return d.Validate()
	})
}

// Accept marks a validated quote as accepted
func (s *DocumentService) Accept(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, id, "accepted", (*document.Document).Accept)
}

// Reject marks a validated quote as rejected
func (s *DocumentService) Reject(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, id, "rejected", (*document.Document).Reject)
}

// Cancel cancels a document
func (s *DocumentService) Cancel(ctx context.Context, id uuid.UUID, req CancelDocumentRequest) (*DocumentResponse, error) {
	return s.transition(ctx, id, "cancelled", func(d *document.Document) error {
		return d.Cancel(req.Reason)
	})
}

func (s *DocumentService) transition(ctx context.Context, id uuid.UUID, action string, apply func(*document.Document) error) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "DocumentService", "transition",
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, id.String()),
		telemetry.WithAttribute("action", action))
	defer span.End()

	doc, err := s.find(ctx, s.repo, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	loaded := doc.Version
	if err := apply(doc); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, doc, loaded); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	telemetry.AddEvent(span, "document."+action,
		telemetry.SpanAttrDocumentNumber, doc.Number,
		telemetry.SpanAttrDocumentType, string(doc.Type))
	s.metrics.IncTransition(string(doc.Type), string(doc.Status))
	s.logger.Info("document "+action,
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("status", string(doc.Status)))

	response := ToDocumentResponse(doc, s.now())
	return &response, nil
}

// Convert creates a draft of the target type from a document. The new
// document and the converted source are saved in one transaction.
func (s *DocumentService) Convert(ctx context.Context, id uuid.UUID, req ConvertDocumentRequest) (*DocumentResponse, error) {
	target := document.Type(req.TargetType)
	issueDate := s.today()
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issueDate = *req.IssueDate
	}

	var source, converted *document.Document
	err := s.executeNumbered(ctx, func(repo document.Repository) error {
		var err error
		source, err = s.find(ctx, repo, id)
		if err != nil {
			return err
		}
		loaded := source.Version
		if err := source.CanConvert(target); err != nil {
			return err
		}
		if target == document.TypeCreditNote {
			notes, err := s.creditNotes(ctx, repo, source.ID)
			if err != nil {
				return err
			}
			if err := source.CheckCreditable(notes); err != nil {
				return err
			}
		}

		number, err := repo.NextNumber(ctx, target, issueDate.Year())
		if err != nil {
			return fmt.Errorf("failed to allocate document number: %w", err)
		}
		converted, err = source.ConvertTo(target, number, issueDate, s.calc)
		if err != nil {
			return err
		}
		s.applyHeaderDefaults(converted)

		if err := repo.Save(ctx, converted); err != nil {
			return fmt.Errorf("failed to save converted document: %w", err)
		}
		if source.Version != loaded {
			if err := repo.SaveWithLock(ctx, source, loaded); err != nil {
				return fmt.Errorf("failed to save source document: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(converted.Type), string(converted.Status))
	if source.Status == document.StatusConverted {
		s.metrics.IncTransition(string(source.Type), string(source.Status))
	}
	s.logger.Info("document converted",
		zap.String("source_id", source.ID.String()),
		zap.String("source_number", source.Number),
		zap.String("document_id", converted.ID.String()),
		zap.String("number", converted.Number))

	response := ToDocumentResponse(converted, s.now())
	return &response, nil
}

// RegisterPayment records a payment on a validated invoice
func (s *DocumentService) RegisterPayment(ctx context.Context, id uuid.UUID, req RegisterPaymentRequest) (*DocumentResponse, error) {
	method := document.PaymentMethod(req.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid payment method")
	}
	paidAt := s.now()
	if req.PaidAt != nil && !req.PaidAt.IsZero() {
		paidAt = *req.PaidAt
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "DocumentService", "RegisterPayment",
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()))
	defer span.End()

	doc, err := s.find(ctx, s.repo, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	loaded := doc.Version
	payment, err := doc.RegisterPayment(req.Amount, method, paidAt, req.Reference)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, doc, loaded); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info("payment registered",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("amount", payment.Amount.StringFixed(3)),
		zap.String("payment_status", string(doc.PaymentStatus)))

	response := ToDocumentResponse(doc, s.now())
	return &response, nil
}

// =============================================================================
// Helpers
// =============================================================================

func (s *DocumentService) find(ctx context.Context, repo document.Repository, id uuid.UUID) (*document.Document, error) {
	doc, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Document")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// loadPartner finds the partner a document of docType is issued to and
// checks it may receive one
func (s *DocumentService) loadPartner(ctx context.Context, docType document.Type, id uuid.UUID) (*partner.Partner, error) {
	p, err := s.partners.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Partner")
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	if p.Kind != docType.PartnerKind() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("A %s must be issued to a %s", docType.DisplayName(), docType.PartnerKind().DisplayName()))
	}
	if !p.IsActive() {
		return nil, shared.NewInvalidStateError("%s %s is inactive", p.Kind.DisplayName(), p.Code)
	}
	return p, nil
}

func (s *DocumentService) defaultHeader(t document.Type, issueDate time.Time) document.Header {
	header := document.DefaultHeader(t, issueDate)
	switch t {
	case document.TypeInvoice:
		if s.opts.InvoiceDueDays > 0 {
			due := issueDate.AddDate(0, 0, s.opts.InvoiceDueDays)
			header.DueDate = &due
		}
		header.WithholdingRate = s.opts.DefaultWithholdingRate
	case document.TypeQuote:
		if s.opts.QuoteValidityDays > 0 {
			until := issueDate.AddDate(0, 0, s.opts.QuoteValidityDays)
			header.ValidUntil = &until
		}
	}
	return header
}

// executeNumbered runs fn, which allocates a document number, in a
// transaction. A number taken by a concurrent request rolls the
// transaction back and fn runs once more with a fresh number.
func (s *DocumentService) executeNumbered(ctx context.Context, fn func(repo document.Repository) error) error {
	var err error
	for attempt := 1; attempt <= numberAttempts; attempt++ {
		err = s.tx.Execute(ctx, fn)
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
		s.logger.Warn("document number taken concurrently", zap.Int("attempt", attempt), zap.Error(err))
	}
	return err
}

func (s *DocumentService) checkCredit(ctx context.Context, note *document.Document) error {
	if note.Type != document.TypeCreditNote || note.SourceDocumentID == nil || note.Status != document.StatusDraft {
		return nil
	}
	invoice, err := s.find(ctx, s.repo, *note.SourceDocumentID)
	if err != nil {
		return err
	}
	notes, err := s.creditNotes(ctx, s.repo, invoice.ID)
	if err != nil {
		return err
	}
	return invoice.CheckCredit(note, notes)
}

// creditNotes loads the validated credit notes issued against an invoice
func (s *DocumentService) creditNotes(ctx context.Context, repo document.Repository, invoiceID uuid.UUID) ([]document.Document, error) {
	notes, err := repo.FindAll(ctx, document.Filter{
		Filter:   shared.Filter{Page: 1, PageSize: 100},
		Type:     document.TypeCreditNote,
		Status:   document.StatusValidated,
		SourceID: &invoiceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load credit notes: %w", err)
	}
	return notes, nil
}

// applyHeaderDefaults gives a converted document the configured due or
// validity date and, for invoices, the default withholding rate. The
// document is a fresh draft so its header is still editable.
func (s *DocumentService) applyHeaderDefaults(d *document.Document) {
	defaults := s.defaultHeader(d.Type, d.IssueDate)
	if defaults.DueDate == nil && defaults.ValidUntil == nil && defaults.WithholdingRate.IsZero() {
		return
	}
	h := d.Header()
	h.DueDate = defaults.DueDate
	h.ValidUntil = defaults.ValidUntil
	h.WithholdingRate = defaults.WithholdingRate
	version := d.Version
	if err := d.UpdateHeader(h, s.calc); err == nil {
		d.Version = version
	}
}

func (s *DocumentService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *DocumentService) toDomainFilter(f DocumentListFilter) (document.Filter, error) {
	if f.OrderBy == "" {
		f.OrderBy = "issue_date"
	}
	if f.OrderDir == "" {
		f.OrderDir = "desc"
	}
	filter := document.Filter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		}.Normalize(),
		Type:   document.Type(f.Type),
		Status: document.Status(f.Status),
	}

	if f.PartnerID != "" {
		id, err := uuid.Parse(f.PartnerID)
		if err != nil {
			return filter, shared.NewDomainError(shared.CodeInvalidInput, "Invalid partner_id")
		}
		filter.PartnerID = &id
	}
	if f.ProjectID != "" {
		id, err := uuid.Parse(f.ProjectID)
		if err != nil {
			return filter, shared.NewDomainError(shared.CodeInvalidInput, "Invalid project_id")
		}
		filter.ProjectID = &id
	}
	if f.From != "" {
		from, err := time.Parse(time.DateOnly, f.From)
		if err != nil {
			return filter, shared.NewDomainError(shared.CodeInvalidInput, "Invalid from date, expected YYYY-MM-DD")
		}
		filter.From = &from
	}
	if f.To != "" {
		to, err := time.Parse(time.DateOnly, f.To)
		if err != nil {
			return filter, shared.NewDomainError(shared.CodeInvalidInput, "Invalid to date, expected YYYY-MM-DD")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, shared.NewDomainError(shared.CodeInvalidInput, "The to date cannot be before the from date")
	}
	return filter, nil
}
