package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrConcurrentModification is returned by SaveWithLock when the stored
// version moved since the document was read
var ErrConcurrentModification = shared.NewDomainError("OPTIMISTIC_LOCK_ERROR",
	"The document has been modified by another request")

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

func preloadChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lines", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Payments", func(tx *gorm.DB) *gorm.DB { return tx.Order("paid_at ASC") }).
		Preload("TVALines", func(tx *gorm.DB) *gorm.DB { return tx.Order("rate ASC") })
}

// FindByID finds a document with its lines and payments
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var model models.DocumentModel
	if err := preloadChildren(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a document by its number
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, number string) (*document.Document, error) {
	var model models.DocumentModel
	if err := preloadChildren(r.db.WithContext(ctx)).
		Where("number = ?", strings.TrimSpace(number)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds documents matching the filter, without lines and payments
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter document.Filter) ([]document.Document, error) {
	var documentModels []models.DocumentModel
	f := filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DocumentModel{}), filter).
		Order(orderClause(f.OrderBy, f.OrderDir, DocumentSortFields, "issue_date")).
		Order("number DESC").
		Offset(f.Offset()).
		Limit(f.PageSize)

	if err := query.Find(&documentModels).Error; err != nil {
		return nil, err
	}

	docs := make([]document.Document, len(documentModels))
	for i := range documentModels {
		docs[i] = *documentModels[i].ToDomain()
	}
	return docs, nil
}

// Count counts documents matching the filter
func (r *GormDocumentRepository) Count(ctx context.Context, filter document.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.DocumentModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a document, replacing its children. A number
// already used by another document yields ALREADY_EXISTS.
func (r *GormDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	model := models.DocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.NewDomainError(shared.CodeAlreadyExists,
					fmt.Sprintf("Document number %s is already taken", doc.Number))
			}
			return err
		}
		return replaceChildren(tx, model)
	})
}

// SaveWithLock updates a document only if the stored version still is
// loadedVersion. New documents must go through Save.
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *document.Document, loadedVersion int) error {
	model := models.DocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DocumentModel{}).
			Where("id = ? AND version = ?", doc.ID, loadedVersion).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentModification
		}
		return replaceChildren(tx, model)
	})
}

func replaceChildren(tx *gorm.DB, model *models.DocumentModel) error {
	if err := tx.Where("document_id = ?", model.ID).Delete(&models.DocumentLineModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("document_id = ?", model.ID).Delete(&models.DocumentPaymentModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("document_id = ?", model.ID).Delete(&models.DocumentTVALineModel{}).Error; err != nil {
		return err
	}
	if len(model.Lines) > 0 {
		if err := tx.Create(&model.Lines).Error; err != nil {
			return err
		}
	}
	if len(model.Payments) > 0 {
		if err := tx.Create(&model.Payments).Error; err != nil {
			return err
		}
	}
	if len(model.TVALines) > 0 {
		if err := tx.Create(&model.TVALines).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a document with its children
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.DocumentLineModel{}, &models.DocumentPaymentModel{}, &models.DocumentTVALineModel{}} {
			if err := tx.Where("document_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.DocumentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NextNumber returns the next free number for a type and year, one past the
// highest sequence already used. Gaps left by deleted drafts are not reused.
func (r *GormDocumentRepository) NextNumber(ctx context.Context, docType document.Type, year int) (string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("number LIKE ?", document.NumberPattern(docType, year)).
		Pluck("number", &numbers).Error; err != nil {
		return "", err
	}

	highest := highestSequence(numbers)
	if highest >= 9999 {
		return "", fmt.Errorf("document numbering exhausted for %s %d", docType, year)
	}
	return document.FormatNumber(docType, year, highest+1), nil
}

func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter document.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(number) LIKE ? OR LOWER(partner_name) LIKE ?)", pattern, pattern)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PartnerID != nil {
		query = query.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.SourceID != nil {
		query = query.Where("source_document_id = ?", *filter.SourceID)
	}
	if filter.From != nil {
		query = query.Where("issue_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("issue_date <= ?", *filter.To)
	}
	return query
}

// Ensure GormDocumentRepository implements document.Repository
var _ document.Repository = (*GormDocumentRepository)(nil)
