package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	documentapp "github.com/tn-gestion/backend/internal/application/document"
	printingapp "github.com/tn-gestion/backend/internal/application/printing"
)

// DocumentHandler handles commercial document endpoints: the document
// lifecycle and its printed renditions
type DocumentHandler struct {
	BaseHandler
	documentService *documentapp.DocumentService
	printService    *printingapp.PrintService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *documentapp.DocumentService, printService *printingapp.PrintService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		printService:    printService,
	}
}

// =============================================================================
// CRUD
// =============================================================================

// Create creates a draft document
// POST /documents
func (h *DocumentHandler) Create(c *gin.Context) {
	var req documentapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// GetByID retrieves a document with its lines and totals
// GET /documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// List retrieves a paginated list of documents
// GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	var filter documentapp.DocumentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	docs, total, err := h.documentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

// Update edits a draft document
// PUT /documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req documentapp.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Delete deletes a draft document
// DELETE /documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// =============================================================================
// Lifecycle
// =============================================================================

// Validate validates a draft document and freezes its number
// POST /documents/:id/validate
func (h *DocumentHandler) Validate(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Validate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Accept marks a validated quote as accepted
// POST /documents/:id/accept
func (h *DocumentHandler) Accept(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Accept(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Reject marks a validated quote as rejected
// POST /documents/:id/reject
func (h *DocumentHandler) Reject(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Reject(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Cancel cancels a document
// POST /documents/:id/cancel
func (h *DocumentHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req documentapp.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Convert creates a new document from an existing one
// POST /documents/:id/convert
func (h *DocumentHandler) Convert(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req documentapp.ConvertDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.Convert(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// RegisterPayment records a payment against an invoice
// POST /documents/:id/payments
func (h *DocumentHandler) RegisterPayment(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req documentapp.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.RegisterPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// =============================================================================
// Printing
// =============================================================================

// Print renders the document to PDF and stores it
// POST /documents/:id/print
func (h *DocumentHandler) Print(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var opts printingapp.PrintOptions
	if !h.bindOptionalJSON(c, &opts) {
		return
	}

	result, err := h.printService.Generate(c.Request.Context(), id, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DownloadPDF returns the PDF of the document
// GET /documents/:id/pdf?paper=A5
func (h *DocumentHandler) DownloadPDF(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var opts printingapp.PrintOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		h.BindError(c, err)
		return
	}

	file, err := h.printService.Download(c.Request.Context(), id, opts.PaperSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	disposition := "inline"
	if c.Query("download") == "true" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, file.Filename))
	c.Header("X-PDF-Page-Count", strconv.Itoa(file.PageCount))
	c.Data(http.StatusOK, "application/pdf", file.Data)
}

// Preview returns the HTML rendition of the document
// GET /documents/:id/preview?paper=A5
func (h *DocumentHandler) Preview(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var opts printingapp.PrintOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		h.BindError(c, err)
		return
	}

	html, err := h.printService.Preview(c.Request.Context(), id, opts.PaperSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
