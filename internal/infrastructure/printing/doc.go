// Package printing turns documents into PDF files.
//
// A DocumentDataBuilder paginates a document into the view model that the
// TemplateEngine renders to HTML. A PDFRenderer (ChromedpRenderer) prints
// the HTML and a PDFStorage keeps the result:
//
//	data := printing.NewDocumentDataBuilder(company).Build(doc, layout)
//	html, err := engine.RenderDocument(data)
//	if err != nil {
//	    return err
//	}
//	result, err := renderer.Render(ctx, &printing.RenderRequest{
//	    HTML:      html,
//	    PaperSize: layout.Paper,
//	    Margins:   layout.Margins,
//	})
package printing
