package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/amountwords"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
)

//go:embed templates/*.html
var templateFS embed.FS

// DocumentTemplate is the name of the template used for commercial documents
const DocumentTemplate = "document.html"

// TemplateEngine handles rendering HTML templates with business data.
// It uses Go's html/template package with custom functions for formatting.
type TemplateEngine struct {
	funcMap   template.FuncMap
	templates *template.Template
}

// NewTemplateEngine parses the embedded templates. Files of overrideDir
// with the same name as an embedded template replace it; other *.html
// files are added to the set.
func NewTemplateEngine(overrideDir string) (*TemplateEngine, error) {
	e := &TemplateEngine{
		funcMap: template.FuncMap{
			"formatMoney":   formatMoney,
			"formatQty":     formatQty,
			"formatPercent": formatPercent,
			"formatDate":    formatDate,
			"amountInWords": amountInWords,
			"upper":         strings.ToUpper,
			"add":           add,
			"sub":           sub,
			"dict":          dict,
		},
	}

	tmpl, err := template.New("").Funcs(e.funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded templates: %w", err)
	}

	if overrideDir != "" {
		dir := os.DirFS(overrideDir)
		matches, err := fs.Glob(dir, "*.html")
		if err != nil {
			return nil, fmt.Errorf("failed to list templates in %s: %w", overrideDir, err)
		}
		if len(matches) > 0 {
			if tmpl, err = tmpl.ParseFS(dir, matches...); err != nil {
				return nil, fmt.Errorf("failed to parse templates in %s: %w", overrideDir, err)
			}
		}
	}

	e.templates = tmpl
	return e, nil
}

// Render executes a named template of the set
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	if e.templates.Lookup(name) == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "template not found: "+name, nil)
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// RenderDocument renders the printable HTML of a document
func (e *TemplateEngine) RenderDocument(data *DocumentData) (string, error) {
	return e.Render(DocumentTemplate, data)
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(name, content string, data any) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// formatMoney formats an amount in dinars
// Example: 1234.5 -> "1 234,500"
func formatMoney(v any) string {
	return valueobject.FormatAmount(toDecimal(v))
}

// formatQty formats a quantity without trailing zeros
// Example: 2.500 -> "2,5", 12 -> "12"
func formatQty(v any) string {
	s := valueobject.FormatAmount(toDecimal(v))
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ",")
}

// formatPercent formats a rate given in percent
// Example: 19 -> "19 %", 7.5 -> "7,5 %"
func formatPercent(v any) string {
	return formatQty(v) + " %"
}

// formatDate formats a date the way it is printed in Tunisia
// Example: 2026-03-14 -> "14/03/2026"
func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// amountInWords spells an amount in dinars and millimes, capitalized
func amountInWords(v any) string {
	return amountwords.Capitalize(amountwords.Dinars(toDecimal(v)))
}

func add(a, b any) decimal.Decimal {
	return toDecimal(a).Add(toDecimal(b))
}

func sub(a, b any) decimal.Decimal {
	return toDecimal(a).Sub(toDecimal(b))
}

// dict creates a map from key-value pairs
func dict(pairs ...any) map[string]any {
	result := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs)-1; i += 2 {
		if key, ok := pairs[i].(string); ok {
			result[key] = pairs[i+1]
		}
	}
	return result
}

// toDecimal converts various types to decimal.Decimal
func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case interface{ Percent() decimal.Decimal }:
		return val.Percent()
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// toTime converts various types to time.Time
func toTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case string:
		for _, f := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(f, val); err == nil {
				return t
			}
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
