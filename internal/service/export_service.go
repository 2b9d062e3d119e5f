package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nurpe/licitabrasil/internal/model"
)

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportPDF  ExportFormat = "pdf"
)

func (f ExportFormat) ContentType() string {
	switch f {
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

type Renderer interface {
	Generate(report model.ExportReport) ([]byte, error)
}

type Searcher interface {
	Search(ctx context.Context, q model.Query) (*model.SearchResult, error)
}

type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type ExportService struct {
	search    Searcher
	renderers map[ExportFormat]Renderer
	now       func() time.Time
}

func NewExportService(search Searcher, xlsx, pdf Renderer) *ExportService {
	return &ExportService{
		search: search,
		renderers: map[ExportFormat]Renderer{
			ExportXLSX: xlsx,
			ExportPDF:  pdf,
		},
		now: time.Now,
	}
}

// Export runs the search and renders the page it returns.
func (s *ExportService) Export(ctx context.Context, q model.Query, rawFormat string) (*ExportFile, error) {
	format := ExportFormat(strings.ToLower(strings.TrimSpace(rawFormat)))
	if format == "" {
		format = ExportXLSX
	}
	renderer, ok := s.renderers[format]
	if !ok || renderer == nil {
		return nil, fmt.Errorf("%w: Formato de exportação inválido. Use xlsx ou pdf.", ErrInvalidInput)
	}

	result, err := s.search.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	report := model.ExportReport{Query: q, Result: *result, GeneratedAt: s.now()}
	data, err := renderer.Generate(report)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return &ExportFile{
		Name:        exportFileName(report, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func exportFileName(report model.ExportReport, format ExportFormat) string {
	location := strings.ToLower(report.Location())
	return fmt.Sprintf("licitacoes-%s-%s-%s-p%d.%s",
		location, report.Query.DataInicial, report.Query.DataFinal, report.Result.NumeroPagina, format)
}
