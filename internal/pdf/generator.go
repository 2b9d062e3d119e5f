package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/licitabrasil/internal/model"
)

var (
	headers   = []string{"Publicação", "Objeto", "Órgão", "Município/UF", "Modalidade", "Valor estimado"}
	colWidths = []float64{25, 90, 60, 35, 32, 25}
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report model.ExportReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	q := report.Query
	res := report.Result

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Licitações publicadas no PNCP"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 10)
	location := "UF " + safeValue(q.UF)
	if q.MunicipioIBGE != "" {
		location = "Município IBGE " + q.MunicipioIBGE
	}
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s, período %s a %s", location, q.DataInicial, q.DataFinal)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Modalidade: %s | Página %d de %d | %d registros no total",
		modalityLabel(q.Modalidade), res.NumeroPagina, res.TotalPaginas, res.TotalRegistros)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	drawTableRow(pdf, g.fontName, tr, headers, true)
	if len(res.Licitacoes) == 0 {
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 8, tr("Nenhuma licitação encontrada."), "1", 1, "C", false, 0, "")
	}
	for _, l := range res.Licitacoes {
		drawTableRow(pdf, g.fontName, tr, []string{
			formatDate(l.DataPublicacao),
			l.Objeto,
			l.Orgao,
			fmt.Sprintf("%s/%s", l.Municipio, l.UF),
			l.Modalidade,
			formatAmount(l.ValorEstimado),
		}, false)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "", 8)
	pdf.CellFormat(0, 5, tr("Gerado em "+report.GeneratedAt.Format("02/01/2006 15:04")), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, cols []string, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 8)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(colWidths[i], 7, fitText(pdf, tr(col), colWidths[i]-2), "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
}

// fitText cuts s with an ellipsis so it fits in width millimetres.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s) + "..."
}

func modalityLabel(code string) string {
	if code == "" {
		return "Todas (agregado)"
	}
	if name := model.ModalidadeNome(code); name != "" {
		return name
	}
	return code
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("R$ %.2f", *value)
}

// formatDate renders registry timestamps as dd/mm/yyyy and leaves anything
// unparseable untouched.
func formatDate(value string) string {
	if len(value) < 10 {
		return safeValue(value)
	}
	t, err := time.Parse("2006-01-02", value[:10])
	if err != nil {
		return value
	}
	return t.Format("02/01/2006")
}
