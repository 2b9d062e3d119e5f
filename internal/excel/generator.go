package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/licitabrasil/internal/model"
)

const (
	summarySheet = "Resumo"
	recordsSheet = "Licitações"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.ExportReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, report)

	if _, err := file.NewSheet(recordsSheet); err != nil {
		return nil, err
	}
	g.writeRecords(file, report)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.ExportReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	q := report.Query
	res := report.Result

	set("A1", "UF")
	set("B1", q.UF)
	set("A2", "Município (IBGE)")
	set("B2", q.MunicipioIBGE)
	set("A3", "Data inicial")
	set("B3", q.DataInicial)
	set("A4", "Data final")
	set("B4", q.DataFinal)
	set("A5", "Modalidade")
	set("B5", modalityLabel(q.Modalidade))
	set("A6", "Página")
	set("B6", fmt.Sprintf("%d de %d", res.NumeroPagina, res.TotalPaginas))
	set("A7", "Total de registros")
	set("B7", res.TotalRegistros)
	set("A8", "Registros nesta página")
	set("B8", len(res.Licitacoes))
	set("A9", "Gerado em")
	set("B9", formatDateTime(report.GeneratedAt))

	_ = file.SetColWidth(summarySheet, "A", "A", 26)
	_ = file.SetColWidth(summarySheet, "B", "B", 40)
}

func (g *Generator) writeRecords(file *excelize.File, report model.ExportReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(recordsSheet, cell, value)
	}

	headers := []string{
		"Publicação",
		"Número PNCP",
		"Objeto",
		"Órgão",
		"CNPJ",
		"Município",
		"UF",
		"Modalidade",
		"Situação",
		"Valor estimado",
		"Valor homologado",
		"Abertura",
		"Encerramento",
		"Link PNCP",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, l := range report.Result.Licitacoes {
		row := i + 2
		set(fmt.Sprintf("A%d", row), l.DataPublicacao)
		set(fmt.Sprintf("B%d", row), l.NumeroControlePNCP)
		set(fmt.Sprintf("C%d", row), l.Objeto)
		set(fmt.Sprintf("D%d", row), l.Orgao)
		set(fmt.Sprintf("E%d", row), l.CNPJ)
		set(fmt.Sprintf("F%d", row), l.Municipio)
		set(fmt.Sprintf("G%d", row), l.UF)
		set(fmt.Sprintf("H%d", row), l.Modalidade)
		set(fmt.Sprintf("I%d", row), l.Situacao)
		set(fmt.Sprintf("J%d", row), formatAmount(l.ValorEstimado))
		set(fmt.Sprintf("K%d", row), formatAmount(l.ValorHomologado))
		set(fmt.Sprintf("L%d", row), formatString(l.DataAbertura))
		set(fmt.Sprintf("M%d", row), formatString(l.DataEncerramento))
		set(fmt.Sprintf("N%d", row), formatString(l.LinkPNCP))
	}

	_ = file.SetColWidth(recordsSheet, "A", "B", 24)
	_ = file.SetColWidth(recordsSheet, "C", "D", 48)
	_ = file.SetColWidth(recordsSheet, "E", "I", 18)
	_ = file.SetColWidth(recordsSheet, "J", "K", 16)
	_ = file.SetColWidth(recordsSheet, "L", "M", 20)
	_ = file.SetColWidth(recordsSheet, "N", "N", 60)
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

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// Amounts stay numeric so spreadsheet formulas work on them.
func formatAmount(value *float64) interface{} {
	if value == nil {
		return ""
	}
	return *value
}
