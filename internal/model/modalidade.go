package model

type Modalidade struct {
	Codigo string `json:"codigo"`
	Nome   string `json:"nome"`
}

// Modalidades is the registry's contracting-modality catalog.
var Modalidades = []Modalidade{
	{Codigo: "6", Nome: "Pregão Eletrônico"},
	{Codigo: "7", Nome: "Pregão Presencial"},
	{Codigo: "8", Nome: "Dispensa Eletrônica"},
	{Codigo: "9", Nome: "Inexigibilidade"},
	{Codigo: "4", Nome: "Concorrência Eletrônica"},
	{Codigo: "5", Nome: "Concorrência Presencial"},
	{Codigo: "12", Nome: "Credenciamento"},
	{Codigo: "3", Nome: "Concurso"},
	{Codigo: "10", Nome: "Manifestação de Interesse"},
	{Codigo: "11", Nome: "Pré-qualificação"},
	{Codigo: "1", Nome: "Leilão Eletrônico"},
	{Codigo: "13", Nome: "Leilão Presencial"},
	{Codigo: "2", Nome: "Diálogo Competitivo"},
}

// ModalidadeNome returns the catalog label for a code, or "" if unknown.
func ModalidadeNome(codigo string) string {
	for _, m := range Modalidades {
		if m.Codigo == codigo {
			return m.Nome
		}
	}
	return ""
}
