package model

// Query is a search over the procurement registry as received from the caller.
type Query struct {
	UF            string
	MunicipioIBGE string
	DataInicial   string
	DataFinal     string
	Modalidade    string
	Pagina        int
	TamanhoPagina int
}

// HasLocation reports whether at least one of UF or municipality is set.
func (q Query) HasLocation() bool {
	return q.UF != "" || q.MunicipioIBGE != ""
}

// Aggregated reports whether the query fans out over the default modalities.
func (q Query) Aggregated() bool {
	return q.Modalidade == ""
}

// RegistryQuery is a Query resolved to exactly one modality code.
type RegistryQuery struct {
	UF            string
	MunicipioIBGE string
	DataInicial   string
	DataFinal     string
	Modalidade    string
	Pagina        int
	TamanhoPagina int
}

// ForModality resolves the query against a concrete modality and page size.
func (q Query) ForModality(modalidade string, tamanhoPagina int) RegistryQuery {
	return RegistryQuery{
		UF:            q.UF,
		MunicipioIBGE: q.MunicipioIBGE,
		DataInicial:   q.DataInicial,
		DataFinal:     q.DataFinal,
		Modalidade:    modalidade,
		Pagina:        q.Pagina,
		TamanhoPagina: tamanhoPagina,
	}
}

// Licitacao is a normalized procurement record.
type Licitacao struct {
	NumeroControlePNCP string   `json:"numeroControlePNCP"`
	Objeto             string   `json:"objeto"`
	ValorEstimado      *float64 `json:"valorEstimado"`
	ValorHomologado    *float64 `json:"valorHomologado"`
	Orgao              string   `json:"orgao"`
	CNPJ               string   `json:"cnpj"`
	Municipio          string   `json:"municipio"`
	UF                 string   `json:"uf"`
	Modalidade         string   `json:"modalidade"`
	Situacao           string   `json:"situacao"`
	DataPublicacao     string   `json:"dataPublicacao"`
	DataAbertura       *string  `json:"dataAbertura"`
	DataEncerramento   *string  `json:"dataEncerramento"`
	LinkOrigem         *string  `json:"linkOrigem"`
	LinkPNCP           *string  `json:"linkPNCP"`
	Processo           string   `json:"processo"`
	NumeroCompra       string   `json:"numeroCompra"`
}

// PartialResult is one page returned by a single registry call.
type PartialResult struct {
	Licitacoes     []Licitacao
	TotalRegistros int
	TotalPaginas   int
	NumeroPagina   int
}

// SearchResult is the payload returned for both search paths.
type SearchResult struct {
	Licitacoes     []Licitacao `json:"licitacoes"`
	TotalRegistros int         `json:"totalRegistros"`
	TotalPaginas   int         `json:"totalPaginas"`
	NumeroPagina   int         `json:"numeroPagina"`
	ModoAgregado   bool        `json:"modoAgregado"`
}
