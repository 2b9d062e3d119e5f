package pncp

import (
	"fmt"
	"strings"

	"github.com/nurpe/licitabrasil/internal/model"
)

type rawPage struct {
	Data           []rawContratacao `json:"data"`
	TotalRegistros int              `json:"totalRegistros"`
	TotalPaginas   int              `json:"totalPaginas"`
	NumeroPagina   int              `json:"numeroPagina"`
}

type rawContratacao struct {
	NumeroControlePNCP       string      `json:"numeroControlePNCP"`
	ObjetoCompra             string      `json:"objetoCompra"`
	ValorTotalEstimado       *float64    `json:"valorTotalEstimado"`
	ValorTotalHomologado     *float64    `json:"valorTotalHomologado"`
	OrgaoEntidade            *rawOrgao   `json:"orgaoEntidade"`
	UnidadeOrgao             *rawUnidade `json:"unidadeOrgao"`
	ModalidadeNome           string      `json:"modalidadeNome"`
	SituacaoCompraNome       string      `json:"situacaoCompraNome"`
	DataPublicacaoPncp       string      `json:"dataPublicacaoPncp"`
	DataInclusao             string      `json:"dataInclusao"`
	DataAberturaProposta     *string     `json:"dataAberturaProposta"`
	DataEncerramentoProposta *string     `json:"dataEncerramentoProposta"`
	LinkSistemaOrigem        *string     `json:"linkSistemaOrigem"`
	AnoCompra                int         `json:"anoCompra"`
	SequencialCompra         int         `json:"sequencialCompra"`
	Processo                 string      `json:"processo"`
	NumeroCompra             string      `json:"numeroCompra"`
}

type rawOrgao struct {
	CNPJ        string `json:"cnpj"`
	RazaoSocial string `json:"razaoSocial"`
}

type rawUnidade struct {
	MunicipioNome string `json:"municipioNome"`
	UFSigla       string `json:"ufSigla"`
}

func (c *Client) normalize(l rawContratacao) model.Licitacao {
	out := model.Licitacao{
		NumeroControlePNCP: l.NumeroControlePNCP,
		Objeto:             l.ObjetoCompra,
		ValorEstimado:      l.ValorTotalEstimado,
		ValorHomologado:    l.ValorTotalHomologado,
		Modalidade:         l.ModalidadeNome,
		Situacao:           l.SituacaoCompraNome,
		DataPublicacao:     l.DataPublicacaoPncp,
		DataAbertura:       nonEmpty(l.DataAberturaProposta),
		DataEncerramento:   nonEmpty(l.DataEncerramentoProposta),
		LinkOrigem:         nonEmpty(l.LinkSistemaOrigem),
		Processo:           l.Processo,
		NumeroCompra:       l.NumeroCompra,
	}
	if out.DataPublicacao == "" {
		out.DataPublicacao = l.DataInclusao
	}
	if l.OrgaoEntidade != nil {
		out.Orgao = l.OrgaoEntidade.RazaoSocial
		out.CNPJ = l.OrgaoEntidade.CNPJ
	}
	if l.UnidadeOrgao != nil {
		out.Municipio = l.UnidadeOrgao.MunicipioNome
		out.UF = l.UnidadeOrgao.UFSigla
	}
	out.LinkPNCP = c.editalLink(out.CNPJ, l.AnoCompra, l.SequencialCompra)
	return out
}

// editalLink builds the public notice URL; it needs all three origin fields.
func (c *Client) editalLink(cnpj string, ano, sequencial int) *string {
	if cnpj == "" || ano == 0 || sequencial == 0 {
		return nil
	}
	link := fmt.Sprintf("%s/app/editais/%s/%d/%d", strings.TrimRight(c.appURL, "/"), cnpj, ano, sequencial)
	return &link
}

func nonEmpty(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}
