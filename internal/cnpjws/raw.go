package cnpjws

import (
	"encoding/json"
	"strings"

	"github.com/nurpe/licitabrasil/internal/model"
)

type rawCompany struct {
	RazaoSocial      string          `json:"razao_social"`
	CapitalSocial    json.RawMessage `json:"capital_social"`
	Porte            *rawDescricao   `json:"porte"`
	NaturezaJuridica *rawDescricao   `json:"natureza_juridica"`
	Estabelecimento  *rawEstab       `json:"estabelecimento"`
	Socios           []rawSocio      `json:"socios"`
	Simples          *rawSimples     `json:"simples"`
}

type rawDescricao struct {
	Descricao string `json:"descricao"`
}

type rawAtividade struct {
	Descricao string `json:"descricao"`
	Subclasse string `json:"subclasse"`
}

type rawEstab struct {
	NomeFantasia          string         `json:"nome_fantasia"`
	SituacaoCadastral     string         `json:"situacao_cadastral"`
	DataSituacaoCadastral string         `json:"data_situacao_cadastral"`
	DataInicioAtividade   string         `json:"data_inicio_atividade"`
	AtividadePrincipal    *rawAtividade  `json:"atividade_principal"`
	AtividadesSecundarias []rawAtividade `json:"atividades_secundarias"`
	TipoLogradouro        string         `json:"tipo_logradouro"`
	Logradouro            string         `json:"logradouro"`
	Numero                string         `json:"numero"`
	Complemento           string         `json:"complemento"`
	Bairro                string         `json:"bairro"`
	CEP                   string         `json:"cep"`
	Cidade                *struct {
		Nome string `json:"nome"`
	} `json:"cidade"`
	Estado *struct {
		Sigla string `json:"sigla"`
	} `json:"estado"`
	DDD1      string `json:"ddd1"`
	Telefone1 string `json:"telefone1"`
	Email     string `json:"email"`
}

type rawSocio struct {
	Nome              string        `json:"nome"`
	Tipo              string        `json:"tipo"`
	DataEntrada       string        `json:"data_entrada"`
	QualificacaoSocio *rawDescricao `json:"qualificacao_socio"`
}

type rawSimples struct {
	Simples string `json:"simples"`
}

func normalize(cnpj string, raw rawCompany) model.Company {
	estab := raw.Estabelecimento
	if estab == nil {
		estab = &rawEstab{}
	}

	out := model.Company{
		CNPJ:                   cnpj,
		RazaoSocial:            raw.RazaoSocial,
		NomeFantasia:           estab.NomeFantasia,
		Situacao:               estab.SituacaoCadastral,
		DataSituacao:           estab.DataSituacaoCadastral,
		DataAbertura:           estab.DataInicioAtividade,
		CapitalSocial:          rawScalar(raw.CapitalSocial),
		Porte:                  descricao(raw.Porte),
		NaturezaJuridica:       descricao(raw.NaturezaJuridica),
		AtividadesSecundarias:  make([]string, 0, len(estab.AtividadesSecundarias)),
		Socios:                 make([]model.Partner, 0, len(raw.Socios)),
		Email:                  optional(estab.Email),
		OptanteSimplesNacional: raw.Simples != nil && raw.Simples.Simples == "Sim",
	}
	if out.NomeFantasia == "" {
		out.NomeFantasia = raw.RazaoSocial
	}
	if estab.AtividadePrincipal != nil {
		out.AtividadePrincipal = optional(estab.AtividadePrincipal.Descricao)
		out.CNAE = optional(estab.AtividadePrincipal.Subclasse)
	}
	for _, a := range estab.AtividadesSecundarias {
		out.AtividadesSecundarias = append(out.AtividadesSecundarias, a.Descricao)
	}

	out.Endereco = model.Address{
		Logradouro:  strings.TrimSpace(estab.TipoLogradouro + " " + estab.Logradouro),
		Numero:      estab.Numero,
		Complemento: estab.Complemento,
		Bairro:      estab.Bairro,
		CEP:         estab.CEP,
	}
	if estab.Cidade != nil {
		out.Endereco.Municipio = estab.Cidade.Nome
	}
	if estab.Estado != nil {
		out.Endereco.UF = estab.Estado.Sigla
	}
	if estab.DDD1 != "" && estab.Telefone1 != "" {
		phone := "(" + estab.DDD1 + ") " + estab.Telefone1
		out.Telefone = &phone
	}

	for _, s := range raw.Socios {
		partner := model.Partner{Nome: s.Nome, Tipo: s.Tipo, DataEntrada: s.DataEntrada}
		if s.QualificacaoSocio != nil {
			partner.Qualificacao = s.QualificacaoSocio.Descricao
		}
		out.Socios = append(out.Socios, partner)
	}
	return out
}

func descricao(d *rawDescricao) *string {
	if d == nil {
		return nil
	}
	return optional(d.Descricao)
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// rawScalar renders a JSON string or number as text; null becomes "".
func rawScalar(msg json.RawMessage) string {
	text := strings.TrimSpace(string(msg))
	if text == "" || text == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}
	return text
}
