package model

type Company struct {
	CNPJ                   string    `json:"cnpj"`
	RazaoSocial            string    `json:"razaoSocial"`
	NomeFantasia           string    `json:"nomeFantasia"`
	Situacao               string    `json:"situacao"`
	DataSituacao           string    `json:"dataSituacao"`
	DataAbertura           string    `json:"dataAbertura"`
	CapitalSocial          string    `json:"capitalSocial"`
	Porte                  *string   `json:"porte"`
	NaturezaJuridica       *string   `json:"naturezaJuridica"`
	AtividadePrincipal     *string   `json:"atividadePrincipal"`
	CNAE                   *string   `json:"cnae"`
	AtividadesSecundarias  []string  `json:"atividadesSecundarias"`
	Endereco               Address   `json:"endereco"`
	Telefone               *string   `json:"telefone"`
	Email                  *string   `json:"email"`
	Socios                 []Partner `json:"socios"`
	OptanteSimplesNacional bool      `json:"optanteSimplesNacional"`
}

type Address struct {
	Logradouro  string `json:"logradouro"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Municipio   string `json:"municipio"`
	UF          string `json:"uf"`
	CEP         string `json:"cep"`
}

type Partner struct {
	Nome         string `json:"nome"`
	Tipo         string `json:"tipo"`
	DataEntrada  string `json:"dataEntrada"`
	Qualificacao string `json:"qualificacao"`
}
