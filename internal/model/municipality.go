package model

type Municipality struct {
	Nome       string `json:"nome"`
	CodigoIBGE string `json:"codigoIbge"`
}
