package model

import "time"

// ExportReport is one search result page prepared for rendering.
type ExportReport struct {
	Query       Query
	Result      SearchResult
	GeneratedAt time.Time
}

// Location returns the municipality code when present, otherwise the UF.
func (r ExportReport) Location() string {
	if r.Query.MunicipioIBGE != "" {
		return r.Query.MunicipioIBGE
	}
	return r.Query.UF
}
