package service

import (
	"sort"
	"strings"
	"time"

	"github.com/nurpe/licitabrasil/internal/model"
)

var publicationLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
}

// mergePartials folds successful partials in input order: records are
// concatenated, totals summed, page counts maxed, then the merged list is
// ranked and cut to pageSize. Records are not de-duplicated across partials.
func mergePartials(partials []*model.PartialResult, pageSize int) model.PartialResult {
	merged := model.PartialResult{TotalPaginas: 1}
	for _, p := range partials {
		if p == nil {
			continue
		}
		merged.Licitacoes = append(merged.Licitacoes, p.Licitacoes...)
		merged.TotalRegistros += p.TotalRegistros
		if p.TotalPaginas > merged.TotalPaginas {
			merged.TotalPaginas = p.TotalPaginas
		}
	}
	sortByPublicationDesc(merged.Licitacoes)
	if pageSize >= 0 && len(merged.Licitacoes) > pageSize {
		merged.Licitacoes = merged.Licitacoes[:pageSize]
	}
	return merged
}

// sortByPublicationDesc orders newest first. Records without a parseable
// publication date go after every dated record, keeping their merge order.
func sortByPublicationDesc(records []model.Licitacao) {
	keys := make([]time.Time, len(records))
	valid := make([]bool, len(records))
	for i := range records {
		keys[i], valid[i] = parsePublication(records[i].DataPublicacao)
	}
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if valid[ia] != valid[ib] {
			return valid[ia]
		}
		if !valid[ia] {
			return false
		}
		return keys[ia].After(keys[ib])
	})
	sorted := make([]model.Licitacao, len(records))
	for i, j := range idx {
		sorted[i] = records[j]
	}
	copy(records, sorted)
}

func parsePublication(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publicationLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
