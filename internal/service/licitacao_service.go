package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/licitabrasil/internal/model"
	"github.com/nurpe/licitabrasil/internal/pncp"
)

const (
	// DefaultPageSize applies only when the caller sent no page size; an
	// explicit out-of-range value is clamped instead.
	DefaultPageSize = 20

	// Aggregated partials are summed, so the per-modality page is kept small.
	aggregatedMinPageSize = 10
	aggregatedMaxPageSize = 20
)

// DefaultModalities are queried when the caller does not filter by modality:
// Pregão Eletrônico, Concorrência Presencial, Leilão Eletrônico and
// Diálogo Competitivo.
var DefaultModalities = []string{"6", "5", "1", "2"}

type RegistryClient interface {
	FetchPage(ctx context.Context, q model.RegistryQuery) (*model.PartialResult, error)
}

type LicitacaoService struct {
	registry   RegistryClient
	modalities []string
	log        zerolog.Logger
}

func NewLicitacaoService(registry RegistryClient, modalities []string, log zerolog.Logger) *LicitacaoService {
	if len(modalities) == 0 {
		modalities = DefaultModalities
	}
	return &LicitacaoService{
		registry:   registry,
		modalities: append([]string(nil), modalities...),
		log:        log.With().Str("component", "licitacoes").Logger(),
	}
}

// Search runs a filtered registry query when a modality is given and the
// multi-modality aggregation otherwise.
func (s *LicitacaoService) Search(ctx context.Context, q model.Query) (*model.SearchResult, error) {
	q = normalizeQuery(q)
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	if q.Aggregated() {
		return s.searchAggregated(ctx, q), nil
	}
	return s.searchSingle(ctx, q)
}

func normalizeQuery(q model.Query) model.Query {
	q.UF = strings.ToUpper(strings.TrimSpace(q.UF))
	q.MunicipioIBGE = strings.TrimSpace(q.MunicipioIBGE)
	q.DataInicial = strings.TrimSpace(q.DataInicial)
	q.DataFinal = strings.TrimSpace(q.DataFinal)
	q.Modalidade = strings.TrimSpace(q.Modalidade)
	if q.Pagina == 0 {
		q.Pagina = 1
	}
	return q
}

func validateQuery(q model.Query) error {
	if !q.HasLocation() {
		return fmt.Errorf("%w: Informe pelo menos um Estado (UF).", ErrInvalidInput)
	}
	if q.DataInicial == "" || q.DataFinal == "" {
		return fmt.Errorf("%w: Informe o período de pesquisa.", ErrInvalidInput)
	}
	if q.Pagina < 1 {
		return fmt.Errorf("%w: Página inválida.", ErrInvalidInput)
	}
	return nil
}

func (s *LicitacaoService) searchSingle(ctx context.Context, q model.Query) (*model.SearchResult, error) {
	partial, err := s.registry.FetchPage(ctx, q.ForModality(q.Modalidade, q.TamanhoPagina))
	if err != nil {
		return nil, err
	}
	return assemble(partial.Licitacoes, partial.TotalRegistros, partial.TotalPaginas, partial.NumeroPagina, q.Pagina, false), nil
}

type modalityOutcome struct {
	partial *model.PartialResult
	err     error
}

func (s *LicitacaoService) searchAggregated(ctx context.Context, q model.Query) *model.SearchResult {
	pageSize := pncp.ClampPageSize(q.TamanhoPagina, aggregatedMinPageSize, aggregatedMaxPageSize)

	// Each call writes only its own slot, and only once it has settled.
	outcomes := make([]modalityOutcome, len(s.modalities))
	var g errgroup.Group
	for i, modalidade := range s.modalities {
		i, modalidade := i, modalidade
		g.Go(func() error {
			partial, err := s.registry.FetchPage(ctx, q.ForModality(modalidade, pageSize))
			outcomes[i] = modalityOutcome{partial: partial, err: err}
			return nil
		})
	}
	_ = g.Wait()

	partials := make([]*model.PartialResult, 0, len(outcomes))
	for i, outcome := range outcomes {
		if outcome.err != nil {
			s.log.Warn().Err(outcome.err).Str("modalidade", s.modalities[i]).Msg("modality query failed")
			continue
		}
		partials = append(partials, outcome.partial)
	}
	if len(partials) == 0 {
		s.log.Warn().Int("modalidades", len(s.modalities)).Msg("all modality queries failed, returning empty result")
	}

	merged := mergePartials(partials, pageSize)
	return assemble(merged.Licitacoes, merged.TotalRegistros, merged.TotalPaginas, q.Pagina, q.Pagina, true)
}

// assemble shapes either path into the response payload.
func assemble(records []model.Licitacao, total, pages, page, requestedPage int, aggregated bool) *model.SearchResult {
	if records == nil {
		records = []model.Licitacao{}
	}
	if pages <= 0 {
		pages = 1
	}
	if page <= 0 {
		page = requestedPage
	}
	return &model.SearchResult{
		Licitacoes:     records,
		TotalRegistros: total,
		TotalPaginas:   pages,
		NumeroPagina:   page,
		ModoAgregado:   aggregated,
	}
}
