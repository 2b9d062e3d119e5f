package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitabrasil/internal/cache"
	"github.com/nurpe/licitabrasil/internal/cnpjws"
	"github.com/nurpe/licitabrasil/internal/model"
)

type CompanyClient interface {
	Lookup(ctx context.Context, cnpj string) (*model.Company, error)
}

type CompanyService struct {
	client CompanyClient
	cache  cache.Store[model.Company]
	log    zerolog.Logger
}

// NewCompanyService expects a store whose entries expire after the
// company freshness window.
func NewCompanyService(client CompanyClient, store cache.Store[model.Company], log zerolog.Logger) *CompanyService {
	return &CompanyService{
		client: client,
		cache:  store,
		log:    log.With().Str("component", "cnpj").Logger(),
	}
}

func (s *CompanyService) Lookup(ctx context.Context, raw string) (*model.Company, error) {
	cnpj := CleanCNPJ(raw)
	if len(cnpj) != 14 {
		return nil, fmt.Errorf("%w: CNPJ inválido.", ErrInvalidInput)
	}

	cached, ok, err := s.cache.Get(ctx, cnpj)
	if err != nil {
		s.log.Warn().Err(err).Str("cnpj", cnpj).Msg("company cache read failed")
	}
	if ok {
		return &cached, nil
	}

	company, err := s.client.Lookup(ctx, cnpj)
	switch {
	case errors.Is(err, cnpjws.ErrRateLimited):
		return nil, fmt.Errorf("%w: Limite de consultas CNPJ atingido. Tente em 1 minuto.", ErrRateLimited)
	case errors.Is(err, cnpjws.ErrNotFound):
		return nil, fmt.Errorf("%w: CNPJ não encontrado na base da Receita Federal.", ErrNotFound)
	case err != nil:
		return nil, err
	}

	if err := s.cache.Put(ctx, cnpj, *company); err != nil {
		s.log.Warn().Err(err).Str("cnpj", cnpj).Msg("company cache write failed")
	}
	return company, nil
}
