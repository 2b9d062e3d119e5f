package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitabrasil/internal/cache"
	"github.com/nurpe/licitabrasil/internal/model"
)

var ufPattern = regexp.MustCompile(`^[A-Z]{2}$`)

type MunicipalityClient interface {
	ListByUF(ctx context.Context, uf string) ([]model.Municipality, error)
}

// MunicipalityService caches municipality lists per UF for the life of the
// process; the data is static reference data.
type MunicipalityService struct {
	client MunicipalityClient
	cache  cache.Store[[]model.Municipality]
	log    zerolog.Logger
}

func NewMunicipalityService(client MunicipalityClient, store cache.Store[[]model.Municipality], log zerolog.Logger) *MunicipalityService {
	return &MunicipalityService{
		client: client,
		cache:  store,
		log:    log.With().Str("component", "municipios").Logger(),
	}
}

func (s *MunicipalityService) ListByUF(ctx context.Context, raw string) ([]model.Municipality, error) {
	uf := strings.ToUpper(strings.TrimSpace(raw))
	if !ufPattern.MatchString(uf) {
		return nil, fmt.Errorf("%w: Sigla de UF inválida.", ErrInvalidInput)
	}

	cached, ok, err := s.cache.Get(ctx, uf)
	if err != nil {
		s.log.Warn().Err(err).Str("uf", uf).Msg("municipality cache read failed")
	}
	if ok {
		return cached, nil
	}

	list, err := s.client.ListByUF(ctx, uf)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, uf, list); err != nil {
		s.log.Warn().Err(err).Str("uf", uf).Msg("municipality cache write failed")
	}
	return list, nil
}
