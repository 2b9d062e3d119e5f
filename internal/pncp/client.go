package pncp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitabrasil/internal/model"
	"github.com/nurpe/licitabrasil/internal/upstream"
)

const (
	serviceName = "PNCP"

	DefaultBaseURL = "https://pncp.gov.br/api/consulta"
	DefaultAppURL  = "https://pncp.gov.br"
	DefaultTimeout = 20 * time.Second

	MinPageSize = 10
	MaxPageSize = 50
)

var ErrModalityRequired = errors.New("pncp: modality code is required")

type Config struct {
	BaseURL string
	AppURL  string
	Timeout time.Duration
}

// Client queries the PNCP publication endpoint one modality at a time.
type Client struct {
	http    *http.Client
	baseURL string
	appURL  string
	timeout time.Duration
	log     zerolog.Logger
}

func NewClient(httpClient *http.Client, cfg Config, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AppURL == "" {
		cfg.AppURL = DefaultAppURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appURL:  cfg.AppURL,
		timeout: cfg.Timeout,
		log:     log.With().Str("component", "pncp").Logger(),
	}
}

// ClampPageSize forces a page size into [lo, hi].
func ClampPageSize(size, lo, hi int) int {
	if size < lo {
		return lo
	}
	if size > hi {
		return hi
	}
	return size
}

func (c *Client) buildURL(q model.RegistryQuery) string {
	params := url.Values{}
	params.Set("dataInicial", q.DataInicial)
	params.Set("dataFinal", q.DataFinal)
	params.Set("codigoModalidadeContratacao", q.Modalidade)
	params.Set("pagina", strconv.Itoa(q.Pagina))
	params.Set("tamanhoPagina", strconv.Itoa(ClampPageSize(q.TamanhoPagina, MinPageSize, MaxPageSize)))
	if q.UF != "" {
		params.Set("uf", strings.ToUpper(q.UF))
	}
	if q.MunicipioIBGE != "" {
		params.Set("codigoMunicipioIbge", q.MunicipioIBGE)
	}
	return c.baseURL + "/v1/contratacoes/publicacao?" + params.Encode()
}

// FetchPage issues one bounded-time registry query for a single modality.
func (c *Client) FetchPage(ctx context.Context, q model.RegistryQuery) (*model.PartialResult, error) {
	if strings.TrimSpace(q.Modalidade) == "" {
		return nil, ErrModalityRequired
	}

	endpoint := c.buildURL(q)
	c.log.Info().Str("url", endpoint).Msg("pncp request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build pncp request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "LicitaBrasil/1.0")

	resp, err := upstream.Do(ctx, c.http, req, serviceName, c.timeout)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &upstream.Error{Service: serviceName, Status: resp.Status, Body: string(resp.Body)}
	}

	result := &model.PartialResult{Licitacoes: []model.Licitacao{}}
	if resp.Status == http.StatusNoContent || len(bytes.TrimSpace(resp.Body)) == 0 {
		return result, nil
	}

	var page rawPage
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, fmt.Errorf("decode pncp response: %w", err)
	}

	result.Licitacoes = make([]model.Licitacao, 0, len(page.Data))
	for _, item := range page.Data {
		result.Licitacoes = append(result.Licitacoes, c.normalize(item))
	}
	result.TotalRegistros = page.TotalRegistros
	result.TotalPaginas = page.TotalPaginas
	result.NumeroPagina = page.NumeroPagina
	return result, nil
}
