package ibge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nurpe/licitabrasil/internal/model"
	"github.com/nurpe/licitabrasil/internal/upstream"
)

const (
	serviceName = "IBGE"

	DefaultBaseURL = "https://servicodados.ibge.gov.br"
	DefaultTimeout = 15 * time.Second
)

type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
}

func NewClient(httpClient *http.Client, baseURL string, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

type rawMunicipio struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
}

// ListByUF returns the municipalities of a state ordered by name.
func (c *Client) ListByUF(ctx context.Context, uf string) ([]model.Municipality, error) {
	endpoint := fmt.Sprintf("%s/api/v1/localidades/estados/%s/municipios?orderBy=nome", c.baseURL, uf)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build ibge request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := upstream.Do(ctx, c.http, req, serviceName, c.timeout)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &upstream.Error{Service: serviceName, Status: resp.Status, Body: string(resp.Body)}
	}

	var raw []rawMunicipio
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, fmt.Errorf("decode ibge response: %w", err)
	}
	out := make([]model.Municipality, 0, len(raw))
	for _, m := range raw {
		out = append(out, model.Municipality{Nome: m.Nome, CodigoIBGE: strconv.FormatInt(m.ID, 10)})
	}
	return out, nil
}
