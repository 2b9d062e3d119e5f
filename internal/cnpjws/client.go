package cnpjws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nurpe/licitabrasil/internal/model"
	"github.com/nurpe/licitabrasil/internal/upstream"
)

const (
	serviceName = "cnpj.ws"

	DefaultBaseURL = "https://publica.cnpj.ws"
	DefaultTimeout = 15 * time.Second
)

var (
	ErrNotFound    = errors.New("cnpj.ws: company not found")
	ErrRateLimited = errors.New("cnpj.ws: rate limited")
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

// Lookup fetches the public registration of a 14-digit CNPJ.
func (c *Client) Lookup(ctx context.Context, cnpj string) (*model.Company, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cnpj/"+cnpj, nil)
	if err != nil {
		return nil, fmt.Errorf("build cnpj request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "LicitaBrasil/1.0")

	resp, err := upstream.Do(ctx, c.http, req, serviceName, c.timeout)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.Status == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.Status == http.StatusNotFound:
		return nil, ErrNotFound
	case !resp.OK():
		return nil, &upstream.Error{Service: serviceName, Status: resp.Status, Body: string(resp.Body)}
	}

	var raw rawCompany
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, fmt.Errorf("decode cnpj response: %w", err)
	}
	company := normalize(cnpj, raw)
	return &company, nil
}
