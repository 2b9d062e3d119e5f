package pncp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitabrasil/internal/model"
	"github.com/nurpe/licitabrasil/internal/upstream"
)

const samplePage = `{
  "data": [
    {
      "numeroControlePNCP": "12345678000190-1-000010/2024",
      "objetoCompra": "Aquisição de material de escritório",
      "valorTotalEstimado": 15000.5,
      "orgaoEntidade": {"cnpj": "12345678000190", "razaoSocial": "PREFEITURA DE TESTE"},
      "unidadeOrgao": {"municipioNome": "Campinas", "ufSigla": "SP"},
      "modalidadeNome": "Pregão - Eletrônico",
      "situacaoCompraNome": "Divulgada no PNCP",
      "dataPublicacaoPncp": "2024-01-15T10:30:00",
      "dataAberturaProposta": "2024-01-20T08:00:00",
      "linkSistemaOrigem": "",
      "anoCompra": 2024,
      "sequencialCompra": 10,
      "processo": "PROC-1",
      "numeroCompra": "10"
    },
    {
      "numeroControlePNCP": "x-2",
      "objetoCompra": "Serviço sem órgão",
      "dataInclusao": "2024-01-10T09:00:00"
    }
  ],
  "totalRegistros": 42,
  "totalPaginas": 3,
  "numeroPagina": 2
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), Config{BaseURL: srv.URL, AppURL: "https://pncp.example", Timeout: timeout}, zerolog.Nop())
}

func baseQuery() model.RegistryQuery {
	return model.RegistryQuery{
		UF:            "sp",
		DataInicial:   "20240101",
		DataFinal:     "20240131",
		Modalidade:    "6",
		Pagina:        2,
		TamanhoPagina: 20,
	}
}

func TestFetchPageBuildsQueryAndNormalizes(t *testing.T) {
	var got url.Values
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		path = r.URL.Path
		if r.Header.Get("User-Agent") != "LicitaBrasil/1.0" {
			t.Errorf("unexpected user agent: %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePage))
	}, time.Second)

	res, err := client.FetchPage(context.Background(), baseQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if path != "/v1/contratacoes/publicacao" {
		t.Fatalf("unexpected path: %q", path)
	}
	want := map[string]string{
		"dataInicial":                 "20240101",
		"dataFinal":                   "20240131",
		"codigoModalidadeContratacao": "6",
		"pagina":                      "2",
		"tamanhoPagina":               "20",
		"uf":                          "SP",
	}
	for key, value := range want {
		if got.Get(key) != value {
			t.Fatalf("param %s: got=%q want=%q", key, got.Get(key), value)
		}
	}
	if got.Has("codigoMunicipioIbge") {
		t.Fatalf("municipality param must be omitted when empty")
	}

	if res.TotalRegistros != 42 || res.TotalPaginas != 3 || res.NumeroPagina != 2 {
		t.Fatalf("unexpected metadata: %+v", res)
	}
	if len(res.Licitacoes) != 2 {
		t.Fatalf("unexpected record count: %d", len(res.Licitacoes))
	}

	first := res.Licitacoes[0]
	if first.Orgao != "PREFEITURA DE TESTE" || first.CNPJ != "12345678000190" || first.UF != "SP" {
		t.Fatalf("unexpected entity fields: %+v", first)
	}
	if first.ValorEstimado == nil || *first.ValorEstimado != 15000.5 {
		t.Fatalf("unexpected estimated value")
	}
	if first.ValorHomologado != nil {
		t.Fatalf("missing awarded value must stay nil")
	}
	if first.LinkOrigem != nil {
		t.Fatalf("empty origin link must map to nil")
	}
	if first.LinkPNCP == nil || *first.LinkPNCP != "https://pncp.example/app/editais/12345678000190/2024/10" {
		t.Fatalf("unexpected pncp link: %v", first.LinkPNCP)
	}

	second := res.Licitacoes[1]
	if second.DataPublicacao != "2024-01-10T09:00:00" {
		t.Fatalf("publication date should fall back to dataInclusao, got %q", second.DataPublicacao)
	}
	if second.LinkPNCP != nil {
		t.Fatalf("link requires entity cnpj, year and sequence")
	}
	if second.Orgao != "" || second.DataAbertura != nil {
		t.Fatalf("missing optional fields must stay empty: %+v", second)
	}
}

func TestFetchPageClampsPageSize(t *testing.T) {
	cases := []struct {
		requested int
		want      string
	}{
		{requested: 5, want: "10"},
		{requested: 0, want: "10"},
		{requested: 30, want: "30"},
		{requested: 1000, want: "50"},
	}
	for _, tc := range cases {
		var got string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			got = r.URL.Query().Get("tamanhoPagina")
			w.WriteHeader(http.StatusNoContent)
		}, time.Second)

		q := baseQuery()
		q.TamanhoPagina = tc.requested
		if _, err := client.FetchPage(context.Background(), q); err != nil {
			t.Fatalf("requested=%d: unexpected error: %v", tc.requested, err)
		}
		if got != tc.want {
			t.Fatalf("requested=%d: got=%s want=%s", tc.requested, got, tc.want)
		}
	}
}

func TestFetchPageNoContentIsEmptyPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, time.Second)

	res, err := client.FetchPage(context.Background(), baseQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Licitacoes == nil || len(res.Licitacoes) != 0 || res.TotalRegistros != 0 {
		t.Fatalf("expected empty non-nil page, got %+v", res)
	}
}

func TestFetchPageUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("data inválida"))
	}, time.Second)

	_, err := client.FetchPage(context.Background(), baseQuery())
	var ue *upstream.Error
	if !errors.As(err, &ue) {
		t.Fatalf("expected *upstream.Error, got %T: %v", err, err)
	}
	if ue.Status != http.StatusBadRequest || ue.Body != "data inválida" {
		t.Fatalf("unexpected upstream error: %+v", ue)
	}
}

func TestFetchPageTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)

	_, err := client.FetchPage(context.Background(), baseQuery())
	var te *upstream.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected *upstream.TimeoutError, got %T: %v", err, err)
	}
}

func TestFetchPageRequiresModality(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	}, time.Second)

	q := baseQuery()
	q.Modalidade = ""
	if _, err := client.FetchPage(context.Background(), q); !errors.Is(err, ErrModalityRequired) {
		t.Fatalf("expected ErrModalityRequired, got %v", err)
	}
}
