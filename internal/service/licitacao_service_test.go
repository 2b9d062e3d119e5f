package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitabrasil/internal/model"
	"github.com/nurpe/licitabrasil/internal/upstream"
)

type fakeRegistry struct {
	mu      sync.Mutex
	results map[string]*model.PartialResult
	errs    map[string]error
	calls   []model.RegistryQuery
	block   bool
}

func (f *fakeRegistry) FetchPage(ctx context.Context, q model.RegistryQuery) (*model.PartialResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err, ok := f.errs[q.Modalidade]; ok {
		return nil, err
	}
	if res, ok := f.results[q.Modalidade]; ok {
		return res, nil
	}
	return &model.PartialResult{Licitacoes: []model.Licitacao{}}, nil
}

func (f *fakeRegistry) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func records(prefix string, n int, start time.Time) []model.Licitacao {
	out := make([]model.Licitacao, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Licitacao{
			NumeroControlePNCP: fmt.Sprintf("%s-%d", prefix, i),
			DataPublicacao:     start.Add(time.Duration(i) * 7 * time.Hour).Format("2006-01-02T15:04:05"),
		})
	}
	return out
}

func aggregatedQuery() model.Query {
	return model.Query{
		UF:            "SP",
		DataInicial:   "20240101",
		DataFinal:     "20240131",
		Pagina:        1,
		TamanhoPagina: 20,
	}
}

func newService(reg RegistryClient) *LicitacaoService {
	return NewLicitacaoService(reg, nil, zerolog.Nop())
}

func TestSearchSingleModalityPassesMetadataThrough(t *testing.T) {
	reg := &fakeRegistry{results: map[string]*model.PartialResult{
		"6": {
			Licitacoes:     records("p", 3, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			TotalRegistros: 123,
			TotalPaginas:   3,
			NumeroPagina:   2,
		},
	}}
	q := aggregatedQuery()
	q.Modalidade = "6"
	q.Pagina = 2
	q.TamanhoPagina = 40

	res, err := newService(reg).Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ModoAgregado {
		t.Fatalf("single modality must not be flagged aggregated")
	}
	if res.TotalPaginas != 3 || res.TotalRegistros != 123 || res.NumeroPagina != 2 {
		t.Fatalf("metadata not passed through: %+v", res)
	}
	if len(res.Licitacoes) != 3 || res.Licitacoes[0].NumeroControlePNCP != "p-0" {
		t.Fatalf("records must be returned verbatim: %+v", res.Licitacoes)
	}
	if reg.callCount() != 1 {
		t.Fatalf("expected exactly one registry call, got %d", reg.callCount())
	}
	if reg.calls[0].TamanhoPagina != 40 || reg.calls[0].Modalidade != "6" || reg.calls[0].Pagina != 2 {
		t.Fatalf("caller page size must be preserved for the client clamp: %+v", reg.calls[0])
	}
}

func TestSearchSingleModalityPropagatesFailure(t *testing.T) {
	timeout := &upstream.TimeoutError{Service: "PNCP", After: 20 * time.Second}
	reg := &fakeRegistry{errs: map[string]error{"6": timeout}}
	q := aggregatedQuery()
	q.Modalidade = "6"

	res, err := newService(reg).Search(context.Background(), q)
	if res != nil {
		t.Fatalf("no payload may accompany a failure")
	}
	var te *upstream.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected timeout to propagate, got %v", err)
	}
	if reg.callCount() != 1 {
		t.Fatalf("no retry expected, got %d calls", reg.callCount())
	}
}

func TestSearchSingleModalityDefaultsMissingMetadata(t *testing.T) {
	reg := &fakeRegistry{results: map[string]*model.PartialResult{"6": {}}}
	q := aggregatedQuery()
	q.Modalidade = "6"
	q.Pagina = 4

	res, err := newService(reg).Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalPaginas != 1 || res.NumeroPagina != 4 || res.Licitacoes == nil {
		t.Fatalf("unexpected defaults: %+v", res)
	}
}

func TestSearchAggregatedPartialFailureScenario(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	reg := &fakeRegistry{
		results: map[string]*model.PartialResult{
			"6": {Licitacoes: records("six", 5, start), TotalRegistros: 50, TotalPaginas: 3},
			"1": {Licitacoes: records("one", 7, start.Add(time.Hour)), TotalRegistros: 70, TotalPaginas: 4},
		},
		errs: map[string]error{
			"5": &upstream.TimeoutError{Service: "PNCP", After: 20 * time.Second},
			"2": &upstream.TimeoutError{Service: "PNCP", After: 20 * time.Second},
		},
	}

	res, err := newService(reg).Search(context.Background(), aggregatedQuery())
	if err != nil {
		t.Fatalf("partial failures must not fail the request: %v", err)
	}
	if !res.ModoAgregado {
		t.Fatalf("expected aggregated flag")
	}
	if res.TotalRegistros != 120 {
		t.Fatalf("totalRegistros: got=%d want=120", res.TotalRegistros)
	}
	if len(res.Licitacoes) != 12 {
		t.Fatalf("records: got=%d want=12", len(res.Licitacoes))
	}
	if res.TotalPaginas != 4 {
		t.Fatalf("totalPaginas should be the max across partials, got %d", res.TotalPaginas)
	}
	if res.NumeroPagina != 1 {
		t.Fatalf("numeroPagina: got=%d", res.NumeroPagina)
	}
	assertSortedDesc(t, res.Licitacoes)
	if reg.callCount() != 4 {
		t.Fatalf("expected one call per default modality, got %d", reg.callCount())
	}
}

func TestSearchAggregatedAllFailedIsEmptyNotError(t *testing.T) {
	boom := &upstream.Error{Service: "PNCP", Status: 500}
	reg := &fakeRegistry{errs: map[string]error{"6": boom, "5": boom, "1": boom, "2": boom}}

	res, err := newService(reg).Search(context.Background(), aggregatedQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalRegistros != 0 || len(res.Licitacoes) != 0 || res.Licitacoes == nil {
		t.Fatalf("expected well-formed empty result, got %+v", res)
	}
	if res.TotalPaginas != 1 || !res.ModoAgregado {
		t.Fatalf("unexpected metadata: %+v", res)
	}
}

func TestSearchAggregatedTruncatesToClampedPageSize(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reg := &fakeRegistry{results: map[string]*model.PartialResult{
		"6": {Licitacoes: records("a", 20, start), TotalRegistros: 200},
		"5": {Licitacoes: records("b", 20, start), TotalRegistros: 200},
		"1": {Licitacoes: records("c", 20, start), TotalRegistros: 200},
		"2": {Licitacoes: records("d", 20, start), TotalRegistros: 200},
	}}

	cases := []struct {
		requested int
		want      int
	}{
		{requested: 5, want: 10},
		{requested: 15, want: 15},
		{requested: 1000, want: 20},
	}
	for _, tc := range cases {
		q := aggregatedQuery()
		q.TamanhoPagina = tc.requested
		res, err := newService(reg).Search(context.Background(), q)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Licitacoes) != tc.want {
			t.Fatalf("requested=%d: got %d records, want %d", tc.requested, len(res.Licitacoes), tc.want)
		}
		if res.TotalRegistros != 800 {
			t.Fatalf("totals must not be affected by truncation, got %d", res.TotalRegistros)
		}
	}

	for _, call := range reg.calls {
		if call.TamanhoPagina < 10 || call.TamanhoPagina > 20 {
			t.Fatalf("per-modality page size must be clamped to [10,20], got %d", call.TamanhoPagina)
		}
	}
}

func TestSearchAggregatedClampsZeroPageSize(t *testing.T) {
	reg := &fakeRegistry{}
	q := aggregatedQuery()
	q.TamanhoPagina = 0

	if _, err := newService(reg).Search(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.callCount() != len(DefaultModalities) {
		t.Fatalf("expected %d calls, got %d", len(DefaultModalities), reg.callCount())
	}
	for _, call := range reg.calls {
		if call.TamanhoPagina != 10 {
			t.Fatalf("page size 0 must clamp to 10, got %d", call.TamanhoPagina)
		}
	}
}

func TestSearchSingleModalityLeavesZeroPageSizeToClientClamp(t *testing.T) {
	reg := &fakeRegistry{}
	q := aggregatedQuery()
	q.Modalidade = "6"
	q.TamanhoPagina = 0

	if _, err := newService(reg).Search(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.calls[0].TamanhoPagina != 0 {
		t.Fatalf("explicit page size must not be replaced by the default, got %d", reg.calls[0].TamanhoPagina)
	}
}

func TestSearchAggregatedForwardsPageIndex(t *testing.T) {
	reg := &fakeRegistry{}
	q := aggregatedQuery()
	q.Pagina = 3

	res, err := newService(reg).Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NumeroPagina != 3 {
		t.Fatalf("numeroPagina: got=%d want=3", res.NumeroPagina)
	}
	for _, call := range reg.calls {
		if call.Pagina != 3 {
			t.Fatalf("every modality call must use the requested page, got %d", call.Pagina)
		}
	}
}

func TestSearchAggregatedIsIdempotent(t *testing.T) {
	same := "2024-01-10T10:00:00"
	reg := &fakeRegistry{results: map[string]*model.PartialResult{
		"6": {Licitacoes: []model.Licitacao{{NumeroControlePNCP: "six", DataPublicacao: same}}, TotalRegistros: 1},
		"5": {Licitacoes: []model.Licitacao{{NumeroControlePNCP: "five", DataPublicacao: same}}, TotalRegistros: 1},
		"1": {Licitacoes: []model.Licitacao{{NumeroControlePNCP: "one", DataPublicacao: same}}, TotalRegistros: 1},
		"2": {Licitacoes: []model.Licitacao{{NumeroControlePNCP: "two", DataPublicacao: same}}, TotalRegistros: 1},
	}}
	svc := newService(reg)

	var first []string
	for run := 0; run < 20; run++ {
		res, err := svc.Search(context.Background(), aggregatedQuery())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids := make([]string, 0, len(res.Licitacoes))
		for _, l := range res.Licitacoes {
			ids = append(ids, l.NumeroControlePNCP)
		}
		if first == nil {
			first = ids
			continue
		}
		if fmt.Sprint(ids) != fmt.Sprint(first) {
			t.Fatalf("run %d order differs: %v vs %v", run, ids, first)
		}
	}
	if fmt.Sprint(first) != "[six five one two]" {
		t.Fatalf("ties must keep modality order, got %v", first)
	}
}

func TestSearchAggregatedCancellationReachesAllCalls(t *testing.T) {
	reg := &fakeRegistry{block: true}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan *model.SearchResult, 1)
	go func() {
		res, _ := newService(reg).Search(ctx, aggregatedQuery())
		done <- res
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case res := <-done:
		if res == nil || len(res.Licitacoes) != 0 {
			t.Fatalf("expected empty aggregated result after cancellation, got %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("aggregation did not return after cancellation")
	}
}

func TestSearchValidation(t *testing.T) {
	reg := &fakeRegistry{}
	svc := newService(reg)

	cases := map[string]model.Query{
		"missing location": {DataInicial: "20240101", DataFinal: "20240131"},
		"missing start":    {UF: "SP", DataFinal: "20240131"},
		"missing end":      {UF: "SP", DataInicial: "20240101"},
		"negative page":    {UF: "SP", DataInicial: "20240101", DataFinal: "20240131", Pagina: -1},
	}
	for name, q := range cases {
		if _, err := svc.Search(context.Background(), q); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if reg.callCount() != 0 {
		t.Fatalf("validation failures must not reach the registry")
	}

	q := model.Query{MunicipioIBGE: "3509502", DataInicial: "20240131", DataFinal: "20240101"}
	if _, err := svc.Search(context.Background(), q); err != nil {
		t.Fatalf("municipality alone is a valid location and date order is not enforced: %v", err)
	}
}

func assertSortedDesc(t *testing.T, list []model.Licitacao) {
	t.Helper()
	for i := 1; i < len(list); i++ {
		prev, okPrev := parsePublication(list[i-1].DataPublicacao)
		cur, okCur := parsePublication(list[i].DataPublicacao)
		if okPrev && okCur && prev.Before(cur) {
			t.Fatalf("records %d and %d out of order: %s < %s", i-1, i, prev, cur)
		}
	}
}
