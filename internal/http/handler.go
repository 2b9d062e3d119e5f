package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/licitabrasil/internal/model"
	"github.com/nurpe/licitabrasil/internal/service"
	"github.com/nurpe/licitabrasil/internal/upstream"
)

type LicitacaoSearcher interface {
	Search(ctx context.Context, q model.Query) (*model.SearchResult, error)
}

type Exporter interface {
	Export(ctx context.Context, q model.Query, format string) (*service.ExportFile, error)
}

type Authenticator interface {
	Register(ctx context.Context, cnpj, password string) (*service.AuthResult, error)
	Login(ctx context.Context, cnpj, password string) (*service.AuthResult, error)
}

type CompanyFinder interface {
	Lookup(ctx context.Context, cnpj string) (*model.Company, error)
}

type MunicipalityLister interface {
	ListByUF(ctx context.Context, uf string) ([]model.Municipality, error)
}

type Services struct {
	Licitacoes   LicitacaoSearcher
	Export       Exporter
	Auth         Authenticator
	Companies    CompanyFinder
	Municipities MunicipalityLister
}

type Handler struct {
	svc Services
	log zerolog.Logger
	now func() time.Time
}

func NewHandler(svc Services, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log, now: time.Now}
}

// failure holds the messages an endpoint answers with when an upstream call
// times out or fails.
type failure struct {
	op      string
	timeout string
	failed  string
	detail  bool
}

var (
	searchFailure = failure{
		op:      "search licitacoes",
		timeout: "Timeout na API do PNCP.",
		failed:  "Erro ao buscar licitações.",
		detail:  true,
	}
	exportFailure = failure{
		op:      "export licitacoes",
		timeout: "Timeout na API do PNCP.",
		failed:  "Erro ao exportar licitações.",
	}
	companyFailure = failure{
		op:      "lookup cnpj",
		timeout: "Timeout ao consultar CNPJ.",
		failed:  "Erro ao consultar dados do CNPJ.",
	}
	municipalityFailure = failure{
		op:      "list municipios",
		timeout: "Timeout ao buscar municípios.",
		failed:  "Erro ao buscar municípios.",
		detail:  true,
	}
	authFailure = failure{
		op:     "auth",
		failed: "Erro interno. Tente novamente.",
	}
)

func (h *Handler) Register(api *gin.RouterGroup, authMiddleware, authLimiter gin.HandlerFunc) {
	api.GET("/health", h.health)
	api.GET("/modalidades", h.listModalidades)
	api.GET("/municipios/:uf", h.listMunicipios)

	authGroup := api.Group("/auth")
	authGroup.Use(authLimiter)
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)

	protected := api.Group("")
	protected.Use(authMiddleware)
	protected.GET("/cnpj/:cnpj", h.getCompany)
	protected.GET("/licitacoes", h.searchLicitacoes)
	protected.GET("/licitacoes/export", h.exportLicitacoes)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) listModalidades(c *gin.Context) {
	c.JSON(http.StatusOK, model.Modalidades)
}

func (h *Handler) listMunicipios(c *gin.Context) {
	list, err := h.svc.Municipities.ListByUF(c.Request.Context(), c.Param("uf"))
	if err != nil {
		h.handleError(c, err, municipalityFailure)
		return
	}
	c.JSON(http.StatusOK, list)
}

type credentialsRequest struct {
	CNPJ     string `json:"cnpj"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CNPJ e senha são obrigatórios."})
		return
	}
	result, err := h.svc.Auth.Register(c.Request.Context(), req.CNPJ, req.Password)
	if err != nil {
		h.handleError(c, err, authFailure)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":   result.Token,
		"cnpj":    result.CNPJ,
		"message": "Cadastro realizado com sucesso!",
	})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CNPJ e senha são obrigatórios."})
		return
	}
	result, err := h.svc.Auth.Login(c.Request.Context(), req.CNPJ, req.Password)
	if err != nil {
		h.handleError(c, err, authFailure)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": result.Token, "cnpj": result.CNPJ})
}

func (h *Handler) getCompany(c *gin.Context) {
	company, err := h.svc.Companies.Lookup(c.Request.Context(), c.Param("cnpj"))
	if err != nil {
		h.handleError(c, err, companyFailure)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Handler) searchLicitacoes(c *gin.Context) {
	q, err := parseSearchQuery(c)
	if err != nil {
		h.handleError(c, err, searchFailure)
		return
	}
	result, err := h.svc.Licitacoes.Search(c.Request.Context(), q)
	if err != nil {
		h.handleError(c, err, searchFailure)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) exportLicitacoes(c *gin.Context) {
	q, err := parseSearchQuery(c)
	if err != nil {
		h.handleError(c, err, exportFailure)
		return
	}
	file, err := h.svc.Export.Export(c.Request.Context(), q, c.Query("format"))
	if err != nil {
		h.handleError(c, err, exportFailure)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+file.Name+"\"")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func parseSearchQuery(c *gin.Context) (model.Query, error) {
	q := model.Query{
		UF:            c.Query("uf"),
		MunicipioIBGE: c.Query("codigoMunicipioIbge"),
		DataInicial:   c.Query("dataInicial"),
		DataFinal:     c.Query("dataFinal"),
		Modalidade:    c.Query("modalidade"),
		Pagina:        1,
		TamanhoPagina: service.DefaultPageSize,
	}
	if raw := strings.TrimSpace(c.Query("pagina")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, fmt.Errorf("%w: Página inválida.", service.ErrInvalidInput)
		}
		q.Pagina = page
	}
	if raw := strings.TrimSpace(c.Query("tamanhoPagina")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%w: Tamanho de página inválido.", service.ErrInvalidInput)
		}
		q.TamanhoPagina = size
	}
	return q, nil
}

func (h *Handler) handleError(c *gin.Context, err error, f failure) {
	var timeout *upstream.TimeoutError
	var upstreamErr *upstream.Error

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": publicMessage(err, service.ErrInvalidInput)})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": publicMessage(err, service.ErrUnauthorized)})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": publicMessage(err, service.ErrNotFound)})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": publicMessage(err, service.ErrConflict)})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": publicMessage(err, service.ErrRateLimited)})
	case errors.As(err, &timeout):
		h.log.Warn().Err(err).Str("op", f.op).Msg("upstream timeout")
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": f.timeout})
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads the answer
		c.Status(499)
	default:
		h.log.Error().Err(err).Str("op", f.op).Msg("request failed")
		msg := f.failed
		if f.detail && errors.As(err, &upstreamErr) {
			msg = fmt.Sprintf("%s %s %d", msg, upstreamErr.Service, upstreamErr.Status)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// publicMessage strips the sentinel prefix, leaving the user-facing text.
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}
