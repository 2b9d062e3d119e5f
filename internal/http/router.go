package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/licitabrasil/internal/http/middleware"
)

type RouterOptions struct {
	Environment    string
	AllowedOrigins []string
	Auth           gin.HandlerFunc
	GeneralLimit   gin.HandlerFunc
	AuthLimit      gin.HandlerFunc
	Log            zerolog.Logger
}

func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	switch strings.ToLower(opts.Environment) {
	case "production", "prod":
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(opts.Log),
		middleware.SecurityHeaders(),
		middleware.CORS(opts.AllowedOrigins),
	)

	api := router.Group("/api")
	if opts.GeneralLimit != nil {
		api.Use(opts.GeneralLimit)
	}
	authLimit := opts.AuthLimit
	if authLimit == nil {
		authLimit = func(c *gin.Context) { c.Next() }
	}
	handler.Register(api, opts.Auth, authLimit)
	return router
}
