package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/simulation"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		SimulationSvc *simulation.Service
		Issuer        *simulation.Issuer
		BlobStore     core.BlobStore
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts       *Options
		app        *echo.Echo
		jwtConfig  middleware.JWTConfig
		validate   *validator.Validate
		translator ut.Translator
		shutdownCh chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	validate, translator := core.NewValidator()
	s := &server{
		opts:       opts,
		app:        echo.New(),
		jwtConfig:  newAppJWTConfig(opts.Conf),
		validate:   validate,
		translator: translator,
		shutdownCh: make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.jwtConfig)

	registerSimulationAPI(v1, jwt, s.opts.SimulationSvc, s.opts.Issuer, s.opts.BlobStore, s.validate, s.translator)
}

func (s *server) Start() {
	go func() {
		<-s.shutdownCh
		_ = s.Stop(context.Background())
	}()
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Host + ":" + s.opts.Conf.Server.Port))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) signalShutdown() {
	select {
	case s.shutdownCh <- struct{}{}:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Worksim API!")
}
