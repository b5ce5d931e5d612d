package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightinfo/api"
	"github.com/Domenick1991/flightinfo/config"
	"github.com/Domenick1991/flightinfo/internal/flightjson"
	"github.com/Domenick1991/flightinfo/internal/logging"
	"github.com/Domenick1991/flightinfo/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the name the flight API reports under in grpc.health.v1.
const HealthService = "flightinfo.Flights"

const swaggerSpecPath = "/swagger-docs/flights.swagger.json"

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	healthConn *grpc.ClientConn
	httpServer *http.Server
}

// Run starts the gRPC health server and the HTTP API and blocks until ctx is
// canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, codec *flightjson.Codec, logger logr.Logger) error {
	s, err := newServers(cfg, flightSvc, codec, logger)
	if err != nil {
		return err
	}
	defer s.healthConn.Close()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("Serving", "http", cfg.HTTP.Address, "grpc", cfg.GRPC.Address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, flightSvc flights.FlightUseCase, codec *flightjson.Codec, logger logr.Logger) (*Servers, error) {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)

	conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC health: %w", err)
	}

	router := NewRouter(cfg, flightSvc, codec, healthpb.NewHealthClient(conn), logger)

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		healthConn: conn,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// NewRouter wires the flight API, metrics, health and API docs. Request
// bodies are decoded with codec.
func NewRouter(cfg *config.Config, flightSvc flights.FlightUseCase, codec *flightjson.Codec, healthClient healthpb.HealthClient, logger logr.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	api.NewFlightHandler(flightSvc, codec).Register(router.Group("/flights"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if healthClient != nil {
		gateway := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthClient))
		router.GET("/healthz", gin.WrapH(gateway))
	}

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger-docs", cfg.HTTP.SwaggerDir)
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerSpecPath))))
	}

	return router
}

// requestLogger attaches a request-scoped logger to the request context and
// logs the request once it has been served.
func requestLogger(logger logr.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.WithValues("method", c.Request.Method, "path", c.FullPath())
		c.Request = c.Request.WithContext(logr.NewContext(c.Request.Context(), reqLogger))

		c.Next()

		logging.FromContext(c.Request.Context(), logger).V(logging.VERBOSE).Info("HTTP request",
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
