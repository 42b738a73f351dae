package main

import (
	"context"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerprom "github.com/uber/jaeger-lib/metrics/prometheus"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/clients/ledgerstore"
	"github.com/conveyr/conveyr-ci/pkg/clients/projectsource"
	"github.com/conveyr/conveyr-ci/pkg/clients/slackapi"
	"github.com/conveyr/conveyr-ci/pkg/services/reclaimer"
	"github.com/conveyr/conveyr-ci/pkg/services/registry"
	"github.com/conveyr/conveyr-ci/pkg/services/render"
)

var (
	version   string
	branch    string
	revision  string
	buildDate string
	goVersion = runtime.Version()
)

var (
	// flags
	prometheusMetricsAddress = kingpin.Flag("metrics-listen-address", "The address to listen on for Prometheus metrics requests.").Default(":9001").String()
	prometheusMetricsPath    = kingpin.Flag("metrics-path", "The path to listen for Prometheus metrics requests.").Default("/metrics").String()

	apiAddress = kingpin.Flag("api-listen-address", "The address to listen on for api HTTP requests.").Default(":5000").String()

	configFilePath = kingpin.Flag("config-file-path", "The path to the config file.").Envar("CONVEYR_CONFIG_FILE_PATH").Default("config.yaml").String()

	sweepOnStartup = kingpin.Flag("sweep-on-startup", "Clear the working files of all known project/branch targets at startup.").Envar("CONVEYR_SWEEP_ON_STARTUP").Bool()

	// prometheusInboundEventTotals is the prometheus timeline serie that keeps track of inbound events
	prometheusInboundEventTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conveyr_ci_inbound_event_totals",
			Help: "Total of inbound events.",
		},
		[]string{"event", "source"},
	)
)

func init() {
	// Metrics have to be registered to be exposed:
	prometheus.MustRegister(prometheusInboundEventTotals)
}

func main() {

	// parse command line parameters
	kingpin.Parse()

	// configure json logging
	initLogging()

	// configure opentracing with jaeger from the environment
	closer := initTracing()
	if closer != nil {
		defer closer.Close()
	}

	// define channels and waitgroup to gracefully shutdown the application
	sigs := make(chan os.Signal, 1)
	stop := make(chan struct{})
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	wg := &sync.WaitGroup{}

	// start prometheus
	go startPrometheus()

	// handle api requests
	srv := handleRequests(stop, wg)

	// wait for graceful shutdown to finish
	<-sigs
	log.Debug().Msg("Shutting down...")

	// shut down gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Graceful server shutdown failed")
	}

	log.Debug().Msg("Stopping goroutines...")
	close(stop)

	log.Debug().Msg("Awaiting waitgroup...")
	wg.Wait()

	log.Info().Msg("Server gracefully stopped")
}

func startPrometheus() {
	log.Debug().
		Str("port", *prometheusMetricsAddress).
		Str("path", *prometheusMetricsPath).
		Msg("Serving Prometheus metrics...")

	http.Handle(*prometheusMetricsPath, promhttp.Handler())

	if err := http.ListenAndServe(*prometheusMetricsAddress, nil); err != nil {
		log.Fatal().Err(err).Msg("Starting Prometheus listener failed")
	}
}

func initLogging() {

	// log as severity for stackdriver logging to recognize the level
	zerolog.LevelFieldName = "severity"

	// set some default fields added to all logs
	log.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("app", "conveyr-ci").
		Str("version", version).
		Logger()

	// use zerolog for any logs sent via standard log library
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	// log startup message
	log.Info().
		Str("branch", branch).
		Str("revision", revision).
		Str("buildDate", buildDate).
		Str("goVersion", goVersion).
		Msg("Starting conveyr-ci...")
}

func initTracing() io.Closer {

	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		log.Warn().Err(err).Msg("Failed reading jaeger config from environment")
		return nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "conveyr-ci"
	}

	closer, err := cfg.InitGlobalTracer(cfg.ServiceName, jaegercfg.Metrics(jaegerprom.New()))
	if err != nil {
		log.Warn().Err(err).Msg("Failed initializing jaeger tracer")
		return nil
	}

	return closer
}

func createRouter() *gin.Engine {

	// run gin in release mode and other defaults
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = log.Logger
	gin.DisableConsoleColor()

	// Creates a router without any middleware by default
	router := gin.New()

	// Logging middleware
	router.Use(ZeroLogMiddleware())

	// Tracing middleware
	router.Use(OpenTracingMiddleware())

	// Recovery middleware recovers from any panics and writes a 500 if there was one.
	router.Use(gin.Recovery())

	// Gzip middleware
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// liveness and readiness
	router.GET("/liveness", func(c *gin.Context) {
		c.String(200, "I'm alive!")
	})
	router.GET("/readiness", func(c *gin.Context) {
		c.String(200, "I'm ready!")
	})

	return router
}

func handleRequests(stopChannel <-chan struct{}, waitGroup *sync.WaitGroup) *http.Server {

	// read config from file
	configReader := api.NewConfigReader()
	config, err := configReader.ReadConfigFromFile(*configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msgf("Failed reading configuration from %v", *configFilePath)
	}

	// set up clients
	ledgerstoreClient := ledgerstore.NewClient(config)
	ledgerstoreClient = ledgerstore.NewTracingClient(ledgerstoreClient)
	ledgerstoreClient = ledgerstore.NewMetricsClient(ledgerstoreClient,
		api.NewRequestCounter("ledgerstore_client"),
		api.NewRequestHistogram("ledgerstore_client"))
	ledgerstoreClient = ledgerstore.NewLoggingClient(ledgerstoreClient)

	projectsourceClient := projectsource.NewClient(config)
	slackapiClient := slackapi.NewClient(config)

	// set up services
	registryService := registry.NewService(config, ledgerstoreClient)
	registryService = registry.NewTracingService(registryService)
	registryService = registry.NewMetricsService(registryService,
		api.NewRequestCounter("registry_service"),
		api.NewRequestHistogram("registry_service"))
	registryService = registry.NewLoggingService(registryService)

	renderService := render.NewService(config)
	renderService = render.NewTracingService(renderService)
	renderService = render.NewMetricsService(renderService,
		api.NewRequestCounter("render_service"),
		api.NewRequestHistogram("render_service"))
	renderService = render.NewLoggingService(renderService)

	reclaimerService := reclaimer.NewService(config, projectsourceClient)
	reclaimerService = reclaimer.NewTracingService(reclaimerService)
	reclaimerService = reclaimer.NewMetricsService(reclaimerService,
		api.NewRequestCounter("reclaimer_service"),
		api.NewRequestHistogram("reclaimer_service"))
	reclaimerService = reclaimer.NewLoggingService(reclaimerService)

	// watch the projects document for changes
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		projectsourceClient.WatchTargets(context.Background(), stopChannel, func() {
			prometheusInboundEventTotals.With(prometheus.Labels{"event": "targets-changed", "source": "projectsource"}).Inc()
		})
	}()

	// reclaim storage of all known targets before accepting new builds
	if *sweepOnStartup {
		if err := reclaimerService.SweepWorkspaces(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed sweeping workspaces at startup")
		}
	}

	// listen to http calls
	log.Debug().
		Str("port", *apiAddress).
		Msg("Serving api calls...")

	// create and init router
	router := createRouter()

	registryHandler := registry.NewHandler(config, registryService, renderService, reclaimerService, projectsourceClient, slackapiClient)

	router.POST("/api/builds", func(c *gin.Context) {
		prometheusInboundEventTotals.With(prometheus.Labels{"event": "build-finished", "source": "driver"}).Inc()
		registryHandler.ReportBuild(c)
	})
	router.GET("/api/projects", registryHandler.GetProjects)
	router.GET("/api/pipelines/:owner/:repo/:branch/builds", registryHandler.GetBuilds)
	router.GET("/api/pipelines/:owner/:repo/:branch/badge.svg", registryHandler.GetBadge)
	router.GET("/api/pipelines/:owner/:repo/:branch/page", registryHandler.GetStatusPage)

	// instantiate servers instead of using router.Run in order to handle graceful shutdown
	srv := &http.Server{
		Addr:           *apiAddress,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Starting gin router failed")
		}
	}()

	return srv
}
