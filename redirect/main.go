package main

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/thgossler/MyAzUrlShortener/redirect/negcache"
	"github.com/thgossler/MyAzUrlShortener/redirect/repo"
	"github.com/thgossler/MyAzUrlShortener/redirect/resolver"
	"github.com/thgossler/MyAzUrlShortener/redirect/util"
	"github.com/thgossler/MyAzUrlShortener/shared"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var logger *shared.Logger
var cfg *shared.Config
var tableClient *shared.TableClient
var rabbitmq *shared.RabbitMQ
var urlResolver *resolver.Resolver
var metrics *shared.Metrics
var requestPerSecond *prometheus.CounterVec
var TwoXXStatusCode *prometheus.GaugeVec
var FourXXStatusCode *prometheus.GaugeVec
var FiveXXStatusCode *prometheus.GaugeVec
var tracer *shared.Tracer

func init() {
	logger = shared.NewLogger("redirect.log", 3, 1024, "info", "redirect")
	logger.Init()

	cfg = shared.LoadConfig()

	// Init metrics
	metrics = shared.NewMetrics()
	requestPerSecond = metrics.RegisterCounter("request_per_second", "Request per second", []string{"method", "path"})
	TwoXXStatusCode = metrics.RegisterGauge("status_code_2xx", "2xx status code", []string{"method", "path", "code"})
	FourXXStatusCode = metrics.RegisterGauge("status_code_4xx", "4xx status code", []string{"method", "path", "code"})
	FiveXXStatusCode = metrics.RegisterGauge("status_code_5xx", "5xx status code", []string{"method", "path", "code"})

	// Init tracer
	tracer = shared.NewTracer("redirect", "")
	tracer.Init()
}

func RequestPerSecondMiddleware(c *fiber.Ctx) error {
	metrics.IncCounter(requestPerSecond, c.Method(), c.Path())
	return c.Next()
}

func ResponseStatusCodeMiddleware(c *fiber.Ctx) error {
	c.Next()
	statusCode := c.Response().StatusCode()
	if statusCode >= 200 && statusCode < 300 {
		metrics.IncGauge(TwoXXStatusCode, c.Method(), c.Path(), strconv.Itoa(statusCode))
	}

	if statusCode >= 400 && statusCode < 500 {
		metrics.IncGauge(FourXXStatusCode, c.Method(), c.Path(), strconv.Itoa(statusCode))
	}

	if statusCode >= 500 {
		metrics.IncGauge(FiveXXStatusCode, c.Method(), c.Path(), strconv.Itoa(statusCode))
	}

	return nil
}

func metricsHandler(c *fiber.Ctx) error {
	collected, err := metrics.GetPrometheusMetrics()
	if err != nil {
		return c.Status(500).SendString("Failed to collect metrics")
	}
	return c.Type("text/plain").SendString(collected)
}

func newRedirectHandler(res *resolver.Resolver, storeTimeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, redirectSpan := tracer.StartSpan("RedirectHandler", c.UserContext(), trace.WithSpanKind(trace.SpanKindServer))
		defer redirectSpan.End()

		code := c.Params("code")
		logger.Info("Redirect request", zap.String("method", c.Method()), zap.String("path", c.Path()), zap.String("code", code))

		lookupCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()

		destination, err := res.Resolve(lookupCtx, code)
		if errors.Is(err, resolver.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).Send(nil)
		}

		return c.Redirect(destination, fiber.StatusFound)
	}
}

func onGratefulShutDown() {
	logger.Info("Shutting down...")
	urlResolver.Close()
	rabbitmq.Close()
	tableClient.Close()
}

func main() {
	// Init record store
	tableClient = shared.NewTableClient(shared.RedisDefaultConfig())
	if err := tableClient.Connect(); err != nil {
		logger.Error("Cannot connect to record store", zap.Error(err))
	}

	// Init rabbitmq
	rabbitmq = shared.NewRabbitMQ("")
	if err := rabbitmq.Connect(1 * time.Second); err != nil {
		logger.Error("Cannot connect to rabbitmq", zap.Error(err))
	}

	linkRepo := repo.NewLinkRepo(tableClient, rabbitmq, cfg.ClickQueue)
	negCache := negcache.New(cfg.NegCacheTTL, cfg.NegCacheBudget, cfg.NegCacheSweep)
	urlResolver = resolver.New(linkRepo, negCache, logger, resolver.Options{
		DefaultRedirectUrl: cfg.DefaultRedirectUrl,
	})

	if !util.VerifyUrlExists(util.GetHttpClient(), cfg.DefaultRedirectUrl) {
		logger.Warn("Default redirect url is not reachable", zap.String("url", cfg.DefaultRedirectUrl))
	}

	logger.Info("Init done!!!")

	redirectService := shared.NewHttpService("redirect", cfg.Port, false)
	redirectService.Init()

	redirectService.Use(RequestPerSecondMiddleware)
	redirectService.Use(ResponseStatusCodeMiddleware)

	redirectService.Routes("/metrics", metricsHandler, "GET")
	redirectService.Routes("/:code?", newRedirectHandler(urlResolver, cfg.StoreTimeout), "GET")

	if err := redirectService.Start(onGratefulShutDown); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}
