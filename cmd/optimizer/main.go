package main

import (
	"context"
	"flag"

	"reskflow-route-optimizer/pkg/http"
	"reskflow-route-optimizer/pkg/http/router/controllers"
	"reskflow-route-optimizer/pkg/http/usecases"
	"reskflow-route-optimizer/pkg/logger"
	"reskflow-route-optimizer/pkg/optimizer"
	"reskflow-route-optimizer/pkg/provider"
	"reskflow-route-optimizer/pkg/segmentcache"
	"reskflow-route-optimizer/pkg/util"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	useRateLimit  = flag.Bool("rate_limit", false, "enable per-client rate limiting")
	fallbackSpeed = flag.Float64("fallback_speed_kmh", 40.0, "assumed driving speed for the static mapping provider")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		logger.Warn("config file not found, using defaults", zap.Error(err))
	}

	viper.SetDefault("GOOGLE_MAPS_API_KEY", "")
	viper.SetDefault("SEGMENT_CACHE_BACKEND", "memory")
	viper.SetDefault("SEGMENT_CACHE_TTL", "1h")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")

	var mapping segmentcache.MappingProvider
	var traffic optimizer.TrafficProvider

	apiKey := viper.GetString("GOOGLE_MAPS_API_KEY")
	if apiKey != "" {
		gm, err := provider.NewGoogleMaps(apiKey, logger)
		if err != nil {
			panic(err)
		}
		mapping = gm
		traffic = gm
	} else {
		logger.Warn("no google maps api key configured, using haversine estimates")
		static := provider.NewStatic(*fallbackSpeed)
		mapping = static
		traffic = static
	}

	ttl := viper.GetDuration("SEGMENT_CACHE_TTL")

	var cache segmentcache.SegmentCache
	if viper.GetString("SEGMENT_CACHE_BACKEND") == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
		})
		cache = segmentcache.NewRedisCache(rdb, mapping, ttl, logger)
	} else {
		cache = segmentcache.NewMemoryCache(mapping, ttl, logger)
	}

	routeOptimizer := optimizer.NewOptimizer(cache, traffic, 0, logger)
	routes := optimizer.NewRouteStore()
	obligations := optimizer.NewInMemoryObligationStore()

	controller := optimizer.NewController(routeOptimizer, routes, obligations, logger)
	suggestions := optimizer.NewSuggestionService(obligations, routes, logger)

	api := http.NewServer(logger)

	optimizerService := usecases.NewOptimizerService(logger, controller, suggestions, routes)
	hub := controllers.NewHub(optimizerService, logger)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	dispatcher := optimizer.NewDispatcher(hub, logger)
	go dispatcher.Run(ctx, controller.Events())

	api.Use(ctx, logger, *useRateLimit, optimizerService, hub)

	signal := http.GracefulShutdown()

	logger.Info("Delivery Route Optimizer Server Stopped", zap.String("signal", signal.String()))
	cleanup()
	controller.Close()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
