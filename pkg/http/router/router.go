package router

import (
	"context"
	"fmt"
	"net/http"

	"reskflow-route-optimizer/pkg/http/router/controllers"
	router_helper "reskflow-route-optimizer/pkg/http/router/routerhelper"
	http_server "reskflow-route-optimizer/pkg/http/server"

	"github.com/gobwas/ws"
	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"

	_ "github.com/swaggo/http-swagger"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "net/http/pprof"
)

type API struct {
	log *zap.Logger
	hub *controllers.Hub
}

func NewAPI(log *zap.Logger, hub *controllers.Hub) *API {
	return &API{log: log, hub: hub}
}

//	@title			Delivery Route Optimizer API
//	@version		1.0
//	@description	Route optimization engine for reskflow drivers with live re-optimization.

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	log *zap.Logger,

	useRateLimit bool,
	optimizerService controllers.OptimizerService,
) error {
	log.Info("Run httprouter API")

	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore

	})

	router.GET("/doc/*any", swaggerHandler)

	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)

	router.GET("/ws", api.driverStream(ctx))

	group := router_helper.NewRouteGroup(router, "/api")

	optimizerRoutes := controllers.New(optimizerService, log)

	optimizerRoutes.Routes(group)

	var mwChain []alice.Constructor
	if useRateLimit {
		mwChain = append(mwChain, corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
			RealIP, Heartbeat("healthz"), Logger(log), Limit)
	} else {
		mwChain = append(mwChain, corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
			RealIP, Heartbeat("healthz"), Logger(log))
	}
	mainMwChain := alice.New(mwChain...).Then(router)

	srv := http_server.New(ctx, mainMwChain, config, false)
	log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		log.Info("HTTP server stopped", zap.Error(err))
		api.hub.RemoveAll()
		return err

	case <-ctx.Done():
		log.Info("Context canceled, shutting down server")
		api.hub.RemoveAll()
		_ = srv.Shutdown(context.Background())
		return ctx.Err()
	}
}

// driverStream upgrades the connection and serves location updates until the
// client hangs up.
func (api *API) driverStream(ctx context.Context) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			api.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		driver := api.hub.Register(conn)

		go func() {
			defer func() {
				api.hub.Remove(driver)
				conn.Close()
			}()
			for {
				if ctx.Err() != nil {
					return
				}
				if err := driver.HandleLocationUpdate(ctx); err != nil {
					return
				}
			}
		}()
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
