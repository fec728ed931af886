package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/docs"
	"github.com/vikram583135/platepal2.o-sub000/internal/backend"
	"github.com/vikram583135/platepal2.o-sub000/internal/cart"
	"github.com/vikram583135/platepal2.o-sub000/internal/checkout"
	"github.com/vikram583135/platepal2.o-sub000/internal/metrics"
	"github.com/vikram583135/platepal2.o-sub000/internal/queue"
	"github.com/vikram583135/platepal2.o-sub000/internal/ratelimiter"
	"github.com/vikram583135/platepal2.o-sub000/internal/realtime"
	"github.com/vikram583135/platepal2.o-sub000/internal/retry"
	"github.com/vikram583135/platepal2.o-sub000/internal/service"
	"github.com/vikram583135/platepal2.o-sub000/internal/worker"
)

type healthCheck func(ctx context.Context) error

type closer func(ctx context.Context) error

type application struct {
	config       config
	logger       *zap.SugaredLogger
	rateLimiter  ratelimiter.Limiter
	broker       queue.Broker
	carts        *cart.Registry
	checkouts    *checkout.Registry
	orders       *service.OrderService
	eventWorker  *worker.RealtimeEventWorker
	wsListener   *realtime.WSListener
	healthChecks map[string]healthCheck
	closers      map[string]closer
}

type config struct {
	addr         string
	env          string
	apiURL       string
	rateLimiter  ratelimiter.Config
	cartStore    string
	viewCache    string
	queue        string
	mongo        mongoConfig
	redis        redisConfig
	rabbitMQ     rabbitMQConfig
	backend      backendConfig
	realtime     realtimeConfig
	viewTTL      time.Duration
	sessionIdle  time.Duration
	writeTimeout time.Duration
	hydration    retry.Policy
}

type mongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
	CartTTL  time.Duration
}

type redisConfig struct {
	Addr     string
	Password string
	DB       int
}

type rabbitMQConfig struct {
	URL           string
	MaxRetries    int
	RetryDelay    time.Duration
	PrefetchCount int
}

type backendConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

type realtimeConfig struct {
	Surface string
	WSURL   string
	Token   string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Handle("/metrics", metrics.Handler())

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.Group(func(r chi.Router) {
			r.Use(app.sessionMiddleware)
			r.Use(app.rateLimiterMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", app.getCartHandler)
				r.Delete("/", app.clearCartHandler)
				r.Post("/items", app.addCartItemHandler)
				r.Patch("/items/{item_id}", app.updateCartItemHandler)
				r.Delete("/items/{item_id}", app.removeCartItemHandler)
			})

			r.Post("/checkout", app.submitCheckoutHandler)
			r.Post("/checkout/validate", app.validateCheckoutHandler)

			r.Get("/orders/{order_id}", app.getOrderHandler)
		})
	})

	return r
}

// writeSlack covers handler work around the backend calls of a checkout.
const writeSlack = 5 * time.Second

// checkoutBudget is the longest POST /checkout can run: the hydration gate
// followed by order creation, intent creation and confirmation, each bounded
// by the backend timeout.
func (app *application) checkoutBudget() time.Duration {
	perCall := app.config.backend.Timeout
	if perCall <= 0 {
		perCall = backend.DefaultTimeout
	}

	budget := 3 * perCall
	for attempt := 1; attempt < app.config.hydration.MaxAttempts; attempt++ {
		budget += app.config.hydration.Delay(attempt)
	}
	return budget
}

// writeTimeout is the configured timeout raised to the checkout budget.
func (app *application) writeTimeout() time.Duration {
	wt := app.config.writeTimeout
	if floor := app.checkoutBudget() + writeSlack; wt < floor {
		wt = floor
	}
	return wt
}

func (app *application) server(mux http.Handler) *http.Server {
	return &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: app.writeTimeout(),
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}
}

func (app *application) run(mux http.Handler) error {
	// docs
	docs.SwaggerInfo.Title = "Checkout BFF"
	docs.SwaggerInfo.Description = "Cart, checkout and order views for the customer front end"
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/api/v1"

	// workers
	if app.eventWorker != nil {
		if err := app.eventWorker.Start(); err != nil {
			return fmt.Errorf("failed to start realtime event worker: %w", err)
		}
	}

	listenerCtx, stopListener := context.WithCancel(context.Background())
	defer stopListener()
	if app.wsListener != nil {
		go func() {
			if err := app.wsListener.Run(listenerCtx); err != nil {
				app.logger.Errorw("realtime listener stopped", "error", err)
			}
		}()
	}

	srv := app.server(mux)

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		stopListener()
		if app.eventWorker != nil {
			app.eventWorker.Stop()
		}

		for name, closeFn := range app.closers {
			if err := closeFn(ctx); err != nil {
				app.logger.Errorw("error closing connection", "service", name, "error", err)
			} else {
				app.logger.Infow("connection closed gracefully", "service", name)
			}
		}

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server have started", "addr", app.config.addr, "env", app.config.env, "write_timeout", srv.WriteTimeout)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
