package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Profile    *handler.ProfileHandler
	Catalog    *handler.CatalogHandler
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	Address    *handler.AddressHandler
	AdminOrder *handler.AdminOrderHandler
}

type Options struct {
	ServiceName string
	JWTSecret   string
	Users       repository.UserRepository
	Logger      *slog.Logger
	// /metrics。nilなら登録しない
	Metrics http.Handler
	// /healthz でDB疎通を見る
	Ping func(ctx context.Context) error
}

// New はEchoを組み立ててルートを登録する。
func New(opts Options, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, opts.ServiceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}))
	e.Use(middleware.RequestLogger(opts.Logger))

	e.GET("/healthz", func(c echo.Context) error {
		if opts.Ping != nil {
			if err := opts.Ping(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, handler.ErrorResponse{Error: "db unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics))
	}

	h.Catalog.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e, opts.JWTSecret, opts.Users)
	h.Profile.RegisterRoutes(e, opts.JWTSecret, opts.Users)
	h.Cart.RegisterRoutes(e, opts.JWTSecret, opts.Users)
	h.Order.RegisterRoutes(e, opts.JWTSecret, opts.Users)
	h.Address.RegisterRoutes(e, opts.JWTSecret, opts.Users)
	h.AdminOrder.RegisterRoutes(e, opts.JWTSecret, opts.Users)

	return e
}

// Start はctxが終わるまで待ち受け、その後graceful shutdownする。
func Start(ctx context.Context, e *echo.Echo, addr string, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting api server", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
