// Package status exposes a small HTTP surface for operating the bot:
// health, scheduled-job state and prometheus metrics.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/kosmatov/palbot/sched"
)

// Jobs reports the currently scheduled jobs.
type Jobs interface {
	Statuses() []sched.JobStatus
}

// Installed reports whether the job registrar finished setup.
type Installed interface {
	Installed() bool
}

type Server struct {
	e    *echo.Echo
	addr string
}

type healthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

type jobsResponse struct {
	Installed bool              `json:"installed"`
	Jobs      []sched.JobStatus `json:"jobs"`
}

func New(addr string, jobs Jobs, reg Installed) *Server {
	e := echo.New()
	e.HideBanner = true

	meter := otel.Meter("palbot.status")
	requestCounter, err := meter.Int64Counter(
		"palbot.http.request_total",
		metric.WithDescription("total number of HTTP requests"),
	)
	if err != nil {
		slog.Error("failed to create request counter", "error", err)
	}

	e.Use(otelecho.Middleware("palbot-status"))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if requestCounter != nil {
				requestCounter.Add(c.Request().Context(), 1)
			}
			return next(c)
		}
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "ok", Time: time.Now()})
	})
	e.GET("/jobs", func(c echo.Context) error {
		return c.JSON(http.StatusOK, jobsResponse{
			Installed: reg.Installed(),
			Jobs:      jobs.Statuses(),
		})
	})
	e.GET("/metric", echo.WrapHandler(promhttp.Handler()))

	return &Server{e: e, addr: addr}
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		slog.Info("shutdown status server...")
		if err := s.e.Shutdown(context.Background()); err != nil {
			slog.Error("status server shutdown", "error", err)
		}
	}()

	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
