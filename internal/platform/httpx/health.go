package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// Health reports the state of the dependencies behind the service.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler runs every check concurrently within timeout and answers 200
// when all pass, 503 otherwise. Optional checks degrade without failing.
func HealthHandler(required, optional map[string]Check, timeout time.Duration, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		names := make([]string, 0, len(required)+len(optional))
		for name := range required {
			names = append(names, name)
		}
		for name := range optional {
			names = append(names, name)
		}
		sort.Strings(names)

		errs := make([]error, len(names))
		var g errgroup.Group
		for i, name := range names {
			check := required[name]
			if check == nil {
				check = optional[name]
			}
			g.Go(func() error {
				errs[i] = check(ctx)
				return nil
			})
		}
		_ = g.Wait()

		out := Health{Status: "ok", Checks: make(map[string]string, len(names))}
		for i, name := range names {
			if errs[i] == nil {
				out.Checks[name] = "ok"
				continue
			}
			out.Checks[name] = errs[i].Error()
			if _, isRequired := required[name]; isRequired {
				out.Status = "unavailable"
			} else if out.Status == "ok" {
				out.Status = "degraded"
			}
			logger.Warn("health check failed", slog.String("check", name), slog.Any("error", errs[i]))
		}
		status := http.StatusOK
		if out.Status == "unavailable" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, out)
	})
}
