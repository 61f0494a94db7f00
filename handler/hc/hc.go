package hc

import (
	"context"
	"net/http"
	"time"

	"safeprice/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/twitchtv/twirp"
)

// Checker reports whether a dependency is usable
type Checker func(ctx context.Context) error

// Handle handle hc request, /ready runs every checker
func Handle(ver string, checkers map[string]Checker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(ver))
	r.Handle("/ready", ready(checkers))
	return r
}

func handle(version string) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := time.Since(b).Truncate(time.Millisecond)
		render.JSON(w, render.H{
			"uptime":  uptime.String(),
			"version": version,
		})
	}
}

func ready(checkers map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := render.H{}
		for name, check := range checkers {
			if err := check(ctx); err != nil {
				render.Error(w, twirp.NewError(twirp.Unavailable, name+": "+err.Error()))
				return
			}

			status[name] = "ok"
		}

		render.JSON(w, status)
	}
}
