package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/orchestrator"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve community data over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env.Orchestrator),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the HTTP API over an orchestrator.
func newRouter(o *orchestrator.Orchestrator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSONStatus(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/community/{zip}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query()
			cr := community.Request{
				Zip:            chi.URLParam(req, "zip"),
				Audience:       q.Get("audience"),
				ServiceAreas:   q["service_area"],
				PreferredCity:  q.Get("city"),
				PreferredState: q.Get("state"),
				Options: community.Options{
					Categories:   splitParam(q.Get("categories")),
					ForceRefresh: parseBool(q.Get("force")),
				},
			}
			if !validZip(cr.Zip) {
				writeError(w, http.StatusBadRequest, "zip must be 5 digits")
				return
			}

			data, err := o.ByZipAndAudience(req.Context(), cr)
			if err != nil {
				zap.L().Warn("community request failed", zap.String("zip", cr.Zip), zap.Error(err))
				writeError(w, http.StatusBadGateway, "community providers unavailable")
				return
			}
			if data == nil {
				writeError(w, http.StatusNotFound, "no community data for zip")
				return
			}
			writeJSONStatus(w, http.StatusOK, data)
		})

		r.Get("/context", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query()
			params := orchestrator.ContextParams{
				UserID:         q.Get("user"),
				Zip:            chi.URLParam(req, "zip"),
				Audience:       q.Get("audience"),
				ServiceAreas:   q["service_area"],
				PreferredCity:  q.Get("city"),
				PreferredState: q.Get("state"),
				Categories:     splitParam(q.Get("categories")),
			}
			if !validZip(params.Zip) {
				writeError(w, http.StatusBadRequest, "zip must be 5 digits")
				return
			}

			cc, err := o.ContentContext(req.Context(), params)
			if err != nil {
				writeError(w, http.StatusBadGateway, "community providers unavailable")
				return
			}
			writeJSONStatus(w, http.StatusOK, cc)
		})
	})

	return r
}

func validZip(zip string) bool {
	if len(zip) != 5 {
		return false
	}
	for _, c := range zip {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func splitParam(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONStatus(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
