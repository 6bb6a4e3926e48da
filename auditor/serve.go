package auditor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkmetko/lighthouse/runstore"
)

// Handler builds the HTTP API:
//
//	GET  /health
//	POST /audits        {"url": "..."} → run
//	GET  /runs          ?limit=N → recent runs
//	GET  /runs/{run_id} → run
func (r *Runner) Handler() http.Handler {
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	mux.Post("/audits", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, 400, err)
			return
		}
		if err := validateAuditURL(body.URL); err != nil {
			writeError(w, 400, err)
			return
		}
		run, err := r.AuditURL(req.Context(), body.URL)
		if err != nil {
			r.logger.Error("auditor: audit failed", "url", body.URL, "error", err)
			writeError(w, 502, err)
			return
		}
		writeJSON(w, 200, run)
	})

	mux.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := r.ListRuns(req.Context(), queryInt(req, "limit", 50))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if runs == nil {
			runs = []*runstore.Run{}
		}
		writeJSON(w, 200, runs)
	})

	mux.Get("/runs/{run_id}", func(w http.ResponseWriter, req *http.Request) {
		run, err := r.GetRun(req.Context(), chi.URLParam(req, "run_id"))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if run == nil {
			writeJSON(w, 404, map[string]string{"error": "run not found"})
			return
		}
		writeJSON(w, 200, run)
	})

	return mux
}

// Serve runs the HTTP API until ctx is cancelled.
func (r *Runner) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              r.cfg.HTTPAddr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("auditor: http listening", "addr", r.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func validateAuditURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("url must be absolute http(s)")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
