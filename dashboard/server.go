package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"time"

	"psxscreener/report"
	"psxscreener/valuation"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	SliderMin     = -100
	SliderMax     = 100
	DefaultMinPct = 0
)

var errBadMinimum = errors.New("min_discount must be a number")

// Server renders the table written by a build. The CSV is read on every
// request so a rebuild shows up without a restart.
type Server struct {
	csvPath string
	title   string
	log     zerolog.Logger
}

func NewServer(csvPath, title string, log zerolog.Logger) *Server {
	if title == "" {
		title = report.DefaultTitle
	}
	return &Server{csvPath: csvPath, title: title, log: log}
}

// Handler returns the routed, logged and compressed HTTP handler
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	router.HandleFunc("/api/rows", s.handleRows).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	access := s.log.With().Str("component", "http").Logger()
	return handlers.CompressHandler(handlers.LoggingHandler(access, router))
}

// ListenAndServe blocks until ctx is done or the listener fails
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Str("csv", s.csvPath).Msg("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) load() ([]valuation.Row, error) {
	return report.LoadCSV(s.csvPath)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := s.load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "no table yet: "+missingTableHint, http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("failed to load table")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Apply(rows, filter))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	// a malformed minimum falls back to the slider default
	filter, _ := parseFilter(r)

	data := pageData{
		Title:     s.title,
		Filter:    filter,
		SliderMin: SliderMin,
		SliderMax: SliderMax,
		Columns:   Columns,
	}

	rows, err := s.load()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data.Missing = missingTableHint
	case err != nil:
		s.log.Error().Err(err).Msg("failed to load table")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	default:
		for _, row := range Apply(rows, filter) {
			data.Rows = append(data.Rows, row.Cells())
		}
		data.Total = len(rows)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.log.Error().Err(err).Msg("failed to render dashboard")
	}
}

// parseFilter reads ?sector= and ?min_discount=. A missing minimum means the
// slider default.
func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{Sector: q.Get("sector"), MinDiscountPct: DefaultMinPct}

	raw := q.Get("min_discount")
	if raw == "" {
		return f, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return f, fmt.Errorf("%w, got %q", errBadMinimum, raw)
	}
	f.MinDiscountPct = v
	return f, nil
}
