package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/etnz/folio/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// snapshot returns the latest report, or answers the error.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*folio.Report, bool) {
	if s.cfg.Reports != nil {
		report, updated, err := s.cfg.Reports()
		if report != nil {
			if err != nil {
				s.log.Warn().Err(err).Time("updated", updated).Msg("serving a stale report")
			}
			w.Header().Set("Last-Modified", updated.UTC().Format(http.TimeFormat))
			return report, true
		}
	}
	report, _, err := store.Snapshot(r.Context(), s.cfg.Store, s.cfg.Now())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return nil, false
	}
	return report, true
}

// handleReport answers the report as JSON, or rendered with ?format=markdown|html.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		s.writeJSON(w, http.StatusOK, report)
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(renderer.RenderReport(report, s.cfg.Currency)))
	case "html":
		page, err := renderer.HTMLPage("Portfolio Report", renderer.RenderReport(report, s.cfg.Currency))
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	default:
		s.writeError(w, http.StatusBadRequest, errors.New("unsupported format "+format))
	}
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	report, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"positions": report.Positions,
		"summary":   report.Summary,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.cfg.Store.Transactions(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	if txs == nil {
		txs = []folio.Transaction{}
	}
	folio.SortTransactions(txs)
	s.writeJSON(w, http.StatusOK, txs)
}

// handleAppend records a transaction. The id is generated when missing.
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	var tx folio.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(tx.ID) == "" {
		tx.ID = uuid.NewString()
	}
	tx, err := tx.Validate()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.cfg.Store.Append(r.Context(), tx); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.log.Info().Str("id", tx.ID).Str("symbol", tx.Symbol).Str("side", string(tx.Side)).Msg("transaction added")
	s.cfg.OnChange()
	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.cfg.Store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.log.Info().Str("id", id).Msg("transaction removed")
	s.cfg.OnChange()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if s.cfg.News == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("news are not configured"))
		return
	}
	symbol := folio.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("symbol is missing"))
		return
	}
	items, err := s.cfg.News.Lookup(r.Context(), symbol)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "items": items})
}

func (s *Server) handleCommentary(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Commentary == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("commentary is not configured"))
		return
	}
	report, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	text, err := s.cfg.Commentary.Commentary(r.Context(), report.Summary, report.Positions)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"commentary": text})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("could not encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
