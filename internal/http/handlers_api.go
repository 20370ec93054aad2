package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"noti/internal/core"
	"noti/internal/metrics"
)

// createTransactionRequest is the ingestion body posted by the mobile
// notification client.
type createTransactionRequest struct {
	Amount  int64  `json:"amount"`
	Source  string `json:"source"`
	RawText string `json:"rawText"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.IngestRejected.WithLabelValues("bad_json").Inc()
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Amount <= 0 || req.Source == "" {
		metrics.IngestRejected.WithLabelValues("missing_fields").Inc()
		writeError(w, http.StatusBadRequest, "Missing required fields: amount, source")
		return
	}

	stored, err := s.recorder.Record(r.Context(), core.Transaction{
		Amount:  req.Amount,
		Source:  core.Source(req.Source),
		RawText: req.RawText,
	})
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrMissingSource),
		errors.Is(err, core.ErrUnknownSource):
		metrics.IngestRejected.WithLabelValues("validation").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		// Store detail stays server-side; the caller gets a generic
		// message.
		slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	metrics.TransactionsIngested.WithLabelValues(req.Source).Inc()
	writeJSON(w, http.StatusCreated, map[string]core.Transaction{"transaction": stored})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeParam(r.URL.Query().Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate")
		return
	}
	to, err := parseTimeParam(r.URL.Query().Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate")
		return
	}

	txs, err := s.lister.ListBetween(r.Context(), from, to)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to fetch transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string][]core.Transaction{"transactions": txs})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.getStatistics(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to fetch statistics", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// getStatistics computes the 14-day bundle, serving a cached copy when
// one is fresh enough.
func (s *Server) getStatistics(r *http.Request) (core.Statistics, error) {
	const key = "statistics"

	metrics.StatisticsRequests.Inc()
	if stats, ok := s.statsCache.Get(key); ok {
		metrics.StatisticsCacheHits.Inc()
		return stats, nil
	}

	now := time.Now()
	txs, err := s.lister.ListBetween(r.Context(), now.Add(-core.StatsWindow), time.Time{})
	if err != nil {
		return core.Statistics{}, err
	}

	stats := core.ComputeStatistics(txs, now, s.opts.Location)
	s.statsCache.Set(key, stats)
	return stats, nil
}

// parseTimeParam accepts RFC 3339 timestamps or bare dates. An empty
// value means the bound is open.
func parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
