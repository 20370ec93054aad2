package http

import (
	"crypto/subtle"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"noti/internal/core"
)

// dashboardData feeds the main dashboard template.
type dashboardData struct {
	Filter       string
	TotalAmount  int64
	Count        int
	Sources      core.SourceBreakdown
	Daily        []core.DailyPoint
	Transactions []core.Transaction
	Now          time.Time
}

const recentLimit = 20

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessions.verify(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, "login.html", map[string]string{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form")
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.opts.AdminEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.opts.AdminPassword)) == 1
	if !emailOK || !passwordOK {
		slog.WarnContext(r.Context(), "Rejected login attempt", "email", email)
		s.render(w, "login.html", map[string]string{"Error": "Invalid credentials"})
		return
	}

	s.sessions.issue(w, email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	switch filter {
	case "today", "week", "month", "all":
	default:
		filter = "week"
	}

	now := time.Now()
	cutoff := core.FilterCutoff(filter, now, s.opts.Location)
	txs, err := s.lister.ListBetween(r.Context(), cutoff, time.Time{})
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	recent := txs
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	s.render(w, "dashboard.html", dashboardData{
		Filter:       filter,
		TotalAmount:  core.TotalAmount(txs),
		Count:        len(txs),
		Sources:      core.SourceTotals(txs),
		Daily:        core.DailyTotals(txs, s.opts.Location),
		Transactions: recent,
		Now:          now.In(s.opts.Location),
	})
}

// handleStatsPartial renders the aggregate overview fragment that the
// dashboard polls every ten seconds.
func (s *Server) handleStatsPartial(w http.ResponseWriter, r *http.Request) {
	stats, err := s.getStatistics(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to fetch statistics", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}
	s.render(w, "stats_overview.html", stats)
}

// templateFuncs exposes the formatting helpers used by the dashboard
// templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"vnd":      formatVND,
		"datetime": func(t time.Time) string { return t.Format("02/01/2006 15:04") },
		"pct": func(p *float64) string {
			if p == nil {
				return "n/a"
			}
			return fmt.Sprintf("%+.1f%%", *p)
		},
	}
}

// formatVND renders an amount with dot thousand separators, the way
// Vietnamese banking apps print it.
func formatVND(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + " ₫"
	if neg {
		out = "-" + out
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if s.templates == nil {
		writeError(w, http.StatusInternalServerError, "Templates unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("Failed rendering template", "template", name, "error", err)
	}
}
