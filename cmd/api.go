package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sovcrm/crm-cli/internal/config"
	"github.com/sovcrm/crm-cli/internal/fileio"
	"github.com/sovcrm/crm-cli/internal/model"
	"github.com/sovcrm/crm-cli/internal/reconcile"
	"github.com/sovcrm/crm-cli/internal/store"
)

// api serves the lead collection over HTTP. Imports are single-flight:
// reconciliation reads a snapshot and commits a replacement, so two
// concurrent imports against the same collection would race.
type api struct {
	st      store.Store
	importM sync.Mutex
	limiter *rate.Limiter
}

func newRouter(st store.Store, sc config.ServerConfig) http.Handler {
	a := &api{
		st:      st,
		limiter: rate.NewLimiter(rate.Limit(sc.ImportRPS), sc.ImportBurst),
	}

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: sc.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", a.ping)
		r.Get("/leads", a.listLeads)
		r.Post("/leads", a.createLead)
		r.Put("/leads/{id}", a.updateLead)
		r.Delete("/leads/{id}", a.deleteLead)
		r.Post("/leads/replace", a.replaceLeads)
		r.With(a.limitImport).Post("/leads/import", a.importLeads)
		r.Get("/audit", a.listAudit)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (a *api) limitImport(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "import rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *api) ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) listLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := a.st.ListLeads(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

func (a *api) createLead(w http.ResponseWriter, r *http.Request) {
	var raw reconcile.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, ok := reconcile.NormalizeRecord(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	lead = lead.WithoutImportMeta()
	lead.Phone = reconcile.SanitizePhone(reconcile.CanonicalPhone(lead.Phone), 30)

	if existing, err := a.st.GetLead(r.Context(), lead.ID); err == nil && existing != nil {
		writeError(w, http.StatusConflict, "lead id already exists")
		return
	}

	if err := a.st.CreateLead(r.Context(), lead); err != nil {
		serverError(w, err)
		return
	}
	a.audit(r.Context(), "create", lead.ID, "")
	writeJSON(w, http.StatusCreated, lead)
}

func (a *api) updateLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := a.st.GetLead(r.Context(), id)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		serverError(w, err)
		return
	}

	var body reconcile.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Partial update: fields absent from the body keep their stored values.
	raw := reconcile.FromLead(*existing)
	for k, v := range body {
		raw[k] = v
	}
	raw[model.FieldID] = id

	lead, ok := reconcile.NormalizeRecord(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	lead = lead.WithoutImportMeta()
	lead.Phone = reconcile.SanitizePhone(reconcile.CanonicalPhone(lead.Phone), 30)
	lead.CreatedAt = existing.CreatedAt
	lead.UpdatedAt = time.Now().UnixMilli()
	// Leaving the lost stage invalidates the recorded loss reason.
	if lead.Stage != model.StageLost {
		lead.LossReason = ""
	}

	if err := a.st.UpdateLead(r.Context(), lead); err != nil {
		serverError(w, err)
		return
	}
	a.audit(r.Context(), "update", lead.ID, "")
	writeJSON(w, http.StatusOK, lead)
}

func (a *api) deleteLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.st.DeleteLead(r.Context(), id); err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		serverError(w, err)
		return
	}
	a.audit(r.Context(), "delete", id, "")
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) replaceLeads(w http.ResponseWriter, r *http.Request) {
	records, ok := decodePayload(w, r)
	if !ok {
		return
	}

	leads := stripMeta(reconcile.NormalizeRecords(records))
	if err := a.st.ReplaceLeads(r.Context(), leads); err != nil {
		serverError(w, err)
		return
	}
	a.audit(r.Context(), "replace", "", "total="+strconv.Itoa(len(leads)))
	writeJSON(w, http.StatusOK, map[string]int{"total": len(leads)})
}

func (a *api) importLeads(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "merge"
	}
	if mode != "merge" && mode != "replace" {
		writeError(w, http.StatusBadRequest, "mode must be merge or replace")
		return
	}

	if !a.importM.TryLock() {
		writeError(w, http.StatusConflict, "an import is already in progress")
		return
	}
	defer a.importM.Unlock()

	records, ok := decodePayload(w, r)
	if !ok {
		return
	}
	incoming := reconcile.NormalizeRecords(records)

	var next []model.Lead
	added, updated := 0, 0
	if mode == "merge" {
		existing, err := a.st.ListLeads(r.Context())
		if err != nil {
			serverError(w, err)
			return
		}
		res := reconcile.Reconcile(existing, incoming)
		next = res.Merged
		added, updated = res.Added, res.Updated
	} else {
		next = stripMeta(incoming)
		added = len(next)
	}

	if err := a.st.ReplaceLeads(r.Context(), next); err != nil {
		serverError(w, err)
		return
	}
	a.audit(r.Context(), "import", "",
		"mode="+mode+" added="+strconv.Itoa(added)+" updated="+strconv.Itoa(updated))

	writeJSON(w, http.StatusOK, map[string]int{
		"added":   added,
		"updated": updated,
		"total":   len(next),
	})
}

func (a *api) listAudit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := a.st.ListAudit(r.Context(), limit)
	if err != nil {
		serverError(w, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *api) audit(ctx context.Context, action, leadID, detail string) {
	err := a.st.AppendAudit(ctx, model.AuditEntry{
		Actor:  "api",
		Action: action,
		LeadID: leadID,
		Detail: detail,
	})
	if err != nil {
		zap.L().Warn("audit append failed", zap.String("action", action), zap.Error(err))
	}
}

func decodePayload(w http.ResponseWriter, r *http.Request) ([]reconcile.RawRecord, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return nil, false
	}
	records, err := fileio.DecodeLeadsPayload(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return records, true
}

func stripMeta(leads []model.Lead) []model.Lead {
	out := make([]model.Lead, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.WithoutImportMeta())
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func serverError(w http.ResponseWriter, err error) {
	zap.L().Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
