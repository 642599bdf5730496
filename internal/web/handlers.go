package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
	"github.com/Tangorin-AP/genius-next-sub000/internal/engine"
	"github.com/Tangorin-AP/genius-next-sub000/internal/match"
)

type deckJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type cardJSON struct {
	ID        string     `json:"id"`
	PairID    string     `json:"pair_id"`
	Direction string     `json:"direction"`
	Score     *int       `json:"score"`
	DueAt     *time.Time `json:"due_at"`
	FirstTime bool       `json:"first_time"`
	Cue       string     `json:"cue"`
	Response  string     `json:"response"`
}

func toCardJSON(c *domain.SessionCard) cardJSON {
	out := cardJSON{
		ID:        c.ID,
		PairID:    c.PairID,
		Direction: string(c.Direction),
		DueAt:     c.DueAt,
		FirstTime: c.FirstTime,
		Cue:       c.Cue,
		Response:  c.Response,
	}
	if c.Score.Valid {
		v := c.Score.Value
		out.Score = &v
	}
	return out
}

func (s *Server) handleListDecks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decks, err := s.store.ListDecks(r.Context())
		if err != nil {
			slog.Error("listing decks", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		out := make([]deckJSON, 0, len(decks))
		for _, d := range decks {
			out = append(out, deckJSON{ID: d.ID, Name: d.Name})
		}
		writeJSON(w, out)
	}
}

func (s *Server) handleListAssociations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deckID := chi.URLParam(r, "deckID")
		cards, err := s.store.SessionCards(r.Context(), deckID, domain.DirectionAB)
		if err != nil {
			slog.Error("listing associations", "deck_id", deckID, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		out := make([]cardJSON, 0, len(cards))
		for _, c := range cards {
			out = append(out, toCardJSON(c))
		}
		writeJSON(w, out)
	}
}

type planRequest struct {
	Count        *int     `json:"count"`
	MinimumScore *float64 `json:"minimum_score"`
	MValue       *float64 `json:"m_value" validate:"omitempty,gte=0"`
}

type planResponse struct {
	Due       []cardJSON `json:"due"`
	Pool      []cardJSON `json:"pool"`
	Available int        `json:"available"`
	Requested int        `json:"requested"`
}

func (s *Server) handlePlanSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deckID := chi.URLParam(r, "deckID")

		var req planRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}
		if err := s.validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		count := s.defaults.Count
		if req.Count != nil {
			count = *req.Count
		}
		minScore := s.defaults.MinimumScore
		if req.MinimumScore != nil {
			minScore = *req.MinimumScore
		}
		mValue := s.defaults.MValue
		if req.MValue != nil {
			mValue = *req.MValue
		}

		// A failed read surfaces an error, never a partial plan.
		cards, err := s.store.SessionCards(r.Context(), deckID, domain.DirectionAB)
		if err != nil {
			slog.Error("planning session", "deck_id", deckID, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		plan := engine.PlanSession(cards, count, minScore, mValue, s.now())
		resp := planResponse{
			Due:       make([]cardJSON, 0, len(plan.Due)),
			Pool:      make([]cardJSON, 0, len(plan.Pool)),
			Available: plan.Available,
			Requested: plan.Requested,
		}
		for _, c := range plan.Due {
			resp.Due = append(resp.Due, toCardJSON(c))
		}
		for _, c := range plan.Pool {
			resp.Pool = append(resp.Pool, toCardJSON(c))
		}
		writeJSON(w, resp)
	}
}

type decisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=RIGHT WRONG SKIP"`
}

func (s *Server) handleDecision() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assocID := chi.URLParam(r, "assocID")

		var req decisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := s.validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var decision domain.Decision
		switch req.Decision {
		case "RIGHT":
			decision = domain.Right
		case "WRONG":
			decision = domain.Wrong
		case "SKIP":
			decision = domain.Skip
		}

		deckID, err := engine.ApplyDecision(r.Context(), s.store, assocID, decision, s.now())
		if errors.Is(err, engine.ErrNotFound) {
			http.Error(w, "association not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("applying decision", "association_id", assocID, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"deck_id": deckID})
	}
}

type restoreRequest struct {
	Score     *int       `json:"score"`
	DueAt     *time.Time `json:"due_at"`
	FirstTime bool       `json:"first_time"`
}

func (s *Server) handleRestore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assocID := chi.URLParam(r, "assocID")

		var req restoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		snap := domain.Snapshot{DueAt: req.DueAt, FirstTime: req.FirstTime}
		if req.Score != nil {
			snap.Score = domain.NewScore(*req.Score)
		}

		deckID, err := engine.Restore(r.Context(), s.store, assocID, snap)
		if errors.Is(err, engine.ErrNotFound) {
			http.Error(w, "association not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("restoring association", "association_id", assocID, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"deck_id": deckID})
	}
}

type gradeRequest struct {
	Expected string `json:"expected"`
	Received string `json:"received"`
	Mode     string `json:"mode"`
}

type gradeResponse struct {
	Correctness float64 `json:"correctness"`
	ExactLike   bool    `json:"exact_like"`
	Display     string  `json:"display"`
}

func (s *Server) handleGrade() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		writeJSON(w, gradeResponse{
			Correctness: match.Correctness(req.Expected, req.Received, match.ParseMode(req.Mode)),
			ExactLike:   match.IsExactLike(req.Expected, req.Received),
			Display:     match.NormalizeAnswerDisplay(req.Received),
		})
	}
}

func (s *Server) handleSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.syncFn == nil {
			http.Error(w, "sync not configured", http.StatusNotFound)
			return
		}
		if err := s.syncFn(r.Context()); err != nil {
			slog.Error("syncing sources", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
