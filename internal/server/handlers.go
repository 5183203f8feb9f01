package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kaioguedesm/chronofit/internal/journal"
	"github.com/kaioguedesm/chronofit/internal/session"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlanID uuid.UUID `json:"plan_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.PlanID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plan_id required"})
		return
	}

	plan, err := s.db.GetPlan(r.Context(), req.PlanID, 1)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	rows, err := s.db.PlanExercises(r.Context(), plan.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	exercises := make([]session.Exercise, 0, len(rows))
	for _, row := range rows {
		exercises = append(exercises, row.Exercise())
	}

	eng, err := session.New(plan.UserID, plan.ID, plan.Name, exercises, s.collaborators(), s.log)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.mgr.Add(eng)

	s.log.Info("session started", "session_id", eng.ID(), "plan", plan.Name)
	writeJSON(w, http.StatusCreated, eng.Snapshot())
}

// collaborators assembles the engine's finalize collaborators. A concrete nil
// must never be wrapped into a non-nil interface, so each slot is assigned
// only when the dependency exists.
func (s *Server) collaborators() session.Collaborators {
	var c session.Collaborators
	if s.db != nil {
		c.Persistence = s.db
		c.Aggregator = s.db
	}
	if s.motiv != nil {
		c.Motivator = s.motiv
	}
	return c
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req struct {
		ExerciseID uuid.UUID `json:"exercise_id"`
		Weight     float64   `json:"weight"`
		Reps       int       `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Reps < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps must be >= 1"})
		return
	}

	var state session.State
	err := s.mgr.Do(id, func(eng *session.Engine) error {
		if err := eng.CompleteSet(req.ExerciseID, req.Weight, req.Reps); err != nil {
			return err
		}
		state = eng.Snapshot()
		return nil
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.journalEvent(journal.Entry{
		SessionID:  id,
		ExerciseID: req.ExerciseID,
		Kind:       journal.EventSet,
		Weight:     req.Weight,
		Reps:       req.Reps,
	})
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDefer(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var res session.DeferResult
	var state session.State
	var deferredID uuid.UUID
	err := s.mgr.Do(id, func(eng *session.Engine) error {
		cur, curOK := eng.Current()
		dr, err := eng.DeferCurrent()
		if err != nil {
			return err
		}
		if curOK {
			deferredID = cur.ID
		}
		res = dr
		state = eng.Snapshot()
		return nil
	})
	if errors.Is(err, session.ErrAlreadyDeferredOnce) {
		// Not a failure: the client must ask the user whether to skip the
		// exercise for good, then call defer/resolve.
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":            err.Error(),
			"confirm_required": true,
		})
		return
	}
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.journalEvent(journal.Entry{
		SessionID:  id,
		ExerciseID: deferredID,
		Kind:       journal.EventDefer,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"reinserted": res.Reinserted,
		"state":      state,
	})
}

func (s *Server) handleResolveDefer(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req struct {
		Abandon bool `json:"abandon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var state session.State
	var resolvedID uuid.UUID
	err := s.mgr.Do(id, func(eng *session.Engine) error {
		if cur, curOK := eng.Current(); curOK {
			resolvedID = cur.ID
		}
		if err := eng.ResolveDefer(req.Abandon); err != nil {
			return err
		}
		state = eng.Snapshot()
		return nil
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.journalEvent(journal.Entry{
		SessionID:  id,
		ExerciseID: resolvedID,
		Kind:       journal.EventResolve,
	})
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleCancelRest(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var state session.State
	err := s.mgr.Do(id, func(eng *session.Engine) error {
		if err := eng.CancelRest(); err != nil {
			return err
		}
		state = eng.Snapshot()
		return nil
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req struct {
		Mood          string `json:"mood"`
		MoodIntensity int    `json:"mood_intensity"`
	}
	// Mood is optional; an empty body finalizes without one.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	var mood *session.Mood
	if req.Mood != "" {
		mood = &session.Mood{Mood: req.Mood, Intensity: req.MoodIntensity}
	}

	var result *session.Result
	err := s.mgr.Do(id, func(eng *session.Engine) error {
		res, err := eng.Finalize(r.Context(), time.Now(), mood)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	if s.journal != nil {
		if jerr := s.journal.Clear(id); jerr != nil {
			s.log.Warn("clearing journal failed", "session_id", id, "error", jerr)
		}
	}
	s.mgr.Remove(id)

	s.log.Info("session finalized", "session_id", id,
		"duration_min", result.Record.DurationMinutes,
		"exercises", len(result.Record.Exercises))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	err := s.mgr.Do(id, func(eng *session.Engine) error {
		return eng.Cancel()
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	if s.journal != nil {
		if jerr := s.journal.Clear(id); jerr != nil {
			s.log.Warn("clearing journal failed", "session_id", id, "error", jerr)
		}
	}
	s.mgr.Remove(id)

	s.log.Info("session cancelled", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	// A live session wins over a persisted one with the same ID.
	var state session.State
	err := s.mgr.Do(id, func(eng *session.Engine) error {
		state = eng.Snapshot()
		return nil
	})
	if err == nil {
		writeJSON(w, http.StatusOK, state)
		return
	}

	if s.db == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	detail, err := s.db.GetSession(r.Context(), id, 1)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sessions, err := s.db.QuerySessions(r.Context(), start, end, 1)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.db.ListPlans(r.Context(), 1)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handlePlanExercises(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	planID, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plan ID"})
		return
	}

	rows, err := s.db.PlanExercises(r.Context(), planID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.WeeklyStats(r.Context(), 1, time.Now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// sessionID parses the {id} URL parameter, writing a 400 on failure.
func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}

// journalEvent records an event best-effort; the journal is a crash-recovery
// aid, never a reason to fail the request that produced the event.
func (s *Server) journalEvent(e journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(e); err != nil {
		s.log.Warn("journal write failed", "session_id", e.SessionID, "kind", e.Kind, "error", err)
	}
}

// writeEngineError maps engine sentinel errors to HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrExerciseNotCurrent),
		errors.Is(err, session.ErrExerciseAlreadyComplete),
		errors.Is(err, session.ErrNoPendingDefer):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, session.ErrSessionAlreadyClosed):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
