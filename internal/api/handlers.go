package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/terra-clan/roadmap-engine/internal/canvas"
	"github.com/terra-clan/roadmap-engine/internal/export"
	"github.com/terra-clan/roadmap-engine/internal/graph"
	"github.com/terra-clan/roadmap-engine/internal/models"
	"github.com/terra-clan/roadmap-engine/internal/progress"
	"github.com/terra-clan/roadmap-engine/internal/reviews"
	"github.com/terra-clan/roadmap-engine/internal/storage"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Roadmap handlers

func (s *Server) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	filters := models.ListFilters{
		Difficulty: r.URL.Query().Get("difficulty"),
		Technology: r.URL.Query().Get("technology"),
		Limit:      50, // default
		Offset:     0,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	roadmaps, err := s.repo.ListRoadmaps(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list roadmaps", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list roadmaps")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"roadmaps": roadmaps,
		"total":    len(roadmaps),
	})
}

// getRoadmap loads a roadmap or writes the full not-found fallback.
// Without the base record nothing else on the page has meaning, so
// the response points back to the listing.
func (s *Server) getRoadmap(w http.ResponseWriter, r *http.Request) *models.Roadmap {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "roadmap id is required")
		return nil
	}

	roadmap, err := s.repo.GetRoadmap(r.Context(), id)
	if err != nil {
		slog.Error("failed to get roadmap", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get roadmap")
		return nil
	}
	if roadmap == nil {
		respondError(w, http.StatusNotFound, "not_found", "roadmap not found; browse /api/v1/roadmaps")
		return nil
	}
	return roadmap
}

func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	roadmap := s.getRoadmap(w, r)
	if roadmap == nil {
		return
	}

	resp := map[string]interface{}{
		"roadmap": roadmap,
	}

	// Summary line for the flowchart header; absent flowchart means
	// the section is simply not rendered.
	if roadmap.HasFlowchart() {
		g := graph.Parse(roadmap.FlowchartData)
		resp["flowchartSummary"] = g.Summary()
	}

	respondJSON(w, http.StatusOK, resp)
}

// Review handlers

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	roadmap := s.getRoadmap(w, r)
	if roadmap == nil {
		return
	}

	entries, err := s.reviews.List(r.Context(), roadmap.ID)
	if err != nil {
		slog.Error("failed to list reviews", "error", err, "roadmap", roadmap.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list reviews")
		return
	}

	type reviewView struct {
		*models.ReviewEntry
		AvatarInitial string `json:"avatarInitial"`
	}
	views := make([]reviewView, 0, len(entries))
	for _, e := range entries {
		views = append(views, reviewView{ReviewEntry: e, AvatarInitial: reviews.AvatarInitial(e.Username)})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": views,
		"total":   len(views),
	})
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	roadmap := s.getRoadmap(w, r)
	if roadmap == nil {
		return
	}

	var req models.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	entry, err := s.reviews.Submit(r.Context(), roadmap.ID, UserFromContext(r.Context()), req.Rating, req.Review)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrRatingRequired):
			respondError(w, http.StatusBadRequest, "validation_error", "please select a rating before submitting")
		case errors.Is(err, reviews.ErrUnauthorized):
			respondError(w, http.StatusUnauthorized, "login_required", "please log in to submit a review")
		default:
			slog.Error("failed to submit review", "error", err, "roadmap", roadmap.ID)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit review, please try again")
		}
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// Telemetry handlers. Fire-and-forget: failures are swallowed since
// these counters are non-critical.

func (s *Server) handleDownloadEvent(w http.ResponseWriter, r *http.Request) {
	s.recordEvent(w, r, storage.CounterDownloads)
}

func (s *Server) handleShareEvent(w http.ResponseWriter, r *http.Request) {
	s.recordEvent(w, r, storage.CounterShares)
}

func (s *Server) recordEvent(w http.ResponseWriter, r *http.Request, counter string) {
	id := chi.URLParam(r, "id")
	if err := s.repo.IncrementCounter(r.Context(), id, counter); err != nil {
		slog.Warn("failed to record event", "error", err, "roadmap", id, "counter", counter)
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// Export handlers

func (s *Server) handleExportPNG(w http.ResponseWriter, r *http.Request) {
	roadmap := s.getRoadmap(w, r)
	if roadmap == nil {
		return
	}
	if !roadmap.HasFlowchart() {
		respondError(w, http.StatusNotFound, "no_flowchart", "roadmap has no flowchart to export")
		return
	}

	g := graph.Parse(roadmap.FlowchartData)
	view := canvas.NewViewState(g, progress.NewTracker(g.NodeIDs(), len(roadmap.Steps)))

	raster, err := view.Export(s.rasterizer)
	if err != nil {
		// Export is best-effort, not a critical path
		slog.Error("flowchart export failed", "error", err, "roadmap", roadmap.ID)
		respondError(w, http.StatusInternalServerError, "export_failed", "failed to export flowchart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", roadmap.ID+"-flowchart.png"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raster); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	roadmap := s.getRoadmap(w, r)
	if roadmap == nil {
		return
	}

	format := r.URL.Query().Get("format")
	doc, contentType, err := export.StepsDocument(roadmap, format)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		slog.Error("failed to write document", "error", err)
	}
}

// Progress handlers

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	roadmap := s.getRoadmap(w, r)
	if roadmap == nil {
		return
	}
	user := UserFromContext(r.Context())

	session, err := s.progress.Load(r.Context(), roadmap.ID, user.ID)
	if err != nil {
		slog.Error("failed to load progress", "error", err, "roadmap", roadmap.ID, "user", user.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load progress")
		return
	}
	if session == nil {
		respondError(w, http.StatusNotFound, "not_found", "no saved progress for this roadmap")
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleSaveProgress(w http.ResponseWriter, r *http.Request) {
	roadmap := s.getRoadmap(w, r)
	if roadmap == nil {
		return
	}
	user := UserFromContext(r.Context())

	var req models.SaveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	g := graph.Parse(roadmap.FlowchartData)
	tracker := progress.NewTracker(g.NodeIDs(), len(roadmap.Steps))
	tracker.Restore(models.ProgressSnapshot{
		CompletedNodeIDs:     req.CompletedNodeIDs,
		CompletedStepIndices: req.CompletedStepIndices,
	})

	existing, err := s.progress.Load(r.Context(), roadmap.ID, user.ID)
	if err != nil {
		slog.Error("failed to load progress", "error", err, "roadmap", roadmap.ID, "user", user.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save progress")
		return
	}

	now := time.Now().UTC()
	session := &models.ProgressSession{
		ID:           uuid.New().String(),
		RoadmapID:    roadmap.ID,
		UserID:       user.ID,
		Snapshot:     tracker.Snapshot(),
		Progress:     tracker.Progress(),
		StepProgress: tracker.StepProgress(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing != nil {
		session.ID = existing.ID
		session.CreatedAt = existing.CreatedAt
	}

	if err := s.progress.Save(r.Context(), session); err != nil {
		slog.Error("failed to save progress", "error", err, "roadmap", roadmap.ID, "user", user.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save progress")
		return
	}

	// First save counts as an enrollment; the counter is advisory
	if existing == nil {
		if err := s.repo.IncrementCounter(r.Context(), roadmap.ID, storage.CounterEnrolled); err != nil {
			slog.Warn("failed to increment enrolled count", "error", err, "roadmap", roadmap.ID)
		}
	}

	s.hub.Broadcast(roadmap.ID, ProgressEvent{
		RoadmapID:    session.RoadmapID,
		UserID:       session.UserID,
		Progress:     session.Progress,
		StepProgress: session.StepProgress,
		UpdatedAt:    session.UpdatedAt,
	})

	respondJSON(w, http.StatusOK, session)
}
