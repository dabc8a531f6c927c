// Package http exposes the store's domain operations to the UI layer.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"lms-store-service/internal/app"
	"lms-store-service/internal/domain"
)

// Handler wires the store service into a ServeMux.
type Handler struct {
	service *app.StoreService
	logger  *zap.Logger
}

func NewHandler(service *app.StoreService, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/login", h.login)

	mux.HandleFunc("GET /api/users", h.listUsers)
	mux.HandleFunc("POST /api/users", h.createUser)
	mux.HandleFunc("PATCH /api/users/{id}", h.updateUser)
	mux.HandleFunc("DELETE /api/users/{id}", h.deleteUser)
	mux.HandleFunc("POST /api/users/{id}/score", h.updateScore)

	mux.HandleFunc("GET /api/questions", h.listQuestions)
	mux.HandleFunc("GET /api/questions/random", h.randomQuestions)
	mux.HandleFunc("POST /api/questions", h.createQuestion)
	mux.HandleFunc("POST /api/questions/bulk", h.bulkImportQuestions)
	mux.HandleFunc("PATCH /api/questions/{id}", h.updateQuestion)
	mux.HandleFunc("DELETE /api/questions/{id}", h.deleteQuestion)
	mux.HandleFunc("POST /api/questions/{id}/check", h.checkAnswer)

	mux.HandleFunc("GET /api/lessons", h.listLessons)
	mux.HandleFunc("POST /api/lessons", h.createLesson)
	mux.HandleFunc("PATCH /api/lessons/{id}", h.updateLesson)
	mux.HandleFunc("DELETE /api/lessons/{id}", h.deleteLesson)

	mux.HandleFunc("GET /api/leaderboard", h.leaderboard)

	mux.HandleFunc("GET /api/settings", h.getSettings)
	mux.HandleFunc("PUT /api/settings", h.saveSettings)
	mux.HandleFunc("POST /api/sync", h.syncNow)
	mux.HandleFunc("POST /api/import", h.importRemote)

	mux.HandleFunc("GET /ws/leaderboard", h.serveLeaderboardWS)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	filter := app.UserFilter{
		Role:   domain.Role(r.URL.Query().Get("role")),
		Search: r.URL.Query().Get("search"),
	}
	writeJSON(w, http.StatusOK, h.service.ListUsers(r.Context(), filter))
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if !decode(w, r, &user) {
		return
	}
	created, err := h.service.CreateUser(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username *string      `json:"username"`
		FullName *string      `json:"fullName"`
		Role     *domain.Role `json:"role"`
		Password *string      `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := h.service.UpdateUser(r.Context(), r.PathValue("id"), app.UserPatch{
		Username: req.Username,
		FullName: req.FullName,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Points int `json:"points"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.UpdateScore(r.Context(), r.PathValue("id"), req.Points); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListQuestions(r.Context()))
}

func (h *Handler) randomQuestions(w http.ResponseWriter, r *http.Request) {
	count := 5
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "count must be an integer", http.StatusBadRequest)
			return
		}
		count = parsed
	}
	writeJSON(w, http.StatusOK, h.service.RandomQuestions(r.Context(), count))
}

func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if !decode(w, r, &q) {
		return
	}
	created, err := h.service.CreateQuestion(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) bulkImportQuestions(w http.ResponseWriter, r *http.Request) {
	var raw []app.RawQuestion
	if !decode(w, r, &raw) {
		return
	}
	mapped, err := h.service.BulkImportQuestions(r.Context(), raw)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapped)
}

func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type          *domain.QuestionType `json:"type"`
		QuestionText  *string              `json:"questionText"`
		Options       *[]string            `json:"options"`
		CorrectIndex  *int                 `json:"correctIndex"`
		CorrectAnswer *string              `json:"correctAnswer"`
		CorrectOrder  *[]int               `json:"correctOrder"`
		Difficulty    *string              `json:"difficulty"`
		Tags          *[]string            `json:"tags"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := h.service.UpdateQuestion(r.Context(), r.PathValue("id"), app.QuestionPatch{
		Type:          req.Type,
		QuestionText:  req.QuestionText,
		Options:       req.Options,
		CorrectIndex:  req.CorrectIndex,
		CorrectAnswer: req.CorrectAnswer,
		CorrectOrder:  req.CorrectOrder,
		Difficulty:    req.Difficulty,
		Tags:          req.Tags,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.DeleteQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !removed {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkAnswer(w http.ResponseWriter, r *http.Request) {
	var resp domain.Response
	if !decode(w, r, &resp) {
		return
	}
	result, err := h.service.CheckAnswer(r.Context(), r.PathValue("id"), resp)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listLessons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListLessons(r.Context()))
}

func (h *Handler) createLesson(w http.ResponseWriter, r *http.Request) {
	var lesson domain.Lesson
	if !decode(w, r, &lesson) {
		return
	}
	created, err := h.service.CreateLesson(r.Context(), lesson)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateLesson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		ContentHTML *string   `json:"contentHtml"`
		Grade       *string   `json:"grade"`
		Tags        *[]string `json:"tags"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := h.service.UpdateLesson(r.Context(), r.PathValue("id"), app.LessonPatch{
		Title:       req.Title,
		Description: req.Description,
		ContentHTML: req.ContentHTML,
		Grade:       req.Grade,
		Tags:        req.Tags,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLesson(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, h.service.Leaderboard(r.Context(), limit))
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Settings(r.Context()))
}

func (h *Handler) saveSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.CloudSettings
	if !decode(w, r, &settings) {
		return
	}
	if err := h.service.SaveSettings(r.Context(), settings); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) syncNow(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SyncNow(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) importRemote(w http.ResponseWriter, r *http.Request) {
	ok := h.service.ImportFromRemote(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrNoSyncURL):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
