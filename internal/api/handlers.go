package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/example/englearn/internal/auth"
	"github.com/example/englearn/pkg/models"
)

type answersRequest struct {
	LessonID int64    `json:"lessonId" validate:"required"`
	Answers  []string `json:"answers"`
}

type quizRequest struct {
	QuizID  int64    `json:"quizId" validate:"required"`
	Answers []string `json:"answers"`
}

type pronunciationRequest struct {
	LessonID  int64  `json:"lessonId" validate:"required"`
	Phrase    string `json:"phrase" validate:"required"`
	IsCorrect *bool  `json:"isCorrect" validate:"required"`
}

type pronunciationResponse struct {
	Success  bool `json:"success"`
	Attempts int  `json:"attempts,omitempty"`
	Correct  bool `json:"correct,omitempty"`
}

type writingRequest struct {
	Text string `json:"text" validate:"required"`
}

type createUserRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type createUserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type progressEntry struct {
	Activity  string           `json:"activity"`
	Score     int              `json:"score"`
	CEFR      models.CEFRLevel `json:"cefr"`
	Timestamp time.Time        `json:"timestamp"`
}

// decode reads and validates a JSON body, writing a 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, validationMessage(err, dst))
		return false
	}
	return true
}

func validationMessage(err error, dst any) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	t := reflect.TypeOf(dst)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" {
				return name
			}
		}
		return fe.Field()
	})
	return "Missing or invalid fields: " + strings.Join(lo.Uniq(fields), ", ")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Health(r.Context()); err != nil {
			s.requestLogger(r).WithError(err).Warn("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if s.tokens == nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, "Accounts are disabled")
		return
	}
	var req createUserRequest
	if !s.decode(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.users.GetByEmail(r.Context(), email)
	switch {
	case err == nil:
		s.writeError(w, r, models.ErrConflict, "create user")
		return
	case !errors.Is(err, models.ErrNotFound):
		s.writeError(w, r, err, "create user")
		return
	}

	user := &models.User{Name: strings.TrimSpace(req.Name), Email: email}
	if err := s.users.Create(r.Context(), user); err != nil {
		s.writeError(w, r, err, "create user")
		return
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.writeError(w, r, err, "issue token")
		return
	}
	s.requestLogger(r).WithField("user_id", user.ID).Info("user created")
	writeJSON(w, http.StatusCreated, createUserResponse{ID: user.ID, Name: user.Name, Token: token})
}

func (s *Server) handleUserProgress(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserFrom(r.Context())
	if userID == 0 {
		writeErrorMessage(w, http.StatusUnauthorized, "Not logged in")
		return
	}
	history, err := s.submissions.WritingHistory(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, "fetch progress")
		return
	}
	progress := lo.Map(history, func(rec models.WritingRecord, _ int) progressEntry {
		return progressEntry{Activity: "Writing", Score: rec.Score, CEFR: rec.CEFR, Timestamp: rec.Timestamp}
	})
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleLessons(w http.ResponseWriter, r *http.Request) {
	serveContent(s, w, r, "lessons", s.catalog.ListLessons, SampleLessons)
}

func (s *Server) handleQuizzes(w http.ResponseWriter, r *http.Request) {
	serveContent(s, w, r, "quizzes", s.catalog.ListQuizzes, SampleQuizzes)
}

func (s *Server) handleBlogs(w http.ResponseWriter, r *http.Request) {
	serveContent(s, w, r, "blogs", s.catalog.ListBlogs, SampleBlogs)
}

func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	serveContent(s, w, r, "references", s.catalog.ListReferences, SampleReferences)
}

// serveContent writes a public content listing. When content fallback is
// enabled and the store is unavailable the built-in samples are served.
func serveContent[T any](s *Server, w http.ResponseWriter, r *http.Request, what string,
	list func(context.Context) ([]T, error), samples func() []T) {
	items, err := list(r.Context())
	if err != nil {
		if s.contentFallback && errors.Is(err, models.ErrUnavailable) {
			s.requestLogger(r).WithError(err).Warn("serving sample " + what)
			writeJSON(w, http.StatusOK, samples())
			return
		}
		s.writeError(w, r, err, "fetch "+what)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := s.leaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > 100 {
			writeErrorMessage(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		n = limit
	}
	entries, err := s.rankings.Leaderboard(r.Context(), n)
	if err != nil {
		s.writeError(w, r, err, "fetch leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHomework(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.submissions.SubmitHomework(r.Context(), auth.UserFrom(r.Context()), req.LessonID, req.Answers)
	if err != nil {
		s.writeError(w, r, err, "process homework")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleComprehension(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.submissions.SubmitComprehension(r.Context(), auth.UserFrom(r.Context()), req.LessonID, req.Answers)
	if err != nil {
		s.writeError(w, r, err, "process comprehension")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.submissions.SubmitQuiz(r.Context(), auth.UserFrom(r.Context()), req.QuizID, req.Answers)
	if err != nil {
		s.writeError(w, r, err, "process quiz")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePronunciation(w http.ResponseWriter, r *http.Request) {
	var req pronunciationRequest
	if !s.decode(w, r, &req) {
		return
	}
	attempt, err := s.submissions.SubmitPronunciation(r.Context(), auth.UserFrom(r.Context()), req.LessonID, req.Phrase, *req.IsCorrect)
	if err != nil {
		s.writeError(w, r, err, "process pronunciation")
		return
	}
	resp := pronunciationResponse{Success: true}
	if attempt != nil {
		resp.Attempts = attempt.Attempts
		resp.Correct = attempt.Correct
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGradeWriting(w http.ResponseWriter, r *http.Request) {
	var req writingRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.submissions.SubmitWriting(r.Context(), auth.UserFrom(r.Context()), req.Text)
	if err != nil {
		s.writeError(w, r, err, "grade writing")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
