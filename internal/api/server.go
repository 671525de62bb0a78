package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/example/englearn/pkg/models"
)

// Submissions grades and records learner activity
type Submissions interface {
	SubmitHomework(ctx context.Context, userID, lessonID int64, answers []string) (*models.GradeResult, error)
	SubmitComprehension(ctx context.Context, userID, lessonID int64, answers []string) (*models.GradeResult, error)
	SubmitQuiz(ctx context.Context, userID, quizID int64, answers []string) (*models.GradeResult, error)
	SubmitPronunciation(ctx context.Context, userID, lessonID int64, phrase string, correct bool) (*models.PronunciationAttempt, error)
	SubmitWriting(ctx context.Context, userID int64, text string) (*models.ScoreReport, error)
	WritingHistory(ctx context.Context, userID int64) ([]models.WritingRecord, error)
}

// Rankings serves the leaderboard
type Rankings interface {
	Leaderboard(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
}

// Catalog lists public content
type Catalog interface {
	ListLessons(ctx context.Context) ([]models.Lesson, error)
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)
	ListBlogs(ctx context.Context) ([]models.Blog, error)
	ListReferences(ctx context.Context) ([]models.Reference, error)
}

// Users creates learner profiles
type Users interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenService issues and verifies bearer tokens
type TokenService interface {
	Issue(userID int64) (string, error)
	Parse(token string) (int64, error)
}

// HealthChecker reports whether the store is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options wires the server's collaborators
type Options struct {
	Submissions     Submissions
	Rankings        Rankings
	Catalog         Catalog
	Users           Users
	Tokens          TokenService
	Health          HealthChecker
	LeaderboardSize int
	ContentFallback bool
}

// Server is the HTTP front-end
type Server struct {
	router   *mux.Router
	http     *http.Server
	logger   logrus.FieldLogger
	validate *validator.Validate

	submissions     Submissions
	rankings        Rankings
	catalog         Catalog
	users           Users
	tokens          TokenService
	health          HealthChecker
	leaderboardSize int
	contentFallback bool
}

// NewServer creates the HTTP server and registers all routes
func NewServer(addr string, opts Options, logger logrus.FieldLogger) *Server {
	s := &Server{
		router:          mux.NewRouter(),
		logger:          logger,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		submissions:     opts.Submissions,
		rankings:        opts.Rankings,
		catalog:         opts.Catalog,
		users:           opts.Users,
		tokens:          opts.Tokens,
		health:          opts.Health,
		leaderboardSize: opts.LeaderboardSize,
		contentFallback: opts.ContentFallback,
	}
	s.routes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(corsMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.identityMiddleware)

	api.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	api.HandleFunc("/user-progress", s.handleUserProgress).Methods(http.MethodGet)

	api.HandleFunc("/lessons", s.handleLessons).Methods(http.MethodGet)
	api.HandleFunc("/quizzes", s.handleQuizzes).Methods(http.MethodGet)
	api.HandleFunc("/blogs", s.handleBlogs).Methods(http.MethodGet)
	api.HandleFunc("/references", s.handleReferences).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)

	api.HandleFunc("/homework", s.handleHomework).Methods(http.MethodPost)
	api.HandleFunc("/comprehension", s.handleComprehension).Methods(http.MethodPost)
	api.HandleFunc("/submit-quiz", s.handleSubmitQuiz).Methods(http.MethodPost)
	api.HandleFunc("/pronunciation", s.handlePronunciation).Methods(http.MethodPost)
	api.HandleFunc("/grade-writing", s.handleGradeWriting).Methods(http.MethodPost)

	s.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.logger.WithField("addr", s.http.Addr).Info("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
