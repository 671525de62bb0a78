package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/example/englearn/pkg/models"
)

// Placeholder and fallback display titles
const (
	UntitledLesson = "Untitled Lesson"
	UntitledQuiz   = "Untitled Quiz"
	UnknownLesson  = "Unknown Lesson"
	UnknownQuiz    = "Unknown Quiz"
)

// DefaultLeaderboardSize is the number of users returned by Leaderboard
const DefaultLeaderboardSize = 10

// UserStore reads and partially updates user records
type UserStore interface {
	Load(ctx context.Context, userID int64) (*models.User, error)
	Save(ctx context.Context, userID int64, update models.UserUpdate) error
	ListIDs(ctx context.Context) ([]int64, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// ContentStore is the read-only view of lessons and quizzes
type ContentStore interface {
	FindLessonByID(ctx context.Context, id int64) (*models.Lesson, error)
	FindQuizByID(ctx context.Context, id int64) (*models.Quiz, error)
	ListLessons(ctx context.Context) ([]models.Lesson, error)
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)
}

// Aggregator recomputes users' overall progress scores
type Aggregator struct {
	users       UserStore
	content     ContentStore
	locks       *userLocks
	logger      logrus.FieldLogger
	parallelism int
}

// NewAggregator creates a new aggregator
func NewAggregator(users UserStore, content ContentStore, logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		users:       users,
		content:     content,
		locks:       newUserLocks(),
		logger:      logger,
		parallelism: 4,
	}
}

// Recompute derives the user's overall score as the percentage of available
// tasks completed, backfills missing activity titles and stores both.
func (a *Aggregator) Recompute(ctx context.Context, userID int64) (int, error) {
	unlock := a.locks.lock(userID)
	defer unlock()

	user, err := a.users.Load(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load user %d: %w", userID, err)
	}

	lessons, err := a.content.ListLessons(ctx)
	if err != nil {
		return 0, fmt.Errorf("list lessons: %w", err)
	}
	quizzes, err := a.content.ListQuizzes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list quizzes: %w", err)
	}

	completed := CompletedTasks(user)
	available := AvailableTasks(lessons, quizzes)
	score := OverallScore(completed, available)

	titles, err := a.backfillTitles(ctx, user)
	if err != nil {
		return 0, err
	}

	if err := a.users.Save(ctx, userID, models.UserUpdate{Score: &score, Titles: titles}); err != nil {
		return 0, fmt.Errorf("save user %d: %w", userID, err)
	}

	a.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"score":     score,
		"completed": completed,
		"available": available,
		"titles":    len(titles),
	}).Debug("user score recomputed")

	return score, nil
}

// RecomputeAll recomputes every user's score. Failures for single users are
// logged and skipped; the first store error aborts the run.
func (a *Aggregator) RecomputeAll(ctx context.Context) error {
	ids, err := a.users.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)
	for _, id := range ids {
		g.Go(func() error {
			_, err := a.Recompute(gctx, id)
			switch {
			case err == nil, errors.Is(err, models.ErrNotFound):
				return nil
			case errors.Is(err, models.ErrUnavailable):
				return err
			default:
				a.logger.WithError(err).WithField("user_id", id).Warn("failed to recompute user score")
				return nil
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.WithField("users", len(ids)).Info("recomputed all user scores")
	return nil
}

// Leaderboard returns the top n users by score. Scores are kept current by
// Recompute on every submission and by the periodic RecomputeAll.
func (a *Aggregator) Leaderboard(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}
	entries, err := a.users.Leaderboard(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}

// CompletedTasks counts homework, comprehension and quiz entries plus
// correctly pronounced phrases
func CompletedTasks(user *models.User) int {
	return len(user.HomeworkScores) +
		len(user.ComprehensionScores) +
		lo.CountBy(user.PronunciationScores, func(p models.PronunciationAttempt) bool { return p.Correct }) +
		len(user.QuizScores)
}

// AvailableTasks counts the lesson sections and quizzes a user can complete
func AvailableTasks(lessons []models.Lesson, quizzes []models.Quiz) int {
	return lo.CountBy(lessons, func(l models.Lesson) bool { return l.HasHomework() }) +
		lo.CountBy(lessons, func(l models.Lesson) bool { return l.HasComprehension() }) +
		lo.CountBy(lessons, func(l models.Lesson) bool { return l.HasPronunciation() }) +
		len(quizzes)
}

// OverallScore is round(100 × completed / available) capped at 100, 0 when
// nothing is available. Each correct phrase counts as a completed task while
// a lesson's pronunciation section counts once, so the ratio can exceed 1.
func OverallScore(completed, available int) int {
	if available <= 0 || completed <= 0 {
		return 0
	}
	return min(100, int(math.Round(100*float64(completed)/float64(available))))
}

func needsTitle(title string) bool {
	return title == "" || title == UntitledLesson || title == UntitledQuiz
}

// backfillTitles resolves display titles for scores that lack one. Scores
// already titled are not looked up again.
func (a *Aggregator) backfillTitles(ctx context.Context, user *models.User) ([]models.TitleFix, error) {
	var fixes []models.TitleFix

	lessonTitle := func(id int64) (string, error) {
		lesson, err := a.content.FindLessonByID(ctx, id)
		switch {
		case errors.Is(err, models.ErrNotFound):
			return UnknownLesson, nil
		case err != nil:
			return "", fmt.Errorf("find lesson %d: %w", id, err)
		case lesson == nil:
			return UnknownLesson, nil
		}
		return lesson.Title, nil
	}
	quizTitle := func(id int64) (string, error) {
		quiz, err := a.content.FindQuizByID(ctx, id)
		switch {
		case errors.Is(err, models.ErrNotFound):
			return UnknownQuiz, nil
		case err != nil:
			return "", fmt.Errorf("find quiz %d: %w", id, err)
		case quiz == nil:
			return UnknownQuiz, nil
		}
		return quiz.Title, nil
	}

	collections := []struct {
		scores []models.ActivityScore
		lookup func(int64) (string, error)
	}{
		{user.HomeworkScores, lessonTitle},
		{user.ComprehensionScores, lessonTitle},
		{user.QuizScores, quizTitle},
	}
	for _, c := range collections {
		for i := range c.scores {
			score := &c.scores[i]
			if !needsTitle(score.Title) {
				continue
			}
			title, err := c.lookup(score.ContentID)
			if err != nil {
				return nil, err
			}
			score.Title = title
			fixes = append(fixes, models.TitleFix{ScoreID: score.ID, Title: title})
		}
	}
	return fixes, nil
}
