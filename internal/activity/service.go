package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/example/englearn/pkg/models"
)

// ContentReader looks up lessons and quizzes
type ContentReader interface {
	FindLessonByID(ctx context.Context, id int64) (*models.Lesson, error)
	FindQuizByID(ctx context.Context, id int64) (*models.Quiz, error)
}

// ActivityStore persists activity results
type ActivityStore interface {
	UpsertScore(ctx context.Context, score *models.ActivityScore) error
	RecordPronunciation(ctx context.Context, userID, lessonID int64, phrase string, correct bool) (*models.PronunciationAttempt, error)
}

// WritingStore persists the writing history
type WritingStore interface {
	Append(ctx context.Context, rec *models.WritingRecord) error
	History(ctx context.Context, userID int64) ([]models.WritingRecord, error)
}

// Grader assesses free-form writing
type Grader interface {
	Assess(ctx context.Context, text string) (*models.ScoreReport, error)
}

// Recomputer refreshes a user's overall score
type Recomputer interface {
	Recompute(ctx context.Context, userID int64) (int, error)
}

// Service grades submissions and records them for identified users.
// A userID of 0 means anonymous: results are graded but not stored.
type Service struct {
	content    ContentReader
	activities ActivityStore
	writing    WritingStore
	grader     Grader
	scores     Recomputer
	logger     logrus.FieldLogger
}

// NewService creates a new submission service
func NewService(content ContentReader, activities ActivityStore, writing WritingStore, grader Grader, scores Recomputer, logger logrus.FieldLogger) *Service {
	return &Service{
		content:    content,
		activities: activities,
		writing:    writing,
		grader:     grader,
		scores:     scores,
		logger:     logger,
	}
}

// SubmitHomework grades a lesson's homework section
func (s *Service) SubmitHomework(ctx context.Context, userID, lessonID int64, answers []string) (*models.GradeResult, error) {
	lesson, err := s.content.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("lesson %d: %w", lessonID, err)
	}
	if !lesson.HasHomework() {
		return nil, fmt.Errorf("lesson %d has no homework: %w", lessonID, models.ErrNotFound)
	}

	res := GradeHomework(lesson.Homework, answers)
	if err := s.record(ctx, userID, models.ActivityHomework, lesson.ID, lesson.Title, res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SubmitComprehension grades a lesson's reading comprehension section
func (s *Service) SubmitComprehension(ctx context.Context, userID, lessonID int64, answers []string) (*models.GradeResult, error) {
	lesson, err := s.content.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("lesson %d: %w", lessonID, err)
	}
	if !lesson.HasComprehension() {
		return nil, fmt.Errorf("lesson %d has no comprehension questions: %w", lessonID, models.ErrNotFound)
	}

	res := GradeComprehension(lesson.Comprehension.Questions, answers)
	if err := s.record(ctx, userID, models.ActivityComprehension, lesson.ID, lesson.Title, res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SubmitQuiz grades a quiz
func (s *Service) SubmitQuiz(ctx context.Context, userID, quizID int64, answers []string) (*models.GradeResult, error) {
	quiz, err := s.content.FindQuizByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("quiz %d: %w", quizID, err)
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("quiz %d has no questions: %w", quizID, models.ErrNotFound)
	}

	res := GradeQuiz(quiz.Questions, answers)
	if err := s.record(ctx, userID, models.ActivityQuiz, quiz.ID, quiz.Title, res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SubmitPronunciation records one practice attempt of a lesson phrase. The
// phrase must be one of the lesson's phrases and is stored as the lesson
// spells it. It returns nil for anonymous submissions.
func (s *Service) SubmitPronunciation(ctx context.Context, userID, lessonID int64, phrase string, correct bool) (*models.PronunciationAttempt, error) {
	phrase = strings.TrimSpace(phrase)
	if lessonID == 0 || phrase == "" {
		return nil, fmt.Errorf("lesson and phrase are required: %w", models.ErrInvalidInput)
	}
	lesson, err := s.content.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("lesson %d: %w", lessonID, err)
	}
	known, ok := lo.Find(lesson.Pronunciation, func(p string) bool {
		return NormalizeText(p) == NormalizeText(phrase)
	})
	if !ok {
		return nil, fmt.Errorf("lesson %d has no phrase %q: %w", lessonID, phrase, models.ErrNotFound)
	}
	phrase = known
	if userID == 0 {
		return nil, nil
	}

	attempt, err := s.activities.RecordPronunciation(ctx, userID, lessonID, phrase, correct)
	if err != nil {
		return nil, err
	}
	s.recompute(ctx, userID)

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"lesson_id": lessonID,
		"attempts":  attempt.Attempts,
		"correct":   attempt.Correct,
	}).Info("pronunciation saved")
	return attempt, nil
}

// SubmitWriting assesses a text and appends the result to the user's
// writing history before returning.
func (s *Service) SubmitWriting(ctx context.Context, userID int64, text string) (*models.ScoreReport, error) {
	report, err := s.grader.Assess(ctx, text)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return report, nil
	}

	rec := &models.WritingRecord{UserID: userID, Score: report.TotalScore, CEFR: report.CEFR}
	if err := s.writing.Append(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"score":    rec.Score,
		"cefr":     rec.CEFR,
		"degraded": report.Degraded,
	}).Info("writing score saved")
	return report, nil
}

// WritingHistory returns the user's writing results, newest first
func (s *Service) WritingHistory(ctx context.Context, userID int64) ([]models.WritingRecord, error) {
	if userID == 0 {
		return nil, fmt.Errorf("writing history requires a user: %w", models.ErrUnauthenticated)
	}
	history, err := s.writing.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.WritingRecord{}
	}
	return history, nil
}

func (s *Service) record(ctx context.Context, userID int64, kind models.ActivityKind, contentID int64, title string, res models.GradeResult) error {
	if userID == 0 {
		return nil
	}
	score := &models.ActivityScore{
		UserID:    userID,
		Kind:      kind,
		ContentID: contentID,
		Score:     res.Score,
		Total:     res.Total,
		Title:     title,
	}
	if err := s.activities.UpsertScore(ctx, score); err != nil {
		return err
	}
	s.recompute(ctx, userID)

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"kind":       kind,
		"content_id": contentID,
		"score":      res.Score,
		"total":      res.Total,
	}).Info("activity saved")
	return nil
}

// recompute failures do not fail the submission; the scheduled run catches up.
func (s *Service) recompute(ctx context.Context, userID int64) {
	if _, err := s.scores.Recompute(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("failed to update user score")
	}
}
