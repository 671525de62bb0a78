package activity

import (
	"strings"

	"github.com/samber/lo"

	"github.com/example/englearn/pkg/models"
)

// NormalizeText lower-cases and trims an answer and folds the typographic
// apostrophe into a plain one.
func NormalizeText(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "’", "'")
}

func answerAt(answers []string, i int) (string, bool) {
	if i < 0 || i >= len(answers) {
		return "", false
	}
	return answers[i], true
}

func matches(answer, expected string, normalize bool) bool {
	if normalize {
		return NormalizeText(answer) == NormalizeText(expected)
	}
	return answer == expected
}

// GradeHomework grades homework answers by position. Fill-in answers are
// compared normalized, all other types exactly.
func GradeHomework(questions []models.HomeworkQuestion, answers []string) models.GradeResult {
	feedback := lo.Map(questions, func(q models.HomeworkQuestion, i int) models.AnswerFeedback {
		answer, ok := answerAt(answers, i)
		return models.AnswerFeedback{
			Question:      q.Question,
			Correct:       ok && matches(answer, q.CorrectAnswer, q.Type == models.QuestionFillIn),
			CorrectAnswer: q.CorrectAnswer,
		}
	})
	return result(feedback)
}

// GradeComprehension grades reading answers by exact match
func GradeComprehension(questions []models.ComprehensionQuestion, answers []string) models.GradeResult {
	feedback := lo.Map(questions, func(q models.ComprehensionQuestion, i int) models.AnswerFeedback {
		answer, ok := answerAt(answers, i)
		return models.AnswerFeedback{
			Question:      q.Question,
			Correct:       ok && matches(answer, q.CorrectAnswer, false),
			CorrectAnswer: q.CorrectAnswer,
		}
	})
	return result(feedback)
}

// GradeQuiz grades quiz answers after normalization
func GradeQuiz(questions []models.QuizQuestion, answers []string) models.GradeResult {
	feedback := lo.Map(questions, func(q models.QuizQuestion, i int) models.AnswerFeedback {
		answer, ok := answerAt(answers, i)
		return models.AnswerFeedback{
			Prompt:        q.Prompt,
			Correct:       ok && matches(answer, q.CorrectAnswer, true),
			CorrectAnswer: q.CorrectAnswer,
		}
	})
	return result(feedback)
}

func result(feedback []models.AnswerFeedback) models.GradeResult {
	return models.GradeResult{
		Score:    lo.CountBy(feedback, func(f models.AnswerFeedback) bool { return f.Correct }),
		Total:    len(feedback),
		Feedback: feedback,
	}
}
