package activity

import (
	"testing"

	"github.com/example/englearn/pkg/models"
)

func TestNormalizeText(t *testing.T) {
	tests := map[string]string{
		"  Hello ":   "hello",
		"DON’T":      "don't",
		"it's":       "it's",
		"":           "",
		"\tMixed Up": "mixed up",
	}
	for in, want := range tests {
		if got := NormalizeText(in); got != want {
			t.Errorf("NormalizeText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGradeHomework(t *testing.T) {
	questions := []models.HomeworkQuestion{
		{Question: "She ___ to school.", Type: models.QuestionFillIn, CorrectAnswer: "goes"},
		{Question: "Pick one", Type: models.QuestionMultipleChoice, Options: []string{"Cat", "cat"}, CorrectAnswer: "Cat"},
		{Question: "I ___ know.", Type: models.QuestionFillIn, CorrectAnswer: "don't"},
	}

	res := GradeHomework(questions, []string{" GOES ", "cat", "don’t"})
	if res.Score != 2 || res.Total != 3 {
		t.Fatalf("score = %d/%d, want 2/3", res.Score, res.Total)
	}
	want := []bool{true, false, true}
	for i, f := range res.Feedback {
		if f.Correct != want[i] {
			t.Errorf("feedback[%d].Correct = %v, want %v", i, f.Correct, want[i])
		}
		if f.Question != questions[i].Question || f.CorrectAnswer != questions[i].CorrectAnswer {
			t.Errorf("feedback[%d] = %+v", i, f)
		}
	}
}

func TestGradeComprehension_ExactMatch(t *testing.T) {
	questions := []models.ComprehensionQuestion{
		{Question: "Who?", CorrectAnswer: "Tom"},
		{Question: "Where?", CorrectAnswer: "Paris"},
	}
	res := GradeComprehension(questions, []string{"Tom", "paris"})
	if res.Score != 1 || res.Total != 2 {
		t.Fatalf("score = %d/%d, want 1/2", res.Score, res.Total)
	}
}

func TestGradeQuiz_MissingAnswersAreWrong(t *testing.T) {
	questions := []models.QuizQuestion{
		{Prompt: "2+2", CorrectAnswer: "Four"},
		{Prompt: "Capital of France", CorrectAnswer: "Paris"},
		{Prompt: "Empty", CorrectAnswer: ""},
	}
	res := GradeQuiz(questions, []string{"four"})
	if res.Score != 1 || res.Total != 3 {
		t.Fatalf("score = %d/%d, want 1/3", res.Score, res.Total)
	}
	if res.Feedback[0].Prompt != "2+2" || res.Feedback[0].Question != "" {
		t.Errorf("quiz feedback should carry the prompt: %+v", res.Feedback[0])
	}
	if res.Feedback[2].Correct {
		t.Error("missing answer graded correct")
	}
}

func TestGrade_ExtraAnswersIgnored(t *testing.T) {
	res := GradeQuiz([]models.QuizQuestion{{Prompt: "a", CorrectAnswer: "a"}}, []string{"a", "b", "c"})
	if res.Score != 1 || res.Total != 1 || len(res.Feedback) != 1 {
		t.Fatalf("result = %+v", res)
	}
}
