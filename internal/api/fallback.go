package api

import "github.com/example/englearn/pkg/models"

// SampleLessons is served in place of stored lessons when the store is
// unreachable and content fallback is enabled. IDs are negative so they
// never collide with stored content.
func SampleLessons() []models.Lesson {
	return []models.Lesson{
		{
			ID:      -1,
			Title:   "Greetings and Introductions",
			Content: "Learn how to greet people and introduce yourself in everyday situations.",
			Homework: models.HomeworkSet{
				{Question: "Nice to ___ you.", Type: models.QuestionFillIn, CorrectAnswer: "meet"},
				{
					Question:      "Which is a formal greeting?",
					Type:          models.QuestionMultipleChoice,
					Options:       []string{"Hey!", "Good morning.", "What's up?"},
					CorrectAnswer: "Good morning.",
				},
			},
			Comprehension: &models.Comprehension{
				Text: "Anna meets Tom at a conference. She says, \"Hello, I'm Anna. I work in marketing.\"",
				Questions: []models.ComprehensionQuestion{
					{Question: "Where do Anna and Tom meet?", Options: []string{"At a conference", "At school"}, CorrectAnswer: "At a conference"},
				},
			},
			Pronunciation: models.PhraseList{"Nice to meet you", "How are you doing?"},
		},
		{
			ID:      -2,
			Title:   "Present Simple",
			Content: "Use the present simple for habits, routines and facts.",
			Homework: models.HomeworkSet{
				{Question: "She ___ (go) to work by bus.", Type: models.QuestionFillIn, CorrectAnswer: "goes"},
				{Question: "They ___ (not like) coffee.", Type: models.QuestionFillIn, CorrectAnswer: "don't like"},
			},
			Pronunciation: models.PhraseList{"She usually walks to work"},
		},
	}
}

// SampleQuizzes is the quiz counterpart of SampleLessons
func SampleQuizzes() []models.Quiz {
	return []models.Quiz{
		{
			ID:    -1,
			Title: "Everyday Vocabulary",
			Questions: models.QuizQuestions{
				{Prompt: "The opposite of 'early'", CorrectAnswer: "late"},
				{Prompt: "Past tense of 'buy'", CorrectAnswer: "bought"},
				{Prompt: "Plural of 'child'", CorrectAnswer: "children"},
			},
		},
	}
}

// SampleBlogs is the blog counterpart of SampleLessons
func SampleBlogs() []models.Blog {
	return []models.Blog{
		{
			ID:      -1,
			Title:   "Five Habits for Learning English Every Day",
			Author:  "EngLearn Team",
			Content: "Read a short article, write three sentences about it and say them out loud. Small daily practice beats long weekly sessions.",
		},
	}
}

// SampleReferences is the reference counterpart of SampleLessons
func SampleReferences() []models.Reference {
	return []models.Reference{
		{ID: -1, Title: "Cambridge Dictionary", URL: "https://dictionary.cambridge.org/", Description: "Definitions, pronunciation and example sentences."},
		{ID: -2, Title: "LanguageTool", URL: "https://languagetool.org/", Description: "Grammar and style checker used for writing feedback."},
	}
}
