package scoring

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/example/englearn/pkg/models"
)

type fakeUsers struct {
	mu      sync.Mutex
	users   map[int64]*models.User
	saves   int
	loadErr error
}

func (f *fakeUsers) Load(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	cp.HomeworkScores = append([]models.ActivityScore(nil), u.HomeworkScores...)
	cp.ComprehensionScores = append([]models.ActivityScore(nil), u.ComprehensionScores...)
	cp.QuizScores = append([]models.ActivityScore(nil), u.QuizScores...)
	cp.PronunciationScores = append([]models.PronunciationAttempt(nil), u.PronunciationScores...)
	return &cp, nil
}

func (f *fakeUsers) Save(ctx context.Context, id int64, update models.UserUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	f.saves++
	if update.Score != nil {
		u.Score = *update.Score
	}
	for _, fix := range update.Titles {
		for _, list := range [][]models.ActivityScore{u.HomeworkScores, u.ComprehensionScores, u.QuizScores} {
			for i := range list {
				if list[i].ID == fix.ScoreID {
					list[i].Title = fix.Title
				}
			}
		}
	}
	return nil
}

func (f *fakeUsers) ListIDs(ctx context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeUsers) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []models.LeaderboardEntry
	for _, u := range f.users {
		entries = append(entries, models.LeaderboardEntry{UserID: u.ID, Name: u.Name, Score: u.Score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type fakeContent struct {
	lessons      []models.Lesson
	quizzes      []models.Quiz
	lessonLookup int
	quizLookup   int
}

func (f *fakeContent) FindLessonByID(ctx context.Context, id int64) (*models.Lesson, error) {
	f.lessonLookup++
	for i := range f.lessons {
		if f.lessons[i].ID == id {
			return &f.lessons[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeContent) FindQuizByID(ctx context.Context, id int64) (*models.Quiz, error) {
	f.quizLookup++
	for i := range f.quizzes {
		if f.quizzes[i].ID == id {
			return &f.quizzes[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeContent) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	return f.lessons, nil
}

func (f *fakeContent) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	return f.quizzes, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Two lessons, each with homework, comprehension and pronunciation, plus one quiz: 7 tasks.
func sampleContent() *fakeContent {
	lesson := func(id int64, title string) models.Lesson {
		return models.Lesson{
			ID:       id,
			Title:    title,
			Homework: models.HomeworkSet{{Question: "q", Type: models.QuestionFillIn, CorrectAnswer: "a"}},
			Comprehension: &models.Comprehension{
				Text:      "t",
				Questions: []models.ComprehensionQuestion{{Question: "q", CorrectAnswer: "a"}},
			},
			Pronunciation: models.PhraseList{"hello"},
		}
	}
	return &fakeContent{
		lessons: []models.Lesson{lesson(1, "Greetings"), lesson(2, "Travel")},
		quizzes: []models.Quiz{{ID: 10, Title: "Basics", Questions: models.QuizQuestions{{Prompt: "p", CorrectAnswer: "a"}}}},
	}
}

func TestOverallScore(t *testing.T) {
	tests := []struct {
		completed, available, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 7, 0},
		{3, 7, 43},
		{7, 7, 100},
		{1, 3, 33},
		{2, 3, 67},
		{3, 1, 100},
		{9, 4, 100},
		{-1, 4, 0},
	}
	for _, tt := range tests {
		if got := OverallScore(tt.completed, tt.available); got != tt.want {
			t.Errorf("OverallScore(%d, %d) = %d, want %d", tt.completed, tt.available, got, tt.want)
		}
	}
}

func TestAvailableTasks_SkipsMissingSections(t *testing.T) {
	lessons := []models.Lesson{
		{ID: 1, Homework: models.HomeworkSet{{Question: "q"}}},
		{ID: 2, Comprehension: &models.Comprehension{Text: "no questions"}},
		{ID: 3, Pronunciation: models.PhraseList{"a", "b"}},
	}
	if got := AvailableTasks(lessons, []models.Quiz{{ID: 1}}); got != 3 {
		t.Fatalf("AvailableTasks = %d, want 3", got)
	}
}

func TestRecompute_PercentageOfCompletedTasks(t *testing.T) {
	users := &fakeUsers{users: map[int64]*models.User{
		1: {
			ID:   1,
			Name: "ann",
			HomeworkScores: []models.ActivityScore{
				{ID: 1, Kind: models.ActivityHomework, ContentID: 1, Title: "Greetings"},
			},
			QuizScores: []models.ActivityScore{
				{ID: 2, Kind: models.ActivityQuiz, ContentID: 10, Title: "Basics"},
			},
			PronunciationScores: []models.PronunciationAttempt{
				{LessonID: 1, Phrase: "hello", Correct: true, Attempts: 2},
				{LessonID: 2, Phrase: "hello", Correct: false, Attempts: 5},
			},
		},
	}}
	agg := NewAggregator(users, sampleContent(), quietLogger())

	score, err := agg.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if score != 43 {
		t.Fatalf("score = %d, want 43", score)
	}
	if users.users[1].Score != 43 {
		t.Fatalf("stored score = %d, want 43", users.users[1].Score)
	}
}

func TestRecompute_ScoreNeverExceedsHundred(t *testing.T) {
	users := &fakeUsers{users: map[int64]*models.User{
		1: {
			ID: 1,
			PronunciationScores: []models.PronunciationAttempt{
				{LessonID: 1, Phrase: "a", Correct: true, Attempts: 1},
				{LessonID: 1, Phrase: "b", Correct: true, Attempts: 1},
				{LessonID: 1, Phrase: "c", Correct: true, Attempts: 3},
			},
		},
	}}
	content := &fakeContent{lessons: []models.Lesson{
		{ID: 1, Title: "Sounds", Pronunciation: models.PhraseList{"a", "b", "c"}},
	}}
	agg := NewAggregator(users, content, quietLogger())

	score, err := agg.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if score != 100 || users.users[1].Score != 100 {
		t.Fatalf("score = %d stored = %d, want 100", score, users.users[1].Score)
	}
}

func TestRecompute_NoContentScoresZero(t *testing.T) {
	users := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, Score: 50, QuizScores: []models.ActivityScore{{ID: 1, ContentID: 99, Title: "Old"}}},
	}}
	agg := NewAggregator(users, &fakeContent{}, quietLogger())

	score, err := agg.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if score != 0 || users.users[1].Score != 0 {
		t.Fatalf("score = %d stored = %d, want 0", score, users.users[1].Score)
	}
}

func TestRecompute_BackfillsTitles(t *testing.T) {
	users := &fakeUsers{users: map[int64]*models.User{
		1: {
			ID: 1,
			HomeworkScores: []models.ActivityScore{
				{ID: 1, ContentID: 1, Title: ""},
				{ID: 2, ContentID: 2, Title: UntitledLesson},
				{ID: 3, ContentID: 404, Title: ""},
			},
			ComprehensionScores: []models.ActivityScore{
				{ID: 4, ContentID: 1, Title: "Kept"},
			},
			QuizScores: []models.ActivityScore{
				{ID: 5, ContentID: 10, Title: UntitledQuiz},
				{ID: 6, ContentID: 404, Title: ""},
			},
		},
	}}
	content := sampleContent()
	agg := NewAggregator(users, content, quietLogger())

	if _, err := agg.Recompute(context.Background(), 1); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	u := users.users[1]
	wantHomework := []string{"Greetings", "Travel", UnknownLesson}
	for i, want := range wantHomework {
		if got := u.HomeworkScores[i].Title; got != want {
			t.Errorf("homework[%d].Title = %q, want %q", i, got, want)
		}
	}
	if got := u.ComprehensionScores[0].Title; got != "Kept" {
		t.Errorf("comprehension title = %q, want unchanged", got)
	}
	if got := u.QuizScores[0].Title; got != "Basics" {
		t.Errorf("quiz[0].Title = %q, want Basics", got)
	}
	if got := u.QuizScores[1].Title; got != UnknownQuiz {
		t.Errorf("quiz[1].Title = %q, want %q", got, UnknownQuiz)
	}
	if content.lessonLookup != 3 || content.quizLookup != 2 {
		t.Errorf("lookups = %d lessons, %d quizzes; want 3 and 2", content.lessonLookup, content.quizLookup)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	users := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, HomeworkScores: []models.ActivityScore{{ID: 1, ContentID: 1}}},
	}}
	content := sampleContent()
	agg := NewAggregator(users, content, quietLogger())

	first, err := agg.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("first Recompute: %v", err)
	}
	lookups := content.lessonLookup
	second, err := agg.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("second Recompute: %v", err)
	}
	if first != second {
		t.Fatalf("scores differ: %d then %d", first, second)
	}
	if content.lessonLookup != lookups {
		t.Fatalf("titled records looked up again: %d lookups, want %d", content.lessonLookup, lookups)
	}
}

func TestRecompute_UnknownUser(t *testing.T) {
	agg := NewAggregator(&fakeUsers{users: map[int64]*models.User{}}, sampleContent(), quietLogger())
	_, err := agg.Recompute(context.Background(), 7)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecomputeAll(t *testing.T) {
	users := &fakeUsers{users: map[int64]*models.User{}}
	for id := int64(1); id <= 20; id++ {
		users.users[id] = &models.User{ID: id, QuizScores: []models.ActivityScore{{ID: id, ContentID: 10, Title: "Basics"}}}
	}
	agg := NewAggregator(users, sampleContent(), quietLogger())

	if err := agg.RecomputeAll(context.Background()); err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	for id, u := range users.users {
		if u.Score != 14 {
			t.Errorf("user %d score = %d, want 14", id, u.Score)
		}
	}
}

func TestRecomputeAll_StopsWhenStoreUnavailable(t *testing.T) {
	users := &fakeUsers{
		users:   map[int64]*models.User{1: {ID: 1}},
		loadErr: models.ErrUnavailable,
	}
	agg := NewAggregator(users, sampleContent(), quietLogger())
	if err := agg.RecomputeAll(context.Background()); !errors.Is(err, models.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestLeaderboard(t *testing.T) {
	users := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, Name: "cara", Score: 50},
		2: {ID: 2, Name: "ann", Score: 80},
		3: {ID: 3, Name: "bob", Score: 50},
	}}
	agg := NewAggregator(users, &fakeContent{}, quietLogger())

	entries, err := agg.Leaderboard(context.Background(), 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	want := []string{"ann", "bob", "cara"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Name, name)
		}
	}

	top, _ := agg.Leaderboard(context.Background(), 1)
	if len(top) != 1 || top[0].Name != "ann" {
		t.Fatalf("top 1 = %+v", top)
	}
}

func TestUserLocks_SerialisesSameUser(t *testing.T) {
	locks := newUserLocks()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(1)
			counter++
			unlock()
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
	if len(locks.locks) != 0 {
		t.Fatalf("lock entries leaked: %d", len(locks.locks))
	}
}
