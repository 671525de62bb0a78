package excel

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/example/englearn/pkg/models"
)

type fakeStore struct {
	lessons    map[string]*models.Lesson
	quizzes    map[string]*models.Quiz
	blogs      map[string]*models.Blog
	references map[string]*models.Reference
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lessons:    map[string]*models.Lesson{},
		quizzes:    map[string]*models.Quiz{},
		blogs:      map[string]*models.Blog{},
		references: map[string]*models.Reference{},
	}
}

func (f *fakeStore) FindLessonByTitle(ctx context.Context, title string) (*models.Lesson, error) {
	if l, ok := f.lessons[title]; ok {
		return l, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	f.nextID++
	lesson.ID = f.nextID
	f.lessons[lesson.Title] = lesson
	return nil
}

func (f *fakeStore) UpdateLesson(ctx context.Context, lesson *models.Lesson) error {
	f.lessons[lesson.Title] = lesson
	return nil
}

func (f *fakeStore) FindQuizByTitle(ctx context.Context, title string) (*models.Quiz, error) {
	if q, ok := f.quizzes[title]; ok {
		return q, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	f.nextID++
	quiz.ID = f.nextID
	f.quizzes[quiz.Title] = quiz
	return nil
}

func (f *fakeStore) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	f.quizzes[quiz.Title] = quiz
	return nil
}

func (f *fakeStore) UpsertBlog(ctx context.Context, blog *models.Blog) (bool, error) {
	_, exists := f.blogs[blog.Title]
	f.blogs[blog.Title] = blog
	return !exists, nil
}

func (f *fakeStore) UpsertReference(ctx context.Context, ref *models.Reference) (bool, error) {
	_, exists := f.references[ref.Title]
	f.references[ref.Title] = ref
	return !exists, nil
}

func newTestImporter(store *fakeStore) *Importer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewImporter(store, logger)
}

var lessonRows = [][]any{
	{"Title", "Section", "Text", "Answer", "Type", "Options"},
	{"Greetings", "content", "Say hello politely."},
	{"Greetings", "homework", "Nice to ___ you.", "meet", "fill-in"},
	{"Greetings", "homework", "Formal greeting?", "Good morning.", "multiple-choice", "Hey! | Good morning."},
	{"Greetings", "reading", "Anna meets Tom at work."},
	{"Greetings", "comprehension", "Where do they meet?", "At work"},
	{"Greetings", "phrase", "Nice to meet you"},
	{"Travel", "phrase", "Where is the station?"},
	{"Travel", "dancing", "???"},
	{"", "phrase", "orphan"},
}

func writeXLSX(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatal(err)
		}
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		values := r
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "content.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImport_LessonsFromExcel(t *testing.T) {
	store := newFakeStore()
	config := DefaultImportConfig()
	config.FilePath = writeXLSX(t, "Sheet1", lessonRows)

	result, err := newTestImporter(store).Import(context.Background(), config)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.TotalProcessed != 9 || result.Created != 2 || result.Skipped != 2 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Errors) != 2 || !strings.Contains(result.Errors[0], "Row 9") || !strings.Contains(result.Errors[1], "Row 10") {
		t.Fatalf("errors = %v", result.Errors)
	}

	g := store.lessons["Greetings"]
	if g == nil {
		t.Fatal("Greetings not created")
	}
	if g.Content != "Say hello politely." || !g.HasHomework() || !g.HasComprehension() || !g.HasPronunciation() {
		t.Fatalf("lesson = %+v", g)
	}
	if g.Homework[1].Type != models.QuestionMultipleChoice || len(g.Homework[1].Options) != 2 || g.Homework[1].Options[1] != "Good morning." {
		t.Fatalf("homework = %+v", g.Homework[1])
	}
	if g.Comprehension.Text != "Anna meets Tom at work." || g.Comprehension.Questions[0].CorrectAnswer != "At work" {
		t.Fatalf("comprehension = %+v", g.Comprehension)
	}

	tr := store.lessons["Travel"]
	if tr == nil || tr.HasHomework() || len(tr.Pronunciation) != 1 {
		t.Fatalf("travel = %+v", tr)
	}
}

func TestImport_UpdatesExistingByTitle(t *testing.T) {
	store := newFakeStore()
	store.lessons["Greetings"] = &models.Lesson{ID: 42, Title: "Greetings", Content: "old"}

	config := DefaultImportConfig()
	config.FilePath = writeXLSX(t, "Sheet1", lessonRows[:3])

	result, err := newTestImporter(store).Import(context.Background(), config)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Updated != 1 || result.Created != 0 {
		t.Fatalf("result = %+v", result)
	}
	if l := store.lessons["Greetings"]; l.ID != 42 || l.Content != "Say hello politely." {
		t.Fatalf("lesson = %+v", l)
	}
}

func TestImport_QuizzesFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizzes.csv")
	data := "title,section,prompt,answer\n" +
		"Basics,,Past tense of 'buy',bought\n" +
		"Basics,,Plural of 'child',children\n" +
		"Numbers,,2+2,four\n" +
		"Numbers,,no answer,\n" +
		",,,\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	store := newFakeStore()
	config := DefaultImportConfig()
	config.FilePath = path
	config.Kind = KindQuizzes

	result, err := newTestImporter(store).Import(context.Background(), config)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.TotalProcessed != 4 || result.Created != 2 || result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}
	if q := store.quizzes["Basics"]; q == nil || len(q.Questions) != 2 || q.Questions[1].CorrectAnswer != "children" {
		t.Fatalf("basics = %+v", q)
	}
}

func TestImport_BlogsFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogs.csv")
	data := "title,author,text\n" +
		"Daily Habits,Ann,Read every day.\n" +
		"Daily Habits,,Write three sentences.\n" +
		"Idioms,Bob,Break a leg!\n" +
		"Empty,Cara,\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	store := newFakeStore()
	store.blogs["Idioms"] = &models.Blog{ID: 9, Title: "Idioms", Content: "old"}
	config := DefaultImportConfig()
	config.FilePath = path
	config.Kind = KindBlogs

	result, err := newTestImporter(store).Import(context.Background(), config)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.TotalProcessed != 4 || result.Created != 1 || result.Updated != 1 || result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}
	blog := store.blogs["Daily Habits"]
	if blog == nil || blog.Author != "Ann" || blog.Content != "Read every day.\n\nWrite three sentences." {
		t.Fatalf("blog = %+v", blog)
	}
}

func TestImport_References(t *testing.T) {
	store := newFakeStore()
	config := DefaultImportConfig()
	config.Kind = KindReferences
	config.FilePath = writeXLSX(t, "Sheet1", [][]any{
		{"Title", "", "URL", "Description"},
		{"Cambridge Dictionary", "", "https://dictionary.cambridge.org/", "Definitions"},
		{"No link", "", "", "missing"},
	})

	result, err := newTestImporter(store).Import(context.Background(), config)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Created != 1 || result.Skipped != 1 || len(result.Errors) != 1 {
		t.Fatalf("result = %+v", result)
	}
	ref := store.references["Cambridge Dictionary"]
	if ref == nil || ref.URL != "https://dictionary.cambridge.org/" || ref.Description != "Definitions" {
		t.Fatalf("reference = %+v", ref)
	}
}

func TestImport_NamedSheet(t *testing.T) {
	store := newFakeStore()
	config := DefaultImportConfig()
	config.SheetName = "Lessons"
	config.FilePath = writeXLSX(t, "Lessons", lessonRows[:2])

	if _, err := newTestImporter(store).Import(context.Background(), config); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, ok := store.lessons["Greetings"]; !ok {
		t.Fatal("lesson not imported from named sheet")
	}

	config.SheetName = "Missing"
	if _, err := newTestImporter(store).Import(context.Background(), config); err == nil {
		t.Fatal("expected error for missing sheet")
	}
}

func TestImport_Errors(t *testing.T) {
	config := DefaultImportConfig()
	config.FilePath = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := newTestImporter(newFakeStore()).Import(context.Background(), config); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "x.csv")
	os.WriteFile(path, []byte("a,b\n"), 0o600)
	config.FilePath = path
	config.Kind = "videos"
	if _, err := newTestImporter(newFakeStore()).Import(context.Background(), config); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestColumnToIndex(t *testing.T) {
	tests := map[string]int{"A": 0, "b": 1, "Z": 25, "AA": 26, "AB": 27}
	for col, want := range tests {
		if got := columnToIndex(col); got != want {
			t.Errorf("columnToIndex(%q) = %d, want %d", col, got, want)
		}
	}
}

func TestSplitOptions(t *testing.T) {
	got := splitOptions(" a | b || c ")
	if strings.Join(got, ",") != "a,b,c" {
		t.Fatalf("splitOptions = %q", got)
	}
	if splitOptions("") != nil {
		t.Fatal("empty options should be nil")
	}
}
