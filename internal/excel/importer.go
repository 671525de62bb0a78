package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/example/englearn/pkg/models"
)

// ContentKind selects what a file contains
type ContentKind string

const (
	KindLessons    ContentKind = "lessons"
	KindQuizzes    ContentKind = "quizzes"
	KindBlogs      ContentKind = "blogs"
	KindReferences ContentKind = "references"
)

// Lesson row sections
const (
	SectionContent       = "content"
	SectionHomework      = "homework"
	SectionReading       = "reading"
	SectionComprehension = "comprehension"
	SectionPhrase        = "phrase"
)

// ContentStore is where imported content is written
type ContentStore interface {
	FindLessonByTitle(ctx context.Context, title string) (*models.Lesson, error)
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	UpdateLesson(ctx context.Context, lesson *models.Lesson) error
	FindQuizByTitle(ctx context.Context, title string) (*models.Quiz, error)
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	UpdateQuiz(ctx context.Context, quiz *models.Quiz) error
	UpsertBlog(ctx context.Context, blog *models.Blog) (bool, error)
	UpsertReference(ctx context.Context, ref *models.Reference) (bool, error)
}

// ImportConfig defines the import configuration.
//
// Every row describes one piece of a lesson or quiz; rows sharing a title
// are merged. For lessons the section column is one of content, homework,
// reading, comprehension or phrase. Quiz rows only use title, text (the
// prompt) and answer. Blog rows put the author in the section column and a
// paragraph in the text column. Reference rows put the URL in the text
// column and the description in the answer column.
type ImportConfig struct {
	FilePath      string      // Path to the Excel or CSV file
	Kind          ContentKind // Lessons or quizzes
	SheetName     string      // Name of the sheet to import (Excel only)
	StartRow      int         // The row to start importing from (1-based index)
	TitleColumn   string      // Column with the lesson or quiz title
	SectionColumn string      // Column with the lesson section
	TextColumn    string      // Column with the text, question, prompt or phrase
	AnswerColumn  string      // Column with the correct answer
	TypeColumn    string      // Column with the homework question type
	OptionsColumn string      // Column with "|" separated answer options
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		Kind:          KindLessons,
		SheetName:     "Sheet1",
		StartRow:      2, // By default, start from the second row (skip header)
		TitleColumn:   "A",
		SectionColumn: "B",
		TextColumn:    "C",
		AnswerColumn:  "D",
		TypeColumn:    "E",
		OptionsColumn: "F",
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer loads lessons and quizzes from spreadsheets
type Importer struct {
	store  ContentStore
	logger logrus.FieldLogger
}

// NewImporter creates a new importer
func NewImporter(store ContentStore, logger logrus.FieldLogger) *Importer {
	return &Importer{store: store, logger: logger}
}

// Import reads an Excel or CSV file and creates or updates the content it
// describes. Content is matched by title.
func (im *Importer) Import(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	var importErr error
	switch config.Kind {
	case KindLessons:
		importErr = im.importLessons(ctx, config, rows, result)
	case KindQuizzes:
		importErr = im.importQuizzes(ctx, config, rows, result)
	case KindBlogs:
		importErr = im.importBlogs(ctx, config, rows, result)
	case KindReferences:
		importErr = im.importReferences(ctx, config, rows, result)
	default:
		return nil, fmt.Errorf("unknown content kind %q", config.Kind)
	}
	if importErr != nil {
		return nil, importErr
	}

	im.logger.WithFields(logrus.Fields{
		"file":    config.FilePath,
		"kind":    config.Kind,
		"rows":    result.TotalProcessed,
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
		"errors":  len(result.Errors),
	}).Info("content import finished")
	return result, nil
}

// readRows returns the data rows of the file with their 1-based row numbers
func readRows(config ImportConfig) ([]row, error) {
	var raw [][]string
	var err error
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		raw, err = readCSV(config.FilePath)
	} else {
		raw, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	start := config.StartRow
	if start < 1 {
		start = 1
	}
	rows := make([]row, 0, len(raw))
	for i, cells := range raw {
		if i < start-1 {
			continue
		}
		rows = append(rows, row{num: i + 1, cells: cells})
	}
	return rows, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

type row struct {
	num   int
	cells []string
}

// cell returns the trimmed value of a column, or "" when the column is unset
// or the row is shorter
func (r row) cell(column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(r.cells) {
		return strings.TrimSpace(r.cells[idx])
	}
	return ""
}

func (r row) blank() bool {
	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (im *Importer) importLessons(ctx context.Context, config ImportConfig, rows []row, result *ImportResult) error {
	var order []string
	lessons := make(map[string]*models.Lesson)
	valid := make(map[string]bool)

	for _, r := range rows {
		if r.blank() {
			continue
		}
		result.TotalProcessed++

		title := r.cell(config.TitleColumn)
		if title == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: title cannot be empty", r.num))
			continue
		}
		lesson, ok := lessons[title]
		if !ok {
			lesson = &models.Lesson{Title: title}
			lessons[title] = lesson
			order = append(order, title)
		}
		if err := applyLessonRow(lesson, config, r); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", r.num, err))
			continue
		}
		valid[title] = true
	}

	for _, title := range order {
		if !valid[title] {
			continue
		}
		if err := im.saveLesson(ctx, lessons[title], result); err != nil {
			return err
		}
	}
	return nil
}

func applyLessonRow(lesson *models.Lesson, config ImportConfig, r row) error {
	text := r.cell(config.TextColumn)
	answer := r.cell(config.AnswerColumn)
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}

	switch section := strings.ToLower(r.cell(config.SectionColumn)); section {
	case SectionContent:
		lesson.Content = joinParagraphs(lesson.Content, text)
	case SectionHomework:
		if answer == "" {
			return fmt.Errorf("homework answer cannot be empty")
		}
		qType := strings.ToLower(r.cell(config.TypeColumn))
		if qType == "" {
			qType = models.QuestionFillIn
		}
		if qType != models.QuestionFillIn && qType != models.QuestionMultipleChoice {
			return fmt.Errorf("unknown homework type %q", qType)
		}
		lesson.Homework = append(lesson.Homework, models.HomeworkQuestion{
			Question:      text,
			Type:          qType,
			Options:       splitOptions(r.cell(config.OptionsColumn)),
			CorrectAnswer: answer,
		})
	case SectionReading:
		if lesson.Comprehension == nil {
			lesson.Comprehension = &models.Comprehension{}
		}
		lesson.Comprehension.Text = joinParagraphs(lesson.Comprehension.Text, text)
	case SectionComprehension:
		if answer == "" {
			return fmt.Errorf("comprehension answer cannot be empty")
		}
		if lesson.Comprehension == nil {
			lesson.Comprehension = &models.Comprehension{}
		}
		lesson.Comprehension.Questions = append(lesson.Comprehension.Questions, models.ComprehensionQuestion{
			Question:      text,
			Options:       splitOptions(r.cell(config.OptionsColumn)),
			CorrectAnswer: answer,
		})
	case SectionPhrase:
		lesson.Pronunciation = append(lesson.Pronunciation, text)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
	return nil
}

func (im *Importer) saveLesson(ctx context.Context, lesson *models.Lesson, result *ImportResult) error {
	existing, err := im.store.FindLessonByTitle(ctx, lesson.Title)
	switch {
	case errors.Is(err, models.ErrNotFound):
		if err := im.store.CreateLesson(ctx, lesson); err != nil {
			return fmt.Errorf("failed to create lesson %q: %w", lesson.Title, err)
		}
		result.Created++
	case err != nil:
		return fmt.Errorf("failed to look up lesson %q: %w", lesson.Title, err)
	default:
		lesson.ID = existing.ID
		lesson.CreatedAt = existing.CreatedAt
		if err := im.store.UpdateLesson(ctx, lesson); err != nil {
			return fmt.Errorf("failed to update lesson %q: %w", lesson.Title, err)
		}
		result.Updated++
	}
	return nil
}

func (im *Importer) importQuizzes(ctx context.Context, config ImportConfig, rows []row, result *ImportResult) error {
	var order []string
	quizzes := make(map[string]*models.Quiz)

	for _, r := range rows {
		if r.blank() {
			continue
		}
		result.TotalProcessed++

		title := r.cell(config.TitleColumn)
		prompt := r.cell(config.TextColumn)
		answer := r.cell(config.AnswerColumn)
		switch {
		case title == "":
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: title cannot be empty", r.num))
			continue
		case prompt == "" || answer == "":
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: prompt and answer are required", r.num))
			continue
		}

		quiz, ok := quizzes[title]
		if !ok {
			quiz = &models.Quiz{Title: title}
			quizzes[title] = quiz
			order = append(order, title)
		}
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{Prompt: prompt, CorrectAnswer: answer})
	}

	for _, title := range order {
		quiz := quizzes[title]
		existing, err := im.store.FindQuizByTitle(ctx, title)
		switch {
		case errors.Is(err, models.ErrNotFound):
			if err := im.store.CreateQuiz(ctx, quiz); err != nil {
				return fmt.Errorf("failed to create quiz %q: %w", title, err)
			}
			result.Created++
		case err != nil:
			return fmt.Errorf("failed to look up quiz %q: %w", title, err)
		default:
			quiz.ID = existing.ID
			quiz.CreatedAt = existing.CreatedAt
			if err := im.store.UpdateQuiz(ctx, quiz); err != nil {
				return fmt.Errorf("failed to update quiz %q: %w", title, err)
			}
			result.Updated++
		}
	}
	return nil
}

func (im *Importer) importBlogs(ctx context.Context, config ImportConfig, rows []row, result *ImportResult) error {
	var order []string
	blogs := make(map[string]*models.Blog)

	for _, r := range rows {
		if r.blank() {
			continue
		}
		result.TotalProcessed++

		title := r.cell(config.TitleColumn)
		text := r.cell(config.TextColumn)
		switch {
		case title == "":
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: title cannot be empty", r.num))
			continue
		case text == "":
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: text cannot be empty", r.num))
			continue
		}

		blog, ok := blogs[title]
		if !ok {
			blog = &models.Blog{Title: title}
			blogs[title] = blog
			order = append(order, title)
		}
		if author := r.cell(config.SectionColumn); author != "" {
			blog.Author = author
		}
		blog.Content = joinParagraphs(blog.Content, text)
	}

	for _, title := range order {
		created, err := im.store.UpsertBlog(ctx, blogs[title])
		if err != nil {
			return err
		}
		countSaved(result, created)
	}
	return nil
}

func (im *Importer) importReferences(ctx context.Context, config ImportConfig, rows []row, result *ImportResult) error {
	for _, r := range rows {
		if r.blank() {
			continue
		}
		result.TotalProcessed++

		ref := &models.Reference{
			Title:       r.cell(config.TitleColumn),
			URL:         r.cell(config.TextColumn),
			Description: r.cell(config.AnswerColumn),
		}
		if ref.Title == "" || ref.URL == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: title and URL are required", r.num))
			continue
		}
		created, err := im.store.UpsertReference(ctx, ref)
		if err != nil {
			return err
		}
		countSaved(result, created)
	}
	return nil
}

func countSaved(result *ImportResult, created bool) {
	if created {
		result.Created++
	} else {
		result.Updated++
	}
}

func joinParagraphs(existing, text string) string {
	if existing == "" {
		return text
	}
	return existing + "\n\n" + text
}

func splitOptions(s string) []string {
	if s == "" {
		return nil
	}
	var options []string
	for _, opt := range strings.Split(s, "|") {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	return options
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
