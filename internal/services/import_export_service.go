package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/events"
	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
	"github.com/imagingpedia/learning-service/internal/validator"
)

const questionSheet = "Questions"

var questionColumns = []string{"Subject ID", "Question Text", "Image URL", "Model Answer", "Max Marks"}

type importExportService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewImportExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) ImportExportService {
	return &importExportService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ExportQuestions writes the whole catalog question bank as a spreadsheet in
// the same column layout ImportQuestions accepts.
func (s *importExportService) ExportQuestions(ctx context.Context, w io.Writer) error {
	questions, _, err := s.repo.Question().List(ctx, repositories.QuestionFilters{SortBy: "id", SortOrder: "asc"})
	if err != nil {
		return fmt.Errorf("failed to load questions for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(questionSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := make([]interface{}, len(questionColumns))
	for i, col := range questionColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(questionSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, q := range questions {
		image := ""
		if q.QuestionImage != nil {
			image = *q.QuestionImage
		}
		row := []interface{}{q.SubjectID, q.QuestionText, image, q.ModelAnswer, q.MaxMarks}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(questionSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write question row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	s.logger.Info("Exported questions", "count", len(questions))

	return nil
}

// ImportQuestions reads a spreadsheet in the export layout and bulk-creates
// the valid rows. Rows that fail validation are skipped and reported; they
// never abort the rest of the import.
func (s *importExportService) ImportQuestions(ctx context.Context, r io.Reader) (*models.QuestionImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewBusinessRuleError("invalid_spreadsheet", "file is not a readable spreadsheet")
	}
	defer f.Close()

	sheet := questionSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		// Fall back to the first sheet for files exported elsewhere.
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet rows: %w", err)
	}
	if len(rows) <= 1 {
		return &models.QuestionImportReport{}, nil
	}

	report := &models.QuestionImportReport{}
	subjectOK := make(map[uint]bool)
	var questions []*models.Question
	subjectSet := make(map[uint]struct{})

	for i, row := range rows[1:] {
		rowNum := i + 2

		question, err := parseQuestionRow(row)
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		ok, seen := subjectOK[question.SubjectID]
		if !seen {
			ok, err = s.repo.Subject().Exists(ctx, question.SubjectID)
			if err != nil {
				return nil, fmt.Errorf("failed to check subject: %w", err)
			}
			subjectOK[question.SubjectID] = ok
		}
		if !ok {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: subject %d does not exist", rowNum, question.SubjectID))
			continue
		}

		questions = append(questions, question)
		subjectSet[question.SubjectID] = struct{}{}
	}

	if len(questions) > 0 {
		if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to import questions: %w", err)
		}
	}
	report.Imported = len(questions)

	subjectIDs := make([]uint, 0, len(subjectSet))
	for id := range subjectSet {
		subjectIDs = append(subjectIDs, id)
	}

	event := events.NewEvent(events.TypeQuestionImported, events.QuestionImportedEvent{
		SubjectIDs: subjectIDs,
		Imported:   report.Imported,
		Skipped:    report.Skipped,
	})
	if err := s.publisher.Publish(ctx, events.TopicQuestions, event); err != nil {
		s.logger.Warn("Failed to publish question imported event", "error", err)
	}

	s.logger.Info("Imported questions", "imported", report.Imported, "skipped", report.Skipped)

	return report, nil
}

// parseQuestionRow maps one spreadsheet row onto a Question, validating the
// required cells. Column order matches questionColumns.
func parseQuestionRow(row []string) (*models.Question, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	subjectID, err := strconv.ParseUint(cell(0), 10, 32)
	if err != nil || subjectID == 0 {
		return nil, fmt.Errorf("invalid subject id %q", cell(0))
	}

	text := cell(1)
	if text == "" {
		return nil, fmt.Errorf("question text is empty")
	}

	answer := cell(3)
	if answer == "" {
		return nil, fmt.Errorf("model answer is empty")
	}

	maxMarks := 10
	if raw := cell(4); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			return nil, fmt.Errorf("invalid max marks %q", raw)
		}
		maxMarks = parsed
	}

	question := &models.Question{
		SubjectID:    uint(subjectID),
		QuestionText: text,
		ModelAnswer:  answer,
		MaxMarks:     maxMarks,
	}
	if image := cell(2); image != "" {
		question.QuestionImage = &image
	}

	return question, nil
}
