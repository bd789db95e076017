package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/imagingpedia/learning-service/internal/events"
	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/validator"
)

func newSubmissionService(repo *mockRepository) (SubmissionService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewSubmissionService(repo, nil, logger, validator.New(), publisher), publisher
}

func TestSubmissionService_ScoreStoresAndPublishes(t *testing.T) {
	repo := newMockRepository()
	service, publisher := newSubmissionService(repo)

	result, err := service.Score(context.Background(), &SubmissionRequest{
		StudentID:   3,
		QuestionID:  8,
		Answer:      "contrast enhancement highlights vascular structures",
		ModelAnswer: "contrast enhancement highlights vascular structures",
		MaxMarks:    20,
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if result.AIScore != 20 {
		t.Errorf("Expected full marks 20, got %v", result.AIScore)
	}
	if len(result.Improvement) != 0 {
		t.Errorf("Expected no improvement suggestions, got %v", result.Improvement)
	}

	stored, ok := repo.submissions["3:8"]
	if !ok {
		t.Fatal("Submission was not stored")
	}
	if stored.AIScore != 20 || stored.MaxMarks != 20 {
		t.Errorf("Stored submission has wrong marks: %+v", stored)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(published))
	}
	if published[0].Type != events.TypeSubmissionScored {
		t.Errorf("Expected %s event, got %s", events.TypeSubmissionScored, published[0].Type)
	}
}

func TestSubmissionService_RepeatOverwrites(t *testing.T) {
	repo := newMockRepository()
	service, _ := newSubmissionService(repo)
	ctx := context.Background()

	first := &SubmissionRequest{
		StudentID:   3,
		QuestionID:  8,
		Answer:      "something unrelated entirely",
		ModelAnswer: "contrast enhancement highlights vascular structures",
		MaxMarks:    20,
	}
	if _, err := service.Score(ctx, first); err != nil {
		t.Fatalf("First score failed: %v", err)
	}

	second := *first
	second.Answer = first.ModelAnswer
	if _, err := service.Score(ctx, &second); err != nil {
		t.Fatalf("Second score failed: %v", err)
	}

	if len(repo.submissions) != 1 {
		t.Fatalf("Expected a single stored submission, got %d", len(repo.submissions))
	}
	stored := repo.submissions["3:8"]
	if stored.AIScore != 20 {
		t.Errorf("Expected the repeat to overwrite with full marks, got %v", stored.AIScore)
	}
}

func TestSubmissionService_BlankAnswerRejected(t *testing.T) {
	repo := newMockRepository()
	service, publisher := newSubmissionService(repo)

	_, err := service.Score(context.Background(), &SubmissionRequest{
		StudentID:   3,
		QuestionID:  8,
		Answer:      "   ",
		ModelAnswer: "anything",
	})
	var validationErrors ValidationErrors
	if !errors.As(err, &validationErrors) {
		t.Fatalf("Expected validation errors, got %v", err)
	}
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("No event should be published for a rejected submission")
	}
}

func TestStudentService_CreatePublishesEvent(t *testing.T) {
	repo := newMockRepository()
	repo.subjects[1] = &models.Subject{ID: 1, Name: "Radiology", DurationMinutes: 90}
	repo.nextID = 1

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	service := NewStudentService(repo, nil, logger, validator.New(), publisher)

	student, err := service.Create(context.Background(), &CreateStudentRequest{
		Name:      "Ada",
		Email:     "ada@example.com",
		SubjectID: 1,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if student.ID == 0 {
		t.Error("Expected an assigned student id")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TypeStudentRegistered {
		t.Fatalf("Expected a single %s event, got %+v", events.TypeStudentRegistered, published)
	}

	got, err := service.GetByID(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("Expected name 'Ada', got %q", got.Name)
	}
}

func TestStudentService_CreateUnknownSubjectRejected(t *testing.T) {
	repo := newMockRepository()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewStudentService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger))

	_, err := service.Create(context.Background(), &CreateStudentRequest{
		Name:      "Ada",
		SubjectID: 42,
	})
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Fatalf("Expected subject not found, got %v", err)
	}
}
