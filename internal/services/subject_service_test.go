package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/validator"
)

func newSubjectService(repo *mockRepository) SubjectService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewSubjectService(repo, nil, logger, validator.New())
}

func TestSubjectService_CreateDefaults(t *testing.T) {
	repo := newMockRepository()
	service := newSubjectService(repo)

	subject, err := service.Create(context.Background(), &CreateSubjectRequest{Name: "Radiology"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if subject.DisplayOrder != 1 {
		t.Errorf("Expected default display order 1, got %d", subject.DisplayOrder)
	}
	if subject.DurationMinutes != 90 {
		t.Errorf("Expected default duration 90, got %d", subject.DurationMinutes)
	}
}

func TestSubjectService_CreateBlankNameRejected(t *testing.T) {
	repo := newMockRepository()
	service := newSubjectService(repo)

	for _, name := range []string{"", "   "} {
		_, err := service.Create(context.Background(), &CreateSubjectRequest{Name: name})
		var validationErrors ValidationErrors
		if !errors.As(err, &validationErrors) {
			t.Errorf("Expected validation errors for name %q, got %v", name, err)
		}
	}
}

func TestSubjectService_CreateDuplicateNameRejected(t *testing.T) {
	repo := newMockRepository()
	service := newSubjectService(repo)
	ctx := context.Background()

	if _, err := service.Create(ctx, &CreateSubjectRequest{Name: "Pathology"}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	// Case-insensitive duplicate in the same scope
	_, err := service.Create(ctx, &CreateSubjectRequest{Name: "PATHOLOGY"})
	if !errors.Is(err, ErrDuplicateSubjectName) {
		t.Fatalf("Expected duplicate name error, got %v", err)
	}
}

func TestSubjectService_DuplicateNameAllowedUnderDifferentParent(t *testing.T) {
	repo := newMockRepository()
	service := newSubjectService(repo)
	ctx := context.Background()

	parentA, err := service.Create(ctx, &CreateSubjectRequest{Name: "Imaging"})
	if err != nil {
		t.Fatalf("Create parent failed: %v", err)
	}
	parentB, err := service.Create(ctx, &CreateSubjectRequest{Name: "Therapy"})
	if err != nil {
		t.Fatalf("Create parent failed: %v", err)
	}

	if _, err := service.Create(ctx, &CreateSubjectRequest{Name: "Basics", ParentID: &parentA.ID}); err != nil {
		t.Fatalf("Create child failed: %v", err)
	}
	if _, err := service.Create(ctx, &CreateSubjectRequest{Name: "Basics", ParentID: &parentB.ID}); err != nil {
		t.Errorf("Same name under different parent should be allowed: %v", err)
	}
}

func TestSubjectService_CreateMissingParentRejected(t *testing.T) {
	repo := newMockRepository()
	service := newSubjectService(repo)

	missing := uint(99)
	_, err := service.Create(context.Background(), &CreateSubjectRequest{Name: "Orphan", ParentID: &missing})
	if !errors.Is(err, ErrParentSubjectNotFound) {
		t.Fatalf("Expected parent not found error, got %v", err)
	}
}

func TestSubjectService_UpdateSelfParentRejected(t *testing.T) {
	repo := newMockRepository()
	service := newSubjectService(repo)
	ctx := context.Background()

	subject, err := service.Create(ctx, &CreateSubjectRequest{Name: "Cardiology"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = service.Update(ctx, subject.ID, &UpdateSubjectRequest{ParentID: &subject.ID})
	var validationErrors ValidationErrors
	if !errors.As(err, &validationErrors) {
		t.Fatalf("Expected validation errors for self-parenting, got %v", err)
	}
}

func TestSubjectService_GetNotFound(t *testing.T) {
	repo := newMockRepository()
	service := newSubjectService(repo)

	_, err := service.GetByID(context.Background(), 42)
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Fatalf("Expected subject not found, got %v", err)
	}
}

func TestSubjectService_DeleteNotFound(t *testing.T) {
	repo := newMockRepository()
	service := newSubjectService(repo)

	err := service.Delete(context.Background(), 42)
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Fatalf("Expected subject not found, got %v", err)
	}
}

func TestSubjectService_InvalidDurationRejected(t *testing.T) {
	repo := newMockRepository()
	service := newSubjectService(repo)

	for _, minutes := range []int{1, 500} {
		d := minutes
		_, err := service.Create(context.Background(), &CreateSubjectRequest{Name: "Timed", DurationMinutes: &d})
		var validationErrors ValidationErrors
		if !errors.As(err, &validationErrors) {
			t.Errorf("Expected validation errors for duration %d, got %v", minutes, err)
		}
	}
}

func TestPracticeQuestionService_BackfillsSubjectFromCatalog(t *testing.T) {
	repo := newMockRepository()
	repo.subjects[1] = &models.Subject{ID: 1, Name: "Neurology", Description: "Brain and nerves", DisplayOrder: 2, DurationMinutes: 45}
	repo.nextID = 5

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewPracticeQuestionService(repo, nil, logger, validator.New(), nil)

	question, err := service.Create(context.Background(), &CreateQuestionRequest{
		SubjectID:    1,
		QuestionText: "Name the lobes of the brain",
		ModelAnswer:  "frontal parietal temporal occipital",
	}, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if question.MaxMarks != 10 {
		t.Errorf("Expected default max marks 10, got %d", question.MaxMarks)
	}

	practice, ok := repo.practiceSubjects[1]
	if !ok {
		t.Fatal("Practice subject was not backfilled")
	}
	if practice.Name != "Neurology" || practice.DurationMinutes != 45 {
		t.Errorf("Backfilled subject should copy the catalog row, got %+v", practice)
	}
}

func TestPracticeQuestionService_UpdateBackfillsSubjectFromCatalog(t *testing.T) {
	repo := newMockRepository()
	repo.subjects[2] = &models.Subject{ID: 2, Name: "Cardiology", Description: "Heart", DisplayOrder: 3, DurationMinutes: 60}
	repo.practiceSubjects[1] = &models.PracticeSubject{ID: 1, Name: "Neurology", DisplayOrder: 1, DurationMinutes: 90}
	repo.practiceQs[4] = &models.PracticeQuestion{ID: 4, SubjectID: 1, QuestionText: "q", ModelAnswer: "a", MaxMarks: 10}
	repo.nextID = 5

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewPracticeQuestionService(repo, nil, logger, validator.New(), nil)

	newSubject := uint(2)
	question, err := service.Update(context.Background(), 4, &UpdateQuestionRequest{SubjectID: &newSubject}, nil)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if question.SubjectID != 2 {
		t.Errorf("Expected question moved to subject 2, got %d", question.SubjectID)
	}

	practice, ok := repo.practiceSubjects[2]
	if !ok {
		t.Fatal("Practice subject was not backfilled on update")
	}
	if practice.Name != "Cardiology" || practice.DurationMinutes != 60 {
		t.Errorf("Backfilled subject should copy the catalog row, got %+v", practice)
	}
}

func TestPracticeQuestionService_UpdateBackfillsPlaceholderSubject(t *testing.T) {
	repo := newMockRepository()
	repo.practiceSubjects[1] = &models.PracticeSubject{ID: 1, Name: "Neurology", DisplayOrder: 1, DurationMinutes: 90}
	repo.practiceQs[4] = &models.PracticeQuestion{ID: 4, SubjectID: 1, QuestionText: "q", ModelAnswer: "a", MaxMarks: 10}
	repo.nextID = 5

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewPracticeQuestionService(repo, nil, logger, validator.New(), nil)

	newSubject := uint(9)
	if _, err := service.Update(context.Background(), 4, &UpdateQuestionRequest{SubjectID: &newSubject}, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	practice, ok := repo.practiceSubjects[9]
	if !ok {
		t.Fatal("Practice subject was not backfilled on update")
	}
	if practice.Name != "Subject 9" {
		t.Errorf("Expected placeholder name 'Subject 9', got %q", practice.Name)
	}
}

func TestPracticeQuestionService_BackfillsPlaceholderSubject(t *testing.T) {
	repo := newMockRepository()
	repo.nextID = 5

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewPracticeQuestionService(repo, nil, logger, validator.New(), nil)

	_, err := service.Create(context.Background(), &CreateQuestionRequest{
		SubjectID:    7,
		QuestionText: "Standalone practice question",
		ModelAnswer:  "answer",
	}, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	practice, ok := repo.practiceSubjects[7]
	if !ok {
		t.Fatal("Practice subject was not backfilled")
	}
	if practice.Name != "Subject 7" {
		t.Errorf("Expected placeholder name 'Subject 7', got %q", practice.Name)
	}
}
