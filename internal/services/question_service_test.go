package services

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"os"
	"testing"

	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/validator"
)

// fakeStorage records removals without touching the filesystem.
type fakeStorage struct {
	saved   []string
	removed []string
}

func (f *fakeStorage) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	path := "/uploads/" + file.Filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeStorage) Remove(ctx context.Context, publicPath string) error {
	f.removed = append(f.removed, publicPath)
	return nil
}

func (f *fakeStorage) Dir() string { return "testdata" }

func newQuestionService(repo *mockRepository, store *fakeStorage) QuestionService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewQuestionService(repo, nil, logger, validator.New(), store)
}

func seedQuestionSubject(repo *mockRepository) {
	repo.subjects[1] = &models.Subject{ID: 1, Name: "Radiology", DurationMinutes: 90}
	repo.nextID = 1
}

func TestQuestionService_CreateDefaultsMarks(t *testing.T) {
	repo := newMockRepository()
	seedQuestionSubject(repo)
	service := newQuestionService(repo, &fakeStorage{})

	question, err := service.Create(context.Background(), &CreateQuestionRequest{
		SubjectID:    1,
		QuestionText: "Describe the chest film",
		ModelAnswer:  "pleural effusion",
	}, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if question.MaxMarks != 10 {
		t.Errorf("Expected default max marks 10, got %d", question.MaxMarks)
	}
	if question.QuestionImage != nil {
		t.Errorf("Expected no image, got %v", question.QuestionImage)
	}
}

func TestQuestionService_CreateUnknownSubjectRejected(t *testing.T) {
	repo := newMockRepository()
	service := newQuestionService(repo, &fakeStorage{})

	_, err := service.Create(context.Background(), &CreateQuestionRequest{
		SubjectID:    42,
		QuestionText: "text",
		ModelAnswer:  "answer",
	}, nil)
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Fatalf("Expected subject not found, got %v", err)
	}
}

func TestQuestionService_CreateWithExternalImageURL(t *testing.T) {
	repo := newMockRepository()
	seedQuestionSubject(repo)
	store := &fakeStorage{}
	service := newQuestionService(repo, store)

	url := "https://example.com/xray.png"
	question, err := service.Create(context.Background(), &CreateQuestionRequest{
		SubjectID:    1,
		QuestionText: "Describe the chest film",
		ModelAnswer:  "pleural effusion",
		ImageURL:     &url,
	}, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if question.QuestionImage == nil || *question.QuestionImage != url {
		t.Errorf("Expected external URL kept, got %v", question.QuestionImage)
	}
	if len(store.saved) != 0 {
		t.Errorf("No upload should happen for a URL, got %v", store.saved)
	}
}

func TestQuestionService_DeleteRemovesUploadedImage(t *testing.T) {
	repo := newMockRepository()
	seedQuestionSubject(repo)
	image := "/uploads/abc123.png"
	repo.questions[2] = &models.Question{ID: 2, SubjectID: 1, QuestionText: "q", ModelAnswer: "a", MaxMarks: 10, QuestionImage: &image}
	repo.nextID = 2
	store := &fakeStorage{}
	service := newQuestionService(repo, store)

	if err := service.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := repo.questions[2]; ok {
		t.Error("Question row should be gone")
	}
	if len(store.removed) != 1 || store.removed[0] != image {
		t.Errorf("Expected the uploaded image to be removed, got %v", store.removed)
	}
}

func TestQuestionService_DeleteLeavesExternalImage(t *testing.T) {
	repo := newMockRepository()
	seedQuestionSubject(repo)
	image := "https://example.com/xray.png"
	repo.questions[2] = &models.Question{ID: 2, SubjectID: 1, QuestionText: "q", ModelAnswer: "a", MaxMarks: 10, QuestionImage: &image}
	repo.nextID = 2
	store := &fakeStorage{}
	service := newQuestionService(repo, store)

	if err := service.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(store.removed) != 0 {
		t.Errorf("External URLs must not be removed, got %v", store.removed)
	}
}

func TestQuestionService_UpdateClearsImage(t *testing.T) {
	repo := newMockRepository()
	seedQuestionSubject(repo)
	image := "/uploads/abc123.png"
	repo.questions[2] = &models.Question{ID: 2, SubjectID: 1, QuestionText: "q", ModelAnswer: "a", MaxMarks: 10, QuestionImage: &image}
	repo.nextID = 2
	store := &fakeStorage{}
	service := newQuestionService(repo, store)

	empty := ""
	question, err := service.Update(context.Background(), 2, &UpdateQuestionRequest{ImageURL: &empty}, nil)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if question.QuestionImage != nil {
		t.Errorf("Expected image cleared, got %v", question.QuestionImage)
	}
	if len(store.removed) != 1 || store.removed[0] != image {
		t.Errorf("Expected the old upload to be removed, got %v", store.removed)
	}
}

func TestQuestionService_UpdateNotFound(t *testing.T) {
	repo := newMockRepository()
	service := newQuestionService(repo, &fakeStorage{})

	text := "new text"
	_, err := service.Update(context.Background(), 42, &UpdateQuestionRequest{QuestionText: &text}, nil)
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("Expected question not found, got %v", err)
	}
}
