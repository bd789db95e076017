package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/imagingpedia/learning-service/internal/events"
	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type sessionTestEnv struct {
	repo      *mockRepository
	publisher *events.MockEventPublisher
	service   *sessionService
	clock     *time.Time
}

// newSessionTestEnv seeds one subject with two questions and one student,
// and wires the service to a controllable clock.
func newSessionTestEnv(t *testing.T) *sessionTestEnv {
	t.Helper()

	repo := newMockRepository()
	repo.subjects[1] = &models.Subject{ID: 1, Name: "Anatomy", DurationMinutes: 90, DisplayOrder: 1}
	repo.questions[2] = &models.Question{ID: 2, SubjectID: 1, QuestionText: "Name the chambers of the heart", ModelAnswer: "atria ventricles chambers", MaxMarks: 10}
	repo.questions[3] = &models.Question{ID: 3, SubjectID: 1, QuestionText: "What carries blood away", ModelAnswer: "arteries carry blood away", MaxMarks: 10}
	repo.students[4] = &models.Student{ID: 4, Name: "Ada", SubjectID: 1}
	repo.nextID = 10

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := &now

	service := &sessionService{
		repo:      repo,
		logger:    logger,
		validator: validator.New(),
		publisher: publisher,
		now:       func() time.Time { return *clock },
	}

	return &sessionTestEnv{repo: repo, publisher: publisher, service: service, clock: clock}
}

func (env *sessionTestEnv) createAndStart(t *testing.T) *models.SessionState {
	t.Helper()
	ctx := context.Background()

	state, err := env.service.Create(ctx, &CreateSessionRequest{StudentID: 4, SubjectID: 1})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	state, err = env.service.Start(ctx, state.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return state
}

func TestSessionService_CreateAndStart(t *testing.T) {
	env := newSessionTestEnv(t)
	ctx := context.Background()

	state, err := env.service.Create(ctx, &CreateSessionRequest{StudentID: 4, SubjectID: 1})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if state.Status != models.SessionNotStarted {
		t.Errorf("Expected not_started, got %s", state.Status)
	}
	if state.TotalQuestions != 2 {
		t.Errorf("Expected 2 questions, got %d", state.TotalQuestions)
	}

	state, err = env.service.Start(ctx, state.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if state.Status != models.SessionInProgress {
		t.Errorf("Expected in_progress, got %s", state.Status)
	}
	if state.CurrentIndex != 0 {
		t.Errorf("Expected index 0, got %d", state.CurrentIndex)
	}
	if state.RemainingSeconds != 90*60 {
		t.Errorf("Expected 5400 remaining seconds, got %d", state.RemainingSeconds)
	}
}

func TestSessionService_StartTwiceRejected(t *testing.T) {
	env := newSessionTestEnv(t)
	state := env.createAndStart(t)

	_, err := env.service.Start(context.Background(), state.ID)
	var bre *BusinessRuleError
	if !errors.As(err, &bre) {
		t.Fatalf("Expected business rule error, got %v", err)
	}
}

func TestSessionService_AnswerAdvancesAndScores(t *testing.T) {
	env := newSessionTestEnv(t)
	state := env.createAndStart(t)
	ctx := context.Background()

	state, err := env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 2, Answer: "the atria and ventricles are the chambers"})
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if state.CurrentIndex != 1 {
		t.Errorf("Expected index 1, got %d", state.CurrentIndex)
	}
	if state.Status != models.SessionInProgress {
		t.Errorf("Expected in_progress after first answer, got %s", state.Status)
	}
	if _, ok := state.Answers["2"]; !ok {
		t.Error("Answer for question 2 not recorded")
	}
	if _, ok := state.Scores["2"]; !ok {
		t.Error("Score for question 2 not recorded")
	}

	// The scored answer is persisted as a submission row
	if _, err := env.repo.Submission().GetByStudentAndQuestion(ctx, 4, 2); err != nil {
		t.Errorf("Expected persisted submission: %v", err)
	}
}

func TestSessionService_RepeatAnswerDoesNotAdvance(t *testing.T) {
	env := newSessionTestEnv(t)
	state := env.createAndStart(t)
	ctx := context.Background()

	state, err := env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 2, Answer: "first try"})
	if err != nil {
		t.Fatalf("First answer failed: %v", err)
	}
	if state.CurrentIndex != 1 {
		t.Fatalf("Expected index 1 after first answer, got %d", state.CurrentIndex)
	}

	// Re-answering question 2 while the cursor sits on question 3 must
	// update the stored answer without moving the cursor or submitting.
	state, err = env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 2, Answer: "second try"})
	if err != nil {
		t.Fatalf("Repeat answer failed: %v", err)
	}
	if state.Status != models.SessionInProgress {
		t.Fatalf("Expected in_progress after repeat answer, got %s", state.Status)
	}
	if state.CurrentIndex != 1 {
		t.Errorf("Expected index to stay at 1, got %d", state.CurrentIndex)
	}
	if state.Answers["2"] != "second try" {
		t.Errorf("Expected repeat answer stored, got %q", state.Answers["2"])
	}

	// Answering the actual current question still finishes the session.
	state, err = env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 3, Answer: "arteries carry blood away"})
	if err != nil {
		t.Fatalf("Final answer failed: %v", err)
	}
	if state.Status != models.SessionSubmitted {
		t.Fatalf("Expected submitted after the last question, got %s", state.Status)
	}
	if len(state.Answers) != state.TotalQuestions {
		t.Errorf("Expected all %d questions answered at completion, got %d", state.TotalQuestions, len(state.Answers))
	}
}

func TestSessionService_BackThenReanswerAdvancesAgain(t *testing.T) {
	env := newSessionTestEnv(t)
	state := env.createAndStart(t)
	ctx := context.Background()

	if _, err := env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 2, Answer: "first try"}); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if _, err := env.service.Back(ctx, state.ID); err != nil {
		t.Fatalf("Back failed: %v", err)
	}

	// After navigating back, question 2 is current again, so answering
	// it moves the cursor forward once more.
	state, err := env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 2, Answer: "revised"})
	if err != nil {
		t.Fatalf("Re-answer failed: %v", err)
	}
	if state.CurrentIndex != 1 {
		t.Errorf("Expected index 1 after re-answering the current question, got %d", state.CurrentIndex)
	}
	if state.Status != models.SessionInProgress {
		t.Errorf("Expected in_progress, got %s", state.Status)
	}
	if state.Answers["2"] != "revised" {
		t.Errorf("Expected revised answer stored, got %q", state.Answers["2"])
	}
}

func TestSessionService_LastAnswerSubmits(t *testing.T) {
	env := newSessionTestEnv(t)
	state := env.createAndStart(t)
	ctx := context.Background()

	state, err := env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 2, Answer: "atria and ventricles"})
	if err != nil {
		t.Fatalf("First answer failed: %v", err)
	}
	state, err = env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 3, Answer: "arteries carry blood away from the heart"})
	if err != nil {
		t.Fatalf("Second answer failed: %v", err)
	}

	if state.Status != models.SessionSubmitted {
		t.Fatalf("Expected submitted after last answer, got %s", state.Status)
	}
	if state.EndReason == nil || *state.EndReason != models.SessionEndReasonCompleted {
		t.Errorf("Expected end reason completed, got %v", state.EndReason)
	}

	published := env.publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(published))
	}
	if published[0].Type != events.TypeSessionSubmitted {
		t.Errorf("Expected %s event, got %s", events.TypeSessionSubmitted, published[0].Type)
	}
}

func TestSessionService_WhitespaceAnswerRejected(t *testing.T) {
	env := newSessionTestEnv(t)
	state := env.createAndStart(t)

	_, err := env.service.Answer(context.Background(), state.ID, &SessionAnswerRequest{QuestionID: 2, Answer: "   "})
	var validationErrors ValidationErrors
	if !errors.As(err, &validationErrors) {
		t.Fatalf("Expected validation errors for whitespace answer, got %v", err)
	}

	// Session unchanged
	after, getErr := env.service.Get(context.Background(), state.ID)
	if getErr != nil {
		t.Fatalf("Get failed: %v", getErr)
	}
	if after.CurrentIndex != 0 {
		t.Errorf("Index should not advance on rejected answer, got %d", after.CurrentIndex)
	}
}

func TestSessionService_BackFloorsAtZero(t *testing.T) {
	env := newSessionTestEnv(t)
	state := env.createAndStart(t)
	ctx := context.Background()

	state, err := env.service.Back(ctx, state.ID)
	if err != nil {
		t.Fatalf("Back failed: %v", err)
	}
	if state.CurrentIndex != 0 {
		t.Errorf("Expected index floored at 0, got %d", state.CurrentIndex)
	}

	state, err = env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 2, Answer: "atria"})
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	state, err = env.service.Back(ctx, state.ID)
	if err != nil {
		t.Fatalf("Back failed: %v", err)
	}
	if state.CurrentIndex != 0 {
		t.Errorf("Expected index 0 after back, got %d", state.CurrentIndex)
	}
}

func TestSessionService_ForcedSubmitAndRetake(t *testing.T) {
	env := newSessionTestEnv(t)
	state := env.createAndStart(t)
	ctx := context.Background()

	state, err := env.service.Submit(ctx, state.ID)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if state.Status != models.SessionSubmitted {
		t.Fatalf("Expected submitted, got %s", state.Status)
	}
	if state.EndReason == nil || *state.EndReason != models.SessionEndReasonForced {
		t.Errorf("Expected end reason forced, got %v", state.EndReason)
	}

	// Answering a submitted session is rejected
	_, err = env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 2, Answer: "too late"})
	var bre *BusinessRuleError
	if !errors.As(err, &bre) {
		t.Fatalf("Expected business rule error answering submitted session, got %v", err)
	}

	// Retake resets everything
	state, err = env.service.Retake(ctx, state.ID)
	if err != nil {
		t.Fatalf("Retake failed: %v", err)
	}
	if state.Status != models.SessionInProgress {
		t.Errorf("Expected in_progress after retake, got %s", state.Status)
	}
	if state.CurrentIndex != 0 || len(state.Answers) != 0 || len(state.Scores) != 0 {
		t.Errorf("Retake did not reset session: index=%d answers=%d scores=%d", state.CurrentIndex, len(state.Answers), len(state.Scores))
	}
	if state.SubmittedAt != nil || state.EndReason != nil {
		t.Error("Retake should clear submitted_at and end_reason")
	}
}

func TestSessionService_RetakeRequiresSubmitted(t *testing.T) {
	env := newSessionTestEnv(t)
	state := env.createAndStart(t)

	_, err := env.service.Retake(context.Background(), state.ID)
	var bre *BusinessRuleError
	if !errors.As(err, &bre) {
		t.Fatalf("Expected business rule error, got %v", err)
	}
}

func TestSessionService_DeadlineAutoSubmits(t *testing.T) {
	env := newSessionTestEnv(t)
	state := env.createAndStart(t)
	ctx := context.Background()

	// Move the clock past the deadline
	*env.clock = env.clock.Add(91 * time.Minute)

	// A mutating operation is rejected after the forced transition
	_, err := env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 2, Answer: "atria"})
	var bre *BusinessRuleError
	if !errors.As(err, &bre) {
		t.Fatalf("Expected business rule error past deadline, got %v", err)
	}

	state, err = env.service.Get(ctx, state.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if state.Status != models.SessionSubmitted {
		t.Errorf("Expected auto-submitted session, got %s", state.Status)
	}
	if state.EndReason == nil || *state.EndReason != models.SessionEndReasonTimeout {
		t.Errorf("Expected end reason time_out, got %v", state.EndReason)
	}
	if state.RemainingSeconds != 0 {
		t.Errorf("Expected 0 remaining seconds, got %d", state.RemainingSeconds)
	}
}

func TestSessionService_PracticeSkipsScoring(t *testing.T) {
	env := newSessionTestEnv(t)
	ctx := context.Background()

	env.repo.practiceSubjects[1] = &models.PracticeSubject{ID: 1, Name: "Anatomy", DurationMinutes: 60}
	env.repo.practiceQs[5] = &models.PracticeQuestion{ID: 5, SubjectID: 1, QuestionText: "Practice q", ModelAnswer: "practice answer", MaxMarks: 10}

	state, err := env.service.Create(ctx, &CreateSessionRequest{StudentID: 4, SubjectID: 1, Practice: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	state, err = env.service.Start(ctx, state.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if state.RemainingSeconds != 60*60 {
		t.Errorf("Expected practice duration 3600s, got %d", state.RemainingSeconds)
	}

	state, err = env.service.Answer(ctx, state.ID, &SessionAnswerRequest{QuestionID: 5, Answer: "my try"})
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if _, ok := state.Answers["5"]; !ok {
		t.Error("Practice answer should be retained in the session")
	}
	if len(state.Scores) != 0 {
		t.Errorf("Practice answers must not be scored, got %v", state.Scores)
	}
	if len(env.repo.submissions) != 0 {
		t.Errorf("Practice answers must not persist submissions, got %d", len(env.repo.submissions))
	}
}
