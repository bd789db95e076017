package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests.
type mockRepository struct {
	subjects         map[uint]*models.Subject
	practiceSubjects map[uint]*models.PracticeSubject
	questions        map[uint]*models.Question
	practiceQs       map[uint]*models.PracticeQuestion
	students         map[uint]*models.Student
	sessions         map[uint]*models.TestSession
	submissions      map[string]*models.Submission
	admins           map[uint]*models.AdminAccount

	nextID uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		subjects:         make(map[uint]*models.Subject),
		practiceSubjects: make(map[uint]*models.PracticeSubject),
		questions:        make(map[uint]*models.Question),
		practiceQs:       make(map[uint]*models.PracticeQuestion),
		students:         make(map[uint]*models.Student),
		sessions:         make(map[uint]*models.TestSession),
		submissions:      make(map[string]*models.Submission),
		admins:           make(map[uint]*models.AdminAccount),
	}
}

func (m *mockRepository) nextKey() uint {
	m.nextID++
	return m.nextID
}

func (m *mockRepository) Subject() repositories.SubjectRepository { return &mockSubjectRepo{m} }
func (m *mockRepository) PracticeSubject() repositories.PracticeSubjectRepository {
	return &mockPracticeSubjectRepo{m}
}
func (m *mockRepository) Question() repositories.QuestionRepository { return &mockQuestionRepo{m} }
func (m *mockRepository) PracticeQuestion() repositories.PracticeQuestionRepository {
	return &mockPracticeQuestionRepo{m}
}
func (m *mockRepository) Student() repositories.StudentRepository { return &mockStudentRepo{m} }
func (m *mockRepository) Submission() repositories.SubmissionRepository {
	return &mockSubmissionRepo{m}
}
func (m *mockRepository) Session() repositories.SessionRepository { return &mockSessionRepo{m} }
func (m *mockRepository) Admin() repositories.AdminRepository     { return &mockAdminRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== SUBJECTS =====

type mockSubjectRepo struct{ m *mockRepository }

func (r *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = r.m.nextKey()
	r.m.subjects[subject.ID] = subject
	return nil
}

func (r *mockSubjectRepo) GetByID(ctx context.Context, id uint) (*models.Subject, error) {
	if s, ok := r.m.subjects[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSubjectRepo) GetByIDWithChildren(ctx context.Context, id uint) (*models.Subject, error) {
	subject, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, s := range r.m.subjects {
		if s.ParentID != nil && *s.ParentID == id {
			subject.Children = append(subject.Children, *s)
		}
	}
	return subject, nil
}

func (r *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	if _, ok := r.m.subjects[subject.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.subjects[subject.ID] = subject
	return nil
}

func (r *mockSubjectRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.m.subjects[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.subjects, id)
	return nil
}

func (r *mockSubjectRepo) List(ctx context.Context) ([]*models.Subject, error) {
	out := make([]*models.Subject, 0, len(r.m.subjects))
	for _, s := range r.m.subjects {
		out = append(out, s)
	}
	return out, nil
}

func (r *mockSubjectRepo) Exists(ctx context.Context, id uint) (bool, error) {
	_, ok := r.m.subjects[id]
	return ok, nil
}

func (r *mockSubjectRepo) ExistsByNameInScope(ctx context.Context, name string, parentID *uint, excludeID *uint) (bool, error) {
	for _, s := range r.m.subjects {
		if excludeID != nil && s.ID == *excludeID {
			continue
		}
		if !strings.EqualFold(s.Name, name) {
			continue
		}
		if sameParent(s.ParentID, parentID) {
			return true, nil
		}
	}
	return false, nil
}

func sameParent(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ===== PRACTICE SUBJECTS =====

type mockPracticeSubjectRepo struct{ m *mockRepository }

func (r *mockPracticeSubjectRepo) Create(ctx context.Context, subject *models.PracticeSubject) error {
	subject.ID = r.m.nextKey()
	r.m.practiceSubjects[subject.ID] = subject
	return nil
}

func (r *mockPracticeSubjectRepo) CreateWithID(ctx context.Context, subject *models.PracticeSubject) error {
	if _, ok := r.m.practiceSubjects[subject.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.m.practiceSubjects[subject.ID] = subject
	return nil
}

func (r *mockPracticeSubjectRepo) GetByID(ctx context.Context, id uint) (*models.PracticeSubject, error) {
	if s, ok := r.m.practiceSubjects[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockPracticeSubjectRepo) GetByIDWithChildren(ctx context.Context, id uint) (*models.PracticeSubject, error) {
	return r.GetByID(ctx, id)
}

func (r *mockPracticeSubjectRepo) Update(ctx context.Context, subject *models.PracticeSubject) error {
	if _, ok := r.m.practiceSubjects[subject.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.practiceSubjects[subject.ID] = subject
	return nil
}

func (r *mockPracticeSubjectRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.m.practiceSubjects[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.practiceSubjects, id)
	return nil
}

func (r *mockPracticeSubjectRepo) List(ctx context.Context) ([]*models.PracticeSubject, error) {
	out := make([]*models.PracticeSubject, 0, len(r.m.practiceSubjects))
	for _, s := range r.m.practiceSubjects {
		out = append(out, s)
	}
	return out, nil
}

func (r *mockPracticeSubjectRepo) ListRoots(ctx context.Context) ([]*models.PracticeSubject, error) {
	var out []*models.PracticeSubject
	for _, s := range r.m.practiceSubjects {
		if s.ParentID == nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *mockPracticeSubjectRepo) Exists(ctx context.Context, id uint) (bool, error) {
	_, ok := r.m.practiceSubjects[id]
	return ok, nil
}

func (r *mockPracticeSubjectRepo) ExistsByNameInScope(ctx context.Context, name string, parentID *uint, excludeID *uint) (bool, error) {
	for _, s := range r.m.practiceSubjects {
		if excludeID != nil && s.ID == *excludeID {
			continue
		}
		if strings.EqualFold(s.Name, name) && sameParent(s.ParentID, parentID) {
			return true, nil
		}
	}
	return false, nil
}

// ===== QUESTIONS =====

type mockQuestionRepo struct{ m *mockRepository }

func (r *mockQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	question.ID = r.m.nextKey()
	r.m.questions[question.ID] = question
	return nil
}

func (r *mockQuestionRepo) CreateBatch(ctx context.Context, questions []*models.Question) error {
	for _, q := range questions {
		q.ID = r.m.nextKey()
		r.m.questions[q.ID] = q
	}
	return nil
}

func (r *mockQuestionRepo) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	if q, ok := r.m.questions[id]; ok {
		copied := *q
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockQuestionRepo) Update(ctx context.Context, question *models.Question) error {
	if _, ok := r.m.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.questions[question.ID] = question
	return nil
}

func (r *mockQuestionRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.m.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.questions, id)
	return nil
}

func (r *mockQuestionRepo) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var out []*models.Question
	for _, q := range r.m.questions {
		if filters.SubjectID != nil && q.SubjectID != *filters.SubjectID {
			continue
		}
		out = append(out, q)
	}
	return out, int64(len(out)), nil
}

func (r *mockQuestionRepo) GetBySubject(ctx context.Context, subjectID uint) ([]*models.Question, error) {
	var out []*models.Question
	// Stable id order so session indexes are deterministic
	for id := uint(1); id <= r.m.nextID; id++ {
		if q, ok := r.m.questions[id]; ok && q.SubjectID == subjectID {
			out = append(out, q)
		}
	}
	return out, nil
}

// ===== PRACTICE QUESTIONS =====

type mockPracticeQuestionRepo struct{ m *mockRepository }

func (r *mockPracticeQuestionRepo) Create(ctx context.Context, question *models.PracticeQuestion) error {
	question.ID = r.m.nextKey()
	r.m.practiceQs[question.ID] = question
	return nil
}

func (r *mockPracticeQuestionRepo) GetByID(ctx context.Context, id uint) (*models.PracticeQuestion, error) {
	if q, ok := r.m.practiceQs[id]; ok {
		copied := *q
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockPracticeQuestionRepo) Update(ctx context.Context, question *models.PracticeQuestion) error {
	if _, ok := r.m.practiceQs[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.practiceQs[question.ID] = question
	return nil
}

func (r *mockPracticeQuestionRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.m.practiceQs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.practiceQs, id)
	return nil
}

func (r *mockPracticeQuestionRepo) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.PracticeQuestion, int64, error) {
	var out []*models.PracticeQuestion
	for _, q := range r.m.practiceQs {
		if filters.SubjectID != nil && q.SubjectID != *filters.SubjectID {
			continue
		}
		out = append(out, q)
	}
	return out, int64(len(out)), nil
}

func (r *mockPracticeQuestionRepo) GetBySubject(ctx context.Context, subjectID uint) ([]*models.PracticeQuestion, error) {
	var out []*models.PracticeQuestion
	for id := uint(1); id <= r.m.nextID; id++ {
		if q, ok := r.m.practiceQs[id]; ok && q.SubjectID == subjectID {
			out = append(out, q)
		}
	}
	return out, nil
}

// ===== STUDENTS, SUBMISSIONS, SESSIONS, ADMINS =====

type mockStudentRepo struct{ m *mockRepository }

func (r *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = r.m.nextKey()
	r.m.students[student.ID] = student
	return nil
}

func (r *mockStudentRepo) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	if s, ok := r.m.students[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockStudentRepo) Exists(ctx context.Context, id uint) (bool, error) {
	_, ok := r.m.students[id]
	return ok, nil
}

type mockSubmissionRepo struct{ m *mockRepository }

func submissionKey(studentID, questionID uint) string {
	return fmt.Sprintf("%d:%d", studentID, questionID)
}

func (r *mockSubmissionRepo) Upsert(ctx context.Context, submission *models.Submission) error {
	key := submissionKey(submission.StudentID, submission.QuestionID)
	if existing, ok := r.m.submissions[key]; ok {
		submission.ID = existing.ID
	} else {
		submission.ID = r.m.nextKey()
	}
	r.m.submissions[key] = submission
	return nil
}

func (r *mockSubmissionRepo) GetByStudentAndQuestion(ctx context.Context, studentID, questionID uint) (*models.Submission, error) {
	if s, ok := r.m.submissions[submissionKey(studentID, questionID)]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSubmissionRepo) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var out []*models.Submission
	for _, s := range r.m.submissions {
		if filters.StudentID != nil && s.StudentID != *filters.StudentID {
			continue
		}
		if filters.QuestionID != nil && s.QuestionID != *filters.QuestionID {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

type mockSessionRepo struct{ m *mockRepository }

func (r *mockSessionRepo) Create(ctx context.Context, session *models.TestSession) error {
	session.ID = r.m.nextKey()
	copied := *session
	r.m.sessions[session.ID] = &copied
	return nil
}

func (r *mockSessionRepo) GetByID(ctx context.Context, id uint) (*models.TestSession, error) {
	if s, ok := r.m.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSessionRepo) Update(ctx context.Context, session *models.TestSession) error {
	if _, ok := r.m.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *session
	r.m.sessions[session.ID] = &copied
	return nil
}

func (r *mockSessionRepo) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.TestSession, int64, error) {
	var out []*models.TestSession
	for _, s := range r.m.sessions {
		if filters.StudentID != nil && s.StudentID != *filters.StudentID {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

type mockAdminRepo struct{ m *mockRepository }

func (r *mockAdminRepo) Create(ctx context.Context, admin *models.AdminAccount) error {
	for _, a := range r.m.admins {
		if a.Username == admin.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	admin.ID = r.m.nextKey()
	r.m.admins[admin.ID] = admin
	return nil
}

func (r *mockAdminRepo) GetByUsername(ctx context.Context, username string) (*models.AdminAccount, error) {
	for _, a := range r.m.admins {
		if a.Username == username {
			copied := *a
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAdminRepo) GetByID(ctx context.Context, id uint) (*models.AdminAccount, error) {
	if a, ok := r.m.admins[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}
