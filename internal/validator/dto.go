package validator

// SubjectCreateRequest covers both catalog and practice subjects.
type SubjectCreateRequest struct {
	Name            string `json:"subject_name" form:"subject_name" validate:"required,not_blank,max=255"`
	Description     string `json:"subject_description" form:"subject_description" validate:"max=2000"`
	ParentID        *uint  `json:"parent_id" form:"parent_id"`
	DisplayOrder    *int   `json:"display_order" form:"display_order" validate:"omitempty,min=0"`
	DurationMinutes *int   `json:"duration_minutes" form:"duration_minutes" validate:"omitempty,test_duration"`
}

type SubjectUpdateRequest struct {
	Name            *string `json:"subject_name" form:"subject_name" validate:"omitempty,not_blank,max=255"`
	Description     *string `json:"subject_description" form:"subject_description" validate:"omitempty,max=2000"`
	ParentID        *uint   `json:"parent_id" form:"parent_id"`
	DisplayOrder    *int    `json:"display_order" form:"display_order" validate:"omitempty,min=0"`
	DurationMinutes *int    `json:"duration_minutes" form:"duration_minutes" validate:"omitempty,test_duration"`
}

// QuestionCreateRequest arrives either as JSON or as multipart form fields
// alongside a "file" upload.
type QuestionCreateRequest struct {
	SubjectID    uint    `json:"subject_id" form:"subject_id" validate:"required"`
	QuestionText string  `json:"question_text" form:"question_text" validate:"required,not_blank"`
	ModelAnswer  string  `json:"model_answer" form:"model_answer" validate:"required,not_blank"`
	MaxMarks     int     `json:"max_marks" form:"max_marks" validate:"omitempty,min=1,max=100"`
	ImageURL     *string `json:"image_url" form:"image_url" validate:"omitempty,max=2000"`
}

type QuestionUpdateRequest struct {
	SubjectID    *uint   `json:"subject_id" form:"subject_id"`
	QuestionText *string `json:"question_text" form:"question_text" validate:"omitempty,not_blank"`
	ModelAnswer  *string `json:"model_answer" form:"model_answer" validate:"omitempty,not_blank"`
	MaxMarks     *int    `json:"max_marks" form:"max_marks" validate:"omitempty,min=1,max=100"`
	ImageURL     *string `json:"image_url" form:"image_url" validate:"omitempty,max=2000"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required,not_blank"`
	Password string `json:"password" validate:"required"`
}

type AdminCreateRequest struct {
	Username string `json:"username" validate:"required,not_blank,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type StudentCreateRequest struct {
	Name      string `json:"student_name" validate:"required,not_blank,max=255"`
	Email     string `json:"email" validate:"omitempty,email"`
	SubjectID uint   `json:"subject_id" validate:"required"`
}

// SubmissionRequest mirrors the scoring endpoint contract: the caller sends
// the model answer and marks it already holds so the endpoint stays a single
// round trip.
type SubmissionRequest struct {
	StudentID   uint   `json:"student_id" validate:"required"`
	QuestionID  uint   `json:"question_id" validate:"required"`
	Answer      string `json:"answer" validate:"required,not_blank"`
	ModelAnswer string `json:"model_answer" validate:"required"`
	MaxMarks    int    `json:"max_marks" validate:"omitempty,min=1,max=100"`
}

type SessionCreateRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
	SubjectID uint `json:"subject_id" validate:"required"`
	Practice  bool `json:"practice"`
}

type SessionAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
}
