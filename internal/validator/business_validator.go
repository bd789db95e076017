package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateSubjectCreate validates subject creation business rules
func (bv *BusinessValidator) ValidateSubjectCreate(req *SubjectCreateRequest) ValidationErrors {
	var errors ValidationErrors

	if strings.TrimSpace(req.Name) == "" {
		errors = append(errors, ValidationError{
			Field:   "subject_name",
			Message: "cannot be empty",
			Value:   req.Name,
			Rule:    "not_blank",
		})
	}

	return errors
}

// ValidateSubjectUpdate validates subject update business rules; a subject
// can never be its own parent.
func (bv *BusinessValidator) ValidateSubjectUpdate(id uint, req *SubjectUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errors = append(errors, ValidationError{
			Field:   "subject_name",
			Message: "cannot be empty",
			Value:   *req.Name,
			Rule:    "not_blank",
		})
	}

	if req.ParentID != nil && *req.ParentID == id {
		errors = append(errors, ValidationError{
			Field:   "parent_id",
			Message: "a subject cannot be its own parent",
			Value:   *req.ParentID,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateAnswer rejects empty or whitespace-only answers; advancing past a
// question requires a real answer.
func (bv *BusinessValidator) ValidateAnswer(answer string) ValidationErrors {
	if strings.TrimSpace(answer) == "" {
		return ValidationErrors{{
			Field:   "answer",
			Message: "cannot be empty or whitespace-only",
			Rule:    "not_blank",
		}}
	}
	return nil
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Test duration validation (5-300 minutes)
	bv.validate.RegisterValidation("test_duration", func(fl validator.FieldLevel) bool {
		duration := fl.Field().Int()
		return duration >= 5 && duration <= 300
	})

	// Marks validation (1-100)
	bv.validate.RegisterValidation("marks_range", func(fl validator.FieldLevel) bool {
		marks := fl.Field().Int()
		return marks >= 1 && marks <= 100
	})
}
