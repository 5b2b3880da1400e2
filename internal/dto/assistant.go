package dto

// QuizRequest captures POST /ai/quiz.
type QuizRequest struct {
	Subject    string `json:"subject" validate:"required"`
	Topic      string `json:"topic" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

// LessonPlanRequest captures POST /ai/lesson-plan.
type LessonPlanRequest struct {
	Subject         string `json:"subject" validate:"required"`
	Topic           string `json:"topic" validate:"required"`
	GradeLevel      string `json:"gradeLevel" validate:"required"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=10,max=240"`
	Objectives      string `json:"objectives"`
}

// ChatTurn is one prior exchange in a doubt-solver conversation.
type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user model"`
	Content string `json:"content" validate:"required"`
}

// DoubtRequest captures POST /ai/doubt-solver. Either a question or a photo is required.
type DoubtRequest struct {
	Question     string     `json:"question" validate:"required_without=PhotoDataURI"`
	PhotoDataURI string     `json:"photoDataUri" validate:"omitempty,datauri"`
	History      []ChatTurn `json:"history" validate:"dive"`
}

// LateFeeRequest captures POST /ai/late-fees; an empty scope predicts over every unpaid invoice.
type LateFeeRequest struct {
	Scope string `json:"scope"`
}

// BillingContact is a recipient of an additional-student billing notice.
type BillingContact struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// BillingRequest captures POST /ai/billing.
type BillingRequest struct {
	SchoolName      string           `json:"schoolName"`
	AdditionalCount int              `json:"additionalStudents" validate:"required,min=1"`
	RatePerStudent  int64            `json:"ratePerStudent" validate:"required,min=1"`
	Contacts        []BillingContact `json:"contacts" validate:"required,min=1,dive"`
}

// ExtractTextRequest captures POST /ai/ocr.
type ExtractTextRequest struct {
	PhotoDataURI string `json:"photoDataUri" validate:"required,datauri"`
}

// VoiceCommandRequest captures POST /ai/voice.
type VoiceCommandRequest struct {
	Command string `json:"command" validate:"required"`
}
