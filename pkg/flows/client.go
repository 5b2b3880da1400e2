// Package flows calls the external assistant service that backs quiz generation,
// lesson planning, doubt solving and the other AI-assisted features.
package flows

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// QuizLength is the number of questions every generated quiz must carry.
const QuizLength = 10

// ErrInvalidResponse marks a collaborator reply that does not honour its contract.
var ErrInvalidResponse = errors.New("invalid flow response")

// Error describes a failed flow invocation.
type Error struct {
	Flow    string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("flow %s failed (%d): %s", e.Flow, e.Status, e.Message)
	}
	return fmt.Sprintf("flow %s failed: %s", e.Flow, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Client invokes flows over HTTP JSON. Every call is a single request with no retry.
type Client struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	HTTP    *http.Client
}

// New creates a client. The timeout bounds each call on top of the caller's context.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Timeout: timeout,
		HTTP:    &http.Client{},
	}
}

// Quiz flow.

type QuizRequest struct {
	Subject    string `json:"subject"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// GenerateQuiz asks for a ten question multiple-choice quiz.
func (c *Client) GenerateQuiz(ctx context.Context, req QuizRequest) (*Quiz, error) {
	var out Quiz
	if err := c.call(ctx, "generateQuiz", req, &out); err != nil {
		return nil, err
	}
	if len(out.Questions) != QuizLength {
		return nil, &Error{
			Flow:    "generateQuiz",
			Message: fmt.Sprintf("expected %d questions, got %d", QuizLength, len(out.Questions)),
			Err:     ErrInvalidResponse,
		}
	}
	return &out, nil
}

// Lesson plan flow.

type LessonPlanRequest struct {
	Subject         string `json:"subject"`
	Topic           string `json:"topic"`
	GradeLevel      string `json:"gradeLevel"`
	DurationMinutes int    `json:"durationMinutes"`
	Objectives      string `json:"objectives,omitempty"`
}

type LessonActivity struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes"`
}

type LessonPlan struct {
	Title      string           `json:"title"`
	Objectives []string         `json:"objectives"`
	Materials  []string         `json:"materials"`
	Activities []LessonActivity `json:"activities"`
	Assessment string           `json:"assessment"`
}

func (c *Client) GenerateLessonPlan(ctx context.Context, req LessonPlanRequest) (*LessonPlan, error) {
	var out LessonPlan
	if err := c.call(ctx, "generateLessonPlan", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Doubt solver flow.

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type DoubtRequest struct {
	Question     string     `json:"question"`
	PhotoDataURI string     `json:"photoDataUri,omitempty"`
	History      []ChatTurn `json:"history,omitempty"`
}

type Solution struct {
	Title string   `json:"title"`
	Steps []string `json:"steps"`
}

type DoubtAnswer struct {
	FinalAnswer string     `json:"finalAnswer"`
	Solutions   []Solution `json:"solutions"`
	Flowchart   string     `json:"flowchart,omitempty"`
}

func (c *Client) AskDoubtSolver(ctx context.Context, req DoubtRequest) (*DoubtAnswer, error) {
	var out DoubtAnswer
	if err := c.call(ctx, "askDoubtSolver", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Late fee prediction flow.

// LateFeeRequest carries the unpaid invoices as a CSV document.
type LateFeeRequest struct {
	Scope       string `json:"scope"`
	InvoicesCSV string `json:"invoicesCsv"`
}

type LateFeePrediction struct {
	StudentID   string  `json:"studentId"`
	StudentName string  `json:"studentName"`
	Probability float64 `json:"probability"`
	Reason      string  `json:"reason"`
}

type LateFeeForecast struct {
	Predictions []LateFeePrediction `json:"predictions"`
}

func (c *Client) PredictLateFeePayers(ctx context.Context, req LateFeeRequest) (*LateFeeForecast, error) {
	var out LateFeeForecast
	if err := c.call(ctx, "predictLateFeePayers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Additional student billing flow.

type BillingContact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type BillingRequest struct {
	SchoolName      string           `json:"schoolName"`
	AdditionalCount int              `json:"additionalStudents"`
	RatePerStudent  int64            `json:"ratePerStudent"`
	Contacts        []BillingContact `json:"contacts"`
}

type BillingNotice struct {
	TotalAmount  int64    `json:"totalAmount"`
	EmailSubject string   `json:"emailSubject"`
	EmailBody    string   `json:"emailBody"`
	SMSBody      string   `json:"smsBody"`
	Recipients   []string `json:"recipients"`
}

func (c *Client) AdditionalStudentBilling(ctx context.Context, req BillingRequest) (*BillingNotice, error) {
	var out BillingNotice
	if err := c.call(ctx, "additionalStudentBilling", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OCR flow.

type ExtractTextRequest struct {
	PhotoDataURI string `json:"photoDataUri"`
}

type ExtractedText struct {
	ExtractedText string `json:"extractedText"`
}

func (c *Client) ExtractTextFromImage(ctx context.Context, req ExtractTextRequest) (*ExtractedText, error) {
	var out ExtractedText
	if err := c.call(ctx, "extractTextFromImage", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Voice command flow.

type VoiceCommandRequest struct {
	Command string `json:"command"`
	Role    string `json:"role"`
}

type VoiceAction struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

func (c *Client) ProcessVoiceCommand(ctx context.Context, req VoiceCommandRequest) (*VoiceAction, error) {
	var out VoiceAction
	if err := c.call(ctx, "processVoiceCommand", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks if the flow service is reachable.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("flow service unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("flow service unhealthy: %s", resp.Status)
	}
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, flow string, in, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	body, err := json.Marshal(in)
	if err != nil {
		return &Error{Flow: flow, Message: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/flows/"+flow, bytes.NewReader(body))
	if err != nil {
		return &Error{Flow: flow, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		msg := "request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "timed out"
		} else if errors.Is(err, context.Canceled) {
			msg = "canceled"
		}
		return &Error{Flow: flow, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return &Error{Flow: flow, Status: resp.StatusCode, Message: "read response", Err: err}
	}
	if resp.StatusCode >= 300 {
		return &Error{Flow: flow, Status: resp.StatusCode, Message: remoteMessage(raw, resp.Status)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Flow: flow, Status: resp.StatusCode, Message: "decode response", Err: fmt.Errorf("%w: %v", ErrInvalidResponse, err)}
	}
	return nil
}

func remoteMessage(raw []byte, fallback string) string {
	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 512 {
		return text
	}
	return fallback
}
