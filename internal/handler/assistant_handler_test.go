package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/flows"
)

type assistantStub struct {
	quizErr   error
	lateScope models.Scope
	lateReq   dto.LateFeeRequest
	voiceRole models.UserRole
}

func (s *assistantStub) GenerateQuiz(_ context.Context, req dto.QuizRequest) (*flows.Quiz, error) {
	if s.quizErr != nil {
		return nil, s.quizErr
	}
	return &flows.Quiz{Questions: []flows.QuizQuestion{{Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"}}}, nil
}

func (s *assistantStub) GenerateLessonPlan(context.Context, dto.LessonPlanRequest) (*flows.LessonPlan, error) {
	return &flows.LessonPlan{}, nil
}

func (s *assistantStub) AskDoubtSolver(context.Context, dto.DoubtRequest) (*flows.DoubtAnswer, error) {
	return &flows.DoubtAnswer{}, nil
}

func (s *assistantStub) PredictLateFeePayers(_ context.Context, scope models.Scope, req dto.LateFeeRequest) (*flows.LateFeeForecast, error) {
	s.lateScope, s.lateReq = scope, req
	return &flows.LateFeeForecast{Predictions: []flows.LateFeePrediction{{StudentID: "STU2", Probability: 0.8}}}, nil
}

func (s *assistantStub) AdditionalStudentBilling(context.Context, dto.BillingRequest) (*flows.BillingNotice, error) {
	return &flows.BillingNotice{}, nil
}

func (s *assistantStub) ExtractTextFromImage(context.Context, dto.ExtractTextRequest) (*flows.ExtractedText, error) {
	return &flows.ExtractedText{}, nil
}

func (s *assistantStub) ProcessVoiceCommand(_ context.Context, scope models.Scope, _ dto.VoiceCommandRequest) (*flows.VoiceAction, error) {
	s.voiceRole = scope.Role
	return &flows.VoiceAction{Action: "navigate", Target: "/fees"}, nil
}

func TestAssistantHandlerQuiz(t *testing.T) {
	h := NewAssistantHandler(&assistantStub{})

	body, _ := json.Marshal(dto.QuizRequest{Subject: "Math", Topic: "Addition", Difficulty: "easy"})
	c, w := newGinContext(http.MethodPost, "/ai/quiz", body)
	withClaims(c, principalClaims)
	h.Quiz(c)

	require.Equal(t, http.StatusOK, w.Code)
	var quiz flows.Quiz
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &quiz))
	assert.Equal(t, "4", quiz.Questions[0].CorrectAnswer)
}

func TestAssistantHandlerFlowFailure(t *testing.T) {
	flowErr := appErrors.Wrap(errors.New("upstream 500"), appErrors.ErrFlowFailed.Code, appErrors.ErrFlowFailed.Status, "model overloaded")
	h := NewAssistantHandler(&assistantStub{quizErr: flowErr})

	body, _ := json.Marshal(dto.QuizRequest{Subject: "Math", Topic: "Addition", Difficulty: "easy"})
	c, w := newGinContext(http.MethodPost, "/ai/quiz", body)
	withClaims(c, principalClaims)
	h.Quiz(c)

	require.Equal(t, http.StatusBadGateway, w.Code)
	env := decode(t, w)
	assert.Equal(t, "FLOW_FAILED", env.Error.Code)
	assert.Equal(t, "model overloaded", env.Error.Message)
}

func TestAssistantHandlerLateFeesAcceptsEmptyBody(t *testing.T) {
	svc := &assistantStub{}
	h := NewAssistantHandler(svc)

	c, w := newGinContext(http.MethodPost, "/ai/late-fees", nil)
	withClaims(c, principalClaims)
	h.LateFees(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "school-1", svc.lateScope.SchoolID)
	assert.Empty(t, svc.lateReq.Scope)
}

func TestAssistantHandlerVoicePassesScope(t *testing.T) {
	svc := &assistantStub{}
	h := NewAssistantHandler(svc)

	body, _ := json.Marshal(dto.VoiceCommandRequest{Command: "show my fees"})
	c, w := newGinContext(http.MethodPost, "/ai/voice", body)
	withClaims(c, parentClaims)
	h.VoiceCommand(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleParent, svc.voiceRole)
}
