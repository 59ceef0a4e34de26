package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"food-assist-agent/internal/usecase"
)

type stubUseCase struct {
	out usecase.ChatOutput
	err error
	in  usecase.ChatInput
}

func (s *stubUseCase) Chat(_ context.Context, in usecase.ChatInput) (usecase.ChatOutput, error) {
	s.in = in
	return s.out, s.err
}

func makeEvent(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func mustHandler(t *testing.T, uc chatUseCase, origins []string) *Handler {
	t.Helper()
	h, err := NewHandler(uc, origins)
	require.NoError(t, err)
	return h
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil, nil)
	require.Error(t, err)
}

func TestHandle_ChatHappyPath(t *testing.T) {
	uc := &stubUseCase{out: usecase.ChatOutput{Reply: "Could you please tell me your name?", SessionID: "sess-1"}}
	h := mustHandler(t, uc, nil)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/chat", `{"message":"I need food","session_id":"sess-1"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.ChatInput{Message: "I need food", SessionID: "sess-1"}, uc.in)

	out := parseBody[chatResponse](t, resp.Body)
	require.Equal(t, "Could you please tell me your name?", out.Reply)
	require.Equal(t, "sess-1", out.SessionID)
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
}

func TestHandle_ChatInvalidBody(t *testing.T) {
	h := mustHandler(t, &stubUseCase{}, nil)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/chat", `not-json`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, string(usecase.ErrorInvalidInput), out.Error)
}

func TestHandle_ChatUseCaseErrorDegradesTo200Apology(t *testing.T) {
	uc := &stubUseCase{err: &usecase.Error{Code: usecase.ErrorInternal, Reason: "session_save_error", Err: errors.New("boom")}}
	h := mustHandler(t, uc, nil)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/chat", `{"message":"hi","session_id":"sess-1"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "internal faults must never surface as error statuses")

	out := parseBody[chatResponse](t, resp.Body)
	require.Equal(t, replyFallback, out.Reply)
	require.Equal(t, "sess-1", out.SessionID, "session id is preserved when available")
}

func TestHandle_ChatMethodNotAllowed(t *testing.T) {
	h := mustHandler(t, &stubUseCase{}, nil)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/chat", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandle_ServiceEndpoints(t *testing.T) {
	h := mustHandler(t, &stubUseCase{}, nil)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/health", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "healthy", parseBody[statusResponse](t, resp.Body).Status)

	resp, err = h.Handle(context.Background(), makeEvent(http.MethodGet, "/", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "operational", parseBody[statusResponse](t, resp.Body).Status)

	resp, err = h.Handle(context.Background(), makeEvent(http.MethodGet, "/nope", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	uc := &stubUseCase{out: usecase.ChatOutput{Reply: "ok", SessionID: "sess-1"}}
	h := mustHandler(t, uc, nil)

	event := makeEvent(http.MethodPost, "/chat", `{"message":"hi"}`)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
}

func TestHandle_CORS(t *testing.T) {
	uc := &stubUseCase{out: usecase.ChatOutput{Reply: "ok", SessionID: "sess-1"}}
	h := mustHandler(t, uc, []string{"http://localhost:3000"})

	event := makeEvent(http.MethodPost, "/chat", `{"message":"hi"}`)
	event.Headers["Origin"] = "http://localhost:3000"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000", resp.Headers["Access-Control-Allow-Origin"])

	event.Headers["Origin"] = "http://evil.example"
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Empty(t, resp.Headers["Access-Control-Allow-Origin"])

	preflight := makeEvent(http.MethodOptions, "/chat", "")
	preflight.Headers["Origin"] = "http://localhost:3000"
	resp, err = h.Handle(context.Background(), preflight)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "GET,POST,OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
}
