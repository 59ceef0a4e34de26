// Package handler adapts API Gateway proxy events to the chat usecase.
//
// The chat endpoint never surfaces business failures as error statuses:
// missing fields, sink failures and even unexpected internal faults all
// degrade to a 200 with an apologetic reply. Only an unparseable request
// body is a client error.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"food-assist-agent/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"

	replyFallback = "I'm sorry, I encountered an error. Please try again or contact support."
)

type chatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Message string `json:"message,omitempty"`
}

// Handler routes proxy events to the chat usecase and the service endpoints.
type Handler struct {
	chat        chatUseCase
	corsOrigins []string
}

// NewHandler creates a Handler. corsOrigins is the optional list of origins
// echoed back on matching requests; empty means no CORS headers.
func NewHandler(chat chatUseCase, corsOrigins []string) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat usecase must not be nil")
	}
	return &Handler{chat: chat, corsOrigins: corsOrigins}, nil
}

// Handle processes one proxy event. It always returns a nil error: failures
// are encoded in the response so the gateway never converts them to a 5xx.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Content-Type":    "application/json",
		correlationHeader: correlationID(req.Headers),
	}
	h.applyCORS(req.Headers, headers)

	if req.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: headers}, nil
	}

	switch req.Path {
	case "/chat":
		return h.handleChat(ctx, req, headers), nil
	case "/health":
		return jsonResponse(http.StatusOK, headers, statusResponse{Status: "healthy", Service: "food-assist-agent"}), nil
	case "/", "":
		return jsonResponse(http.StatusOK, headers, statusResponse{Status: "operational", Message: "Welcome to the Food Assistance API"}), nil
	default:
		return jsonResponse(http.StatusNotFound, headers, errorResponse{Error: "NOT_FOUND"}), nil
	}
}

func (h *Handler) handleChat(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	if req.HTTPMethod != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, headers, errorResponse{Error: "METHOD_NOT_ALLOWED"})
	}

	var in chatRequest
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return jsonResponse(http.StatusBadRequest, headers, errorResponse{Error: string(usecase.ErrorInvalidInput)})
	}

	out, err := h.chat.Chat(ctx, usecase.ChatInput{Message: in.Message, SessionID: in.SessionID})
	if err != nil {
		// Full detail stays server-side; the caller gets an apology.
		slog.Error("chat turn failed",
			"session_id", in.SessionID,
			"correlation_id", headers[correlationHeader],
			"err", err)
		return jsonResponse(http.StatusOK, headers, chatResponse{
			Reply:     replyFallback,
			SessionID: in.SessionID,
		})
	}

	return jsonResponse(http.StatusOK, headers, chatResponse{Reply: out.Reply, SessionID: out.SessionID})
}

func (h *Handler) applyCORS(reqHeaders, respHeaders map[string]string) {
	if len(h.corsOrigins) == 0 {
		return
	}
	origin := headerValue(reqHeaders, "Origin")
	if origin == "" {
		return
	}
	for _, allowed := range h.corsOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			respHeaders["Access-Control-Allow-Origin"] = origin
			respHeaders["Access-Control-Allow-Methods"] = "GET,POST,OPTIONS"
			respHeaders["Access-Control-Allow-Headers"] = "Content-Type"
			return
		}
	}
}

func correlationID(reqHeaders map[string]string) string {
	if v := headerValue(reqHeaders, correlationHeader); v != "" {
		return v
	}
	return uuid.NewString()
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func jsonResponse(status int, headers map[string]string, body any) events.APIGatewayProxyResponse {
	buf, err := json.Marshal(body)
	if err != nil {
		// Marshal of these fixed shapes cannot realistically fail.
		slog.Error("encode response failed", "err", err)
		buf = []byte(`{"error":"INTERNAL_ERROR"}`)
		status = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(buf),
	}
}
