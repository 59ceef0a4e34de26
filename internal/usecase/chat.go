package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"food-assist-agent/internal/domain"
	"food-assist-agent/internal/session"
)

const (
	ageRetryLimit   = 2
	defaultAge      = 25
	placeholderName = "User"
	defaultLocation = "Not specified"
	defaultFood     = "General food assistance"
)

const (
	replyGreeting = "Hello! I'm your AI food assistance helper. I'm here to help you get free food within 10 minutes. How can I assist you today?"
	replyIdle     = "I'm here to help with food assistance. Please let me know if you need food."
	replyAskName  = "Hello! I'm here to help you get food assistance. To proceed, I need a few details. Could you please tell me your name?"
	replyAskAge   = "Thank you, %s! Could you please tell me your age?"
	replyRetryAge = "I need to know your age. Could you please tell me how old you are? (e.g., 25)"
	replyAskLoc   = "Thank you! Could you please tell me your location or area where you need the food delivered?"
	replyAskFood  = "Great! Could you please tell me what kind of food you need or any specific requirements?"

	replyIncomplete = "I'm sorry, some information is missing. Please start a new conversation."
	replyConfirmed  = "Thank you %s! Your food assistance request has been confirmed. We're coordinating with our partners to ensure you receive food within 10 minutes. You will receive a confirmation shortly."
	replySaved      = " Your request has been saved in our system."
	replyNotSaved   = " Note: There was an issue saving your request. Please contact support."
	replyDone       = "Your request has already been processed. If you need another food assistance request, please start a new conversation."
	replyRecover    = "I'm here to help you get food assistance. Could you please tell me your name?"
)

// ChatService runs the intake conversation: one session per conversation,
// one required field collected per turn, fulfillment dispatched exactly once
// when the last field arrives. Every transition out of a waiting state makes
// progress; only asking_age may self-loop, and only ageRetryLimit times.
type ChatService struct {
	sessions   session.Store
	dispatcher *Dispatcher
}

type ChatInput struct {
	Message   string
	SessionID string
}

type ChatOutput struct {
	Reply     string
	SessionID string
}

func NewChatService(sessions session.Store, dispatcher *Dispatcher) (*ChatService, error) {
	if sessions == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if dispatcher == nil {
		return nil, errors.New("usecase: dispatcher must not be nil")
	}
	return &ChatService{sessions: sessions, dispatcher: dispatcher}, nil
}

// Chat consumes one inbound message and returns the next reply. A missing
// session id starts a new conversation; the generated id must be round-tripped
// by the client on every later call.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	msg := strings.TrimSpace(in.Message)

	id := strings.TrimSpace(in.SessionID)
	if id == "" {
		id = newUUID()
	}

	sess, err := s.sessions.Get(ctx, id)
	isNew := false
	switch {
	case errors.Is(err, session.ErrNotFound):
		sess = domain.NewSession(id, timeNow())
		isNew = true
	case err != nil:
		return ChatOutput{}, newError(ErrorInternal, "session_load_error", err)
	}

	slog.Debug("chat turn",
		"session_id", id, "state", sess.State.String(), "new_session", isNew)

	var reply string
	if isNew && msg == "" {
		// Initialization ping: greet, stay in start.
		reply = replyGreeting
	} else {
		reply = s.advance(ctx, sess, msg)
	}

	if err := s.sessions.Put(ctx, sess); err != nil {
		return ChatOutput{}, newError(ErrorInternal, "session_save_error", err)
	}

	return ChatOutput{Reply: reply, SessionID: id}, nil
}

// advance applies one message to the session and returns the reply. It
// mutates sess; the caller persists it.
func (s *ChatService) advance(ctx context.Context, sess *domain.Session, msg string) string {
	switch sess.State {
	case domain.StateStart:
		if msg == "" {
			return replyIdle
		}
		sess.AssistanceType = classifyIntent(msg)
		sess.State = domain.StateAskingName
		return replyAskName

	case domain.StateAskingName:
		// Any input, even empty, settles the name. Never loop here.
		switch {
		case msg == "":
			sess.PersonName = placeholderName
		default:
			if name := extractName(msg); name != "" {
				sess.PersonName = name
			} else {
				sess.PersonName = msg
			}
		}
		sess.State = domain.StateAskingAge
		return fmt.Sprintf(replyAskAge, sess.PersonName)

	case domain.StateAskingAge:
		if age := extractAge(msg); age != 0 {
			sess.Age = age
			sess.State = domain.StateAskingLocation
			return replyAskLoc
		}
		if sess.RecordAttempt(domain.FieldAge) >= ageRetryLimit {
			sess.Age = defaultAge
			if nums := findNumbers(msg); len(nums) > 0 && nums[0] >= minAge && nums[0] <= maxAge {
				sess.Age = nums[0]
			}
			sess.State = domain.StateAskingLocation
			slog.Warn("age retries exhausted, advancing with fallback",
				"session_id", sess.ID, "age", sess.Age)
			return replyAskLoc
		}
		return replyRetryAge

	case domain.StateAskingLocation:
		sess.Location = orDefault(msg, defaultLocation)
		sess.State = domain.StateAskingFoodRequirement
		return replyAskFood

	case domain.StateAskingFoodRequirement:
		sess.FoodRequirement = orDefault(msg, defaultFood)
		sess.State = domain.StateCompleted

		if !sess.Complete() {
			slog.Error("required fields missing at completion",
				"session_id", sess.ID,
				"has_name", sess.PersonName != "",
				"has_age", sess.Age != 0,
				"has_location", sess.Location != "")
			return replyIncomplete
		}

		rec := domain.FulfillmentRecord{
			PersonName:     sess.PersonName,
			Age:            sess.Age,
			Location:       sess.Location,
			FoodRequest:    sess.FoodRequirement,
			AssistanceType: sess.AssistanceType,
			SessionID:      sess.ID,
		}
		stored := s.dispatcher.Dispatch(ctx, rec)
		sess.FulfillmentTriggered = true

		reply := fmt.Sprintf(replyConfirmed, sess.PersonName)
		if stored {
			return reply + replySaved
		}
		return reply + replyNotSaved

	case domain.StateCompleted:
		return replyDone

	default:
		// Corrupted state: recover by re-entering the collection flow.
		slog.Warn("unrecognized session state, recovering",
			"session_id", sess.ID, "state", int(sess.State))
		sess.State = domain.StateAskingName
		return replyRecover
	}
}

// Test seams.
var (
	newUUID = func() string { return uuid.NewString() }
	timeNow = time.Now
)
