package domain

import "time"

// State is the conversation step a session is currently waiting on. States
// are ordered; a session only ever moves forward through them.
type State int

const (
	StateStart State = iota
	StateAskingName
	StateAskingAge
	StateAskingLocation
	StateAskingFoodRequirement
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAskingName:
		return "asking_name"
	case StateAskingAge:
		return "asking_age"
	case StateAskingLocation:
		return "asking_location"
	case StateAskingFoodRequirement:
		return "asking_food_requirement"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the defined conversation states. An
// out-of-range value means the session record was corrupted; callers recover
// by re-entering at StateAskingName.
func (s State) Valid() bool {
	return s >= StateStart && s <= StateCompleted
}

// AssistanceType tags the kind of help the requester asked for. It is
// classified once from the first substantive message and only labels the
// resulting record; it never changes the questions asked.
type AssistanceType string

const (
	AssistanceImmediate   AssistanceType = "immediate"
	AssistanceScheduled   AssistanceType = "scheduled"
	AssistanceNGOReferral AssistanceType = "ngo_referral"
)

// Field names a collectible session field, used to key bounded retry
// counters. Only FieldAge has a retry budget today.
type Field string

const (
	FieldName            Field = "person_name"
	FieldAge             Field = "age"
	FieldLocation        Field = "location"
	FieldFoodRequirement Field = "food_requirement"
)

// Session is the per-conversation state kept between chat turns. Age uses 0
// as "not yet provided"; valid ages are 1 through 120.
type Session struct {
	ID                   string
	State                State
	PersonName           string
	Age                  int
	Location             string
	FoodRequirement      string
	AssistanceType       AssistanceType
	FulfillmentTriggered bool

	attempts map[Field]int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession returns a fresh session in StateStart with the default
// assistance type.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:             id,
		State:          StateStart,
		AssistanceType: AssistanceImmediate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Attempts returns the number of failed extraction attempts recorded for f.
func (s *Session) Attempts(f Field) int {
	return s.attempts[f]
}

// RecordAttempt increments and returns the failed-attempt count for f.
func (s *Session) RecordAttempt(f Field) int {
	if s.attempts == nil {
		s.attempts = make(map[Field]int)
	}
	s.attempts[f]++
	return s.attempts[f]
}

// Complete reports whether every required field has been collected.
func (s *Session) Complete() bool {
	return s.PersonName != "" && s.Age != 0 && s.Location != "" && s.FoodRequirement != ""
}

// FulfillmentRecord is the immutable snapshot of a completed request, built
// exactly once when the last field arrives and handed to the sinks.
type FulfillmentRecord struct {
	PersonName     string         `json:"person_name"`
	Age            int            `json:"age"`
	Location       string         `json:"location"`
	FoodRequest    string         `json:"food_request"`
	AssistanceType AssistanceType `json:"assistance_type"`
	SessionID      string         `json:"-"`
}
