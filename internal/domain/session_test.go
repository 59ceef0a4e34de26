package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStateStringAndOrder(t *testing.T) {
	ordered := []State{
		StateStart,
		StateAskingName,
		StateAskingAge,
		StateAskingLocation,
		StateAskingFoodRequirement,
		StateCompleted,
	}
	names := []string{"start", "asking_name", "asking_age", "asking_location", "asking_food_requirement", "completed"}

	for i, s := range ordered {
		require.Equal(t, names[i], s.String())
		require.True(t, s.Valid())
		if i > 0 {
			require.Greater(t, int(s), int(ordered[i-1]))
		}
	}

	require.False(t, State(99).Valid())
	require.Equal(t, "unknown", State(99).String())
}

func TestSessionAttempts(t *testing.T) {
	s := NewSession("s1", time.Now())
	require.Equal(t, 0, s.Attempts(FieldAge))
	require.Equal(t, 1, s.RecordAttempt(FieldAge))
	require.Equal(t, 2, s.RecordAttempt(FieldAge))
	require.Equal(t, 0, s.Attempts(FieldName))
}

func TestSessionComplete(t *testing.T) {
	s := NewSession("s1", time.Now())
	require.False(t, s.Complete())

	s.PersonName = "John"
	s.Age = 25
	s.Location = "Lagos"
	require.False(t, s.Complete())

	s.FoodRequirement = "rice"
	require.True(t, s.Complete())
}
