package usecase

import (
	"strings"

	"food-assist-agent/internal/domain"
)

// Keyword sets for classifying the first substantive message. Checked in
// order: urgency beats scheduling beats referral, default immediate.
var (
	urgentKeywords    = []string{"hungry", "starving", "need food now", "urgent", "immediate", "emergency", "asap"}
	scheduledKeywords = []string{"later", "tomorrow", "next week", "schedule", "plan"}
	ngoKeywords       = []string{"ngo", "referral", "support", "help", "assistance", "organization"}
)

// classifyIntent maps the opening message to an assistance type. It only tags
// the eventual record; the field-collection questions are identical for every
// intent.
func classifyIntent(message string) domain.AssistanceType {
	msg := strings.ToLower(message)

	if containsAny(msg, urgentKeywords) {
		return domain.AssistanceImmediate
	}
	if containsAny(msg, scheduledKeywords) {
		return domain.AssistanceScheduled
	}
	if containsAny(msg, ngoKeywords) {
		return domain.AssistanceNGOReferral
	}
	return domain.AssistanceImmediate
}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}
