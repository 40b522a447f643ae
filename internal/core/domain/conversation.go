package domain

import "strings"

// MaxFollowUps is the number of consecutive product follow-ups allowed
// before the remembered product is forgotten.
const MaxFollowUps = 3

// Role identifies the author of a conversation message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FormatHistory renders messages as "User: ..." and "Assistant: ..." lines.
func FormatHistory(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		role := string(m.Role)
		if role != "" {
			role = strings.ToUpper(role[:1]) + role[1:]
		}
		lines = append(lines, role+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// ConversationState tracks the follow-up window of one conversation.
// It is mutated only through Advance, Remember and Reset.
type ConversationState struct {
	LastResolvedProduct *IndexedChunk
	LastIntent          Intent
	FollowUpCount       int
}

// Advance applies intent to the state and reports whether the turn
// falls inside the follow-up window.
func (s *ConversationState) Advance(intent Intent) bool {
	if !intent.IsProduct() {
		s.FollowUpCount = 0
		s.LastResolvedProduct = nil
		s.LastIntent = intent
		return false
	}

	if !s.LastIntent.IsProduct() {
		s.FollowUpCount = 0
		s.LastIntent = intent
		return false
	}

	s.FollowUpCount++
	if s.FollowUpCount > MaxFollowUps {
		s.FollowUpCount = 0
		s.LastResolvedProduct = nil
		s.LastIntent = Intent{}
		return false
	}
	s.LastIntent = intent
	return true
}

// Remember records the product resolved on this turn.
func (s *ConversationState) Remember(product IndexedChunk) {
	p := product
	s.LastResolvedProduct = &p
}

// Reset returns the state to no-product.
func (s *ConversationState) Reset() {
	*s = ConversationState{}
}

// HasProduct reports whether a product is remembered.
func (s *ConversationState) HasProduct() bool {
	return s.LastResolvedProduct != nil
}
