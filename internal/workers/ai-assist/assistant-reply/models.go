// internal/workers/ai-assist/assistant-reply/models.go
package assistantreply

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Input struct {
	UserID       string        `json:"userId"`
	AssessmentID string        `json:"assessmentId,omitempty"`
	Message      string        `json:"message"`
	History      []ChatMessage `json:"history,omitempty"`
}

type Output struct {
	Reply        string `json:"reply"`
	AssessmentID string `json:"assessmentId,omitempty"`
}
