// internal/workers/ai-assist/generate-cover-letter/models.go
package generatecoverletter

const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneConfident    = "confident"
	ToneDirect       = "direct"
)

var toneInstructions = map[string]string{
	ToneProfessional: "Use a formal and polished tone.",
	ToneFriendly:     "Use a warm but professional tone.",
	ToneConfident:    "Use a confident and strong tone.",
	ToneDirect:       "Keep it concise and straight to the point.",
}

type Input struct {
	UserID          string `json:"userId"`
	Name            string `json:"name"`
	EmploymentInfo  string `json:"employmentInfo,omitempty"`
	Income          string `json:"income,omitempty"`
	RentalHistory   string `json:"rentalHistory,omitempty"`
	CustomNote      string `json:"customNote,omitempty"`
	Tone            string `json:"tone,omitempty"`
	PropertyAddress string `json:"propertyAddress,omitempty"`
}

type Output struct {
	Content string `json:"content"`
	Tone    string `json:"tone"`
}
