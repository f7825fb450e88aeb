package enrichment

import (
	"fmt"
	"strings"

	"github.com/gwpulse/gwpulse/internal/models"
)

// PromptTemplates holds the system and per-event prompts sent to the
// text-generation service.
type PromptTemplates struct {
	SystemPrompt string
}

// NewPromptTemplates creates the default prompt set.
func NewPromptTemplates() *PromptTemplates {
	return &PromptTemplates{
		SystemPrompt: buildSystemPrompt(),
	}
}

func buildSystemPrompt() string {
	return `CRITICAL: You MUST output ONLY valid JSON. Do not include any text before or after the JSON object. Do not wrap it in markdown code blocks.

You are an astrophysicist and science communicator. You are given the raw catalog metadata of a gravitational-wave detection and must explain it for a general audience.

Guidelines:
- Stay strictly within what the metadata supports; do not invent measurements
- Use the labels and false-alarm rate to judge how confident and exciting the detection is
- Plain language, one short paragraph, analogies welcome

Output Format: Your response MUST be ONLY this exact JSON structure:
{
  "title": "Catchy but accurate headline (e.g. \"Black hole collision detected\")",
  "event_type": "BBH merger|BNS merger|NSBH merger|burst|unknown",
  "readable_date": "Human-readable detection date (e.g. \"18 May 2023\")",
  "summary": "Short paragraph (max 60 words) explaining what probably happened",
  "excitement_score": 0,
  "distance_estimate": "Rough distance if inferable, else empty string"
}

The "excitement_score" field is a number from 1 to 10 (10 = confirmed neutron star merger with an electromagnetic counterpart).`
}

// BuildEventPrompt renders the candidate's catalog metadata into the user
// prompt.
func (p *PromptTemplates) BuildEventPrompt(ev models.Superevent) string {
	labels := "none"
	if len(ev.Labels) > 0 {
		labels = strings.Join(ev.Labels, ", ")
	}
	instruments := "unknown"
	if len(ev.Instruments) > 0 {
		instruments = strings.Join(ev.Instruments, ", ")
	}

	return fmt.Sprintf(`Raw data of a gravitational-wave detection:
- Catalog ID: %s
- Detected: %s
- Labels: %s
- False-alarm rate (FAR): %s
- Instruments: %s
- Detail link: %s

Describe this detection in the required JSON format.`,
		ev.SupereventID,
		ev.Created,
		labels,
		ev.FARString(),
		instruments,
		ev.ViewURL(),
	)
}
