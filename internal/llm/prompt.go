package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = "You are a financial transaction classifier. You MUST respond with ONLY a valid JSON object. " +
	"Do not include any explanatory text, markdown formatting, or commentary. Start your response with { and end with }."

// buildPrompt asks for one category from the allowed list.
func buildPrompt(description, merchant string, amount float64, categories []string) string {
	var sb strings.Builder

	sb.WriteString("Classify this bank transaction into exactly one spending category.\n\n")
	fmt.Fprintf(&sb, "Merchant: %s\n", merchant)
	if description != "" && description != merchant {
		fmt.Fprintf(&sb, "Description: %s\n", description)
	}
	fmt.Fprintf(&sb, "Amount: %.2f\n\n", amount)

	sb.WriteString("Allowed categories:\n")
	for _, c := range categories {
		fmt.Fprintf(&sb, "- %s\n", c)
	}

	sb.WriteString("\nRespond with JSON in this form:\n")
	sb.WriteString(`{"category": "<one allowed category>", "confidence": <number between 0 and 1>}`)
	sb.WriteString("\nIf none fits, use an empty category and confidence 0.")

	return sb.String()
}

// parseClassification reads the JSON answer, tolerating a markdown code fence.
func parseClassification(content string) (string, float64, error) {
	var resp struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}

	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(content)), &resp); err != nil {
		return "", 0, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return strings.TrimSpace(resp.Category), resp.Confidence, nil
}

// cleanMarkdownWrapper strips ```json fences and any text around the object.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}

// allowedCategory maps an answer onto the allowed list, case-insensitively.
func allowedCategory(answer string, categories []string) (string, bool) {
	for _, c := range categories {
		if strings.EqualFold(c, answer) {
			return c, true
		}
	}
	return "", false
}
