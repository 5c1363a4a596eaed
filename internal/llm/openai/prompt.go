package openai

import (
	"fmt"
	"log"
	"strings"

	"talexus-backend/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPromptExtract = "You are a resume parsing engine. Respond with JSON only. Output must match the schema exactly."
	systemPromptV2      = "You are a resume parsing engine. Respond with JSON only. No markdown. Never omit keys. Output must match the schema exactly."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

// BuildExtractPrompt creates the chat messages for a resume parse request.
func BuildExtractPrompt(promptVersion string, resumeText string, model string) []Message {
	usedVersion, developer := resolvePromptTemplate(promptVersion, model)
	system := systemPromptExtract
	if usedVersion == "v2" {
		system = systemPromptV2
	}

	return []Message{
		{Role: "system", Content: system},
		{Role: "developer", Content: developer},
		{Role: "user", Content: buildUserPrompt(resumeText)},
	}
}

func buildFixPrompt(promptVersion string, model string, raw []byte) []Message {
	_, developer := resolvePromptTemplate(promptVersion, model)
	return []Message{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "developer", Content: developer},
		{Role: "user", Content: fixUserPrompt(raw)},
	}
}

func resolvePromptTemplate(promptVersion string, model string) (string, string) {
	version := strings.TrimSpace(promptVersion)
	template, ok := llm.PromptTemplate(version)
	usedVersion := version
	if !ok {
		log.Printf("unknown prompt version %q, defaulting to v1", version)
		usedVersion = "v1"
		template, _ = llm.PromptTemplate(usedVersion)
	}

	replacer := strings.NewReplacer(
		"{{PROMPT_VERSION}}", usedVersion,
		"{{MODEL}}", model,
	)
	return usedVersion, replacer.Replace(template)
}

func buildUserPrompt(resumeText string) string {
	return fmt.Sprintf("Resume Text:\n%s", resumeText)
}

func fixUserPrompt(raw []byte) string {
	return fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", string(raw))
}
