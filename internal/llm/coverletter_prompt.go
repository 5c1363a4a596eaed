package llm

import _ "embed"

var (
	//go:embed prompts/coverletter_v1.txt
	coverLetterPromptV1 string
)

// CoverLetterPromptV1 returns the prompt used to draft cover letters.
func CoverLetterPromptV1() string {
	return coverLetterPromptV1
}
