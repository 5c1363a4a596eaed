package llm

import _ "embed"

var (
	//go:embed prompts/extract_v1.txt
	extractPromptV1 string
	//go:embed prompts/extract_v2.txt
	extractPromptV2 string
)

// PromptTemplate returns the extraction prompt template and whether the
// version was recognized.
func PromptTemplate(version string) (string, bool) {
	switch version {
	case "v2":
		return extractPromptV2, true
	case "v1":
		return extractPromptV1, true
	default:
		return extractPromptV1, false
	}
}
