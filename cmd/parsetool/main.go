package main

// Offline parse pipeline: extract text from a resume file, run the LLM
// extractor, and print the canonical resume JSON. With -record, skip the
// LLM and normalize a saved raw record instead:
//   go run ./cmd/parsetool -resume resume.pdf
//   go run ./cmd/parsetool -record record.json -section skills

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"talexus-backend/internal/extract"
	"talexus-backend/internal/llm"
	openai "talexus-backend/internal/llm/openai"
	"talexus-backend/internal/reconcile"
	"talexus-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume file (pdf or docx)")
	recordPath := flag.String("record", "", "Path to a raw parse record JSON (skips the LLM)")
	sectionName := flag.String("section", "", "Print a single section (education|experience|skills|projects|contact-info)")
	promptVersion := flag.String("prompt-version", cfg.PromptVersion, "Prompt version")
	textOnly := flag.Bool("text", false, "Print extracted text and exit")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" && strings.TrimSpace(*recordPath) == "" {
		exitErr("either -resume or -record is required")
	}

	var raw json.RawMessage

	if strings.TrimSpace(*recordPath) != "" {
		data, err := os.ReadFile(*recordPath)
		if err != nil {
			exitErr(fmt.Sprintf("read record: %v", err))
		}
		raw = json.RawMessage(data)
	} else {
		mimeType, err := mimeFromExt(*resumePath)
		if err != nil {
			exitErr(err.Error())
		}
		resumeBytes, err := os.ReadFile(*resumePath)
		if err != nil {
			exitErr(fmt.Sprintf("read resume: %v", err))
		}
		fileName := filepath.Base(*resumePath)

		resumeText, err := extract.ExtractTextFromBytes(context.Background(), resumeBytes, mimeType, fileName)
		if err != nil {
			exitErr(fmt.Sprintf("extract resume text: %v", err))
		}
		if *textOnly {
			fmt.Println(resumeText)
			return
		}

		client, err := buildClient(*provider, *model)
		if err != nil {
			exitErr(err.Error())
		}
		raw, err = client.ExtractResume(context.Background(), llm.ExtractInput{
			ResumeText:    resumeText,
			PromptVersion: *promptVersion,
		})
		if err != nil {
			exitErr(fmt.Sprintf("llm extract: %v", err))
		}
	}

	record, err := reconcile.DecodeRecord(raw)
	if err != nil {
		exitErr(fmt.Sprintf("decode record: %v", err))
	}
	resume := reconcile.Extract(record)

	var payload any = resume
	if strings.TrimSpace(*sectionName) != "" {
		section, ok := reconcile.ParseSection(*sectionName)
		if !ok {
			exitErr(fmt.Sprintf("unknown section: %s", *sectionName))
		}
		switch section {
		case reconcile.SectionEducation:
			payload = resume.Education
		case reconcile.SectionExperience:
			payload = resume.Experience
		case reconcile.SectionSkills:
			payload = resume.Skills
		case reconcile.SectionProjects:
			payload = resume.Projects
		case reconcile.SectionContactInfo:
			payload = resume.ContactInfo
		}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		exitErr(fmt.Sprintf("encode json: %v", err))
	}
	pretty, err := prettyJSON(encoded)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(pretty) == 0 || pretty[len(pretty)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func buildClient(provider, model string) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func mimeFromExt(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf", nil
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
	default:
		return "", fmt.Errorf("unsupported resume file type: %s", filepath.Ext(path))
	}
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
