package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"talexus-backend/internal/extract"
	"talexus-backend/internal/llm"
	"talexus-backend/internal/queue"
	"talexus-backend/internal/reconcile"
	"talexus-backend/internal/shared/metrics"
	"talexus-backend/internal/shared/storage/object"
	"talexus-backend/internal/shared/telemetry"
)

// NameResolver supplies user-assigned display names for resumes, keyed by
// resume ID or stored file name.
type NameResolver interface {
	ResumeNames(ctx context.Context, userId string) (map[string]string, error)
}

// Service contains business logic for parsed resumes.
type Service struct {
	Repo          Repo
	Store         object.ObjectStore
	Queue         queue.Client
	LLM           llm.Client
	Names         NameResolver
	PromptVersion string
}

// StartParse records a new parse job for an uploaded document and enqueues
// it. Without a queue the job runs inline, which keeps local development
// working without infrastructure; inline failures surface through the job
// status, same as the queued path, not through the return error.
func (s *Service) StartParse(ctx context.Context, userId, documentID, fileName, storageKey, mimeType string) (ParsedResume, error) {
	if userId == "" || storageKey == "" {
		return ParsedResume{}, ErrInvalidInput
	}

	job := ParsedResume{
		ID:         uuid.NewString(),
		UserID:     userId,
		DocumentID: documentID,
		FileName:   fileName,
		StorageKey: storageKey,
		MimeType:   mimeType,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return ParsedResume{}, err
	}

	if s.Queue == nil {
		if err := s.ProcessParse(ctx, userId, job.ID); err != nil {
			telemetry.Error("resume.parse.inline", map[string]any{
				"resume_id": job.ID,
				"user_id":   userId,
				"err":       err.Error(),
			})
		}
		return s.Repo.GetByID(ctx, userId, job.ID)
	}

	msg := queue.Message{
		ResumeID:   job.ID,
		UserID:     userId,
		RequestID:  requestIDFromContext(ctx),
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		_ = s.Repo.UpdateStatus(ctx, userId, job.ID, StatusFailed, "enqueue failed")
		return ParsedResume{}, fmt.Errorf("enqueue parse job: %w", err)
	}

	telemetry.Info("resume.parse.enqueued", map[string]any{
		"resume_id":   job.ID,
		"user_id":     userId,
		"document_id": documentID,
	})
	return job, nil
}

// ProcessParse runs one parse job end to end: extract text from the stored
// document, run the LLM extraction and persist the raw record.
func (s *Service) ProcessParse(ctx context.Context, userId, resumeID string) error {
	job, err := s.Repo.GetByID(ctx, userId, resumeID)
	if err != nil {
		return err
	}
	if job.Status == StatusParsed {
		return nil
	}

	metrics.IncParseStarted()
	started := time.Now()
	if err := s.Repo.UpdateStatus(ctx, userId, resumeID, StatusProcessing, ""); err != nil {
		return err
	}

	record, err := s.runParse(ctx, job)
	if err != nil {
		metrics.IncParseFailed()
		telemetry.Error("resume.parse.failed", map[string]any{
			"resume_id": resumeID,
			"user_id":   userId,
			"err":       err.Error(),
		})
		_ = s.Repo.UpdateStatus(ctx, userId, resumeID, StatusFailed, err.Error())
		return err
	}

	if err := s.Repo.UpdateRecord(ctx, userId, resumeID, record); err != nil {
		metrics.IncParseFailed()
		_ = s.Repo.UpdateStatus(ctx, userId, resumeID, StatusFailed, "persist record failed")
		return err
	}
	if err := s.Repo.UpdateStatus(ctx, userId, resumeID, StatusParsed, ""); err != nil {
		return err
	}

	metrics.IncParseCompleted()
	metrics.ObserveParseDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("resume.parse.completed", map[string]any{
		"resume_id":   resumeID,
		"user_id":     userId,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return nil
}

func (s *Service) runParse(ctx context.Context, job ParsedResume) (json.RawMessage, error) {
	text, err := extract.ExtractText(ctx, s.Store, job.StorageKey, job.MimeType, job.FileName)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("document contains no extractable text")
	}

	input := llm.ExtractInput{ResumeText: text, PromptVersion: s.PromptVersion}
	raw, err := s.LLM.ExtractResume(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("llm extract: %w", err)
	}

	if _, err := reconcile.DecodeRecord(raw); err != nil {
		// One repair pass before giving up on the output.
		raw, err = s.LLM.ExtractResume(llm.WithFixJSON(ctx, string(raw)), input)
		if err != nil {
			return nil, fmt.Errorf("llm fix json: %w", err)
		}
		if _, err := reconcile.DecodeRecord(raw); err != nil {
			return nil, err
		}
	}
	return json.RawMessage(raw), nil
}

// Canonical returns the fully normalized resume for an ID. A missing or
// malformed record degrades to an empty resume rather than an error, so
// consumers always get a complete shape.
func (s *Service) Canonical(ctx context.Context, userId, id string) (reconcile.CanonicalResume, error) {
	job, err := s.Repo.GetByID(ctx, userId, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			telemetry.Info("resume.canonical.missing", map[string]any{
				"resume_id": id,
				"user_id":   userId,
			})
			return reconcile.EmptyResume(), nil
		}
		return reconcile.CanonicalResume{}, err
	}

	record, err := reconcile.DecodeRecord(job.Record)
	if err != nil {
		telemetry.Error("resume.record.malformed", map[string]any{
			"resume_id": id,
			"user_id":   userId,
			"err":       err.Error(),
		})
		return reconcile.EmptyResume(), nil
	}
	return reconcile.Extract(record), nil
}

// Section returns one canonical section of a resume.
func (s *Service) Section(ctx context.Context, userId, id string, section reconcile.Section) (any, error) {
	resume, err := s.Canonical(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return sectionValue(resume, section)
}

// UpdateSection replaces one section of the stored record, leaving every
// other key untouched. Concurrent updates to the same section are
// last-write-wins. Returns the updated canonical section.
func (s *Service) UpdateSection(ctx context.Context, userId, id string, section reconcile.Section, payload json.RawMessage) (any, error) {
	job, err := s.Repo.GetByID(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	value, err := decodeSectionPayload(section, payload)
	if err != nil {
		return nil, err
	}

	record, err := reconcile.DecodeRecord(job.Record)
	if err != nil {
		telemetry.Error("resume.record.malformed", map[string]any{
			"resume_id": id,
			"user_id":   userId,
			"err":       err.Error(),
		})
		record = map[string]any{}
	}

	reconcile.SetSection(record, section, value)

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	if err := s.Repo.UpdateRecord(ctx, userId, id, data); err != nil {
		return nil, err
	}

	telemetry.Info("resume.section.updated", map[string]any{
		"resume_id": id,
		"user_id":   userId,
		"section":   string(section),
	})
	return sectionValue(reconcile.Extract(record), section)
}

// Status returns the parse job for status reporting.
func (s *Service) Status(ctx context.Context, userId, id string) (ParsedResume, error) {
	return s.Repo.GetByID(ctx, userId, id)
}

// List enumerates the user's stored resumes, linking each stored file back
// to its parse job and applying user-assigned display names. Files that
// cannot be linked to a record are skipped.
func (s *Service) List(ctx context.Context, userId string) ([]ResumeSummary, error) {
	jobs, err := s.Repo.ListByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	fileNames, err := s.Store.List(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("list stored resumes: %w", err)
	}

	customNames := map[string]string{}
	if s.Names != nil {
		if names, err := s.Names.ResumeNames(ctx, userId); err == nil {
			customNames = names
		} else {
			telemetry.Warn("resume.list.names", map[string]any{
				"user_id": userId,
				"err":     err.Error(),
			})
		}
	}

	known := make(map[string]string, len(jobs)*3)
	byID := make(map[string]ParsedResume, len(jobs))
	// Jobs are newest-first; first writer wins so newer jobs claim a
	// contested name.
	for _, job := range jobs {
		byID[job.ID] = job
		addKnown(known, job.ID, job.ID)
		addKnown(known, job.FileName, job.ID)
		base := path.Base(job.StorageKey)
		addKnown(known, base, job.ID)
		addKnown(known, reconcile.NormalizeRecordID(base), job.ID)
	}

	out := []ResumeSummary{}
	seen := make(map[string]bool)
	for _, name := range fileNames {
		if strings.HasSuffix(name, ".extracted.txt") {
			continue
		}
		id, ok := reconcile.MapToRecordID(name, known)
		if !ok {
			telemetry.Info("resume.list.unlinked", map[string]any{
				"user_id":   userId,
				"file_name": name,
			})
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		job := byID[id]
		fileName := job.FileName
		if fileName == "" {
			fileName = reconcile.StripTimestampPrefix(name)
		}
		display := customNames[id]
		if display == "" {
			display = customNames[name]
		}
		if display == "" {
			display = fileName
		}
		out = append(out, ResumeSummary{
			ID:          id,
			FileName:    fileName,
			DisplayName: display,
			Status:      job.Status,
			UploadedAt:  job.CreatedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

// DeleteAll removes every parse job owned by a user. Used by account reset.
func (s *Service) DeleteAll(ctx context.Context, userId string) (int, error) {
	return s.Repo.DeleteByUser(ctx, userId)
}

func addKnown(known map[string]string, key, id string) {
	if key == "" {
		return
	}
	if _, ok := known[key]; !ok {
		known[key] = id
	}
}

func sectionValue(resume reconcile.CanonicalResume, section reconcile.Section) (any, error) {
	switch section {
	case reconcile.SectionEducation:
		return resume.Education, nil
	case reconcile.SectionExperience:
		return resume.Experience, nil
	case reconcile.SectionSkills:
		return resume.Skills, nil
	case reconcile.SectionProjects:
		return resume.Projects, nil
	case reconcile.SectionContactInfo:
		return resume.ContactInfo, nil
	}
	return nil, ErrInvalidSection
}

func decodeSectionPayload(section reconcile.Section, payload json.RawMessage) (any, error) {
	switch section {
	case reconcile.SectionEducation:
		var entries []reconcile.EducationEntry
		if err := json.Unmarshal(payload, &entries); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, "education must be an array")
		}
		for i := range entries {
			if strings.TrimSpace(entries[i].ID) == "" {
				entries[i].ID = fmt.Sprintf("edu-%d", i)
			}
		}
		return entries, nil
	case reconcile.SectionExperience:
		var entries []reconcile.ExperienceEntry
		if err := json.Unmarshal(payload, &entries); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, "experience must be an array")
		}
		for i := range entries {
			if strings.TrimSpace(entries[i].ID) == "" {
				entries[i].ID = fmt.Sprintf("exp-%d", i)
			}
			if entries[i].Responsibilities == nil {
				entries[i].Responsibilities = []string{}
			}
		}
		return entries, nil
	case reconcile.SectionSkills:
		var entries []reconcile.SkillEntry
		if err := json.Unmarshal(payload, &entries); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, "skills must be an array")
		}
		return entries, nil
	case reconcile.SectionProjects:
		var entries []reconcile.ProjectEntry
		if err := json.Unmarshal(payload, &entries); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, "projects must be an array")
		}
		for i := range entries {
			if strings.TrimSpace(entries[i].ID) == "" {
				entries[i].ID = fmt.Sprintf("project-%d", i)
			}
			if entries[i].Technologies == nil {
				entries[i].Technologies = []string{}
			}
			if entries[i].Bullets == nil {
				entries[i].Bullets = []string{}
			}
		}
		return entries, nil
	case reconcile.SectionContactInfo:
		var info reconcile.ContactInfo
		if err := json.Unmarshal(payload, &info); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, "contact-info must be an object")
		}
		if info.FirstName == "" && info.LastName == "" && info.FullName != "" {
			parts := strings.Fields(info.FullName)
			if len(parts) > 0 {
				info.FirstName = parts[0]
				info.LastName = strings.Join(parts[1:], " ")
			}
		}
		return info, nil
	}
	return nil, ErrInvalidSection
}
