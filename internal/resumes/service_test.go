package resumes

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"talexus-backend/internal/llm"
	"talexus-backend/internal/queue"
	"talexus-backend/internal/reconcile"
	"talexus-backend/internal/shared/storage/object"
	local "talexus-backend/internal/shared/storage/object/local"
)

const sampleRecord = `{
	"Full Name": "Jane Doe",
	"Email": "jane@example.com",
	"Skills": ["Go", "PostgreSQL"],
	"Education": [{"institution": "MIT", "degree": "BS", "fieldOfStudy": "CS"}]
}`

type stubLLM struct {
	record    string
	badFirst  bool
	err       error
	callCount int
}

func (s *stubLLM) ExtractResume(ctx context.Context, input llm.ExtractInput) (json.RawMessage, error) {
	s.callCount++
	if s.err != nil {
		return nil, s.err
	}
	if _, fixing := llm.FixJSONFromContext(ctx); s.badFirst && !fixing {
		return json.RawMessage("{broken"), nil
	}
	return json.RawMessage(s.record), nil
}

func (s *stubLLM) Complete(ctx context.Context, input llm.CompleteInput) (string, error) {
	return "", llm.ErrNotImplemented
}

type stubQueue struct {
	messages []queue.Message
	err      error
}

func (s *stubQueue) Send(ctx context.Context, msg queue.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

type stubNames struct {
	names map[string]string
	err   error
}

func (s stubNames) ResumeNames(ctx context.Context, userId string) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.names, nil
}

func buildDocx(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	doc, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	body := `<?xml version="1.0"?><w:document><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := doc.Write([]byte(body)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T) (*Service, *MemoryRepo, object.ObjectStore) {
	t.Helper()
	repo := NewMemoryRepo()
	store := local.New(t.TempDir())
	svc := &Service{
		Repo:          repo,
		Store:         store,
		LLM:           &stubLLM{record: sampleRecord},
		PromptVersion: "v1",
	}
	return svc, repo, store
}

func saveDocx(t *testing.T, store object.ObjectStore, userID, fileName, text string) string {
	t.Helper()
	key, _, _, err := store.Save(context.Background(), userID, fileName, bytes.NewReader(buildDocx(t, text)))
	if err != nil {
		t.Fatalf("save docx: %v", err)
	}
	return key
}

const docxMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func TestStartParseInlineCompletes(t *testing.T) {
	svc, _, store := newTestService(t)
	key := saveDocx(t, store, "user-1", "resume.docx", "Jane Doe resume text")

	job, err := svc.StartParse(context.Background(), "user-1", "doc-1", "resume.docx", key, docxMime)
	if err != nil {
		t.Fatalf("StartParse: %v", err)
	}
	if job.Status != StatusParsed {
		t.Fatalf("expected status parsed, got %q (%s)", job.Status, job.ParseError)
	}
	if len(job.Record) == 0 {
		t.Fatalf("expected record to be stored")
	}

	resume, err := svc.Canonical(context.Background(), "user-1", job.ID)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if resume.ContactInfo.FullName != "Jane Doe" {
		t.Fatalf("expected full name from record, got %q", resume.ContactInfo.FullName)
	}
	if len(resume.Skills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(resume.Skills))
	}
}

func TestStartParseEnqueues(t *testing.T) {
	svc, repo, store := newTestService(t)
	queueStub := &stubQueue{}
	svc.Queue = queueStub
	key := saveDocx(t, store, "user-1", "resume.docx", "text")

	job, err := svc.StartParse(context.Background(), "user-1", "doc-1", "resume.docx", key, docxMime)
	if err != nil {
		t.Fatalf("StartParse: %v", err)
	}
	if job.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", job.Status)
	}
	if len(queueStub.messages) != 1 {
		t.Fatalf("expected 1 queued message, got %d", len(queueStub.messages))
	}
	msg := queueStub.messages[0]
	if msg.ResumeID != job.ID || msg.UserID != "user-1" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	stored, err := repo.GetByID(context.Background(), "user-1", job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status != StatusPending {
		t.Fatalf("expected stored pending, got %q", stored.Status)
	}
}

func TestStartParseEnqueueFailureMarksFailed(t *testing.T) {
	svc, repo, store := newTestService(t)
	svc.Queue = &stubQueue{err: errors.New("sqs down")}
	key := saveDocx(t, store, "user-1", "resume.docx", "text")

	if _, err := svc.StartParse(context.Background(), "user-1", "doc-1", "resume.docx", key, docxMime); err == nil {
		t.Fatalf("expected error when enqueue fails")
	}

	jobs, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != StatusFailed {
		t.Fatalf("expected one failed job, got %+v", jobs)
	}
}

func TestProcessParseRepairsInvalidJSON(t *testing.T) {
	svc, _, store := newTestService(t)
	client := &stubLLM{record: sampleRecord, badFirst: true}
	svc.LLM = client
	key := saveDocx(t, store, "user-1", "resume.docx", "text")

	job, err := svc.StartParse(context.Background(), "user-1", "doc-1", "resume.docx", key, docxMime)
	if err != nil {
		t.Fatalf("StartParse: %v", err)
	}
	if job.Status != StatusParsed {
		t.Fatalf("expected parsed after repair, got %q (%s)", job.Status, job.ParseError)
	}
	if client.callCount != 2 {
		t.Fatalf("expected 2 LLM calls, got %d", client.callCount)
	}
}

func TestProcessParseEmptyTextFails(t *testing.T) {
	svc, repo, store := newTestService(t)
	key := saveDocx(t, store, "user-1", "resume.docx", "")

	job, err := svc.StartParse(context.Background(), "user-1", "doc-1", "resume.docx", key, docxMime)
	if err != nil {
		t.Fatalf("StartParse: %v", err)
	}
	if job.Status != StatusFailed {
		t.Fatalf("expected failed status for empty document, got %q", job.Status)
	}

	jobs, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != StatusFailed {
		t.Fatalf("expected failed job, got %+v", jobs)
	}
	if jobs[0].ParseError == "" {
		t.Fatalf("expected parse error to be recorded")
	}
}

func TestProcessParseSkipsAlreadyParsed(t *testing.T) {
	svc, repo, _ := newTestService(t)
	client := svc.LLM.(*stubLLM)
	job := ParsedResume{
		ID:     "resume-1",
		UserID: "user-1",
		Status: StatusParsed,
		Record: json.RawMessage(sampleRecord),
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	if err := svc.ProcessParse(context.Background(), "user-1", "resume-1"); err != nil {
		t.Fatalf("ProcessParse: %v", err)
	}
	if client.callCount != 0 {
		t.Fatalf("expected no LLM calls for parsed job, got %d", client.callCount)
	}
}

func TestCanonicalMissingReturnsEmptyResume(t *testing.T) {
	svc, _, _ := newTestService(t)

	resume, err := svc.Canonical(context.Background(), "user-1", "nope")
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if resume.Education == nil || resume.Experience == nil || resume.Skills == nil || resume.Projects == nil {
		t.Fatalf("expected non-nil sections, got %+v", resume)
	}
	if len(resume.Skills) != 0 {
		t.Fatalf("expected empty skills, got %d", len(resume.Skills))
	}
}

func TestCanonicalMalformedRecordReturnsEmptyResume(t *testing.T) {
	svc, repo, _ := newTestService(t)
	job := ParsedResume{
		ID:     "resume-1",
		UserID: "user-1",
		Status: StatusParsed,
		Record: json.RawMessage("{oops"),
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	resume, err := svc.Canonical(context.Background(), "user-1", "resume-1")
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if len(resume.Skills) != 0 || resume.ContactInfo.FullName != "" {
		t.Fatalf("expected empty resume, got %+v", resume)
	}
}

func TestUpdateSectionWinsOverUpstreamAlias(t *testing.T) {
	svc, repo, _ := newTestService(t)
	job := ParsedResume{
		ID:     "resume-1",
		UserID: "user-1",
		Status: StatusParsed,
		Record: json.RawMessage(sampleRecord),
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	payload := json.RawMessage(`[{"name": "Rust"}, {"name": "Kubernetes"}]`)
	value, err := svc.UpdateSection(context.Background(), "user-1", "resume-1", reconcile.SectionSkills, payload)
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	skills, ok := value.([]reconcile.SkillEntry)
	if !ok {
		t.Fatalf("expected skill entries, got %T", value)
	}
	if len(skills) != 2 || skills[0].Name != "Rust" {
		t.Fatalf("unexpected skills: %+v", skills)
	}

	// The update must beat the original "Skills" key on later reads.
	resume, err := svc.Canonical(context.Background(), "user-1", "resume-1")
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if len(resume.Skills) != 2 || resume.Skills[0].Name != "Rust" {
		t.Fatalf("expected updated skills on read, got %+v", resume.Skills)
	}
	// Untouched sections survive the write.
	if resume.ContactInfo.FullName != "Jane Doe" {
		t.Fatalf("expected contact info preserved, got %+v", resume.ContactInfo)
	}
	if len(resume.Education) != 1 {
		t.Fatalf("expected education preserved, got %+v", resume.Education)
	}
}

func TestUpdateSectionNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateSection(context.Background(), "user-1", "nope", reconcile.SectionSkills, json.RawMessage("[]"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateSectionInvalidPayload(t *testing.T) {
	svc, repo, _ := newTestService(t)
	job := ParsedResume{ID: "resume-1", UserID: "user-1", Status: StatusParsed}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	_, err := svc.UpdateSection(context.Background(), "user-1", "resume-1", reconcile.SectionEducation, json.RawMessage(`{"not": "an array"}`))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateSectionContactInfoDerivesNames(t *testing.T) {
	svc, repo, _ := newTestService(t)
	job := ParsedResume{ID: "resume-1", UserID: "user-1", Status: StatusParsed}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	payload := json.RawMessage(`{"fullName": "Ada King Lovelace", "email": "ada@example.com"}`)
	value, err := svc.UpdateSection(context.Background(), "user-1", "resume-1", reconcile.SectionContactInfo, payload)
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	info, ok := value.(reconcile.ContactInfo)
	if !ok {
		t.Fatalf("expected contact info, got %T", value)
	}
	if info.FirstName != "Ada" || info.LastName != "King Lovelace" {
		t.Fatalf("expected derived names, got %+v", info)
	}
}

func TestListLinksStoredFilesToRecords(t *testing.T) {
	svc, repo, store := newTestService(t)
	userID := "user-1"

	oldKey := saveDocx(t, store, userID, "old.docx", "old")
	time.Sleep(2 * time.Millisecond)
	newKey := saveDocx(t, store, userID, "new.docx", "new")
	time.Sleep(2 * time.Millisecond)
	saveDocx(t, store, userID, "orphan.docx", "orphan")

	now := time.Now().UTC()
	jobs := []ParsedResume{
		{ID: "resume-old", UserID: userID, FileName: "old.docx", StorageKey: oldKey, Status: StatusParsed, CreatedAt: now.Add(-time.Hour)},
		{ID: "resume-new", UserID: userID, FileName: "new.docx", StorageKey: newKey, Status: StatusParsed, CreatedAt: now},
	}
	for _, job := range jobs {
		if err := repo.Create(context.Background(), job); err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}
	svc.Names = stubNames{names: map[string]string{"resume-old": "First Draft"}}

	out, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 linked resumes, got %d: %+v", len(out), out)
	}
	if out[0].ID != "resume-new" {
		t.Fatalf("expected newest first, got %+v", out)
	}
	if out[0].DisplayName != "new.docx" {
		t.Fatalf("expected file name fallback, got %q", out[0].DisplayName)
	}
	if out[1].DisplayName != "First Draft" {
		t.Fatalf("expected custom name, got %q", out[1].DisplayName)
	}
}

func TestListSkipsExtractedArtifacts(t *testing.T) {
	svc, repo, store := newTestService(t)
	userID := "user-1"

	key := saveDocx(t, store, userID, "resume.docx", "body text")
	job := ParsedResume{ID: "resume-1", UserID: userID, FileName: "resume.docx", StorageKey: key, Status: StatusParsed, CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	// Run a parse so the store holds a derived .extracted.txt.
	if err := svc.ProcessParse(context.Background(), userID, "resume-1"); err != nil {
		t.Fatalf("ProcessParse: %v", err)
	}

	out, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 resume, got %d: %+v", len(out), out)
	}
	if out[0].ID != "resume-1" {
		t.Fatalf("unexpected resume: %+v", out[0])
	}
}

func TestListStripsTimestampPrefixWhenJobHasNoFileName(t *testing.T) {
	svc, repo, store := newTestService(t)
	userID := "user-1"

	key := saveDocx(t, store, userID, "resume.docx", "body")
	storedName := path.Base(key)
	job := ParsedResume{ID: storedName, UserID: userID, Status: StatusParsed, CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	out, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 resume, got %d", len(out))
	}
	if out[0].FileName != "resume.docx" {
		t.Fatalf("expected stripped file name, got %q", out[0].FileName)
	}
}
