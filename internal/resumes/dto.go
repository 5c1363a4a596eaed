package resumes

import "time"

// ResumeSummary is one row of the resume listing.
type ResumeSummary struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	DisplayName string    `json:"displayName"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// StatusResponse reports the state of a parse job.
type StatusResponse struct {
	ResumeID  string    `json:"resumeId"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toStatusResponse(job ParsedResume) StatusResponse {
	return StatusResponse{
		ResumeID:  job.ID,
		Status:    job.Status,
		Error:     job.ParseError,
		UpdatedAt: job.UpdatedAt,
	}
}
