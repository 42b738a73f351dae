package contracts

import "github.com/jinzhu/copier"

// Status is the recorded outcome of a single build.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Candidate classifies a build as a development build or a release candidate.
type Candidate string

const (
	CandidateDevelopment Candidate = "DEVELOPMENT"
	CandidateRelease     Candidate = "RELEASE"
)

// BuildRecord is one entry in a ledger, derived from a Job at registry-update
// time.
type BuildRecord struct {
	ID        int       `json:"id"`
	Sha       string    `json:"sha,omitempty"`
	Date      string    `json:"date,omitempty"`
	Timestamp int64     `json:"timestamp,omitempty"`
	Message   string    `json:"message,omitempty"`
	Author    string    `json:"author,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	License   string    `json:"license,omitempty"`
	Status    Status    `json:"status"`
	Candidate Candidate `json:"candidate"`
	Tag       string    `json:"tag,omitempty"`
}

// NewBuildRecord derives a ledger entry from a completed job; the commit
// metadata is copied field for field, the classification starts out as a
// development build until tag resolution says otherwise.
func NewBuildRecord(job *Job) (record *BuildRecord, err error) {

	record = &BuildRecord{
		ID:        job.ID,
		License:   job.License,
		Status:    StatusFailure,
		Candidate: CandidateDevelopment,
	}

	if job.Success {
		record.Status = StatusSuccess
	}

	err = copier.Copy(record, job.Commit)
	if err != nil {
		return nil, err
	}

	return record, nil
}
