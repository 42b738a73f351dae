package contracts

import "fmt"

// Job identifies one build attempt for one project/branch and carries its
// outcome once the external driver has executed the build.
type Job struct {
	Author  string            `json:"author" yaml:"author"`
	Repo    string            `json:"repo" yaml:"repo"`
	Branch  string            `json:"branch" yaml:"branch"`
	ID      int               `json:"id,omitempty" yaml:"id,omitempty"`
	Success bool              `json:"success" yaml:"success"`
	Commit  Commit            `json:"commit,omitempty" yaml:"commit,omitempty"`
	License string            `json:"license,omitempty" yaml:"license,omitempty"`
	Tags    map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Commit holds immutable metadata about the source revision that was built.
type Commit struct {
	Sha       string `json:"sha,omitempty" yaml:"sha,omitempty"`
	Date      string `json:"date,omitempty" yaml:"date,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
	Author    string `json:"author,omitempty" yaml:"author,omitempty"`
	Avatar    string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// IsValid checks whether the job identifies a project/branch; this is the
// minimum required by read-only and reclamation operations.
func (j *Job) IsValid() bool {
	if j == nil {
		return false
	}

	return j.Author != "" && j.Repo != "" && j.Branch != ""
}

// IsComplete checks whether the job can mutate the ledger; on top of IsValid
// it requires the driver-assigned positive build id to be present. The build
// outcome is a typed bool so its presence needs no runtime check.
func (j *Job) IsComplete() bool {
	return j.IsValid() && j.ID > 0
}

// Path returns the author/repo/branch key the ledger and workspace locations
// derive from.
func (j *Job) Path() string {
	return fmt.Sprintf("%v/%v/%v", j.Author, j.Repo, j.Branch)
}
