package contracts

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

const (
	latestKey         = "latest"
	lastSuccessfulKey = "last_successful"
)

// Ledger is the persisted record of all builds for one project/branch. On disk
// it is a single JSON object whose keys are numeric-string build ids, plus the
// two scalar pointers "latest" and "last_successful".
type Ledger struct {
	Builds         map[int]*BuildRecord
	Latest         int
	LastSuccessful int
}

// NewLedger returns an empty ledger, ready for a project/branch's first build.
func NewLedger() *Ledger {
	return &Ledger{
		Builds: map[int]*BuildRecord{},
	}
}

// SortedIDs returns the build ids in ascending order; this is the stable
// iteration order used for candidate re-evaluation.
func (l *Ledger) SortedIDs() []int {
	ids := make([]int, 0, len(l.Builds))
	for id := range l.Builds {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// ResolveCandidates re-evaluates every record in the ledger against the passed
// tag mapping; a record whose sha is the target of a tag becomes a release
// candidate carrying that tag's name. Tags are scanned in lexicographic name
// order and the first match wins, so retroactive tagging flips history
// deterministically.
func (l *Ledger) ResolveCandidates(tags map[string]string) {
	if len(tags) == 0 {
		return
	}

	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, id := range l.SortedIDs() {
		record := l.Builds[id]
		for _, name := range names {
			if tags[name] == record.Sha {
				record.Candidate = CandidateRelease
				record.Tag = name
				break
			}
		}
	}
}

// MarshalJSON renders the on-disk document shape.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	document := make(map[string]interface{}, len(l.Builds)+2)
	for id, record := range l.Builds {
		document[strconv.Itoa(id)] = record
	}
	document[latestKey] = l.Latest
	document[lastSuccessfulKey] = l.LastSuccessful

	return json.Marshal(document)
}

// UnmarshalJSON parses the on-disk document shape; any key that is neither a
// scalar pointer nor a numeric-string build id makes the document invalid.
func (l *Ledger) UnmarshalJSON(data []byte) error {

	var document map[string]json.RawMessage
	if err := json.Unmarshal(data, &document); err != nil {
		return err
	}

	l.Builds = make(map[int]*BuildRecord, len(document))

	for key, value := range document {
		switch key {
		case latestKey:
			if err := json.Unmarshal(value, &l.Latest); err != nil {
				return errors.Wrapf(err, "invalid %v pointer", key)
			}
		case lastSuccessfulKey:
			if err := json.Unmarshal(value, &l.LastSuccessful); err != nil {
				return errors.Wrapf(err, "invalid %v pointer", key)
			}
		default:
			id, err := strconv.Atoi(key)
			if err != nil {
				return errors.Wrapf(err, "key %v is not a build id", key)
			}

			var record BuildRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return errors.Wrapf(err, "invalid record at build id %v", key)
			}
			l.Builds[id] = &record
		}
	}

	return nil
}
