package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerMarshalJSON(t *testing.T) {

	t.Run("WritesBuildIDsAsNumericStringKeys", func(t *testing.T) {

		ledger := NewLedger()
		ledger.Builds[1] = &BuildRecord{ID: 1, Sha: "abc", Status: StatusSuccess, Candidate: CandidateDevelopment}
		ledger.Latest = 1
		ledger.LastSuccessful = 1

		// act
		data, err := json.Marshal(ledger)

		assert.Nil(t, err)

		var document map[string]json.RawMessage
		err = json.Unmarshal(data, &document)
		assert.Nil(t, err)
		assert.Contains(t, document, "1")
		assert.Contains(t, document, "latest")
		assert.Contains(t, document, "last_successful")
		assert.Len(t, document, 3)
	})

	t.Run("RoundTripsAllRecordFields", func(t *testing.T) {

		ledger := NewLedger()
		ledger.Builds[7] = &BuildRecord{
			ID:        7,
			Sha:       "abc123",
			Date:      "2016-05-12T09:13:47Z",
			Timestamp: 1463044427,
			Message:   "Tag a release",
			Author:    "jane",
			Avatar:    "https://example.com/jane.png",
			License:   "MIT",
			Status:    StatusSuccess,
			Candidate: CandidateRelease,
			Tag:       "v1.0",
		}
		ledger.Latest = 7
		ledger.LastSuccessful = 7

		// act
		data, err := json.Marshal(ledger)
		assert.Nil(t, err)

		parsed := NewLedger()
		err = json.Unmarshal(data, parsed)

		assert.Nil(t, err)
		assert.Equal(t, ledger.Latest, parsed.Latest)
		assert.Equal(t, ledger.LastSuccessful, parsed.LastSuccessful)
		assert.Equal(t, ledger.Builds[7], parsed.Builds[7])
	})
}

func TestLedgerUnmarshalJSON(t *testing.T) {

	t.Run("FailsOnNonNumericBuildKey", func(t *testing.T) {

		data := []byte(`{"first": {"id": 1, "status": "SUCCESS", "candidate": "DEVELOPMENT"}}`)

		parsed := NewLedger()

		// act
		err := json.Unmarshal(data, parsed)

		assert.NotNil(t, err)
	})

	t.Run("FailsOnMalformedDocument", func(t *testing.T) {

		data := []byte(`{"1": {"id": 1`)

		parsed := NewLedger()

		// act
		err := json.Unmarshal(data, parsed)

		assert.NotNil(t, err)
	})
}

func TestResolveCandidates(t *testing.T) {

	t.Run("FlagsRecordWhoseShaMatchesATag", func(t *testing.T) {

		ledger := NewLedger()
		ledger.Builds[1] = &BuildRecord{ID: 1, Sha: "abc", Candidate: CandidateDevelopment}
		ledger.Builds[2] = &BuildRecord{ID: 2, Sha: "def", Candidate: CandidateDevelopment}

		// act
		ledger.ResolveCandidates(map[string]string{"v1.0": "abc"})

		assert.Equal(t, CandidateRelease, ledger.Builds[1].Candidate)
		assert.Equal(t, "v1.0", ledger.Builds[1].Tag)
		assert.Equal(t, CandidateDevelopment, ledger.Builds[2].Candidate)
		assert.Equal(t, "", ledger.Builds[2].Tag)
	})

	t.Run("FirstTagInLexicographicOrderWins", func(t *testing.T) {

		ledger := NewLedger()
		ledger.Builds[1] = &BuildRecord{ID: 1, Sha: "abc", Candidate: CandidateDevelopment}

		// act
		ledger.ResolveCandidates(map[string]string{"v1.1": "abc", "v1.0": "abc"})

		assert.Equal(t, CandidateRelease, ledger.Builds[1].Candidate)
		assert.Equal(t, "v1.0", ledger.Builds[1].Tag)
	})

	t.Run("LeavesRecordsUntouchedWithoutTags", func(t *testing.T) {

		ledger := NewLedger()
		ledger.Builds[1] = &BuildRecord{ID: 1, Sha: "abc", Candidate: CandidateDevelopment}

		// act
		ledger.ResolveCandidates(map[string]string{})

		assert.Equal(t, CandidateDevelopment, ledger.Builds[1].Candidate)
	})
}
