package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusAliases(t *testing.T) {
	cases := map[string]ApplicationStatus{
		"Under Review":  StatusUnderReview,
		"under_review":  StatusUnderReview,
		" Dalam Review": StatusUnderReview,
		"DITERIMA":      StatusAccepted,
		"accepted":      StatusAccepted,
		"Ditolak":       StatusRejected,
	}
	for raw, want := range cases {
		got, ok := ParseStatus(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseStatus("pending")
	assert.False(t, ok)
}

func TestParseStageAliases(t *testing.T) {
	got, ok := ParseStage("Wawancara")
	require.True(t, ok)
	assert.Equal(t, StageInterview, got)

	got, ok = ParseStage("administrasi")
	require.True(t, ok)
	assert.Equal(t, StageAdministrative, got)

	_, ok = ParseStage("shortlist")
	assert.False(t, ok)
}

func TestStatusJSONRejectsUnknown(t *testing.T) {
	var payload struct {
		Status ApplicationStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"diterima"}`), &payload))
	assert.Equal(t, StatusAccepted, payload.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"maybe"}`), &payload))
}

func TestStatusScanAndValue(t *testing.T) {
	var s ApplicationStatus
	require.NoError(t, s.Scan([]byte("Rejected")))
	assert.Equal(t, StatusRejected, s)
	assert.Error(t, s.Scan("whatever"))

	_, err := ApplicationStage("Nope").Value()
	assert.Error(t, err)
	v, err := StageFinal.Value()
	require.NoError(t, err)
	assert.Equal(t, "Final", v)
}

func TestPublicStatusOmitsPrivateFields(t *testing.T) {
	app := &Application{
		StudentID:    "A1",
		FullName:     "Ann",
		Phone:        "0812",
		Address:      "Jl. Ganesha 10",
		Essay:        "secret essay",
		FamilyIncome: 1234567,
		Status:       StatusAccepted,
		Stage:        StageFinal,
	}
	result := PublicStatus(app)
	require.True(t, result.Found)
	assert.Equal(t, "Ann", result.Name)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	body := string(raw)
	for _, leaked := range []string{"secret essay", "1234567", "0812", "Ganesha", "essay", "familyIncome", "phone", "address"} {
		assert.NotContains(t, body, leaked)
	}

	assert.Equal(t, StatusCheckResult{Found: false}, PublicStatus(nil))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(1, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = NewPagination(3, 10, 25)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)

	p = NewPagination(5, 10, 20)
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestApplicationFilterOffset(t *testing.T) {
	assert.Equal(t, 0, ApplicationFilter{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, ApplicationFilter{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, ApplicationFilter{Page: 0, Limit: 20}.Offset())
	assert.Equal(t, math.MaxInt, ApplicationFilter{Page: math.MaxInt, Limit: 100}.Offset())
	assert.Equal(t, math.MaxInt, ApplicationFilter{Page: math.MaxInt/100 + 2, Limit: 100}.Offset())
	assert.Equal(t, (math.MaxInt/100)*100, ApplicationFilter{Page: math.MaxInt/100 + 1, Limit: 100}.Offset())
}
