package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteMatches(t *testing.T) {
	note := Note{
		Title:       "Database Normalization",
		Subject:     "Database Management",
		Description: "Normal forms",
		Tags:        []string{"sql", "normalization"},
	}
	assert.True(t, note.Matches("database"))
	assert.True(t, note.Matches("forms"))
	assert.True(t, note.Matches("sql"))
	assert.False(t, note.Matches("graphs"))
}

func TestNoteJSONLayout(t *testing.T) {
	raw := `{"id":"1","title":"Intro","subject":"DS","semester":"3","uploadDate":"2024-01-15",` +
		`"fileSize":"2.5 MB","type":"pdf","fileUrl":"data:application/pdf;base64,JVBERi0=","fileName":"intro.pdf"}`

	var note Note
	require.NoError(t, json.Unmarshal([]byte(raw), &note))
	assert.Equal(t, NoteID("1"), note.ID)
	assert.Equal(t, Semester(3), note.Semester)
	assert.Equal(t, NoteTypePDF, note.Type)
	assert.Nil(t, note.Tags)

	out, err := json.Marshal(note)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestNoteRejectsUnknownType(t *testing.T) {
	var note Note
	err := json.Unmarshal([]byte(`{"id":"1","semester":"1","uploadDate":"2024-01-01","type":"pptx"}`), &note)
	assert.Error(t, err)
}

func TestFeedbackStatusTransitions(t *testing.T) {
	assert.True(t, FeedbackStatusPending.CanAdvanceTo(FeedbackStatusReviewed))
	assert.True(t, FeedbackStatusPending.CanAdvanceTo(FeedbackStatusResolved))
	assert.True(t, FeedbackStatusReviewed.CanAdvanceTo(FeedbackStatusReviewed))
	assert.False(t, FeedbackStatusResolved.CanAdvanceTo(FeedbackStatusPending))
	assert.False(t, FeedbackStatusReviewed.CanAdvanceTo(FeedbackStatus("archived")))

	_, err := ParseFeedbackStatus("done")
	assert.Error(t, err)
	_, err = ParseFeedbackType("praise")
	assert.Error(t, err)
	ft, err := ParseFeedbackType("Bug")
	require.NoError(t, err)
	assert.Equal(t, FeedbackTypeBug, ft)
}
