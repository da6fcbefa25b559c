package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/repository"
	"github.com/noah-isme/edunotes-api/internal/store"
)

var fixedNow = time.Date(2024, 1, 17, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	repos, err := repository.Open(context.Background(), store.NewMemory(), repository.WithClock(fixedClock))
	require.NoError(t, err)
	return repos
}

func saveProfile(t *testing.T, repos *repository.Repositories, id models.StudentID, semester models.Semester) {
	t.Helper()
	require.NoError(t, repos.Profiles.Upsert(context.Background(), models.StudentProfile{
		StudentID:       id,
		CurrentSemester: semester,
		Name:            "Test Student",
		Course:          "Computer Science",
	}))
}

func noteIDs(notes []models.Note) []models.NoteID {
	ids := make([]models.NoteID, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}
