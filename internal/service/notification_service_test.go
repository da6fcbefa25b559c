package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edunotes-api/internal/models"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
)

func TestNotificationServiceTargeting(t *testing.T) {
	repos := newTestRepos(t)
	saveProfile(t, repos, "s-3", 3)
	saveProfile(t, repos, "s-5", 5)
	svc := NewNotificationService(repos.Notifications, repos.Profiles, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateNotificationRequest{Title: "Exam", Message: "Midterm on Monday", TargetSemester: "3"})
	require.NoError(t, err)
	assert.Equal(t, models.Audience("3"), created.TargetSemester)
	assert.False(t, created.IsRead)

	list, err := svc.List(ctx, StudentViewer("s-3"))
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.UnreadCount)

	list, err = svc.List(ctx, StudentViewer("s-5"))
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, models.NotificationID("1"), list.Items[0].ID)

	require.NoError(t, svc.MarkRead(ctx, created.ID))
	require.NoError(t, svc.MarkRead(ctx, "unknown"))

	list, err = svc.List(ctx, AdminViewer())
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 1, list.UnreadCount)
}

func TestNotificationServiceCreateDefaultsToAll(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewNotificationService(repos.Notifications, repos.Profiles, nil, nil)

	created, err := svc.Create(context.Background(), models.CreateNotificationRequest{Title: "Hi", Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, models.AudienceAll, created.TargetSemester)

	_, err = svc.Create(context.Background(), models.CreateNotificationRequest{Title: "Hi", Message: "Hello", TargetSemester: "12"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestNotificationServiceStudentWithoutProfile(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewNotificationService(repos.Notifications, repos.Profiles, nil, nil)

	_, err := svc.List(context.Background(), StudentViewer("ghost"))
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)
}
