package service

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edunotes-api/internal/models"
)

func TestNewValidatorRegistersCustomTags(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	upload := models.UploadNoteRequest{Title: "Graphs", Subject: "Discrete Math", Semester: "4", FileName: "graphs.pdf"}
	assert.NoError(t, v.Struct(upload))

	upload.Semester = "9"
	assert.Error(t, v.Struct(upload))

	upload.Semester = "4"
	upload.FileName = "graphs.exe"
	assert.Error(t, v.Struct(upload))

	notification := models.CreateNotificationRequest{Title: "t", Message: "m", TargetSemester: "all"}
	assert.NoError(t, v.Struct(notification))
	notification.TargetSemester = "0"
	assert.Error(t, v.Struct(notification))
}

func TestRegisterValidationsOnExistingValidator(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidations(v))
	assert.NoError(t, v.Var("3", "semester"))
	assert.Error(t, v.Var("ten", "semester"))
	assert.NoError(t, v.Var("notes.docx", "notefile"))
}
