package models

import (
	"errors"
	"fmt"
)

// StudentProfile stores the declared semester of a student. One profile per StudentID.
type StudentProfile struct {
	StudentID       StudentID `json:"studentId"`
	CurrentSemester Semester  `json:"currentSemester"`
	Name            string    `json:"name,omitempty"`
	Course          string    `json:"course,omitempty"`
}

// Validate checks the student id and the declared semester.
func (p StudentProfile) Validate() error {
	if p.StudentID == "" {
		return errors.New("student id is required")
	}
	if !p.CurrentSemester.Valid() {
		return fmt.Errorf("semester %d out of range %d..%d", p.CurrentSemester, MinSemester, MaxSemester)
	}
	return nil
}

// UpsertProfileRequest is the student payload for saving a profile.
type UpsertProfileRequest struct {
	CurrentSemester int    `json:"current_semester" validate:"required,min=1,max=8"`
	Name            string `json:"name" validate:"omitempty,max=120"`
	Course          string `json:"course" validate:"omitempty,max=120"`
}
