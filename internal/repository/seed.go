package repository

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/edunotes-api/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Notes         []seedNote         `yaml:"notes"`
	Notifications []seedNotification `yaml:"notifications"`
}

type seedNote struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Subject     string   `yaml:"subject"`
	Semester    string   `yaml:"semester"`
	UploadDate  string   `yaml:"upload_date"`
	FileSize    string   `yaml:"file_size"`
	Type        string   `yaml:"type"`
	FileURL     string   `yaml:"file_url"`
	FileName    string   `yaml:"file_name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

type seedNotification struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	Message        string `yaml:"message"`
	TargetSemester string `yaml:"target_semester"`
}

type seedData struct {
	Notes         []models.Note
	Notifications []models.Notification
}

var (
	seedOnce    sync.Once
	seedCache   seedData
	seedLoadErr error
)

// loadSeed parses the embedded fixture once. Callers receive fresh slices.
func loadSeed() (seedData, error) {
	seedOnce.Do(func() {
		seedCache, seedLoadErr = parseSeed(seedYAML)
	})
	if seedLoadErr != nil {
		return seedData{}, seedLoadErr
	}
	out := seedData{
		Notes:         make([]models.Note, len(seedCache.Notes)),
		Notifications: append([]models.Notification(nil), seedCache.Notifications...),
	}
	for i, note := range seedCache.Notes {
		note.Tags = append([]string(nil), note.Tags...)
		out.Notes[i] = note
	}
	return out, nil
}

func parseSeed(raw []byte) (seedData, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return seedData{}, fmt.Errorf("parse seed fixture: %w", err)
	}

	data := seedData{}
	for _, n := range file.Notes {
		semester, err := models.ParseSemester(n.Semester)
		if err != nil {
			return seedData{}, fmt.Errorf("seed note %s: %w", n.ID, err)
		}
		uploaded, err := models.ParseDate(n.UploadDate)
		if err != nil {
			return seedData{}, fmt.Errorf("seed note %s: %w", n.ID, err)
		}
		noteType, err := models.ParseNoteType(n.Type)
		if err != nil {
			return seedData{}, fmt.Errorf("seed note %s: %w", n.ID, err)
		}
		if n.FileURL == "" {
			return seedData{}, fmt.Errorf("seed note %s: file_url is required", n.ID)
		}
		data.Notes = append(data.Notes, models.Note{
			ID:          models.NoteID(n.ID),
			Title:       n.Title,
			Subject:     n.Subject,
			Semester:    semester,
			UploadDate:  uploaded,
			FileSize:    n.FileSize,
			Type:        noteType,
			FileURL:     n.FileURL,
			FileName:    n.FileName,
			Description: n.Description,
			Tags:        n.Tags,
		})
	}

	for _, n := range file.Notifications {
		audience, err := models.ParseAudience(n.TargetSemester)
		if err != nil {
			return seedData{}, fmt.Errorf("seed notification %s: %w", n.ID, err)
		}
		data.Notifications = append(data.Notifications, models.Notification{
			ID:             models.NotificationID(n.ID),
			Title:          n.Title,
			Message:        n.Message,
			TargetSemester: audience,
		})
	}
	return data, nil
}
