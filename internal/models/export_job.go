package models

import "time"

// ExportFormat enumerates catalog export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "queued"
	ExportStatusProcessing ExportStatus = "processing"
	ExportStatusFinished   ExportStatus = "finished"
	ExportStatusFailed     ExportStatus = "failed"
)

// ExportJob is a persisted catalog export request.
type ExportJob struct {
	ID           string       `json:"id"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	FilePath     string       `json:"filePath,omitempty"`
	ResultURL    *string      `json:"resultUrl,omitempty"`
	ErrorMessage *string      `json:"errorMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	FinishedAt   *time.Time   `json:"finishedAt,omitempty"`
}

// CreateExportRequest is the admin payload for a catalog export.
type CreateExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}
