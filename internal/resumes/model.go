package resumes

import (
	"encoding/json"
	"time"

	"resume-tailor/resume/model"
)

// Resume is an uploaded resume with its parsed, editable content.
type Resume struct {
	ID              string
	UserID          string
	Title           string
	RawText         string
	Data            model.ResumeData
	CurrentContent  json.RawMessage
	OriginalContent json.RawMessage
	ParseSource     string
	FileName        string
	ContentType     string
	SizeBytes       int64
	StorageBucket   string
	StorageKey      string
	ThumbnailKey    string
	LastOptimized   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// setContent replaces the structured data and keeps CurrentContent in sync.
func (r *Resume) setContent(d model.ResumeData) error {
	d = d.Normalize()
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	r.Data = d
	r.CurrentContent = raw
	return nil
}

// Original decodes the snapshot taken before the first tailoring.
func (r Resume) Original() *model.ResumeData {
	if len(r.OriginalContent) == 0 || string(r.OriginalContent) == "null" {
		return nil
	}
	var d model.ResumeData
	if err := json.Unmarshal(r.OriginalContent, &d); err != nil {
		return nil
	}
	d = d.Normalize()
	return &d
}

// SignedURL is a time-limited download link for the stored file.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
