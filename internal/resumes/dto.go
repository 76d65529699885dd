package resumes

import (
	"time"

	"resume-tailor/resume/model"
)

type resumeResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	FileName        string            `json:"fileName"`
	ContentType     string            `json:"contentType"`
	SizeBytes       int64             `json:"sizeBytes"`
	ParseSource     string            `json:"parseSource"`
	Content         model.ResumeData  `json:"content"`
	OriginalContent *model.ResumeData `json:"originalContent"`
	RawText         string            `json:"rawText,omitempty"`
	HasThumbnail    bool              `json:"hasThumbnail"`
	LastOptimized   *time.Time        `json:"lastOptimized"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func toResponse(r Resume, withText bool) resumeResponse {
	resp := resumeResponse{
		ID:              r.ID,
		Title:           r.Title,
		FileName:        r.FileName,
		ContentType:     r.ContentType,
		SizeBytes:       r.SizeBytes,
		ParseSource:     r.ParseSource,
		Content:         r.Data.Normalize(),
		OriginalContent: r.Original(),
		HasThumbnail:    r.ThumbnailKey != "",
		LastOptimized:   r.LastOptimized,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if withText {
		resp.RawText = r.RawText
	}
	return resp
}

func toListResponse(items []Resume) []resumeResponse {
	out := make([]resumeResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toResponse(r, false))
	}
	return out
}

type jobRequest struct {
	JobTitle       string `json:"jobTitle"`
	Company        string `json:"company"`
	JobDescription string `json:"jobDescription"`
	JobURL         string `json:"jobUrl"`
}

func (j jobRequest) empty() bool {
	return j.JobTitle == "" && j.Company == "" && j.JobDescription == "" && j.JobURL == ""
}
