// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"strings"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/internal/domain"
)

// CreateItemRequest is the body of an upload.
type CreateItemRequest struct {
	Kind    string   `json:"kind" validate:"required,content_kind"`
	Title   string   `json:"title" validate:"required,max=200"`
	Subject string   `json:"subject" validate:"max=100"`
	Tags    []string `json:"tags" validate:"max=10,dive,required,max=40"`
}

// ToInput converts the request to the service input.
func (r *CreateItemRequest) ToInput() service.NewItemInput {
	var tags []string
	for _, t := range r.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return service.NewItemInput{
		Kind:    domain.ContentKind(r.Kind),
		Title:   strings.TrimSpace(r.Title),
		Subject: strings.TrimSpace(r.Subject),
		Tags:    tags,
	}
}

// RatingRequest is the body of a rating submission.
type RatingRequest struct {
	Rating int `json:"rating" validate:"rating"`
}

// AuditRequest holds the query parameters of a manual audit.
type AuditRequest struct {
	Repair bool `query:"repair"`
}
