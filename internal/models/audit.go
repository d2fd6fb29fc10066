package models

import (
	"time"

	"github.com/google/uuid"
)

// NewAuditReport creates a report with generated UUID and timestamp
func NewAuditReport(url string) *AuditReport {
	return &AuditReport{
		ID:               uuid.New(),
		URL:              url,
		H1:               []string{},
		InternalLinks:    []LinkStatus{},
		ImagesMissingAlt: []string{},
		CreatedAt:        time.Now(),
	}
}

// BrokenLinks returns the checked links that did not resolve to a success or redirect.
func (r *AuditReport) BrokenLinks() []LinkStatus {
	var broken []LinkStatus
	for _, l := range r.InternalLinks {
		if !l.OK {
			broken = append(broken, l)
		}
	}
	return broken
}
