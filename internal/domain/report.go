package domain

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportState is the moderation state of a report. Resolved and rejected are terminal.
type ReportState string

const (
	ReportStatePending  ReportState = "pending"
	ReportStateResolved ReportState = "resolved"
	ReportStateRejected ReportState = "rejected"
)

func (s ReportState) IsValid() bool {
	switch s {
	case ReportStatePending, ReportStateResolved, ReportStateRejected:
		return true
	}
	return false
}

func (s ReportState) IsTerminal() bool {
	return s == ReportStateResolved || s == ReportStateRejected
}

// CanTransitionTo reports whether a report in state s may move to next.
func (s ReportState) CanTransitionTo(next ReportState) bool {
	return s == ReportStatePending && next.IsTerminal()
}

// ContentKind names the kind of entity a report snapshot was taken from.
type ContentKind string

const ContentKindReview ContentKind = "review"

// ReportSnapshot is the reported content as it looked when the report was filed.
// It is written once and never re-derived.
type ReportSnapshot struct {
	Text    string
	Kind    ContentKind
	Title   string
	Rating  float64
	Variant ItemVariant
}

func (s ReportSnapshot) IsEmpty() bool {
	return s.Kind == ""
}

// Report is an abuse report filed by one user against another.
type Report struct {
	ID             primitive.ObjectID
	ReporterID     string
	ReportedUserID string
	ReviewID       *primitive.ObjectID
	Snapshot       ReportSnapshot
	Reason         string
	State          ReportState
	ResolvedBy     string
	ResolvedAt     *time.Time
	CreatedAt      time.Time

	Reporter     *AuthorSummary
	ReportedUser *AuthorSummary
}

// NewReport validates the parties and reason and creates a pending report.
// The self-report check runs first so it wins over any other validation failure.
func NewReport(reporterID, reportedUserID, reason string, reviewID *primitive.ObjectID) (*Report, error) {
	reporterID = strings.TrimSpace(reporterID)
	reportedUserID = strings.TrimSpace(reportedUserID)
	if reporterID != "" && reporterID == reportedUserID {
		return nil, ErrSelfReport
	}
	if reporterID == "" {
		return nil, fmt.Errorf("%w: reporterID cannot be empty", ErrInvalidInput)
	}
	if reportedUserID == "" {
		return nil, fmt.Errorf("%w: reportedUserID cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: reason cannot be empty", ErrInvalidInput)
	}
	return &Report{
		ID:             primitive.NewObjectID(),
		ReporterID:     reporterID,
		ReportedUserID: reportedUserID,
		ReviewID:       reviewID,
		Reason:         reason,
		State:          ReportStatePending,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// ReportFilter holds parameters for listing reports. An empty State lists all.
type ReportFilter struct {
	State ReportState
}
