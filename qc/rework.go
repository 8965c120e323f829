package qc

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReworkStatus is the lifecycle state of a rework job. Transitions are
// forward-only in practice: pending -> in_progress -> completed -> verified.
type ReworkStatus string

const (
	ReworkPending    ReworkStatus = "pending"
	ReworkInProgress ReworkStatus = "in_progress"
	ReworkCompleted  ReworkStatus = "completed"
	ReworkVerified   ReworkStatus = "verified"
)

// ParseReworkStatus validates an operator-supplied status value.
func ParseReworkStatus(s string) (ReworkStatus, error) {
	switch ReworkStatus(s) {
	case ReworkPending, ReworkInProgress, ReworkCompleted, ReworkVerified:
		return ReworkStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown rework status %q", ErrValidation, s)
}

// Priority is the urgency of a rework job.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority validates a priority value; empty defaults to medium.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return Priority(s), nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, s)
}

// TriageDecision is the operator's call on an inspection report.
type TriageDecision string

const (
	DecisionAccept   TriageDecision = "accept"
	DecisionRework   TriageDecision = "rework"
	DecisionEscalate TriageDecision = "escalate"
)

// ParseTriageDecision validates a decision value.
func ParseTriageDecision(s string) (TriageDecision, error) {
	switch TriageDecision(s) {
	case DecisionAccept, DecisionRework, DecisionEscalate:
		return TriageDecision(s), nil
	}
	return "", fmt.Errorf("%w: unknown triage decision %q", ErrValidation, s)
}

// LifecycleEvent is one entry of a rework job's append-only audit trail.
type LifecycleEvent struct {
	Timestamp time.Time    `json:"timestamp"`
	Status    ReworkStatus `json:"status"`
	Operator  string       `json:"operator,omitempty"`
	Action    string       `json:"action"`
	Notes     string       `json:"notes,omitempty"`
}

// ReworkJob tracks remediation of a subset of an inspection's defects. Every
// status transition appends exactly one lifecycle event; creation itself
// appends the initial pending event, so the trail is never empty.
type ReworkJob struct {
	ID             string
	InspectionID   string
	Defects        []Defect
	DefectType     string
	DefectSeverity Severity
	OperatorNotes  string
	Priority       Priority

	AssignedStation  string
	AssignedOperator string
	VerifiedBy       string

	Status      ReworkStatus
	CreatedAt   time.Time
	AssignedAt  *time.Time
	CompletedAt *time.Time
	VerifiedAt  *time.Time

	Lifecycle []LifecycleEvent
}

// NewReworkJob seeds a job from exactly the selected defect ids of a report's
// defect list. DefectType is the comma-joined set of distinct types among the
// selection; DefectSeverity is the maximum severity among them.
func NewReworkJob(inspectionID string, reportDefects []Defect, selectedIDs []string, notes string, priority Priority, station string, now time.Time) (*ReworkJob, error) {
	selected := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}

	defects := make([]Defect, 0, len(selectedIDs))
	for _, d := range reportDefects {
		if selected[d.ID] {
			defects = append(defects, d)
		}
	}
	if len(defects) == 0 {
		return nil, fmt.Errorf("%w: no matching defects selected for rework", ErrValidation)
	}

	if priority == "" {
		priority = PriorityMedium
	}

	u := uuid.New()
	job := &ReworkJob{
		ID:              "rework_" + hex.EncodeToString(u[:])[:8],
		InspectionID:    inspectionID,
		Defects:         defects,
		DefectType:      joinDistinctTypes(defects),
		DefectSeverity:  MaxSeverity(defects),
		OperatorNotes:   notes,
		Priority:        priority,
		AssignedStation: station,
		Status:          ReworkPending,
		CreatedAt:       now,
		Lifecycle: []LifecycleEvent{{
			Timestamp: now,
			Status:    ReworkPending,
			Action:    "created",
			Notes:     "Rework job created from QC inspection",
		}},
	}
	return job, nil
}

// Advance moves the job to newStatus. Timestamps and operator assignments
// are set only the first time a status is reached; the audit event is
// appended on every call regardless.
func (j *ReworkJob) Advance(newStatus, operator, notes string, now time.Time) error {
	status, err := ParseReworkStatus(newStatus)
	if err != nil {
		return err
	}

	oldStatus := j.Status
	j.Status = status

	switch status {
	case ReworkInProgress:
		if j.AssignedAt == nil {
			j.AssignedAt = &now
			j.AssignedOperator = operator
		}
	case ReworkCompleted:
		if j.CompletedAt == nil {
			j.CompletedAt = &now
		}
	case ReworkVerified:
		if j.VerifiedAt == nil {
			j.VerifiedAt = &now
			j.VerifiedBy = operator
		}
	}

	j.Lifecycle = append(j.Lifecycle, LifecycleEvent{
		Timestamp: now,
		Status:    status,
		Operator:  operator,
		Action:    fmt.Sprintf("Status changed from %s to %s", oldStatus, status),
		Notes:     notes,
	})
	return nil
}

// joinDistinctTypes builds the aggregated defect-type string, sorted for a
// stable representation.
func joinDistinctTypes(defects []Defect) string {
	seen := make(map[string]bool, len(defects))
	types := make([]string, 0, len(defects))
	for _, d := range defects {
		if !seen[string(d.Type)] {
			seen[string(d.Type)] = true
			types = append(types, string(d.Type))
		}
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}
