package models

import "time"

// Audit actions.
const (
	AuditAppealSubmit     = "APPEAL_SUBMIT"
	AuditAppealApprove    = "APPEAL_APPROVE"
	AuditAppealReject     = "APPEAL_REJECT"
	AuditUserSuspend      = "USER_SUSPENSION_SET"
	AuditUserPlanOverride = "USER_PLAN_OVERRIDE"
	AuditPlansReset       = "PLANS_RESET_ALL"
	AuditSchemaMigrate    = "SCHEMA_MIGRATE"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId" firestore:"userId"` // actor
	Action     string                 `json:"action" firestore:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"` // "PROFILE", "APPEAL", "SCHEMA"
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty" firestore:"ipAddress,omitempty"`
	UserAgent  string                 `json:"userAgent,omitempty" firestore:"userAgent,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
