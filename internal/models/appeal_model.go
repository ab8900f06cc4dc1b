package models

import "time"

// AppealStatus is the review state of a plan appeal.
type AppealStatus string

const (
	AppealPending  AppealStatus = "pending"
	AppealApproved AppealStatus = "approved"
	AppealRejected AppealStatus = "rejected"
)

// RequestedPlan is what the user asks for in an appeal. "custom" has no fixed credit mapping.
type RequestedPlan string

const (
	RequestedPro    RequestedPlan = "pro"
	RequestedElite  RequestedPlan = "elite"
	RequestedCustom RequestedPlan = "custom"
)

func (r RequestedPlan) Valid() bool {
	switch r {
	case RequestedPro, RequestedElite, RequestedCustom:
		return true
	}
	return false
}

// Appeal is a user's request for a plan upgrade, backed by an out-of-band payment.
type Appeal struct {
	ID            string        `json:"id" db:"id"`
	UserID        string        `json:"user_id" db:"user_id"`
	UserEmail     string        `json:"user_email" db:"user_email"`
	RequestedPlan RequestedPlan `json:"requested_plan" db:"requested_plan"`
	Message       string        `json:"message" db:"message"`
	Status        AppealStatus  `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// ApprovalOptions lets an approver override the granted plan or credit balance.
// Both are optional; nil means "use the default for the requested plan".
type ApprovalOptions struct {
	Plan    *Plan `json:"plan,omitempty"`
	Credits *int  `json:"credits,omitempty"`
}
