package api

import (
	"thumblytic-backend-go/internal/models"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Code     string `json:"code,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// SchemaMissingResponse is returned with 503 when the database tables do not exist yet.
type SchemaMissingResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	SchemaSQL string `json:"schema_sql"`
	Retry     string `json:"retry"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ProfileResponse adds the store state to a profile. Initialized is false when the
// profile could not be read or created and defaults are shown instead.
type ProfileResponse struct {
	*models.Profile
	Initialized bool `json:"initialized"`
}

// SuggestRequest is the body of POST /suggestions.
type SuggestRequest struct {
	Topic string `json:"topic"`
}

// SubmitAppealRequest is the body of POST /appeals.
type SubmitAppealRequest struct {
	RequestedPlan models.RequestedPlan `json:"requested_plan"`
	Message       string               `json:"message"`
}

// SetSuspensionRequest is the body of PATCH /admin/users/:id/suspension.
type SetSuspensionRequest struct {
	Suspended *bool `json:"suspended"`
}

// OverridePlanRequest is the body of PUT /admin/users/:id/plan.
type OverridePlanRequest struct {
	Plan models.Plan `json:"plan"`
}

// ResetPlansRequest is the body of POST /admin/plans/reset.
type ResetPlansRequest struct {
	Confirmation string `json:"confirmation"`
}

// ResetPlansResponse reports how many profiles were downgraded.
type ResetPlansResponse struct {
	Affected int64 `json:"affected"`
}

// SignUpRequest is the body of POST /auth/signup.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}
