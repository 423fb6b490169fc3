package authsdk

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse is the JSON error body of the identity server. Older
// versions use error_description instead of message.
type ErrorResponse struct {
	Error            string `json:"error"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Login Types
// ============================================================================

// LoginRequest is the body of the password login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	AppID    string `json:"app_id"`
}

// TwoFactorRequest asks the identity server to mail a login link.
type TwoFactorRequest struct {
	// ApplicationURL is the public URL of this application
	ApplicationURL string `json:"application_url"`

	// AppID is filled from the client when empty
	AppID string `json:"app_id"`

	// CallbackURL is where the user lands after following the link
	CallbackURL string `json:"callback_url"`

	Email string `json:"email"`
}

// ============================================================================
// Password Recovery Types
// ============================================================================

// PasswordRecoveryRequest asks the identity server to mail a recovery link.
type PasswordRecoveryRequest struct {
	Email          string `json:"email"`
	AppID          string `json:"app_id"`
	ApplicationURL string `json:"application_url,omitempty"`
}

// RecoverPasswordRequest sets a new password with a recovery token.
type RecoverPasswordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ============================================================================
// Client Configuration Types
// ============================================================================

// RoleDefinition declares a role this application understands.
type RoleDefinition struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// ClientConfiguration is what an application declares about itself.
type ClientConfiguration struct {
	ApplicationURL string           `json:"application_url"`
	Roles          []RoleDefinition `json:"roles"`
}
