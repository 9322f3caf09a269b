package model

// OAuthIntent is what the caller wants to achieve with a federated sign-in.
type OAuthIntent string

const (
	IntentLogin            OAuthIntent = "login"
	IntentSignupStudent    OAuthIntent = "signup-student"
	IntentSignupInstructor OAuthIntent = "signup-instructor"
)

// SignupRole returns the role for accounts created by a signup intent.
func (i OAuthIntent) SignupRole() Role {
	if i == IntentSignupInstructor {
		return RoleInstructor
	}
	return RoleStudent
}

// IsSignup reports whether the intent creates accounts.
func (i OAuthIntent) IsSignup() bool {
	return i == IntentSignupStudent || i == IntentSignupInstructor
}

// OAuthFlowState is stored server-side between redirecting to the provider and the callback.
type OAuthFlowState struct {
	Intent       OAuthIntent `json:"intent"`
	CodeVerifier string      `json:"code_verifier"`
}

// SessionGrant is what a one-time exchange code resolves to.
type SessionGrant struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
