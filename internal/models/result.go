package models

// Result is the tagged outcome of any authentication attempt. Exactly one
// variant is populated: a success carries a profile and tokens, a failure
// carries only a human-readable message.
type Result struct {
	Success      bool
	Message      string
	Profile      *UserProfile
	AccessToken  string
	RefreshToken string
}

// NewSuccess wraps a verified profile and its tokens. refreshToken may be
// empty; only remote outcomes ever carry one.
func NewSuccess(profile *UserProfile, accessToken, refreshToken string) *Result {
	return &Result{
		Success:      true,
		Message:      "Authentication successful",
		Profile:      profile,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
}

// NewFailure wraps a failed attempt with a short human-readable reason.
func NewFailure(message string) *Result {
	return &Result{Message: message}
}
