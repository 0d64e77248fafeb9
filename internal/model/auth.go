package model

// Principal is the authenticated caller as seen by the service layer.
type Principal struct {
	// ExternalID is the Clerk user id (session subject).
	ExternalID string
	Role       string
	IsAdmin    bool
}

// Identity is the profile an identity provider reports for a user.
type Identity struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
}
