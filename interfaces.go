package accounts

// Collaborator ports. Implementations are injected at construction; the
// services never reach for a concrete backend directly.

// Directory is the keyed account store. Emails passed in are expected in
// canonical form (see CanonicalEmail).
type Directory interface {
	Exists(email string) (bool, error)
	// InsertIfAbsent checks email uniqueness and stores the account as a
	// single atomic step, returning ErrExistingEmail when the email is taken.
	InsertIfAbsent(acc *Account) error
	FindByEmail(email string) (*Account, error)
	FindByID(id ID) (*Account, error)
	UpdateState(id ID, state ActivationState) error
	UpdateRole(email string, role Role) error
	UpdateProficiency(id ID, profile string) error
}

// Notifier delivers verification messages. Fire and forget: the service
// logs failures and never propagates them to the registering caller.
type Notifier interface {
	SendVerification(email string, token string) error
}

// IdentityProvider resolves an opaque OAuth token to a verified email.
type IdentityProvider interface {
	Verify(token string) (string, error)
}

// ProficiencyGateway fetches a student's subject-score profile as an
// opaque blob. An empty blob means the source had no data.
type ProficiencyGateway interface {
	FetchScores(id ID) (string, error)
}

// LMSGateway validates third-party LMS credentials.
type LMSGateway interface {
	VerifyConnection(apiURL string, apiKey string) bool
}

// IntegrationStore persists the single active LMS configuration.
type IntegrationStore interface {
	Save(integration *LMSIntegration) error
	Current() (*LMSIntegration, error)
}

type registerAccountRequest struct {
	DisplayName, Email, Credential string
}
