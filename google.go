package accounts

import "strings"

// googleIdentity mimics Google token verification for environments
// without real provider credentials: tokens shorter than ten characters
// are rejected, anything else maps to a stable address derived from the
// token so repeated logins resolve to the same account.
type googleIdentity struct{}

func NewGoogleIdentity() IdentityProvider {
	return googleIdentity{}
}

func (googleIdentity) Verify(token string) (string, error) {
	if len(token) < 10 {
		return "", ErrInvalidToken
	}
	local := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, token[:10])
	return strings.ToLower(local) + "@gmail.com", nil
}
