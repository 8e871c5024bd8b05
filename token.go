package accounts

import (
	"strings"

	"github.com/rs/xid"
)

// ActivationPolicy issues and validates account verification tokens.
// It is an explicit injection point so a real verification scheme can
// replace the default without touching the service.
type ActivationPolicy interface {
	Issue(id ID) (string, error)
	Validate(token string) (ID, error)
}

// plainTokenPolicy concatenates the account id with a random nonce.
// Validate checks the token's shape only; the nonce is not verified
// against anything, so any well-formed token is accepted.
type plainTokenPolicy struct{}

func NewActivationPolicy() ActivationPolicy {
	return plainTokenPolicy{}
}

func (plainTokenPolicy) Issue(id ID) (string, error) {
	return string(id) + "." + xid.New().String(), nil
}

func (plainTokenPolicy) Validate(token string) (ID, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 || !isValidID(parts[0]) || !isValidID(parts[1]) {
		return "", ErrInvalidToken
	}
	return ID(parts[0]), nil
}
