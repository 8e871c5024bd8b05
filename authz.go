package accounts

// CheckRole reports whether acc holds exactly the required role. There is
// no hierarchy: an admin does not pass a teacher-only check.
func CheckRole(acc *Account, required Role) bool {
	return acc != nil && acc.Role == required
}

// RequireRole is the gate privileged operations apply before doing any
// work or contacting a collaborator.
func RequireRole(acc *Account, required Role) error {
	if !CheckRole(acc, required) {
		return ErrAuthorizationDenied
	}
	return nil
}
