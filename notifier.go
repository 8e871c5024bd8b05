package accounts

import "log"

// logNotifier stands in for a real email transport. Delivery is a log
// line carrying the address and activation token.
type logNotifier struct{}

func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) SendVerification(email string, token string) error {
	log.Printf("[email] verification sent to %s (token: %s)", email, token)
	return nil
}
