package accounts

import (
	"errors"
	"time"
)

type ConnectionState string

const (
	Disconnected ConnectionState = "disconnected"
	Connected    ConnectionState = "connected"
)

// LMSIntegration is the single active third-party LMS configuration.
// It is written only by a successful ConfigureIntegration call.
type LMSIntegration struct {
	APIURL          string
	APIKey          string
	CourseID        string
	ConnectionState ConnectionState
	UpdatedAt       time.Time
}

var ErrNoIntegration = errors.New("no lms integration configured")

type LMSService interface {
	ConfigureIntegration(acting *Account, apiURL string, apiKey string, courseID string) error
}

type lmsService struct {
	gateway      LMSGateway
	integrations IntegrationStore
}

func NewLMSService(gateway LMSGateway, integrations IntegrationStore) LMSService {
	return &lmsService{gateway: gateway, integrations: integrations}
}

// ConfigureIntegration is admin-only. The role gate runs before the
// gateway is contacted; a rejected connection leaves any previously
// stored configuration in place.
func (svc *lmsService) ConfigureIntegration(acting *Account, apiURL string, apiKey string, courseID string) error {
	if err := RequireRole(acting, RoleAdmin); err != nil {
		return err
	}

	if !svc.gateway.VerifyConnection(apiURL, apiKey) {
		return ErrLMSConnection
	}

	return svc.integrations.Save(&LMSIntegration{
		APIURL:          apiURL,
		APIKey:          apiKey,
		CourseID:        courseID,
		ConnectionState: Connected,
		UpdatedAt:       time.Now().UTC(),
	})
}
