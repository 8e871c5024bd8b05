package accounts

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dgrijalva/jwt-go"
)

var signingKey = []byte(os.Getenv("AUTH_SIGNING_KEY"))

type registerAccountResponse struct {
	ID ID `json:"id"`
}

type accountResponse struct {
	ID          ID              `json:"id"`
	DisplayName string          `json:"displayName"`
	Email       string          `json:"email"`
	Role        Role            `json:"role"`
	State       ActivationState `json:"state"`
	Token       string          `json:"token,omitempty"`
}

func RegisterAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRegisterAccountRequest(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		id, err := svc.RegisterAccount(req)
		if err != nil {
			encodeError(err, w)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, id))
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(registerAccountResponse{ID: id}); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
}

func ActivateAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := svc.ActivateAccount(req.Token); err != nil {
			encodeError(err, w)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func LoginHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email      string `json:"email"`
			Credential string `json:"credential"`
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		acc, err := svc.LoginWithPassword(req.Email, req.Credential)
		if err != nil {
			encodeError(err, w)
			return
		}

		encodeAccount(acc, w)
	})
}

func OAuthLoginHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		acc, err := svc.LoginWithOAuth(req.Token)
		if err != nil {
			encodeError(err, w)
			return
		}

		encodeAccount(acc, w)
	})
}

func AssignRoleHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			Role  Role   `json:"role"`
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := svc.AssignRole(req.Email, req.Role); err != nil {
			encodeError(err, w)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

// ConfigureLMSHandler resolves the acting account from the bearer token;
// the admin gate itself lives in the LMS service.
func ConfigureLMSHandler(svc Service, lms LMSService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id, err := accountIDFromRequest(r)
		if err != nil {
			encodeError(err, w)
			return
		}

		acting, err := svc.FindAccount(id)
		if err != nil {
			encodeError(err, w)
			return
		}

		var req struct {
			APIURL   string `json:"apiUrl"`
			APIKey   string `json:"apiKey"`
			CourseID string `json:"courseId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := lms.ConfigureIntegration(acting, req.APIURL, req.APIKey, req.CourseID); err != nil {
			encodeError(err, w)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func encodeAccount(acc *Account, w http.ResponseWriter) {
	tokenString, err := getJWTToken(string(acc.ID))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	res := accountResponse{
		ID:          acc.ID,
		DisplayName: acc.DisplayName,
		Email:       acc.Email,
		Role:        acc.Role,
		State:       acc.State,
		Token:       tokenString,
	}
	if err := json.NewEncoder(w).Encode(res); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func getJWTToken(id string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{Issuer: "accounts", Subject: id})
	return token.SignedString(signingKey)
}

func accountIDFromRequest(r *http.Request) (ID, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", ErrInvalidToken
	}

	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(h, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	return ID(claims.Subject), nil
}

func encodeError(err error, w http.ResponseWriter) {
	switch err {
	case ErrExistingEmail:
		w.WriteHeader(http.StatusConflict)
	case ErrInvalidEmail, ErrInvalidCredential, ErrInvalidDisplayName:
		w.WriteHeader(http.StatusUnprocessableEntity)
	case ErrInvalidToken:
		w.WriteHeader(http.StatusUnauthorized)
	case ErrAuthorizationDenied:
		w.WriteHeader(http.StatusForbidden)
	case ErrNotFound:
		w.WriteHeader(http.StatusNotFound)
	case ErrLMSConnection, ErrSyncFailed:
		w.WriteHeader(http.StatusBadGateway)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	}); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func decodeRegisterAccountRequest(body io.ReadCloser) (registerAccountRequest, error) {
	req := registerAccountRequest{}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return registerAccountRequest{}, err
	}
	return req, nil
}
