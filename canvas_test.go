package accounts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newLMSServer(apiKey string, courses []lmsCourse) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.URL.Path == "/accounts":
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(r.URL.Path, "/courses"):
			_ = json.NewEncoder(w).Encode(courses)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestCanvasGateway_FetchScores(t *testing.T) {
	courses := []lmsCourse{
		{ID: "ENGL101", Name: "English Composition", Grade: 85, Progress: 75},
		{ID: "ENGL201", Name: "Advanced English", Grade: 90, Progress: 60},
	}
	srv := newLMSServer("key", courses)
	defer srv.Close()

	gateway := NewCanvasGateway(srv.URL, "key")

	blob, err := gateway.FetchScores(NewID())
	assert.NoError(t, err)

	var profile proficiencyProfile
	assert.NoError(t, json.Unmarshal([]byte(blob), &profile))
	assert.Equal(t, courses, profile.Courses)
	assert.Equal(t, 3.5, profile.GPA)
}

func TestCanvasGateway_FetchScoresNoCourses(t *testing.T) {
	srv := newLMSServer("key", []lmsCourse{})
	defer srv.Close()

	gateway := NewCanvasGateway(srv.URL, "key")

	blob, err := gateway.FetchScores(NewID())
	assert.NoError(t, err)
	assert.Equal(t, "", blob)
}

func TestCanvasGateway_FetchScoresRejectedKey(t *testing.T) {
	srv := newLMSServer("key", nil)
	defer srv.Close()

	gateway := NewCanvasGateway(srv.URL, "wrong-key")

	_, err := gateway.FetchScores(NewID())
	assert.Error(t, err)
}

func TestCanvasGateway_VerifyConnection(t *testing.T) {
	srv := newLMSServer("key", nil)
	defer srv.Close()

	gateway := NewCanvasGateway(srv.URL, "")

	assert.True(t, gateway.VerifyConnection(srv.URL, "key"))
	assert.False(t, gateway.VerifyConnection(srv.URL, "wrong-key"))
	assert.False(t, gateway.VerifyConnection("http://127.0.0.1:1", "key"))
}

func TestStaticProficiencyGateway(t *testing.T) {
	blob, err := StaticProficiencyGateway{}.FetchScores(NewID())
	assert.NoError(t, err)

	var profile proficiencyProfile
	assert.NoError(t, json.Unmarshal([]byte(blob), &profile))
	assert.Len(t, profile.Courses, 2)
}
