package accounts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CanvasGateway talks to a Canvas-compatible LMS API. It serves both as
// the proficiency source (course grades reduced to an opaque profile
// blob) and as the connectivity check run when configuring an
// integration.
type CanvasGateway struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewCanvasGateway(baseURL string, apiKey string) *CanvasGateway {
	return &CanvasGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type lmsCourse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Grade    float64 `json:"grade"`
	Progress float64 `json:"progress"`
}

type proficiencyProfile struct {
	Courses []lmsCourse `json:"courses"`
	GPA     float64     `json:"gpa"`
	Synced  time.Time   `json:"lastSync"`
}

// FetchScores returns the student's course grades as a JSON blob, or an
// empty blob when the source has no courses for the id.
func (g *CanvasGateway) FetchScores(id ID) (string, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/users/%s/courses", g.BaseURL, id), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lms responded %d", resp.StatusCode)
	}

	var courses []lmsCourse
	if err := json.NewDecoder(resp.Body).Decode(&courses); err != nil {
		return "", err
	}
	if len(courses) == 0 {
		return "", nil
	}

	return marshalProfile(courses)
}

// VerifyConnection probes the API with the caller's URL and key; the
// gateway's configured defaults are not what is being validated here.
func (g *CanvasGateway) VerifyConnection(apiURL string, apiKey string) bool {
	req, err := http.NewRequest(http.MethodGet, apiURL+"/accounts", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func marshalProfile(courses []lmsCourse) (string, error) {
	var total float64
	for _, c := range courses {
		total += c.Grade
	}

	// 100-point grades onto a 4.0 scale.
	profile := proficiencyProfile{
		Courses: courses,
		GPA:     total / float64(len(courses)) / 25,
		Synced:  time.Now().UTC(),
	}

	blob, err := json.Marshal(profile)
	if err != nil {
		return "", err
	}
	return string(blob), nil
}

// StaticProficiencyGateway serves the fixture profile used when no LMS
// API key is configured.
type StaticProficiencyGateway struct{}

func (StaticProficiencyGateway) FetchScores(id ID) (string, error) {
	return marshalProfile([]lmsCourse{
		{ID: "ENGL101", Name: "English Composition", Grade: 85, Progress: 75},
		{ID: "ENGL201", Name: "Advanced English", Grade: 90, Progress: 60},
	})
}
