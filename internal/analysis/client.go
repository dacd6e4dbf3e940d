// Advisory risk assessment via an external text-generation API.
//
// The simulation never depends on this call succeeding: every failure
// path returns the neutral Fallback assessment and the loop carries on.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"ddosim/internal/model"
)

// RiskScore is the coarse verdict of an assessment.
type RiskScore string

const (
	RiskLow    RiskScore = "Low"
	RiskMedium RiskScore = "Medium"
	RiskHigh   RiskScore = "High"
)

// Assessment is the structured result shown on the dashboard.
type Assessment struct {
	RiskScore         RiskScore `json:"risk_score"`
	ThreatDescription string    `json:"threat_description"`
	MitigationSteps   []string  `json:"mitigation_steps"`
	Confidence        float64   `json:"confidence"`
}

// Fallback is the neutral assessment substituted on any failure.
func Fallback() Assessment {
	return Assessment{
		RiskScore:         RiskMedium,
		ThreatDescription: "Analysis service unreachable; showing a neutral assessment based on no external data.",
		MitigationSteps: []string{
			"Review the current metrics trend manually.",
			"Retry the analysis once connectivity is restored.",
		},
		Confidence: 0,
	}
}

// request is the payload sent to the analysis endpoint.
type request struct {
	AttackVector string                  `json:"attack_vector"`
	Mitigations  []string                `json:"mitigations"`
	History      []model.MetricsSnapshot `json:"history"`
}

const requestTimeout = 10 * time.Second

// Client calls the external analysis endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient creates a client for the given endpoint and key. Either may be
// empty; Analyze then fails open without a network round trip.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

// NewClientFromEnv reads ANALYSIS_ENDPOINT and ANALYSIS_API_KEY.
func NewClientFromEnv() *Client {
	return NewClient(os.Getenv("ANALYSIS_ENDPOINT"), os.Getenv("ANALYSIS_API_KEY"))
}

// Analyze submits the most recent snapshots and simulation context and
// returns the structured assessment. On any error the Fallback assessment
// is returned along with the error so the caller can log an advisory.
func (c *Client) Analyze(ctx context.Context, history []model.MetricsSnapshot, vector model.AttackVector, enabledMitigations []string) (Assessment, error) {
	if c.endpoint == "" || c.apiKey == "" {
		return Fallback(), errors.New("analysis endpoint or API key not configured")
	}

	payload := request{
		AttackVector: string(vector),
		Mitigations:  enabledMitigations,
		History:      history,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Fallback(), fmt.Errorf("encode analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Fallback(), fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Fallback(), fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Fallback(), fmt.Errorf("analysis request returned %s", resp.Status)
	}

	var a Assessment
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return Fallback(), fmt.Errorf("decode analysis response: %w", err)
	}
	return sanitize(a), nil
}

// sanitize bounds a well-formed but untrusted assessment.
func sanitize(a Assessment) Assessment {
	switch a.RiskScore {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		a.RiskScore = RiskMedium
	}
	if a.Confidence < 0 {
		a.Confidence = 0
	}
	if a.Confidence > 1 {
		a.Confidence = 1
	}
	if len(a.MitigationSteps) == 0 {
		a.MitigationSteps = Fallback().MitigationSteps
	}
	return a
}
