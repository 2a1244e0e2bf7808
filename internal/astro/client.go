package astro

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrEngine wraps any failure of the computation engine: transport
// errors, non-2xx statuses, or bad envelopes. Callers treat an engine
// failure as "keep serving the previous cache".
var ErrEngine = errors.New("computation engine error")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// The engine wraps every response in a success envelope.
type engineEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

type kundliRequest struct {
	BirthFacts
	CalculationMethod string `json:"calculation_method"`
	Ayanamsa          string `json:"ayanamsa"`
}

// ComputeKundli asks the engine for the full artifact bundle: charts,
// positions, cusps, dasha timeline, yogas, doshas and strengths, plus
// the engine version tag.
func (c *Client) ComputeKundli(ctx context.Context, facts BirthFacts, method, ayanamsa string) (*ArtifactBundle, error) {
	var bundle ArtifactBundle
	req := kundliRequest{BirthFacts: facts, CalculationMethod: method, Ayanamsa: ayanamsa}
	if err := c.post(ctx, "/kundli/comprehensive", req, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

type horoscopeRequest struct {
	BirthFacts
	Period string `json:"period"`
	Target string `json:"target,omitempty"`
}

// Horoscope generates a daily/monthly/yearly prediction for the given
// target date (empty means "now" on the engine side).
func (c *Client) Horoscope(ctx context.Context, period string, facts BirthFacts, target string) (*Horoscope, error) {
	var h Horoscope
	req := horoscopeRequest{BirthFacts: facts, Period: period, Target: target}
	if err := c.post(ctx, "/horoscope/"+period, req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Remedies asks the engine for gemstone and mantra suggestions.
func (c *Client) Remedies(ctx context.Context, facts BirthFacts) (*Remedies, error) {
	var r Remedies
	if err := c.post(ctx, "/remedies", facts, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal engine request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngine, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrEngine, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned status %d", ErrEngine, path, resp.StatusCode)
	}

	var envelope engineEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", ErrEngine, err)
	}
	if !envelope.Success {
		return fmt.Errorf("%w: %s", ErrEngine, envelope.Error)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: decode payload: %v", ErrEngine, err)
	}
	return nil
}
