// internal/patients/client.go
package patients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/matrixctl/internal/config"
	"github.com/xkilldash9x/matrixctl/internal/failure"
)

const maxBodyBytes = 4 << 20

// Client talks to the companion REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	// limiter keeps a scripted burst of lookups from hammering a dev backend.
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient builds a Client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg config.APIConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		timeout:    cfg.Timeout,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.Named("patients"),
	}
}

// Resolve maps an identifier to a record id. A record id resolves to itself
// without I/O; an MRN costs exactly one lookup.
func (c *Client) Resolve(ctx context.Context, id Identifier) (Resolution, error) {
	if !id.IsMRN() {
		return Resolution{RecordID: id.Value}, nil
	}
	p, err := c.LookupMRN(ctx, id.Value)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{RecordID: string(p.ID), Patient: &p}, nil
}

// LookupMRN fetches the patient registered under a medical record number.
// Every failure is reported as IDENTIFIER_RESOLUTION_FAILED.
func (c *Client) LookupMRN(ctx context.Context, mrn string) (Patient, error) {
	body, status, err := c.get(ctx, "/patients/mrn/"+url.PathEscape(mrn))
	if err != nil {
		return Patient{}, failure.IdentifierResolutionFailed(mrn, err)
	}
	if status < 200 || status > 299 {
		c.logger.Warn("MRN lookup rejected", zap.String("mrn", mrn), zap.Int("status", status))
		return Patient{}, failure.IdentifierResolutionFailed(mrn, fmt.Errorf("patient API returned status %d", status))
	}
	if !gjson.ValidBytes(body) {
		return Patient{}, failure.IdentifierResolutionFailed(mrn, errors.New("patient API returned a non-JSON body"))
	}

	id := gjson.GetBytes(body, "id")
	if !id.Exists() || (id.Type != gjson.String && id.Type != gjson.Number) || id.String() == "" {
		return Patient{}, failure.IdentifierResolutionFailed(mrn, errors.New("patient record has no id"))
	}

	p := Patient{
		ID:                  FlexString(id.String()),
		MedicalRecordNumber: mrn,
		FirstName:           gjson.GetBytes(body, "firstName").String(),
		LastName:            gjson.GetBytes(body, "lastName").String(),
		RoomNumber:          FlexString(gjson.GetBytes(body, "roomNumber").String()),
	}
	c.logger.Debug("Resolved MRN", zap.String("mrn", mrn), zap.String("id", string(p.ID)))
	return p, nil
}

// List returns every patient the API knows about.
func (c *Client) List(ctx context.Context) ([]Patient, error) {
	body, status, err := c.get(ctx, "/patients")
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to list patients: API returned status %d", status)
	}
	var list []Patient
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode patient list: %w", err)
	}
	return list, nil
}

// get performs one rate-limited GET bounded by the configured timeout.
func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
