package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orghealth/ascent/config"
	"github.com/rs/zerolog/log"
)

const docRaptorBaseURL = "https://api.docraptor.com"

// ErrRenderTransient marks network/5xx failures from the render service. The
// client simply re-polls on its existing timer; nothing retries server-side.
var ErrRenderTransient = errors.New("render service temporarily unavailable")

// DocRaptorStatus is the job status payload from the render service.
type DocRaptorStatus struct {
	Status        string `json:"status"` // queued | working | completed | failed
	DownloadURL   string `json:"download_url,omitempty"`
	NumberOfPages int    `json:"number_of_pages,omitempty"`
	Message       string `json:"message,omitempty"`
}

// DocRaptorClient submits async PDF render jobs and polls them. DocRaptor has
// no Go SDK; this is a thin JSON client over its REST API.
type DocRaptorClient interface {
	CreateAsync(ctx context.Context, name, htmlContent string) (statusID string, err error)
	Status(ctx context.Context, statusID string) (*DocRaptorStatus, error)
	Download(ctx context.Context, downloadURL string) ([]byte, error)
}

type docRaptorClient struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

func NewDocRaptorClient(cfg *config.Config) DocRaptorClient {
	if cfg.DocRaptor.APIKey == "" {
		log.Warn().Msg("DOCRAPTOR_API_KEY is not set. Report rendering will fail.")
	}
	return &docRaptorClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    docRaptorBaseURL,
	}
}

type docRaptorCreateRequest struct {
	Test            bool   `json:"test"`
	DocumentType    string `json:"document_type"`
	DocumentContent string `json:"document_content"`
	Name            string `json:"name"`
	Async           bool   `json:"async"`
	PrinceOptions   struct {
		Media string `json:"media"`
	} `json:"prince_options"`
}

type docRaptorCreateResponse struct {
	StatusID string `json:"status_id"`
}

func (c *docRaptorClient) CreateAsync(ctx context.Context, name, htmlContent string) (string, error) {
	if c.cfg.DocRaptor.APIKey == "" {
		return "", fmt.Errorf("DocRaptor API key not set")
	}

	reqBody := docRaptorCreateRequest{
		Test:            c.cfg.DocRaptor.Test,
		DocumentType:    "pdf",
		DocumentContent: htmlContent,
		Name:            name,
		Async:           true,
	}
	reqBody.PrinceOptions.Media = "print"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/docs", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.DocRaptor.APIKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: status %d", ErrRenderTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("render job rejected with status %d: %s", resp.StatusCode, body)
	}

	var created docRaptorCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode render response: %w", err)
	}
	if created.StatusID == "" {
		return "", fmt.Errorf("render service returned no status id")
	}
	return created.StatusID, nil
}

func (c *docRaptorClient) Status(ctx context.Context, statusID string) (*DocRaptorStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+statusID, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.DocRaptor.APIKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrRenderTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("render status query failed with status %d: %s", resp.StatusCode, body)
	}

	var status DocRaptorStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &status, nil
}

func (c *docRaptorClient) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.DocRaptor.APIKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrRenderTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
