package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Task states reported by the automation service.
const (
	taskStatusFinished = "finished"
	taskStatusFailed   = "failed"
	taskStatusStopped  = "stopped"
)

// Config holds everything the runner needs to drive the hosted browser
// agent: the service API key, the grocery-site login injected as secrets,
// and an optional persistent browser profile.
type Config struct {
	APIKey       string
	SiteEmail    string
	SitePassword string
	// ProfileID selects a persistent cloud browser profile (keeps cookies
	// and past logins between runs). Optional.
	ProfileID    string
	APIURL       string
	PollInterval time.Duration
}

// Runner drives a hosted browser-automation agent through one grocery
// order: create the task, watch it until it terminates, return its final
// output text.
type Runner struct {
	cfg        Config
	httpClient *http.Client
}

// NewRunner creates a Runner for the given automation service config.
func NewRunner(cfg Config) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &Runner{
		cfg: cfg,
		// No overall deadline: a run is bounded by the agent's own step
		// budget, not by this layer.
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type createTaskRequest struct {
	Task           string            `json:"task"`
	Secrets        map[string]string `json:"secrets,omitempty"`
	AllowedDomains []string          `json:"allowed_domains,omitempty"`
	ProfileID      string            `json:"browser_profile_id,omitempty"`
}

type createTaskResponse struct {
	ID string `json:"id"`
}

type taskStatusResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Output  string `json:"output"`
	LiveURL string `json:"live_url"`
}

// Run executes the grocery automation for items and returns the agent's
// final output text. onLivePreview, when non-nil, is invoked at most once,
// as soon as the session's live-view URL becomes available; it is called
// from the polling goroutine and should not block.
func (r *Runner) Run(ctx context.Context, items []string, onLivePreview func(url string)) (string, error) {
	taskID, err := r.createTask(ctx, items)
	if err != nil {
		return "", fmt.Errorf("create automation task: %w", err)
	}

	livePreviewSent := false
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		status, err := r.taskStatus(ctx, taskID)
		if err != nil {
			return "", fmt.Errorf("poll automation task %s: %w", taskID, err)
		}

		if !livePreviewSent && status.LiveURL != "" && onLivePreview != nil {
			onLivePreview(status.LiveURL)
			livePreviewSent = true
		}

		switch status.Status {
		case taskStatusFinished:
			return status.Output, nil
		case taskStatusFailed, taskStatusStopped:
			return "", fmt.Errorf("automation task %s ended with status %q", taskID, status.Status)
		}
	}
}

func (r *Runner) createTask(ctx context.Context, items []string) (string, error) {
	reqBody := createTaskRequest{
		Task: BuildTaskPrompt(items),
		Secrets: map[string]string{
			secretEmail:    r.cfg.SiteEmail,
			secretPassword: r.cfg.SitePassword,
		},
		AllowedDomains: []string{"tesco.ie"},
		ProfileID:      r.cfg.ProfileID,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.APIURL+"/api/v1/run-task", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("automation service returned status %d", resp.StatusCode)
	}

	var result createTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("automation service returned no task id")
	}

	return result.ID, nil
}

func (r *Runner) taskStatus(ctx context.Context, taskID string) (*taskStatusResponse, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.APIURL+"/api/v1/task/"+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("automation service returned status %d", resp.StatusCode)
	}

	var result taskStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}
