package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/logger"
)

// Ensure ModelProvisioner implements the interface.
var _ driven.ModelProvisioner = (*ModelProvisioner)(nil)

// ModelProvisioner pulls the embedding model into the local Ollama server.
type ModelProvisioner struct {
	client  *http.Client
	baseURL string
	model   string
}

// NewModelProvisioner creates a provisioner for cfg.Model. Pulls can take
// minutes, so its client has no overall timeout; cancel via the context.
func NewModelProvisioner(cfg Config) *ModelProvisioner {
	cfg = cfg.withDefaults()
	return &ModelProvisioner{
		client:  &http.Client{},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

// Status reports whether the model is present on the server.
func (p *ModelProvisioner) Status(ctx context.Context) (domain.ModelStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return domain.ModelStatus{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ModelStatus{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ModelStatus{}, statusError(resp)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return domain.ModelStatus{}, fmt.Errorf("decode response: %w", err)
	}

	for _, m := range tags.Models {
		if sameModel(m.Name, p.model) || sameModel(m.Model, p.model) {
			return domain.ModelStatus{Phase: domain.ModelReady, Progress: 1}, nil
		}
	}
	return domain.ModelStatus{Phase: domain.ModelNotDownloaded}, nil
}

// sameModel compares names, treating an untagged name as ":latest".
func sameModel(have, want string) bool {
	if have == "" {
		return false
	}
	if !strings.Contains(want, ":") {
		want += ":latest"
	}
	if !strings.Contains(have, ":") {
		have += ":latest"
	}
	return have == want
}

type pullRequest struct {
	Model  string `json:"model"`
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

type pullEvent struct {
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Error     string `json:"error"`
}

// Download streams POST /api/pull and reports each progress line.
func (p *ModelProvisioner) Download(ctx context.Context, progress func(domain.ModelStatus)) error {
	if progress == nil {
		progress = func(domain.ModelStatus) {}
	}

	body, err := json.Marshal(pullRequest{Model: p.model, Name: p.model, Stream: true})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var fraction float64
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var ev pullEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("decode pull event: %w", err)
		}
		if ev.Error != "" {
			return fmt.Errorf("ollama pull %s: %s", p.model, ev.Error)
		}

		if ev.Total > 0 {
			fraction = float64(ev.Completed) / float64(ev.Total)
		}
		if ev.Status == "success" {
			logger.Info("ollama: pulled %s", p.model)
			progress(domain.ModelStatus{Phase: domain.ModelReady, Progress: 1, Detail: ev.Status})
			return nil
		}

		progress(domain.ModelStatus{Phase: domain.ModelDownloading, Progress: fraction, Detail: ev.Status})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read pull stream: %w", err)
	}
	return errors.New("ollama pull ended without success")
}
