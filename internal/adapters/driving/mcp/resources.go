package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Murmur resources.
	uriScheme = "murmur://"

	recordingsURI = uriScheme + "recordings"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource listing every recording.
	s.server.AddResource(&mcp.Resource{
		URI:         recordingsURI,
		Name:        "recordings",
		Description: "All journal recordings, newest first",
		MIMEType:    "application/json",
	}, s.handleRecordingsResource)

	// Template for a single recording's transcript.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: recordingsURI + "/{id}",
		Name:        "recording-transcript",
		Description: "Transcript of a specific recording",
		MIMEType:    "text/plain",
	}, s.handleRecordingResource)
}

// handleRecordingsResource returns a summary list of recordings.
func (s *Server) handleRecordingsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Recordings == nil {
		return textResult(req.Params.URI, "application/json", "[]"), nil
	}

	recs, err := s.ports.Recordings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}

	type recordingInfo struct {
		ID        string   `json:"id"`
		Title     string   `json:"title"`
		CreatedAt string   `json:"created_at"`
		Tags      []string `json:"tags,omitempty"`
		URI       string   `json:"uri"`
	}

	infos := make([]recordingInfo, len(recs))
	for i := range recs {
		infos[i] = recordingInfo{
			ID:        recs[i].ID,
			Title:     recs[i].Title,
			CreatedAt: recs[i].CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Tags:      recs[i].Tags,
			URI:       recordingsURI + "/" + recs[i].ID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling recordings: %w", err)
	}

	return textResult(req.Params.URI, "application/json", string(data)), nil
}

// handleRecordingResource returns the transcript of one recording.
func (s *Server) handleRecordingResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Recordings == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractRecordingID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rec, err := s.ports.Recordings.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting recording: %w", err)
	}

	return textResult(req.Params.URI, "text/plain", formatRecording(rec)), nil
}

// formatRecording renders a recording as a short header plus transcript.
func formatRecording(rec *domain.Recording) string {
	var b strings.Builder
	if rec.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", rec.Title)
	}
	fmt.Fprintf(&b, "Recorded: %s\n", rec.CreatedAt.Format("2006-01-02 15:04"))
	if len(rec.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(rec.Tags, ", "))
	}
	if rec.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", rec.Context)
	}
	if rec.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", rec.Summary)
	}
	b.WriteString("\n")
	b.WriteString(rec.Transcript)
	return b.String()
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}

// extractRecordingID extracts the recording ID from a URI like murmur://recordings/{id}.
func extractRecordingID(uri string) string {
	const prefix = recordingsURI + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
