package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/askcache-io/askcache/pkg/models"
)

// Blob is a remote store holding one state snapshot, identified by a
// string. Push with an empty id creates the blob and returns its new
// identifier; subsequent pushes update it in place.
type Blob interface {
	Push(ctx context.Context, id string, state models.SyncState) (string, error)
	Pull(ctx context.Context, id string) (models.SyncState, bool, error)
}

const jsonBinTimeout = 30 * time.Second

// JSONBin talks to a jsonbin.io-compatible blob API: POST to create, PUT
// to update, GET /latest to fetch, authenticated by a master key header.
type JSONBin struct {
	baseURL string
	apiKey  string
	binName string
	httpc   *http.Client
}

// NewJSONBin creates a JSONBin client. binName labels newly created bins.
func NewJSONBin(baseURL, apiKey, binName string) *JSONBin {
	return &JSONBin{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		binName: binName,
		httpc:   &http.Client{Timeout: jsonBinTimeout},
	}
}

// Push uploads the state, creating the bin when id is empty. Returns the
// identifier of the bin the state now lives in.
func (j *JSONBin) Push(ctx context.Context, id string, state models.SyncState) (string, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("jsonbin: encode state: %w", err)
	}

	url := j.baseURL + "/b"
	method := http.MethodPost
	if id != "" {
		url = j.baseURL + "/b/" + id
		method = http.MethodPut
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("jsonbin: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", j.apiKey)
	if id == "" && j.binName != "" {
		req.Header.Set("X-Bin-Name", j.binName)
	}

	resp, err := j.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("jsonbin: push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("jsonbin: push: status %d", resp.StatusCode)
	}

	if id != "" {
		io.Copy(io.Discard, resp.Body)
		return id, nil
	}

	var created struct {
		Metadata struct {
			ID string `json:"id"`
		} `json:"metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("jsonbin: decode create response: %w", err)
	}
	if created.Metadata.ID == "" {
		return "", fmt.Errorf("jsonbin: create response missing bin id")
	}
	return created.Metadata.ID, nil
}

// Pull fetches the latest state from the bin. An empty id or a missing
// bin returns ok=false without error.
func (j *JSONBin) Pull(ctx context.Context, id string) (models.SyncState, bool, error) {
	if id == "" {
		return models.SyncState{}, false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.baseURL+"/b/"+id+"/latest", nil)
	if err != nil {
		return models.SyncState{}, false, fmt.Errorf("jsonbin: create request: %w", err)
	}
	req.Header.Set("X-Master-Key", j.apiKey)

	resp, err := j.httpc.Do(req)
	if err != nil {
		return models.SyncState{}, false, fmt.Errorf("jsonbin: pull: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return models.SyncState{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return models.SyncState{}, false, fmt.Errorf("jsonbin: pull: status %d", resp.StatusCode)
	}

	var wrapped struct {
		Record models.SyncState `json:"record"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapped); err != nil {
		return models.SyncState{}, false, fmt.Errorf("jsonbin: decode pull response: %w", err)
	}
	return wrapped.Record, true, nil
}
