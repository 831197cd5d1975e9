package infra

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
)

const metadataProjectIdUrl = "http://metadata.google.internal/computeMetadata/v1/project/project-id"

var (
	projectIdMu sync.Mutex
	projectId     *string

	metadataClient = &http.Client{Timeout: 2 * time.Second}
)

// GetProjectId asks the metadata server for the GCP project. Outside of GCP the server does not
// resolve and the project id is empty, without error. A found project id is kept for the
// lifetime of the process.
func GetProjectId(ctx context.Context) (string, error) {
	projectIdMu.Lock()
	defer projectIdMu.Unlock()
	if projectId != nil {
		return *projectId, nil
	}

	id, err := retry.DoWithData(
		func() (string, error) { return projectIdFromMetadataServer(ctx, metadataProjectIdUrl) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}
	projectId = &id
	return id, nil
}

func projectIdFromMetadataServer(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", retry.Unrecoverable(err)
	}
	req.Header.Set("Metadata-Flavor", "Google")

	resp, err := metadataClient.Do(req)
	if err != nil {
		// no metadata server, not on GCP
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("metadata server answered %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read the metadata server response")
	}
	return strings.TrimSpace(string(body)), nil
}
