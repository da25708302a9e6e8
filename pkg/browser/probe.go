package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Status is the two-valued outcome of a liveness probe. A refused or dead
// connection is an expected result here, not a fault, so probes never return
// errors.
type Status int

const (
	// Dead means the endpoint did not answer with valid browser metadata.
	Dead Status = iota

	// Alive means the endpoint answered /json/version with a browser identity.
	Alive
)

const (
	// versionPath is the CDP metadata path used for liveness checks.
	versionPath = "/json/version"

	// probeTimeout bounds a single liveness request.
	probeTimeout = 800 * time.Millisecond
)

// versionMetadata is the subset of the /json/version response we care about.
type versionMetadata struct {
	Browser string `json:"Browser"`
}

// Prober performs bounded-timeout liveness checks against candidate CDP
// endpoints.
type Prober struct {
	client *http.Client
}

// NewProber returns a prober with the default per-request timeout.
func NewProber() *Prober {
	return &Prober{
		client: &http.Client{Timeout: probeTimeout},
	}
}

// Probe issues a single GET against the endpoint's version-metadata path.
// It reports Alive only when the response is a JSON object whose Browser
// field is a non-empty string. Transport errors, timeouts, non-200 statuses,
// and malformed bodies all yield Dead.
func (p *Prober) Probe(ctx context.Context, baseURL string) Status {
	endpoint := strings.TrimRight(baseURL, "/") + versionPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Dead
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Dead
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Dead
	}

	var meta versionMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return Dead
	}
	if meta.Browser == "" {
		return Dead
	}
	return Alive
}

// FirstAlive probes candidates in order and returns the first one that is
// Alive. Liveness is never cached; every call re-probes.
func (p *Prober) FirstAlive(ctx context.Context, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if p.Probe(ctx, candidate) == Alive {
			return candidate, true
		}
	}
	return "", false
}

// CandidateEndpoints builds the ordered candidate list for a negotiation
// pass: the explicitly configured URL first, then loopback variants derived
// from the configured port. Duplicates are removed preserving first-seen
// order.
func CandidateEndpoints(explicitURL string, port int) []string {
	var raw []string
	if explicitURL != "" {
		raw = append(raw, strings.TrimRight(explicitURL, "/"))
	}
	if port > 0 {
		raw = append(raw,
			fmt.Sprintf("http://127.0.0.1:%d", port),
			fmt.Sprintf("http://localhost:%d", port),
		)
	}

	seen := make(map[string]struct{}, len(raw))
	candidates := make([]string, 0, len(raw))
	for _, c := range raw {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		candidates = append(candidates, c)
	}
	return candidates
}
