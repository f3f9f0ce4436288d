// Package gravatar resolves profile images from the Gravatar service.
package gravatar

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/contacts/api/internal/core/ports"
)

const defaultBaseURL = "https://www.gravatar.com"

type Resolver struct {
	client  *http.Client
	baseURL string
}

func NewResolver() ports.AvatarResolver {
	return &Resolver{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: defaultBaseURL,
	}
}

// Resolve returns the Gravatar URL for the email, or an error when the
// address has no Gravatar. The d=404 parameter makes Gravatar answer 404
// instead of a generated placeholder.
func (r *Resolver) Resolve(ctx context.Context, email string) (string, error) {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	url := fmt.Sprintf("%s/avatar/%s?s=200&d=404", r.baseURL, hex.EncodeToString(sum[:]))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gravatar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("no gravatar for this address (status %d)", resp.StatusCode)
	}
	return url, nil
}
