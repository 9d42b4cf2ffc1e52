// Package upload is the boundary to the video upload and transcode provider.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ErrDisabled is returned when no upload provider is configured.
var ErrDisabled = errors.New("uploads are disabled")

// Provider kinds accepted by New.
const (
	KindDisabled = "disabled"
	KindDirect   = "direct"
)

// Upload is a direct-upload slot created by the provider.
type Upload struct {
	ID  string
	URL string
}

// Provider creates upload slots for a user's new video.
type Provider interface {
	CreateUpload(ctx context.Context, userID string) (*Upload, error)
}

// New returns the provider named by kind. The direct provider needs an
// absolute baseURL.
func New(kind, baseURL string) (Provider, error) {
	switch kind {
	case "", KindDisabled:
		return Disabled{}, nil
	case KindDirect:
		u, err := url.Parse(baseURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return nil, fmt.Errorf("upload: invalid base url %q", baseURL)
		}
		return Direct{BaseURL: strings.TrimRight(baseURL, "/")}, nil
	default:
		return nil, fmt.Errorf("upload: unknown provider %q", kind)
	}
}

// Disabled is a Provider that refuses every upload.
type Disabled struct{}

func (Disabled) CreateUpload(context.Context, string) (*Upload, error) {
	return nil, ErrDisabled
}

// Direct mints upload slots under BaseURL, for an ingest service that
// accepts PUTs at <BaseURL>/<upload id>.
type Direct struct {
	BaseURL string
}

func (d Direct) CreateUpload(ctx context.Context, _ string) (*Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	return &Upload{ID: id, URL: d.BaseURL + "/" + id}, nil
}
