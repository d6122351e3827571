package kube

import (
	"context"
	"net/http"

	"github.com/Masterminds/semver/v3"
	"k8s.io/apimachinery/pkg/version"
)

type serverVersion struct {
	info version.Info
}

// ServerVersion reports the API server's build information from
// /version. The result is cached for the lifetime of the Client, with
// concurrent first calls collapsed into one request.
func (c *Client) ServerVersion(ctx context.Context) (*version.Info, error) {
	c.versionMu.Lock()
	cached := c.versionInfo
	c.versionMu.Unlock()

	if cached != nil {
		return &cached.info, nil
	}

	v, err, _ := c.versionFlight.Do("server-version", func() (any, error) {
		var info version.Info
		req := Request{Method: http.MethodGet, Path: "/version"}
		if err := c.requestInto(ctx, req, &info); err != nil {
			return nil, err
		}

		sv := &serverVersion{info: info}
		c.versionMu.Lock()
		c.versionInfo = sv
		c.versionMu.Unlock()

		return sv, nil
	})
	if err != nil {
		return nil, err
	}

	return &v.(*serverVersion).info, nil
}

// ServerAtLeast reports whether the server is at or above the given
// semver, e.g. "v1.34.0". Useful for gating on features that newer
// servers enable by default.
func (c *Client) ServerAtLeast(ctx context.Context, minVersion string) (bool, error) {
	info, err := c.ServerVersion(ctx)
	if err != nil {
		return false, err
	}

	serverV, err := semver.NewVersion(info.String())
	if err != nil {
		return false, err
	}

	minV, err := semver.NewVersion(minVersion)
	if err != nil {
		return false, err
	}

	return serverV.GreaterThanEqual(minV), nil
}
