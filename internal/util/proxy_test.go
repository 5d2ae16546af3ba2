package util

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proxyFor(t *testing.T, cfg ProxyConfig, rawURL string) *url.URL {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	u, err := NewProxyFunc(cfg)(req)
	require.NoError(t, err)
	return u
}

func TestNewProxyFunc(t *testing.T) {
	cfg := ProxyConfig{
		HTTPProxy:  "http://proxy.local:3128",
		HTTPSProxy: "http://secure-proxy.local:3129",
		NoProxy:    "localhost, .internal.mil,10.0.0.5",
	}

	assert.Equal(t, "secure-proxy.local:3129", proxyFor(t, cfg, "https://api.openai.com/v1").Host)
	assert.Equal(t, "proxy.local:3128", proxyFor(t, cfg, "http://example.com").Host)

	assert.Nil(t, proxyFor(t, cfg, "http://localhost:8000/api/v1/heartbeat"))
	assert.Nil(t, proxyFor(t, cfg, "http://chroma.internal.mil:8000"))
	assert.Nil(t, proxyFor(t, cfg, "http://10.0.0.5:11434"))
}

func TestNewProxyFunc_HTTPOnlyAppliesToHTTPS(t *testing.T) {
	cfg := ProxyConfig{HTTPProxy: "http://proxy.local:3128"}
	assert.Equal(t, "proxy.local:3128", proxyFor(t, cfg, "https://api.anthropic.com").Host)
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(5*time.Second, ProxyConfig{})
	assert.Equal(t, 5*time.Second, c.Timeout)
	_, ok := c.Transport.(*http.Transport)
	assert.True(t, ok)
}
