package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebook/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"cinemas":[]}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"cinemas":[]}`, string(body))

	_, _, _, ok = decodePayload([]byte{1, 2, 3})
	assert.False(t, ok)
}

func TestKeyBuilders(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/catalog?x=1", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/catalog")
	c.Set(ContextUserID, "42")

	cc := config.CacheConfig{Prefix: "cinebook:cache", KeyStrategy: "route_query"}
	k1 := cacheKeyFrom(cc, c)
	assert.Regexp(t, `^cinebook:cache:[0-9a-f]{40}$`, k1)
	cc.KeyStrategy = "route"
	assert.NotEqual(t, k1, cacheKeyFrom(cc, c))

	rl := config.RateLimitConfig{Prefix: "cinebook:rl", KeyStrategy: "user_route"}
	assert.Equal(t, "cinebook:rl:user:42:route:GET /api/catalog", buildRateKey(rl, c))
	rl.KeyStrategy = "user"
	assert.Equal(t, "cinebook:rl:user:42", buildRateKey(rl, c))
}
