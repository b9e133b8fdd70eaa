package quercle

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quercle/quercle-go/testutil"
)

func testClient(t *testing.T, srv *testutil.Server) *Client {
	t.Helper()
	c, err := NewClient(Config{APIKey: "qk_test", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNewClientCredentialResolution(t *testing.T) {
	t.Run("no credential anywhere", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		_, err := NewClient(Config{})
		require.Error(t, err)
		assert.True(t, HasCode(err, ErrConfiguration))
	})

	t.Run("environment credential is used", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "qk_env")
		srv := testutil.NewServer(t, testutil.StaticResult("ok"))

		c, err := NewClient(Config{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = c.Search(testutil.TestContext(t), SearchRequest{Query: "x"})
		require.NoError(t, err)

		req, ok := srv.LastRequest()
		require.True(t, ok)
		assert.Equal(t, "Bearer qk_env", req.Header.Get("Authorization"))
	})

	t.Run("explicit credential wins over environment", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "qk_env")
		srv := testutil.NewServer(t, testutil.StaticResult("ok"))

		c, err := NewClient(Config{APIKey: "qk_explicit", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = c.Search(testutil.TestContext(t), SearchRequest{Query: "x"})
		require.NoError(t, err)

		req, ok := srv.LastRequest()
		require.True(t, ok)
		assert.Equal(t, "Bearer qk_explicit", req.Header.Get("Authorization"))
	})
}

func TestSearchSendsDomainFilters(t *testing.T) {
	t.Parallel()

	srv := testutil.NewServer(t, testutil.StaticResult("answer"))
	c := testClient(t, srv)

	answer, err := c.Search(testutil.TestContext(t), SearchRequest{
		Query:          "X",
		AllowedDomains: []string{"a.com"},
		BlockedDomains: []string{"b.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)

	req, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "search", req.Op)
	assert.Equal(t, "X", req.Body["query"])
	assert.Equal(t, []any{"a.com"}, req.Body["allowed_domains"])
	assert.Equal(t, []any{"b.com"}, req.Body["blocked_domains"])
}

func TestValidationHappensBeforeNetwork(t *testing.T) {
	t.Parallel()

	srv := testutil.NewServer(t, testutil.StaticResult("never"))
	c := testClient(t, srv)
	ctx := testutil.TestContext(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"search empty query", func() error {
			_, err := c.Search(ctx, SearchRequest{})
			return err
		}},
		{"fetch empty prompt", func() error {
			_, err := c.Fetch(ctx, FetchRequest{URL: "https://example.com"})
			return err
		}},
		{"fetch relative url", func() error {
			_, err := c.Fetch(ctx, FetchRequest{URL: "example.com/x", Prompt: "p"})
			return err
		}},
		{"raw_fetch json format", func() error {
			_, err := c.RawFetch(ctx, RawFetchRequest{URL: "https://example.com", Format: FormatJSON})
			return err
		}},
		{"raw_search bogus format", func() error {
			_, err := c.RawSearch(ctx, RawSearchRequest{Query: "q", Format: Format("pdf")})
			return err
		}},
		{"raw_search html format", func() error {
			_, err := c.RawSearch(ctx, RawSearchRequest{Query: "q", Format: FormatHTML})
			return err
		}},
		{"extract html format", func() error {
			_, err := c.Extract(ctx, ExtractRequest{URL: "https://example.com", Query: "q", Format: FormatHTML})
			return err
		}},
		{"extract empty query", func() error {
			_, err := c.Extract(ctx, ExtractRequest{URL: "https://example.com"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, HasCode(err, ErrValidation), "got %v", err)
		})
	}

	assert.Empty(t, srv.Requests(), "validation failures must not reach the network")
}

func TestFetchAPIError(t *testing.T) {
	t.Parallel()

	srv := testutil.NewServer(t, func(string, map[string]any) (int, any) {
		return http.StatusInternalServerError, map[string]any{"error": "boom"}
	})
	c := testClient(t, srv)

	_, err := c.Fetch(testutil.TestContext(t), FetchRequest{URL: "https://example.com", Prompt: "summarize"})
	require.Error(t, err)

	qe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrAPI, qe.Code)
	assert.Equal(t, http.StatusInternalServerError, qe.HTTPStatus)
	assert.Contains(t, qe.Body, "boom")
}

func TestTimeoutBecomesTransportError(t *testing.T) {
	t.Parallel()

	srv := testutil.NewServer(t, testutil.StaticResult("slow"))
	srv.SetDelay(2 * time.Second)

	c, err := NewClient(Config{APIKey: "qk_test", BaseURL: srv.URL, Timeout: 100 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Fetch(testutil.TestContext(t), FetchRequest{URL: "https://example.com", Prompt: "p"})
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrTransport), "got %v", err)
}

func TestResponseFormatError(t *testing.T) {
	t.Parallel()

	t.Run("body is not JSON", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		t.Cleanup(srv.Close)

		c, err := NewClient(Config{APIKey: "qk_test", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = c.Search(testutil.TestContext(t), SearchRequest{Query: "q"})
		require.Error(t, err)
		assert.True(t, HasCode(err, ErrResponseFormat), "got %v", err)
	})

	t.Run("text op with structured result", func(t *testing.T) {
		t.Parallel()
		srv := testutil.NewServer(t, testutil.StaticResult(map[string]any{"unexpected": true}))
		c := testClient(t, srv)

		_, err := c.Search(testutil.TestContext(t), SearchRequest{Query: "q"})
		require.Error(t, err)
		assert.True(t, HasCode(err, ErrResponseFormat), "got %v", err)
	})

	t.Run("missing result field", func(t *testing.T) {
		t.Parallel()
		srv := testutil.NewServer(t, func(string, map[string]any) (int, any) {
			return http.StatusOK, nil
		})
		c := testClient(t, srv)

		_, err := c.Search(testutil.TestContext(t), SearchRequest{Query: "q"})
		require.Error(t, err)
		assert.True(t, HasCode(err, ErrResponseFormat), "got %v", err)
	})
}

func TestRawOperations(t *testing.T) {
	t.Parallel()

	t.Run("text payload", func(t *testing.T) {
		t.Parallel()
		srv := testutil.NewServer(t, testutil.StaticResult("# Heading"))
		c := testClient(t, srv)

		doc, err := c.RawFetch(testutil.TestContext(t), RawFetchRequest{URL: "https://example.com"})
		require.NoError(t, err)
		assert.False(t, doc.Structured())
		assert.Equal(t, "# Heading", doc.Text())
	})

	t.Run("structured payload", func(t *testing.T) {
		t.Parallel()
		srv := testutil.NewServer(t, testutil.StaticResult([]map[string]any{{"title": "Result 1"}}))
		c := testClient(t, srv)

		doc, err := c.RawSearch(testutil.TestContext(t), RawSearchRequest{Query: "q", Format: FormatJSON})
		require.NoError(t, err)
		assert.True(t, doc.Structured())
		assert.JSONEq(t, `[{"title":"Result 1"}]`, doc.Text())
	})

	t.Run("use_safeguard is forwarded", func(t *testing.T) {
		t.Parallel()
		srv := testutil.NewServer(t, testutil.StaticResult("ok"))
		c := testClient(t, srv)

		safeguard := true
		_, err := c.Extract(testutil.TestContext(t), ExtractRequest{
			URL:          "https://example.com",
			Query:        "main features",
			UseSafeguard: &safeguard,
		})
		require.NoError(t, err)

		req, ok := srv.LastRequest()
		require.True(t, ok)
		assert.Equal(t, "extract", req.Op)
		assert.Equal(t, true, req.Body["use_safeguard"])
	})
}
