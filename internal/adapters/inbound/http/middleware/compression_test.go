package middleware_test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/connectors/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/connectors/internal/config"
)

func compressed(contentType string, status int, body string) http.Handler {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}

		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})

	return middleware.Compression(config.Compression{
		Enabled:   true,
		MinSize:   64,
		SkipPaths: []string{"/v1/health"},
	})(handler)
}

func TestCompression(t *testing.T) {
	t.Parallel()

	large := `{"data":"` + strings.Repeat("abc", 100) + `"}`

	cases := []struct {
		name           string
		path           string
		acceptEncoding string
		contentType    string
		status         int
		body           string
		encoding       string
	}{
		{name: "gzip", acceptEncoding: "gzip", contentType: "application/json", body: large, encoding: "gzip"},
		{name: "brotli preferred by weight", acceptEncoding: "gzip;q=0.5, br", contentType: "application/json", body: large, encoding: "br"},
		{name: "gzip wins ties", acceptEncoding: "br, gzip", contentType: "application/json", body: large, encoding: "gzip"},
		{name: "error responses too", acceptEncoding: "gzip", contentType: "application/json", status: http.StatusBadGateway, body: large, encoding: "gzip"},
		{name: "wildcard", acceptEncoding: "*", contentType: "application/json; charset=utf-8", body: large, encoding: "gzip"},
		{name: "small bodies stay plain", acceptEncoding: "gzip", contentType: "application/json", body: `{"ok":true}`},
		{name: "no accept encoding", contentType: "application/json", body: large},
		{name: "rejected encodings", acceptEncoding: "gzip;q=0, deflate", contentType: "application/json", body: large},
		{name: "binary content", acceptEncoding: "gzip", contentType: "application/octet-stream", body: large},
		{name: "skipped path", path: "/v1/health", acceptEncoding: "gzip", contentType: "application/json", body: large},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			status := tc.status
			if status == 0 {
				status = http.StatusOK
			}

			path := tc.path
			if path == "" {
				path = "/v1/nodes"
			}

			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tc.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tc.acceptEncoding)
			}

			rec := httptest.NewRecorder()
			compressed(tc.contentType, status, tc.body).ServeHTTP(rec, req)

			require.Equal(t, status, rec.Code)
			require.Equal(t, tc.encoding, rec.Header().Get("Content-Encoding"))

			var reader io.Reader = rec.Body

			switch tc.encoding {
			case "gzip":
				gz, err := gzip.NewReader(rec.Body)
				require.NoError(t, err)

				reader = gz
			case "br":
				reader = brotli.NewReader(rec.Body)
			}

			body, err := io.ReadAll(reader)
			require.NoError(t, err)
			require.Equal(t, tc.body, string(body))
		})
	}
}

func TestCompression_NoContent(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodDelete, "/v1/nodes", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	rec := httptest.NewRecorder()
	compressed("", http.StatusNoContent, "").ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Content-Encoding"))
	require.Zero(t, rec.Body.Len())
}
