package middleware

import (
	"compress/gzip"
	"io"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"

	"github.com/architeacher/connectors/internal/config"
)

const (
	encodingGzip   = "gzip"
	encodingBrotli = "br"
)

// compressibleTypes are the media types the API answers with.
var compressibleTypes = []string{"application/json", "text/plain"}

var (
	gzipPool = sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)

		return w
	}}
	brotliPool = sync.Pool{New: func() any {
		return brotli.NewWriterLevel(io.Discard, brotli.DefaultCompression)
	}}
)

// Compression encodes responses of at least cfg.MinSize bytes with brotli or
// gzip, whichever the client weights higher. gzip wins ties.
func Compression(cfg config.Compression) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encoding := negotiateEncoding(r.Header.Get("Accept-Encoding"))
			if encoding == "" || matchesPrefix(r.URL.Path, cfg.SkipPaths) {
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Add("Vary", "Accept-Encoding")

			cw := &compressWriter{ResponseWriter: w, encoding: encoding, minSize: cfg.MinSize}
			defer cw.Close()

			next.ServeHTTP(cw, r)
		})
	}
}

// negotiateEncoding picks from the Accept-Encoding header; empty means
// identity.
func negotiateEncoding(header string) string {
	best, bestQuality := "", 0.0

	for part := range strings.SplitSeq(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))

		quality := 1.0
		if value, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}

			quality = parsed
		}

		if name == "*" {
			name = encodingGzip
		}

		if (name != encodingGzip && name != encodingBrotli) || quality <= 0 {
			continue
		}

		if quality > bestQuality || quality == bestQuality && name == encodingGzip {
			best, bestQuality = name, quality
		}
	}

	return best
}

// compressWriter buffers the body until minSize bytes decide whether
// encoding pays off.
type compressWriter struct {
	http.ResponseWriter
	encoding string
	minSize  int

	status  int
	buf     []byte
	encoder io.WriteCloser
	decided bool
}

func (w *compressWriter) WriteHeader(statusCode int) {
	if w.status == 0 {
		w.status = statusCode
	}
}

func (w *compressWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if w.decided {
		if w.encoder != nil {
			return w.encoder.Write(b)
		}

		return w.ResponseWriter.Write(b)
	}

	w.buf = append(w.buf, b...)
	if len(w.buf) >= w.minSize {
		if err := w.decide(true); err != nil {
			return 0, err
		}
	}

	return len(b), nil
}

// decide starts the response, encoded when compress holds and the content
// type allows it, and flushes the buffered bytes.
func (w *compressWriter) decide(compress bool) error {
	w.decided = true

	if w.status == 0 {
		w.status = http.StatusOK
	}

	if compress && compressible(w.Header().Get("Content-Type")) &&
		w.status != http.StatusNoContent && w.status != http.StatusNotModified {
		w.Header().Set("Content-Encoding", w.encoding)
		w.Header().Del("Content-Length")
		w.encoder = newEncoder(w.encoding, w.ResponseWriter)
	}

	w.ResponseWriter.WriteHeader(w.status)

	if len(w.buf) == 0 {
		return nil
	}

	buf := w.buf
	w.buf = nil

	if w.encoder != nil {
		_, err := w.encoder.Write(buf)

		return err
	}

	_, err := w.ResponseWriter.Write(buf)

	return err
}

func (w *compressWriter) Flush() {
	if !w.decided {
		_ = w.decide(len(w.buf) >= w.minSize)
	}

	if flusher, ok := w.encoder.(interface{ Flush() error }); ok {
		_ = flusher.Flush()
	}

	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *compressWriter) Close() error {
	if !w.decided {
		if w.status == 0 && len(w.buf) == 0 {
			return nil
		}

		if err := w.decide(false); err != nil {
			return err
		}
	}

	if w.encoder != nil {
		return w.encoder.Close()
	}

	return nil
}

func (w *compressWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func compressible(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return slices.Contains(compressibleTypes, mediaType)
}

func newEncoder(encoding string, w io.Writer) io.WriteCloser {
	if encoding == encodingBrotli {
		bw := brotliPool.Get().(*brotli.Writer)
		bw.Reset(w)

		return &pooledWriter{WriteCloser: bw, release: func() { brotliPool.Put(bw) }}
	}

	gw := gzipPool.Get().(*gzip.Writer)
	gw.Reset(w)

	return &pooledWriter{WriteCloser: gw, release: func() { gzipPool.Put(gw) }}
}

// pooledWriter returns its encoder to the pool on Close.
type pooledWriter struct {
	io.WriteCloser
	release func()
}

func (p *pooledWriter) Flush() error {
	if flusher, ok := p.WriteCloser.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}

	return nil
}

func (p *pooledWriter) Close() error {
	err := p.WriteCloser.Close()
	p.release()

	return err
}
