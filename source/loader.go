// Package source resolves CSS source references - raw text, local files or
// http(s) URLs - into text.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "cssreduce/1.0"
)

// LoadError is returned when source reference could not be resolved to text.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load css from %q: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader fetches CSS text. Every reference is a single blocking call, there
// is no partial result.
type Loader struct {
	log           *zap.Logger
	client        *http.Client
	timeout       time.Duration
	userAgent     string
	authorization string
}

// Option configures Loader.
type Option func(*Loader)

// WithTimeout sets timeout for remote requests.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithUserAgent sets User-Agent header for remote requests.
func WithUserAgent(ua string) Option {
	return func(l *Loader) {
		if len(ua) > 0 {
			l.userAgent = ua
		}
	}
}

// WithAuthorization sets Authorization header value for remote requests.
func WithAuthorization(auth string) Option {
	return func(l *Loader) {
		l.authorization = auth
	}
}

// WithHTTPClient replaces default http client. Timeout option is ignored in
// this case.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// NewLoader creates loader.
func NewLoader(log *zap.Logger, options ...Option) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader{
		log:       log.Named("source"),
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, setOpt := range options {
		setOpt(l)
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Load resolves reference to CSS text. Anything containing "{" is treated as
// CSS text itself, http and https URLs are fetched, everything else is a path
// to a local file.
func (l *Loader) Load(ctx context.Context, ref string) (string, error) {
	var (
		text string
		err  error
	)
	switch {
	case strings.TrimSpace(ref) == "":
		err = errors.New("empty source reference")
	case strings.Contains(ref, "{"):
		return ref, nil
	case isURL(ref):
		text, err = l.fetch(ctx, ref)
	default:
		text, err = l.readFile(ref)
	}
	if err != nil {
		return "", &LoadError{Ref: ref, Err: err}
	}
	l.log.Debug("Loaded CSS", zap.String("source", ref), zap.Int("bytes", len(text)))
	return text, nil
}

// LoadAll loads all references and concatenates results in order. First
// failure stops processing.
func (l *Loader) LoadAll(ctx context.Context, refs ...string) (string, error) {
	var sb strings.Builder
	for _, ref := range refs {
		text, err := l.Load(ctx, ref)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func isURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (l *Loader) fetch(ctx context.Context, ref string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/css,*/*;q=0.1")
	if len(l.authorization) > 0 {
		req.Header.Set("Authorization", l.authorization)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// stylesheets are UTF-8 unless server says otherwise
	var body io.Reader = resp.Body
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		if label, ok := params["charset"]; ok {
			enc, name := charset.Lookup(label)
			if enc == nil {
				return "", fmt.Errorf("unsupported charset %q", label)
			}
			if name != "utf-8" {
				body = enc.NewDecoder().Reader(body)
			}
		}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	return string(data), nil
}

func (l *Loader) readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		return "", fmt.Errorf("file content is %s, not a stylesheet", kind.MIME.Value)
	}

	// honor BOM if present, stripping it from the result
	data, _, err = transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("decoding: %w", err)
	}
	return string(bytes.ToValidUTF8(data, []byte("\uFFFD"))), nil
}
