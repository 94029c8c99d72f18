package lei

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks Resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bond-registry/internal/metrics"
)

var (
	// ErrUnavailable indicates the registry could not be reached or did not answer usefully.
	ErrUnavailable = errors.New("legal entity registry unavailable")
	// ErrUnknownLEI indicates the registry rejected the identifier or has no record for it.
	ErrUnknownLEI = errors.New("lei is invalid or does not exist")
)

const defaultTimeout = 5 * time.Second

// Resolver translates a Legal Entity Identifier into a legal name.
type Resolver interface {
	Resolve(ctx context.Context, lei string) (string, error)
}

// GLEIFClient resolves LEIs against the GLEIF lookup API.
type GLEIFClient struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

// Option customises a GLEIFClient.
type Option func(*GLEIFClient)

func WithHTTPClient(client *http.Client) Option {
	return func(c *GLEIFClient) {
		c.client = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *GLEIFClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *GLEIFClient) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *GLEIFClient) {
		c.metrics = m
	}
}

func NewGLEIFClient(endpoint string, opts ...Option) *GLEIFClient {
	c := &GLEIFClient{
		endpoint: endpoint,
		client:   http.DefaultClient,
		timeout:  defaultTimeout,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// The caller's client may be shared, so the timeout goes on a copy.
	client := *c.client
	client.Timeout = c.timeout
	c.client = &client
	return c
}

type leiRecord struct {
	Entity struct {
		LegalName struct {
			Value string `json:"$"`
		} `json:"LegalName"`
	} `json:"Entity"`
}

// Resolve makes a single lookup. The returned name has every space removed.
func (c *GLEIFClient) Resolve(ctx context.Context, lei string) (string, error) {
	if strings.TrimSpace(lei) == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrUnknownLEI)
	}

	target, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse registry endpoint: %w", err)
	}
	query := target.Query()
	query.Set("lei", lei)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveLEILookup(metrics.LookupUnavailable)
		c.logger.WithError(err).WithField("lei", lei).Warn("lei registry request failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.metrics.ObserveLEILookup(metrics.LookupUnknown)
		return "", fmt.Errorf("%w: lei %s (registry status %d)", ErrUnknownLEI, lei, resp.StatusCode)
	}

	var records []leiRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		c.metrics.ObserveLEILookup(metrics.LookupUnavailable)
		c.logger.WithError(err).WithField("lei", lei).Warn("lei registry returned an undecodable body")
		return "", fmt.Errorf("%w: decode registry response: %v", ErrUnavailable, err)
	}
	if len(records) == 0 || records[0].Entity.LegalName.Value == "" {
		c.metrics.ObserveLEILookup(metrics.LookupUnknown)
		return "", fmt.Errorf("%w: lei %s", ErrUnknownLEI, lei)
	}

	c.metrics.ObserveLEILookup(metrics.LookupResolved)
	return strings.ReplaceAll(records[0].Entity.LegalName.Value, " ", ""), nil
}

var _ Resolver = (*GLEIFClient)(nil)
