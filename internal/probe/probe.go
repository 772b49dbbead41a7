package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("ybtop")

// ErrTransport marks failures talking to a node that passed the
// reachability check.
var ErrTransport = errors.New("transport failure")

// maxBody caps how much of a response is read. A busy tserver reports a few
// hundred connections, far below this.
const maxBody = 64 << 20

// Prober reaches the diagnostics endpoint of a node.
type Prober interface {
	Reachable(ctx context.Context, host, port string) bool
	Fetch(ctx context.Context, host, port string) ([]byte, error)
}

// HTTPProber checks the port with a TCP dial and fetches the endpoint with a
// plain HTTP GET.
type HTTPProber struct {
	Path           string
	ProbeTimeout   time.Duration
	RequestTimeout time.Duration
	client         *http.Client
}

// NewHTTPProber creates a prober requesting path on every node.
func NewHTTPProber(path string, probeTimeout, requestTimeout time.Duration) *HTTPProber {
	return &HTTPProber{
		Path:           path,
		ProbeTimeout:   probeTimeout,
		RequestTimeout: requestTimeout,
		client:         &http.Client{Timeout: requestTimeout},
	}
}

// Reachable reports whether something accepts TCP connections on host:port.
func (p *HTTPProber) Reachable(ctx context.Context, host, port string) bool {
	d := net.Dialer{Timeout: p.ProbeTimeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Fetch returns the raw body of GET http://host:port<Path>.
func (p *HTTPProber) Fetch(ctx context.Context, host, port string) ([]byte, error) {
	url := fmt.Sprintf("http://%s%s", net.JoinHostPort(host, port), p.Path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request for %s: %w", url, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Debugf("%s answered %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrTransport, url, err)
	}
	return body, nil
}
