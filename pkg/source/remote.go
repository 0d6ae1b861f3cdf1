package source

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/matzehuels/skyline/pkg/errors"
	"github.com/matzehuels/skyline/pkg/httputil"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

// Remote polls a /processes document served by another skyline or any
// service speaking the same {"process_map": ...} format.
type Remote struct {
	url      string
	client   *httputil.Client
	attempts int
	delay    time.Duration
}

// NewRemote returns a Remote source for url. A url without a path is
// completed with /processes.
func NewRemote(url string, timeout time.Duration) *Remote {
	if i := strings.Index(url, "://"); i >= 0 && !strings.Contains(url[i+3:], "/") {
		url += "/processes"
	}
	return &Remote{
		url:      url,
		client:   httputil.NewClient(timeout),
		attempts: 3,
		delay:    500 * time.Millisecond,
	}
}

// URL returns the polled address.
func (r *Remote) URL() string { return r.url }

func (r *Remote) Name() string { return "remote" }

// Fetch downloads and validates one snapshot, retrying transient failures.
func (r *Remote) Fetch(ctx context.Context) (snapshot.Snapshot, error) {
	var body []byte
	err := httputil.Retry(ctx, r.attempts, r.delay, func() error {
		var err error
		body, err = r.client.Get(ctx, r.url)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return snapshot.Snapshot{}, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", r.url)
		}
		return snapshot.Snapshot{}, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", r.url)
	}

	snap, err := snapshot.Decode(bytes.NewReader(body))
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return snapshot.Snapshot{}, err
	}
	return snap, nil
}
