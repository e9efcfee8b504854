package timetable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opentransit/crewd/auth"
	"github.com/opentransit/crewd/config"
	coremetrics "github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/infra/logger"
)

// Client polls the operations API for published timetables and hands new
// instances to the solve manager.
type Client struct {
	mgr      Manager
	log      logger.Logger
	client   *http.Client
	cred     *auth.ClientCred
	sink     coremetrics.TimetableRecorder
	apiURL   string
	interval time.Duration
	seen     map[string]uint64
}

// NewClient creates a new operations API client. Credentials are optional;
// without a client ID requests are sent unauthenticated.
func NewClient(cfg config.FeedClientConfig, m Manager, sink coremetrics.TimetableRecorder) *Client {
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = 60
	}
	var cred *auth.ClientCred
	if cfg.ClientID != "" {
		cred = auth.NewClientCred(auth.Conf{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		})
	}
	return &Client{
		mgr:      m,
		log:      logger.New("feed-client"),
		client:   &http.Client{Timeout: 10 * time.Second},
		cred:     cred,
		sink:     sink,
		apiURL:   cfg.APIURL,
		interval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		seen:     make(map[string]uint64),
	}
}

// Start begins the polling loop.
func (c *Client) Start(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.poll(ctx); err != nil {
				c.log.Errorf("poll error: %v", err)
			}
		}
	}
}

func (c *Client) poll(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return err
	}
	if c.cred != nil {
		if err := c.cred.SetAuthHeader(req); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Errorf("close body: %v", err)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned %s", resp.Status)
	}
	var payload []Timetable
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}
	for _, tt := range payload {
		c.handle(ctx, tt)
	}
	return nil
}

// handle converts and schedules one timetable. An instance already seen with
// an identical shift set is skipped so repeated polls do not re-solve it.
func (c *Client) handle(ctx context.Context, tt Timetable) {
	in, err := tt.ToInstance()
	if err != nil {
		c.log.Errorf("timetable %s rejected: %v", tt.Name, err)
		return
	}
	fp := in.Fingerprint()
	if prev, ok := c.seen[in.Name]; ok && prev == fp {
		return
	}
	c.seen[in.Name] = fp
	if c.sink != nil {
		if err := c.sink.RecordTimetable(coremetrics.TimetableEvent{Instance: in, Time: time.Now()}); err != nil {
			c.log.Errorf("record timetable: %v", err)
		}
	}
	c.log.Infof("timetable %s with %d shifts", in.Name, len(in.Shifts))
	if _, err := c.mgr.Schedule(ctx, in); err != nil {
		c.log.Errorf("schedule %s: %v", in.Name, err)
	}
}
