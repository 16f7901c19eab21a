// Package revalidate asks the storefront to rebuild product pages after
// their documents change. Requests go through the local Actions queue so
// bursts of updates for one page collapse into a single call.
package revalidate

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"WooWithTypesense/internal/collections"
	"WooWithTypesense/internal/database/model/action"
	"WooWithTypesense/internal/telegram"
	"WooWithTypesense/internal/wooapi/models"
	"WooWithTypesense/pkg/logging"
)

const (
	Hook   = "next_js_revalidation_event"
	Group  = "blaze-wooless"
	source = "frontend-revalidation"
)

// SecretFunc returns the shared secret sent as api-secret-token.
type SecretFunc func() string

type Options struct {
	// FrontendURL overrides the url derived from SiteURL.
	FrontendURL string
	SiteURL     string
	Delay       time.Duration
	Poll        time.Duration
	Timeout     time.Duration
	// ClaimTimeout is how long an action may stay in-progress before it is
	// picked up again.
	ClaimTimeout time.Duration
}

type Revalidator struct {
	db     *sqlx.DB
	http   *resty.Client
	secret SecretFunc
	opts   Options
	now    func() time.Time

	mu sync.Mutex
}

var _ collections.ProductEvents = (*Revalidator)(nil)

func New(db *sqlx.DB, secret SecretFunc, opts Options) *Revalidator {
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}
	if opts.Poll <= 0 {
		opts.Poll = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.ClaimTimeout <= 0 {
		opts.ClaimTimeout = 5 * time.Minute
	}
	if secret == nil {
		secret = func() string { return "" }
	}
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	return &Revalidator{db: db, http: client, secret: secret, opts: opts, now: time.Now}
}

// FrontendURL is the storefront origin: the configured override, or the
// site url with "/cart." replaced by "/", without a trailing slash.
func (r *Revalidator) FrontendURL() string {
	if r.opts.FrontendURL != "" {
		return strings.TrimRight(r.opts.FrontendURL, "/")
	}
	return strings.TrimRight(strings.Replace(r.opts.SiteURL, "/cart.", "/", -1), "/")
}

// ProductUpdated schedules a revalidation of the product page. Revisions
// and autosaves are ignored.
func (r *Revalidator) ProductUpdated(productID int, product *models.Product) error {
	if product == nil {
		return nil
	}
	switch product.Status {
	case "inherit", "auto-draft":
		logging.GetLogger().Debugf("skip revalidation of %d, status %s", productID, product.Status)
		return nil
	}
	return r.Schedule([]string{models.MakeLinkRelative(product.Permalink)})
}

// Schedule queues a revalidation of urls after the configured delay. An
// identical request still pending is not queued twice.
func (r *Revalidator) Schedule(urls []string) error {
	logger := logging.GetLogger().GetLoggerWithField("source", source)
	logger.Debugf("Start Schedule(%v)", urls)
	defer logger.Debugf("End Schedule(%v)", urls)

	args, err := json.Marshal(urls)
	if err != nil {
		return errors.Wrap(err, "failed to encode urls")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := action.ExistsPending(r.db, Hook, string(args))
	if err != nil {
		return err
	}
	if exists {
		logger.Debugf("revalidation of %s already pending", args)
		return nil
	}

	now := r.now()
	a := &action.Action{
		ID:          uuid.NewString(),
		Hook:        Hook,
		Args:        string(args),
		GroupName:   Group,
		ScheduledAt: now.Add(r.opts.Delay).Unix(),
		Status:      action.STATUS_PENDING,
		CreatedAt:   now.Unix(),
		UpdatedAt:   now.Unix(),
	}
	return a.Insert(r.db)
}

// RequestPageRevalidation posts urls to {frontend}/api/revalidate and
// returns the decoded JSON answer. Without a frontend url or secret it
// does nothing and returns nil.
func (r *Revalidator) RequestPageRevalidation(ctx context.Context, urls []string) (interface{}, error) {
	logger := logging.GetLogger().GetLoggerWithField("source", source)
	logger.Debug("======= START REVALIDATION =======")
	defer logger.Debug("======= END REVALIDATION =======")

	frontend := r.FrontendURL()
	secret := r.secret()
	logger.Debugf("frontend url: %s, secret set: %t", frontend, secret != "")
	if frontend == "" || secret == "" {
		return nil, nil
	}
	if urls == nil {
		urls = []string{}
	}

	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("api-secret-token", secret).
		SetHeader("Content-Type", "application/json").
		SetBody(urls).
		Post(frontend + "/api/revalidate")
	if err != nil {
		return nil, errors.Wrapf(err, "failed POST %s/api/revalidate", frontend)
	}
	logger.Debugf("Response: %d %s", resp.StatusCode(), resp.Body())

	var result interface{}
	if len(resp.Body()) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		logger.Debugf("response is not JSON: %v", err)
		return nil, nil
	}
	return result, nil
}

// RunDue executes every due revalidation action and returns how many ran.
// Actions left in-progress longer than ClaimTimeout are retried.
func (r *Revalidator) RunDue(ctx context.Context) (int, error) {
	logger := logging.GetLogger().GetLoggerWithField("source", source)

	now := r.now()
	if _, err := action.ResetStale(r.db, now.Add(-r.opts.ClaimTimeout).Unix(), now.Unix()); err != nil {
		return 0, err
	}
	due, err := action.SelectDue(r.db, now.Unix(), 100)
	if err != nil {
		return 0, err
	}

	ran := 0
	for _, a := range due {
		if a.Hook != Hook {
			continue
		}
		if err := a.SetStatus(r.db, action.STATUS_RUNNING, "", r.now().Unix()); err != nil {
			logger.Errorf("failed to start action %s: %v", a.ID, err)
			continue
		}

		var urls []string
		err := json.Unmarshal([]byte(a.Args), &urls)
		if err == nil {
			_, err = r.RequestPageRevalidation(ctx, urls)
		}

		status, message := action.STATUS_COMPLETE, ""
		if err != nil {
			status, message = action.STATUS_FAILED, err.Error()
			logger.Errorf("revalidation %s failed: %v", a.Args, err)
			telegram.SendMessageToTelegramWithLogError("revalidation " + a.Args + " failed: " + err.Error())
		}
		if err := a.SetStatus(r.db, status, message, r.now().Unix()); err != nil {
			logger.Errorf("failed to finish action %s: %v", a.ID, err)
		}
		ran++
	}
	return ran, nil
}

// Run polls the queue until ctx is cancelled.
func (r *Revalidator) Run(ctx context.Context) {
	logger := logging.GetLogger()
	logger.Info("Start Revalidator.Run")
	defer logger.Info("End Revalidator.Run")

	ticker := time.NewTicker(r.opts.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunDue(ctx); err != nil {
				logger.Errorf("failed RunDue: %v", err)
			}
		}
	}
}
