package alfresco

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/EisenVault/evdms/internal/conf"
	"github.com/EisenVault/evdms/internal/errs"
	"github.com/EisenVault/evdms/internal/utils"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Versioned public API roots. The repository multiplexes its services behind
// one gateway; the search service lives under its own root.
const (
	corePath   = "/alfresco/api/-default-/public/alfresco/versions/1"
	authPath   = "/alfresco/api/-default-/public/authentication/versions/1"
	searchPath = "/alfresco/api/-default-/public/search/versions/1"
)

// transport is the single choke point for every outbound repository call.
// The credential is a pre-formatted Authorization header value; for this
// backend that stays the Basic token, never the probed ticket.
type transport struct {
	client *resty.Client
	log    logrus.FieldLogger

	mu         sync.RWMutex
	credential string
}

func newTransport(cfg conf.Api, log logrus.FieldLogger) *transport {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.EffectiveTimeout()).
		SetHeader("Accept", "application/json")
	for k, v := range cfg.Headers {
		client.SetHeader(k, v)
	}
	return &transport{client: client, log: log}
}

func (t *transport) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.credential
}

func (t *transport) IsAuthenticated() bool {
	return t.Token() != ""
}

// SetToken stores a pre-formatted Authorization value. Bare tokens are
// treated as Basic credentials.
func (t *transport) SetToken(token string) {
	if token != "" && !strings.Contains(token, " ") {
		token = "Basic " + token
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credential = token
}

// request performs an authenticated call and decodes the JSON body into out
// when out is non-nil.
func (t *transport) request(ctx context.Context, method, path string, build func(*resty.Request), out any) error {
	cred := t.Token()
	if cred == "" {
		return errors.Wrap(errs.Authentication, "no credential set; call Login or SetToken first")
	}
	resp, err := t.execute(ctx, method, path, cred, build)
	if err != nil {
		return err
	}
	return t.finish(resp, out)
}

// anonymous performs an unauthenticated call (the ticket probe).
func (t *transport) anonymous(ctx context.Context, method, path string, build func(*resty.Request), out any) error {
	resp, err := t.execute(ctx, method, path, "", build)
	if err != nil {
		return err
	}
	return t.finish(resp, out)
}

// download performs an authenticated call and returns the raw body.
func (t *transport) download(ctx context.Context, path string) ([]byte, error) {
	cred := t.Token()
	if cred == "" {
		return nil, errors.Wrap(errs.Authentication, "no credential set; call Login or SetToken first")
	}
	resp, err := t.execute(ctx, http.MethodGet, path, cred, nil)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, t.errorFrom(resp)
	}
	return resp.Body(), nil
}

func (t *transport) execute(ctx context.Context, method, path, cred string, build func(*resty.Request)) (*resty.Response, error) {
	req := t.client.R().SetContext(ctx)
	if cred != "" {
		req.SetHeader("Authorization", cred)
	}
	if build != nil {
		build(req)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, errs.FromTransport(err)
	}
	return resp, nil
}

func (t *transport) finish(resp *resty.Response, out any) error {
	if resp.IsError() {
		return t.errorFrom(resp)
	}
	if out == nil {
		return nil
	}
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return errors.Wrapf(errs.ResponseFormat, "empty body from %s", resp.Request.URL)
	}
	if err := utils.Json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(errs.ResponseFormat, "decoding %s: %s", resp.Request.URL, err)
	}
	return nil
}

// errorFrom translates a non-2xx response into the taxonomy, preferring the
// briefSummary of the repository error envelope.
func (t *transport) errorFrom(resp *resty.Response) error {
	msg := resp.Status()
	var env errorEnvelope
	if err := utils.Json.Unmarshal(resp.Body(), &env); err == nil && env.Error.BriefSummary != "" {
		msg = env.Error.BriefSummary
	} else if text := strings.TrimSpace(resp.String()); text != "" {
		msg = text
	}

	code := resp.StatusCode()
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.Wrapf(errs.Authentication, "%s (status %d)", msg, code)
	case code == http.StatusNotFound:
		return errors.Wrapf(errs.NotFound, "%s (status %d)", msg, code)
	case code == http.StatusBadRequest:
		return errors.Wrapf(errs.Validation, "%s (status %d)", msg, code)
	default:
		return errors.Wrapf(errs.Network, "%s (status %d)", msg, code)
	}
}
