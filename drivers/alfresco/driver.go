// Package alfresco adapts the classic content-repository API to the uniform
// DMSProvider contract. Authentication is HTTP Basic: the ticket endpoint is
// probed to confirm the credentials, but the Basic token, not the returned
// ticket, remains the credential on every subsequent call. Departments are
// synthesized from sites.
package alfresco

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/EisenVault/evdms/internal/driver"
	"github.com/EisenVault/evdms/internal/errs"
	"github.com/EisenVault/evdms/internal/model"
	"github.com/EisenVault/evdms/internal/utils"
	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Alfresco struct {
	t   *transport
	log logrus.FieldLogger

	// docLibs caches site id -> documentLibrary node id resolutions.
	mu      sync.Mutex
	docLibs map[string]string
}

var _ driver.DMSProvider = (*Alfresco)(nil)

func (d *Alfresco) Login(ctx context.Context, username, password string) (*model.AuthResponse, error) {
	d.log.WithFields(utils.Redact(logrus.Fields{
		"op": "login", "username": username, "password": password,
	})).Info("authenticating")

	// Probe the ticket endpoint to confirm the credentials. The ticket
	// itself is discarded; the Basic token stays the credential.
	var probe entryWrap[ticketEntry]
	err := d.t.anonymous(ctx, http.MethodPost, authPath+"/tickets", func(r *resty.Request) {
		r.SetBody(ticketRequest{UserID: username, Password: password})
	}, &probe)
	if err != nil {
		d.log.WithField("op", "login").WithError(err).Error("authentication failed")
		return nil, err
	}
	if probe.Entry.ID == "" {
		return nil, errors.Wrap(errs.ResponseFormat, "ticket response carries no id")
	}

	basic := "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
	d.t.SetToken(basic)

	user, perr := d.fetchProfile(ctx)
	if perr != nil {
		d.log.WithField("op", "login").WithError(perr).Warn("profile fetch failed, returning degraded profile")
		user = model.DegradedProfile(username)
	}
	d.log.WithFields(logrus.Fields{"op": "login", "user": user.ID}).Info("authenticated")
	return &model.AuthResponse{Token: basic, User: user}, nil
}

func (d *Alfresco) fetchProfile(ctx context.Context) (model.UserProfile, error) {
	var env entryWrap[personEntry]
	err := retry.Do(
		func() error {
			return d.t.request(ctx, http.MethodGet, corePath+"/people/-me-", nil, &env)
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return model.UserProfile{}, err
	}
	if env.Entry.ID == "" {
		return model.UserProfile{}, errors.Wrap(errs.ResponseFormat, "person response carries no id")
	}
	return mapPerson(env.Entry), nil
}

// Logout invalidates the current ticket on a best-effort basis and always
// clears the local credential.
func (d *Alfresco) Logout(ctx context.Context) error {
	if d.t.IsAuthenticated() {
		if err := d.t.request(ctx, http.MethodDelete, authPath+"/tickets/-me-", nil, nil); err != nil {
			d.log.WithField("op", "logout").WithError(err).Warn("remote logout failed, clearing session anyway")
		}
	}
	d.t.SetToken("")
	return nil
}

func (d *Alfresco) SetToken(token string) { d.t.SetToken(token) }

func (d *Alfresco) GetToken() string { return d.t.Token() }

func (d *Alfresco) IsAuthenticated() bool { return d.t.IsAuthenticated() }
