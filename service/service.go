package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront/events"
	"storefront/metrics"
	models "storefront/model"
	"storefront/payment"
	"storefront/session"
	"storefront/store"
)

// Settings are the checkout values fixed at startup.
type Settings struct {
	Currency    string
	SuccessURL  string
	CancelURL   string
	OrdersTopic string
}

// Deps are the collaborators of Service. Sessions, Events and Metrics are optional.
type Deps struct {
	Store    store.Store
	Gateway  payment.Gateway
	Sessions session.Store
	Events   events.Publisher
	Metrics  *metrics.Checkout
}

type Service struct {
	store    store.Store
	gateway  payment.Gateway
	sessions session.Store
	events   events.Publisher
	metrics  *metrics.Checkout
	settings Settings

	confirms singleflight.Group
	now      func() time.Time
}

func NewService(d Deps, s Settings) *Service {
	svc := &Service{
		store:    d.Store,
		gateway:  d.Gateway,
		sessions: d.Sessions,
		events:   d.Events,
		metrics:  d.Metrics,
		settings: s,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if svc.events == nil {
		svc.events = events.Nop{}
	}
	return svc
}

var _ ServiceInterface = (*Service)(nil)

func requireUser(p models.Principal) error {
	if p.ID == "" {
		return models.Unauthorized("User is not authenticated.")
	}
	return nil
}

// fail turns an error escaping a store call into a models.Error. Errors that
// already carry a kind pass through untouched.
func fail(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *models.Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return models.Unavailable(err, "The request was cancelled before it finished, try again.")
	}
	if errors.Is(err, store.ErrConflict) {
		return &models.Error{Kind: models.KindConflict, Message: msg, Err: err}
	}
	return models.Storage(err, "%s", msg)
}

// notFound reports a missing row as msg and anything else as a storage failure.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return models.NotFound("%s", msg)
	}
	return err
}

func (s *Service) stockConflict(format string, args ...any) error {
	s.metrics.StockConflict()
	return models.Conflict(format, args...)
}
