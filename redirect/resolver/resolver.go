// Package resolver decides, in bounded time, where a vanity code redirects.
package resolver

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/thgossler/MyAzUrlShortener/redirect/model"
	"github.com/thgossler/MyAzUrlShortener/redirect/negcache"
	"github.com/thgossler/MyAzUrlShortener/shared"
	"go.uber.org/zap"
)

// ErrNotFound reports a confirmed-absent or archived code. Any other failure
// below the HTTP boundary is absorbed into the default-URL fallback.
var ErrNotFound = errors.New("short url not found")

// LinkStore is the external record store the resolver depends on.
type LinkStore interface {
	// FetchByCode returns the link stored under the lowercase code, or
	// model.ErrLinkNotFound when confirmed absent.
	FetchByCode(ctx context.Context, code string) (*model.Link, error)
	// Upsert writes the link back, model.ErrVersionConflict on a lost
	// optimistic-concurrency race.
	Upsert(ctx context.Context, link *model.Link) (*model.Link, error)
	// AppendClickEvent records one click, best effort.
	AppendClickEvent(code string, clickedAt time.Time) error
}

type Options struct {
	DefaultRedirectUrl string
	// ClickQueueSize bounds the best-effort click accounting queue,
	// default 4096. A full queue drops clicks rather than delaying redirects.
	ClickQueueSize int
	// SideEffectTimeout bounds each detached click-accounting store call,
	// default 10s.
	SideEffectTimeout time.Duration
}

type clickJob struct {
	link      *model.Link
	clickedAt time.Time
}

// Resolver orchestrates negative cache, record store, schedule evaluation
// and fire-and-forget click accounting. Construct once per process with New
// and release with Close.
type Resolver struct {
	store      LinkStore
	neg        *negcache.Cache
	logger     *shared.Logger
	defaultUrl string
	sideEffect time.Duration
	clicks     chan clickJob
	done       chan struct{}
	now        func() time.Time

	mu     sync.Mutex
	closed bool
}

func New(store LinkStore, neg *negcache.Cache, logger *shared.Logger, opts Options) *Resolver {
	queueSize := opts.ClickQueueSize
	if queueSize <= 0 {
		queueSize = 4096
	}
	sideEffect := opts.SideEffectTimeout
	if sideEffect <= 0 {
		sideEffect = 10 * time.Second
	}

	r := &Resolver{
		store:      store,
		neg:        neg,
		logger:     logger,
		defaultUrl: opts.DefaultRedirectUrl,
		sideEffect: sideEffect,
		clicks:     make(chan clickJob, queueSize),
		done:       make(chan struct{}),
		now:        time.Now,
	}

	neg.Start()
	go r.clickWorker()
	return r
}

// Resolve maps a vanity code to its destination URL. It returns ErrNotFound
// for confirmed-absent or archived codes; a blank code and any store failure
// resolve to the configured default URL instead of an error. The store
// lookup honors the caller's ctx deadline.
func (r *Resolver) Resolve(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return r.defaultUrl, nil
	}

	// The negative cache is keyed by the code exactly as received.
	if r.neg.IsRecentMiss(code) {
		return "", ErrNotFound
	}

	link, err := r.store.FetchByCode(ctx, strings.ToLower(code))
	if errors.Is(err, model.ErrLinkNotFound) {
		r.neg.RecordMiss(code)
		return "", ErrNotFound
	}
	if err != nil {
		// Transient store failures and timeouts are not proof of absence,
		// so the negative cache stays untouched.
		r.logger.Error("problem accessing link store", zap.String("code", code), zap.Error(err))
		return r.defaultUrl, nil
	}

	if link.IsArchived {
		return "", ErrNotFound
	}

	now := r.now()
	destination, schedErrs := model.ActiveUrl(link.Url, link.Schedules, now)
	for _, schedErr := range schedErrs {
		r.logger.Warn("skipping malformed schedule", zap.String("code", link.RowKey), zap.Error(schedErr))
	}

	r.dispatchClick(link, now)

	if decoded, decodeErr := url.QueryUnescape(destination); decodeErr == nil {
		destination = decoded
	}
	return destination, nil
}

func (r *Resolver) dispatchClick(link *model.Link, clickedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		// A request still draining during shutdown loses its click,
		// not the process.
		return
	}
	select {
	case r.clicks <- clickJob{link: link, clickedAt: clickedAt}:
	default:
		r.logger.Warn("click queue full, dropping click", zap.String("code", link.RowKey))
	}
}

// clickWorker runs click accounting detached from request lifecycles:
// redirect responses never wait on it, and cancelled requests do not cancel
// it. Individual failures are logged and swallowed.
func (r *Resolver) clickWorker() {
	defer close(r.done)
	for job := range r.clicks {
		ctx, cancel := context.WithTimeout(context.Background(), r.sideEffect)

		job.link.Clicks++
		if _, err := r.store.Upsert(ctx, job.link); err != nil {
			if errors.Is(err, model.ErrVersionConflict) {
				// Concurrent redirects race on the counter, last write
				// wins. Clicks are approximate by contract.
				r.logger.Warn("click counter lost a write race", zap.String("code", job.link.RowKey))
			} else {
				r.logger.Error("cannot persist click counter", zap.String("code", job.link.RowKey), zap.Error(err))
			}
		}

		if err := r.store.AppendClickEvent(job.link.RowKey, job.clickedAt); err != nil {
			r.logger.Error("cannot append click event", zap.String("code", job.link.RowKey), zap.Error(err))
		}

		cancel()
	}
}

// Close drains pending click jobs and stops the negative-cache sweeper.
// It is idempotent, and Resolve stays safe to call afterwards.
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.clicks)
	<-r.done
	r.neg.Stop()
}
