package repeater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahesford/bonjour-repeater/pkg/discovery"
	"github.com/ahesford/bonjour-repeater/pkg/log"
)

// Repeater mirrors discovered service instances under a modified identity.
// Construct with New, then call Run; one Repeater handles one browse/repeat
// service-type pair. Multiple Repeaters may run independently in a process.
type Repeater struct {
	config    Config
	policy    *Policy
	transport discovery.Transport
	logger    log.Logger
	table     *table
	sessionID string
}

// New creates a Repeater for the given configuration and transport.
// A nil logger disables event logging.
func New(config Config, transport discovery.Transport, logger log.Logger) (*Repeater, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}

	return &Repeater{
		config:    config,
		policy:    NewPolicy(config),
		transport: transport,
		logger:    logger,
		table:     newTable(),
		sessionID: uuid.NewString(),
	}, nil
}

// SessionID returns the identifier stamped on every event of this run.
func (r *Repeater) SessionID() string { return r.sessionID }

// ActiveMirrors returns the number of live mirrored publications. Only
// meaningful from the goroutine running the event loop, or after Run
// returns.
func (r *Repeater) ActiveMirrors() int { return r.table.len() }

// Run drives the browse event loop until the context is cancelled or the
// transport fails. Notifications are handled one at a time, in delivery
// order; each add runs a full resolve/transform/register sequence before the
// next notification is looked at. On return every mirrored publication has
// been withdrawn.
func (r *Repeater) Run(ctx context.Context) error {
	events, err := r.transport.Browse(ctx)
	if err != nil {
		return fmt.Errorf("starting browse for %s: %w", r.config.BrowseType, err)
	}

	r.emit(log.Event{
		Action:  log.ActionBrowseStarted,
		Service: r.config.BrowseType,
		Domain:  r.config.Domain,
	})

	defer func() {
		n := r.table.drain()
		r.emit(log.Event{
			Action:  log.ActionShutdown,
			Service: r.config.BrowseType,
			Domain:  r.config.Domain,
			Reason:  fmt.Sprintf("withdrew %d publications", n),
		})
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return discovery.ErrBrowseFailed
			}
			r.handleEvent(ctx, ev)

		case <-ctx.Done():
			return nil
		}
	}
}

// handleEvent processes one browse notification. Errors are absorbed here:
// a failed or ineligible instance is logged and abandoned, and the loop
// relies on the origin's periodic re-announcement to try again.
func (r *Repeater) handleEvent(ctx context.Context, ev discovery.BrowseEvent) {
	id := ev.Identity

	// Tear down any existing mirror first. This covers removals as well as
	// re-announcements of a changed instance: the stale mirror must go away
	// even if re-mirroring below fails.
	if r.table.evict(id) {
		r.emit(identityEvent(log.ActionRepeatStopped, id))
	}

	if !ev.Added {
		return
	}

	if r.policy.SkipName(id.Instance) {
		e := identityEvent(log.ActionRepeatSkipped, id)
		e.Reason = "name already carries the mirror prefix"
		r.emit(e)
		return
	}

	target, err := r.resolve(ctx, id)
	if err != nil {
		action := log.ActionRepeatFailed
		if errors.Is(err, ErrIneligible) {
			action = log.ActionRepeatSkipped
		}
		e := identityEvent(action, id)
		e.Reason = err.Error()
		r.emit(e)
		return
	}

	pub, err := r.publish(ctx, id, target)
	if err != nil {
		e := identityEvent(log.ActionRepeatFailed, id)
		e.Reason = err.Error()
		r.emit(e)
		return
	}

	r.table.insert(id, pub)

	e := identityEvent(log.ActionRepeatStarted, id)
	e.Mirror = r.policy.MirrorName(id.Instance)
	e.Host = target.Host
	e.Port = target.Port
	r.emit(e)
}

// resolve runs the resolution pipeline for one identity: issue the resolve,
// wait with the configured timeout, then apply the transform policy to the
// result. The underlying resolve operation is released on every exit path
// via the deferred cancel.
func (r *Repeater) resolve(ctx context.Context, id discovery.ServiceIdentity) (*discovery.ResolvedService, error) {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, err := r.transport.Resolve(rctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", id.Instance, err)
	}

	res, err := await(results, r.config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", id.Instance, err)
	}
	if res.Err != nil {
		return nil, fmt.Errorf("resolving %s: %w", id.Instance, res.Err)
	}

	txt, err := r.policy.Apply(res.Service.TXT, res.Service.Host)
	if err != nil {
		return nil, err
	}

	return &discovery.ResolvedService{
		Host:  res.Service.Host,
		Port:  res.Service.Port,
		Addrs: res.Service.Addrs,
		TXT:   txt,
	}, nil
}

// publish registers the mirror for one resolved target and returns the live
// publication handle. A registration that fails, times out, or completes
// after the wait was abandoned never leaks its advertisement.
func (r *Repeater) publish(ctx context.Context, id discovery.ServiceIdentity, target *discovery.ResolvedService) (discovery.Publication, error) {
	spec := discovery.PublicationSpec{
		Instance: r.policy.MirrorName(id.Instance),
		Service:  r.config.RepeatType,
		Domain:   id.Domain,
		Host:     target.Host,
		Addrs:    target.Addrs,
		Port:     target.Port,
		TXT:      target.TXT,
	}

	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, err := r.transport.Register(rctx, spec)
	if err != nil {
		return nil, fmt.Errorf("registering %s: %w", spec.Instance, err)
	}

	res, err := await(results, r.config.Timeout)
	if err != nil {
		go closeLateRegistration(results)
		return nil, fmt.Errorf("registering %s: %w", spec.Instance, err)
	}
	if res.Err != nil {
		return nil, fmt.Errorf("registering %s: %w", spec.Instance, res.Err)
	}

	return res.Publication, nil
}

// closeLateRegistration withdraws a publication whose registration completed
// after the engine stopped waiting for it.
func closeLateRegistration(results <-chan discovery.RegisterResult) {
	if res, ok := <-results; ok && res.Publication != nil {
		res.Publication.Close()
	}
}

// identityEvent builds a log event carrying an instance identity.
func identityEvent(action log.Action, id discovery.ServiceIdentity) log.Event {
	return log.Event{
		Action:   action,
		Instance: id.Instance,
		Service:  id.Service,
		Domain:   id.Domain,
		IfIndex:  id.IfIndex,
	}
}

// emit stamps and delivers one event.
func (r *Repeater) emit(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.SessionID = r.sessionID
	r.logger.Log(ev)
}
