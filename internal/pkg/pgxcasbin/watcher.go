package pgxcasbin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/persist"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

const defaultChannel = "libris_casbin_policy"

// Event names carried in a policy change notification.
const (
	EventReload         = "reload"
	EventAdd            = "add"
	EventRemove         = "remove"
	EventRemoveFiltered = "remove_filtered"
)

// Change is the pg_notify payload exchanged between instances.
type Change struct {
	Event       string     `json:"event"`
	Origin      string     `json:"origin"`
	Sec         string     `json:"sec,omitempty"`
	Ptype       string     `json:"ptype,omitempty"`
	Rules       [][]string `json:"rules,omitempty"`
	FieldIndex  int        `json:"field_index,omitempty"`
	FieldValues []string   `json:"field_values,omitempty"`
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Channel is the LISTEN/NOTIFY channel.
	Channel string
	// InstanceID identifies this process; its own notifications are ignored.
	InstanceID string
}

// Watcher keeps enforcers of several instances in sync: policy writes are
// announced with pg_notify and applied by every other listener.
type Watcher struct {
	pool *pgxpool.Pool
	opts WatcherOptions

	mu       sync.RWMutex
	callback func(string)

	cancel context.CancelFunc
	done   chan struct{}
}

var (
	_ persist.Watcher   = (*Watcher)(nil)
	_ persist.WatcherEx = (*Watcher)(nil)
)

// NewWatcher starts listening on the channel until Close.
func NewWatcher(ctx context.Context, pool *pgxpool.Pool, opts WatcherOptions) *Watcher {
	if opts.Channel == "" {
		opts.Channel = defaultChannel
	}
	if opts.InstanceID == "" {
		opts.InstanceID = uuid.NewString()
	}

	listenCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w := &Watcher{pool: pool, opts: opts, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(w.done)

		b := retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(200*time.Millisecond))
		err := retry.Do(listenCtx, b, func(ctx context.Context) error {
			err := w.listen(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			slog.WarnContext(ctx, "casbin watcher listen failed, retrying", "channel", opts.Channel, "error", err)
			return retry.RetryableError(err)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(listenCtx, "casbin watcher stopped", "error", err)
		}
	}()

	return w
}

// SetUpdateCallback sets the function invoked with each remote payload.
func (w *Watcher) SetUpdateCallback(fn func(string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = fn
	return nil
}

func (w *Watcher) Close() {
	w.cancel()
	<-w.done
}

func (w *Watcher) Update() error {
	return w.notify(Change{Event: EventReload})
}

func (w *Watcher) UpdateForSavePolicy(model.Model) error {
	return w.notify(Change{Event: EventReload})
}

func (w *Watcher) UpdateForAddPolicy(sec, ptype string, params ...string) error {
	return w.notify(Change{Event: EventAdd, Sec: sec, Ptype: ptype, Rules: [][]string{params}})
}

func (w *Watcher) UpdateForAddPolicies(sec, ptype string, rules ...[]string) error {
	return w.notify(Change{Event: EventAdd, Sec: sec, Ptype: ptype, Rules: rules})
}

func (w *Watcher) UpdateForRemovePolicy(sec, ptype string, params ...string) error {
	return w.notify(Change{Event: EventRemove, Sec: sec, Ptype: ptype, Rules: [][]string{params}})
}

func (w *Watcher) UpdateForRemovePolicies(sec, ptype string, rules ...[]string) error {
	return w.notify(Change{Event: EventRemove, Sec: sec, Ptype: ptype, Rules: rules})
}

func (w *Watcher) UpdateForRemoveFilteredPolicy(sec, ptype string, fieldIndex int, fieldValues ...string) error {
	return w.notify(Change{
		Event:       EventRemoveFiltered,
		Sec:         sec,
		Ptype:       ptype,
		FieldIndex:  fieldIndex,
		FieldValues: fieldValues,
	})
}

func (w *Watcher) notify(c Change) error {
	c.Origin = w.opts.InstanceID
	payload, err := json.Marshal(c)
	if err != nil {
		return errors.Join(ErrNotify, err)
	}

	if _, err := w.pool.Exec(context.Background(), "select pg_notify($1, $2)", w.opts.Channel, string(payload)); err != nil {
		return errors.Join(ErrNotify, err)
	}
	return nil
}

func (w *Watcher) listen(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return errors.Join(ErrListen, err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "listen "+quoteIdent(w.opts.Channel)); err != nil {
		return errors.Join(ErrListen, err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return errors.Join(ErrListen, err)
		}

		var c Change
		if err := json.Unmarshal([]byte(n.Payload), &c); err != nil {
			slog.WarnContext(ctx, "casbin watcher ignored malformed payload", "error", err)
			continue
		}
		if c.Origin == w.opts.InstanceID {
			continue
		}

		w.mu.RLock()
		fn := w.callback
		w.mu.RUnlock()
		if fn != nil {
			fn(n.Payload)
		}
	}
}

// SelfApplier is the part of casbin.Enforcer used to apply remote changes
// without writing them back to the adapter or re-notifying.
type SelfApplier interface {
	LoadPolicy() error
	SelfAddPolicies(sec string, ptype string, rules [][]string) (bool, error)
	SelfRemovePolicies(sec string, ptype string, rules [][]string) (bool, error)
	SelfRemoveFilteredPolicy(sec string, ptype string, fieldIndex int, fieldValues ...string) (bool, error)
}

// Apply returns a watcher callback that replays remote changes on e.
func Apply(e SelfApplier) func(string) {
	return func(payload string) {
		var c Change
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			slog.Error("casbin watcher payload decode failed", "error", err)
			return
		}
		if err := applyChange(e, c); err != nil {
			slog.Error("casbin watcher apply failed, reloading", "event", c.Event, "error", err)
			if err := e.LoadPolicy(); err != nil {
				slog.Error("casbin policy reload failed", "error", err)
			}
		}
	}
}

func applyChange(e SelfApplier, c Change) error {
	var err error
	switch c.Event {
	case EventReload:
		return e.LoadPolicy()
	case EventAdd:
		_, err = e.SelfAddPolicies(c.Sec, c.Ptype, c.Rules)
	case EventRemove:
		_, err = e.SelfRemovePolicies(c.Sec, c.Ptype, c.Rules)
	case EventRemoveFiltered:
		_, err = e.SelfRemoveFilteredPolicy(c.Sec, c.Ptype, c.FieldIndex, c.FieldValues...)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownEvent, c.Event)
	}
	return err
}

func quoteIdent(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := range len(s) {
		if s[i] == '"' {
			out = append(out, '"')
		}
		out = append(out, s[i])
	}
	return append(out, '"')
}
