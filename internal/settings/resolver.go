package settings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/containerd/errdefs"
	"golang.org/x/sync/singleflight"

	"github.com/fleetrent/fleetrent/internal/logger"
)

// RemoteStore is the authoritative settings store (the database).
type RemoteStore interface {
	ReadSettings(ctx context.Context, topic string) (Record, error)
	WriteSettings(ctx context.Context, topic string, rec Record) error
}

// FallbackStore is the durable local mirror used when the remote store is
// unreachable. GetRecord returns an errdefs.ErrNotFound-classified error
// when no record was ever persisted for the topic.
type FallbackStore interface {
	GetRecord(topic string) (Record, time.Time, error)
	PutRecord(topic string, rec Record, retrievedAt time.Time) error
}

// ConnectivityProbe reports last-known reachability of the remote store.
type ConnectivityProbe interface {
	Online() bool
	MarkOffline()
}

// Resolution is what consumers get back: the best-available record, which
// tier produced it, and the last-known connectivity state.
type Resolution struct {
	Record Record `json:"record"`
	Source Source `json:"source"`
	Online bool   `json:"online"`
}

// Resolver produces the best-available record for a topic through the tier
// chain remote store -> local fallback -> defaults, and owns the validated
// save path. Safe for concurrent use.
type Resolver struct {
	remote RemoteStore
	local  FallbackStore
	conn   ConnectivityProbe
	topics map[string]TopicSpec

	group singleflight.Group // dedups concurrent remote reads per topic

	mu        sync.RWMutex
	overrides map[string]map[string]any // topic -> field -> default override
}

// NewResolver wires a resolver over the given tiers with the built-in topic
// registry.
func NewResolver(remote RemoteStore, local FallbackStore, conn ConnectivityProbe) *Resolver {
	return &Resolver{
		remote: remote,
		local:  local,
		conn:   conn,
		topics: BuiltinTopics(),
	}
}

// Topics lists the known topic names.
func (r *Resolver) Topics() []string {
	names := make([]string, 0, len(r.topics))
	for name := range r.topics {
		names = append(names, name)
	}
	return names
}

// Resolve returns the best-available record for topic. Read failures are
// absorbed by the tier chain and never surface as errors; only an unknown
// topic is an error. Concurrent resolutions of the same topic share one
// remote read.
func (r *Resolver) Resolve(ctx context.Context, topic string) (Resolution, error) {
	spec, ok := r.topics[topic]
	if !ok {
		return Resolution{}, fmt.Errorf("unknown settings topic %q: %w", topic, errdefs.ErrNotFound)
	}

	v, err, _ := r.group.Do(topic, func() (any, error) {
		return r.resolveOnce(ctx, spec), nil
	})
	if err != nil {
		return Resolution{}, err
	}
	return v.(Resolution), nil
}

// Reload forces a fresh remote attempt, bypassing any in-flight
// deduplication. Used for explicit user-triggered refresh.
func (r *Resolver) Reload(ctx context.Context, topic string) (Resolution, error) {
	spec, ok := r.topics[topic]
	if !ok {
		return Resolution{}, fmt.Errorf("unknown settings topic %q: %w", topic, errdefs.ErrNotFound)
	}
	r.group.Forget(topic)
	return r.resolveOnce(ctx, spec), nil
}

// resolveOnce runs the resolution state machine: AttemptRemote, then
// FallbackLocal, then FallbackDefault.
func (r *Resolver) resolveOnce(ctx context.Context, spec TopicSpec) Resolution {
	log := logger.WithTopic("settings", spec.Name)

	rec, err := r.remote.ReadSettings(ctx, spec.Name)
	if err == nil {
		if verr := spec.Validate(rec); verr == nil {
			if perr := r.local.PutRecord(spec.Name, rec, time.Now()); perr != nil {
				log.Warnf("cannot persist local fallback: %v", perr)
			}
			return r.finish(spec, rec, SourceDatabase)
		} else {
			log.Warnf("remote record failed validation, falling back: %v", verr)
		}
	} else {
		r.conn.MarkOffline()
		log.Warnf("remote read failed, falling back: %v", err)
	}

	rec, retrievedAt, err := r.local.GetRecord(spec.Name)
	if err == nil {
		log.Debugf("serving local fallback persisted at %s", retrievedAt.Format(time.RFC3339))
		return r.finish(spec, rec, SourceCache)
	}
	if !errdefs.IsNotFound(err) {
		log.Warnf("local fallback read failed: %v", err)
	}

	return r.finish(spec, r.effectiveDefaults(spec), SourceDefault)
}

// finish applies the critical-field zero guard and stamps provenance.
func (r *Resolver) finish(spec TopicSpec, rec Record, source Source) Resolution {
	guarded, substituted := spec.ApplyCriticalDefaults(rec, r.effectiveDefaults(spec))
	for _, name := range substituted {
		logger.WithTopic("settings", spec.Name).Warnf(
			"critical field %s resolved to zero or missing, substituted default %v", name, guarded.Fields[name])
	}
	return Resolution{Record: guarded, Source: source, Online: r.conn.Online()}
}

// Save validates current+patch, writes the remote store, and on success
// synchronously refreshes the local fallback so an immediate Resolve
// observes the new values. Remote write failures are surfaced, never
// absorbed: the local fallback stays untouched.
func (r *Resolver) Save(ctx context.Context, topic string, patch map[string]any, actor string) (Record, error) {
	spec, ok := r.topics[topic]
	if !ok {
		return Record{}, fmt.Errorf("unknown settings topic %q: %w", topic, errdefs.ErrNotFound)
	}
	if len(patch) == 0 {
		return Record{}, &ValidationError{Topic: topic, Problems: []string{"empty patch"}}
	}
	if err := spec.ValidatePatch(patch); err != nil {
		return Record{}, err
	}

	current := r.resolveOnce(ctx, spec).Record
	merged := current.Merge(patch)
	merged.Topic = topic
	if err := spec.Validate(merged); err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	merged.UpdatedAt = now
	merged.UpdatedBy = actor

	if err := r.remote.WriteSettings(ctx, topic, merged); err != nil {
		r.conn.MarkOffline()
		return Record{}, fmt.Errorf("save settings %q: %w", topic, err)
	}

	if err := r.local.PutRecord(topic, merged, now); err != nil {
		logger.WithTopic("settings", topic).Warnf("cannot refresh local fallback after save: %v", err)
	}

	logger.WithTopic("settings", topic).Infof("settings saved by %s (%d fields patched)", actor, len(patch))
	return merged, nil
}

// ApplyDefaultOverrides installs operator-supplied default overrides
// (typically loaded from the defaults file). Overrides that name an unknown
// topic or fail the field rules are skipped with a warning; valid ones
// replace the built-in default for that field in the FallbackDefault tier
// and the critical-field guard.
func (r *Resolver) ApplyDefaultOverrides(overrides map[string]map[string]any) {
	accepted := make(map[string]map[string]any, len(overrides))
	for topic, fields := range overrides {
		spec, ok := r.topics[topic]
		if !ok {
			logger.WithTopic("settings", topic).Warnf("defaults override for unknown topic ignored")
			continue
		}
		if err := spec.ValidatePatch(fields); err != nil {
			logger.WithTopic("settings", topic).Warnf("defaults override rejected: %v", err)
			continue
		}
		copied := make(map[string]any, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		accepted[topic] = copied
	}

	r.mu.Lock()
	r.overrides = accepted
	r.mu.Unlock()
	logger.WithComponent("settings").Infof("defaults overrides applied for %d topic(s)", len(accepted))
}

func (r *Resolver) effectiveDefaults(spec TopicSpec) Record {
	defaults := spec.Defaults()
	r.mu.RLock()
	fields := r.overrides[spec.Name]
	r.mu.RUnlock()
	for k, v := range fields {
		defaults.Fields[k] = v
	}
	return defaults
}
