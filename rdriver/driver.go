package rdriver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/redis/go-redis/v9"

	"github.com/arjunkota/capcol"
	"github.com/arjunkota/capcol/logx"
	"github.com/arjunkota/capcol/telemetry"
)

// Driver implements capcol.Engine by dispatching Lua scripts against a
// Redis connection. It relies on go-redis's connection pooling and
// reconnection policy; it never retries at the transport level itself.
type Driver struct {
	client  redis.Cmdable
	prefix  string
	scripts *scripts
	log     *logx.Logger
	metrics *telemetry.Metrics

	// digests tracks the last SHA this process observed for each script
	// name, for diagnostic logging and the script-reload counter, and is
	// cleared on an out-of-memory reply - redis.Script.Run already handles
	// the EVALSHA/EVAL dispatch and the NOSCRIPT fallback itself.
	digests *xsync.MapOf[string, string]
}

var _ capcol.Engine = (*Driver)(nil)

// Open connects to addr and returns a ready Driver. prefix namespaces
// every key this Driver writes, allowing multiple capped-collection
// deployments to share one Redis instance.
func Open(ctx context.Context, addr, prefix string, opts *redis.Options) (*Driver, error) {
	if opts == nil {
		opts = &redis.Options{}
	}
	opts.Addr = addr
	client := redis.NewClient(opts)

	d := &Driver{
		client:  client,
		prefix:  prefix,
		scripts: newScripts(),
		log:     logx.Default("rdriver"),
		metrics: telemetry.New("rdriver"),
		digests: xsync.NewMapOf[string, string](),
	}
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// NewWithClient wraps an already-constructed redis.Cmdable supplied by the
// caller, without pinging it.
func NewWithClient(client redis.Cmdable, prefix string) *Driver {
	return &Driver{
		client:  client,
		prefix:  prefix,
		scripts: newScripts(),
		log:     logx.Default("rdriver"),
		metrics: telemetry.New("rdriver-test"),
		digests: xsync.NewMapOf[string, string](),
	}
}

func (d *Driver) keySpace(collection string) (capcol.KeySpace, error) {
	return capcol.NewKeySpace(d.prefix, collection)
}

// runScript executes s against the client, logging and counting a digest
// reload whenever this Driver has not yet recorded s's digest under name.
func (d *Driver) runScript(ctx context.Context, name string, s *redis.Script, keys []string, args ...interface{}) (interface{}, error) {
	id := debugID()
	if known, ok := d.digests.Load(name); !ok || known != s.Hash() {
		d.digests.Store(name, s.Hash())
		d.metrics.RecordScriptReload()
		d.log.Debugf("[%s] loading script %s, digest %s", id, name, s.Hash())
	}
	reply, err := s.Run(ctx, d.client, keys, args...).Result()
	if err != nil && isOOM(err) {
		d.digests.Clear()
	}
	if err != nil && isUnavailable(err) {
		d.log.Warnf("[%s] script %s: transport error: %v", id, name, err)
	}
	return reply, err
}

func debugID() string {
	return uuid.NewString()
}

// Ping verifies connectivity to Redis.
func (d *Driver) Ping(ctx context.Context) error {
	cmd := d.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return classify("Ping", err)
	}
	return nil
}

// ConfigOK verifies Redis is configured the way the Evictor's memory-
// pressure model requires: a maxmemory ceiling and an eviction policy that
// will not race the Evictor by silently dropping keys itself.
func (d *Driver) ConfigOK(ctx context.Context) error {
	maxMemory, err := d.client.ConfigGet(ctx, "maxmemory").Result()
	if err != nil {
		return classify("ConfigOK", err)
	}
	if v, ok := maxMemory["maxmemory"]; !ok || v == "0" {
		return capcol.NewError("ConfigOK", capcol.KindInvalidArgument, fmt.Errorf("redis maxmemory is unset; the Evictor cannot detect memory pressure"))
	}

	policy, err := d.client.ConfigGet(ctx, "maxmemory-policy").Result()
	if err != nil {
		return classify("ConfigOK", err)
	}
	if v := policy["maxmemory-policy"]; v != "noeviction" {
		return capcol.NewError("ConfigOK", capcol.KindInvalidArgument, fmt.Errorf("redis maxmemory-policy is %q, want noeviction so the Evictor controls eviction itself", v))
	}
	return nil
}

// MetricsHandler returns an http.Handler exposing this Driver's counters
// in Prometheus exposition format.
func (d *Driver) MetricsHandler() http.Handler {
	return d.metrics.Handler()
}

// Close releases the underlying Redis connection, if this Driver owns one.
func (d *Driver) Close() error {
	d.metrics.Unregister()
	if closer, ok := d.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
