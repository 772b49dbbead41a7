package sampler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"ybtop/internal/models"
	"ybtop/internal/probe"
	"ybtop/internal/rpcz"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("ybtop")

// Target is one host/port pair to probe.
type Target struct {
	Host string
	Port string
}

func (t Target) String() string {
	return net.JoinHostPort(t.Host, t.Port)
}

// Targets pairs every host with every port, hosts first, in the given order.
func Targets(hosts, ports []string) []Target {
	targets := make([]Target, 0, len(hosts)*len(ports))
	for _, h := range hosts {
		for _, p := range ports {
			targets = append(targets, Target{Host: h, Port: p})
		}
	}
	return targets
}

// Status is the outcome of probing one target.
type Status int

const (
	StatusUnreachable Status = iota
	StatusOK
	// StatusFailed means the port was open but the request failed and the
	// target was skipped for this sweep.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return "unreachable"
	}
}

// ProbeStatus records how one target answered during a sweep.
type ProbeStatus struct {
	Target Target
	Status Status
	Kind   rpcz.Kind
}

// Snapshot is the result of one sweep over all targets.
type Snapshot struct {
	Taken    time.Time
	Duration time.Duration
	Probes   []ProbeStatus
	Activity []models.Activity
}

// Config controls how a sweep runs.
type Config struct {
	// Parallel is the number of targets probed at once. Values below 1 mean 1.
	Parallel int
	// FailOnTransportError aborts the sweep when a reachable target fails to
	// answer. By default the target is skipped for this sweep.
	FailOnTransportError bool
}

// Sampler probes a fixed list of targets.
type Sampler struct {
	prober  probe.Prober
	targets []Target
	config  Config
}

// New creates a sampler for targets.
func New(prober probe.Prober, targets []Target, cfg Config) *Sampler {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	return &Sampler{prober: prober, targets: targets, config: cfg}
}

// Targets returns the probed targets in sweep order.
func (s *Sampler) Targets() []Target {
	return s.targets
}

// Sweep probes every target once and aggregates what they report. Targets
// may be probed in parallel but results are always aggregated in target
// order. A malformed payload, or a transport error when configured to fail
// on them, aborts the sweep.
func (s *Sampler) Sweep(ctx context.Context, opts rpcz.Options) (*Snapshot, error) {
	start := time.Now()

	results := make([]rpcz.HostResult, len(s.targets))
	probes := make([]ProbeStatus, len(s.targets))
	errs := make([]error, len(s.targets))

	sem := make(chan struct{}, s.config.Parallel)
	var wg sync.WaitGroup
loop:
	for i, t := range s.targets {
		select {
		case <-ctx.Done():
			break loop
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, t Target) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], probes[i], errs[i] = s.probe(ctx, t)
		}(i, t)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	snap := &Snapshot{
		Taken:    start,
		Duration: time.Since(start),
		Probes:   probes,
		Activity: rpcz.Aggregate(results, opts),
	}
	log.Debugf("sweep over %d targets took %v, %d active", len(s.targets), snap.Duration, len(snap.Activity))
	return snap, nil
}

func (s *Sampler) probe(ctx context.Context, t Target) (rpcz.HostResult, ProbeStatus, error) {
	result := rpcz.HostResult{Host: t.Host, Port: t.Port, Payload: rpcz.Empty()}
	status := ProbeStatus{Target: t, Status: StatusUnreachable, Kind: rpcz.KindEmpty}

	if !s.prober.Reachable(ctx, t.Host, t.Port) {
		log.Debugf("%s is not reachable, skipping", t)
		return result, status, nil
	}

	body, err := s.prober.Fetch(ctx, t.Host, t.Port)
	if err != nil {
		if errors.Is(err, probe.ErrTransport) && !s.config.FailOnTransportError {
			log.Warningf("skipping %s this sweep: %v", t, err)
			status.Status = StatusFailed
			return result, status, nil
		}
		return result, status, fmt.Errorf("%s: %w", t, err)
	}

	payload, err := rpcz.Classify(body)
	if err != nil {
		return result, status, fmt.Errorf("%s: %w", t, err)
	}
	log.Debugf("%s reported %s", t, payload.Kind)

	result.Payload = payload
	status.Status = StatusOK
	status.Kind = payload.Kind
	return result, status, nil
}
