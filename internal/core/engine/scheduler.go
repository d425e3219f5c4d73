// Package engine schedules social-graph queries across a pool of credentials.
// Each operation kind keeps its own min-heap of credentials ordered by quota
// renewal time; calls go to the soonest-available credential, with a global
// stagger smoothing aggregate request volume across all operation kinds.
package engine

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/flocklens/flocklens/internal/core"
	"github.com/flocklens/flocklens/internal/core/social"
	"github.com/flocklens/flocklens/internal/metrics"
)

// ErrOutOfCredentials means every credential for an operation kind was tried
// without success. The operator needs more or healthier credentials.
var ErrOutOfCredentials = errors.New("out of credentials")

const (
	// renewalBuffer pads a credential's reported reset time. Remote clocks
	// drift; waking exactly at the reset second still gets rejected.
	renewalBuffer = time.Second

	// progressLogInterval is how often (in requests) progress is logged.
	progressLogInterval = 100
)

// NamedClient pairs one per-credential client with a stable identity used for
// ordering ties and log lines.
type NamedClient struct {
	ID     int64
	Label  string
	Client social.Client
}

// Scheduler distributes calls across credentials. All calls are serialized
// through one mutex: one in-flight request at a time, with explicit sleeps
// for staggering and renewal waits.
type Scheduler struct {
	Logger *logging.Logger
	Clock  func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error

	mu            sync.Mutex
	queues        map[core.OpKind]*credentialQueue
	lastDispatch  time.Time
	totalRequests int
}

// NewScheduler probes every credential's quota for every operation kind and
// builds the per-kind queues. A credential whose probe fails is discarded for
// that kind only. Construction fails when not a single credential survived.
func NewScheduler(ctx context.Context, clients []NamedClient, logger *logging.Logger) (*Scheduler, error) {
	s := &Scheduler{
		Logger: logger,
		queues: make(map[core.OpKind]*credentialQueue, len(core.Descriptors)),
	}

	usable := 0
	for _, kind := range core.OpKinds() {
		desc := core.Descriptors[kind]
		queue := &credentialQueue{}

		for _, nc := range clients {
			status, err := nc.Client.CheckRateLimit(ctx, desc.RateLimitEndpoint)
			if err != nil {
				s.logWarn("credential quota probe failed, discarding for this operation",
					zap.Int64("credential_id", nc.ID),
					zap.String("label", nc.Label),
					zap.String("op", string(kind)),
					zap.Error(err))
				continue
			}

			cred := &credential{id: nc.ID, label: nc.Label, client: nc.Client}
			if status.Remaining == 0 {
				cred.renewalAt = status.Reset
			}
			*queue = append(*queue, cred)
		}

		heap.Init(queue)
		s.queues[kind] = queue
		usable += queue.Len()
	}

	if usable == 0 {
		return nil, fmt.Errorf("no usable credentials: %w", ErrOutOfCredentials)
	}
	return s, nil
}

// TotalRequests reports how many calls the scheduler has dispatched.
func (s *Scheduler) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalRequests
}

// attempt runs one logical call, rotating through the operation's credentials
// from soonest-available to least-available. On a not-authorized refusal it
// returns empty immediately; when every credential fails it returns
// ErrOutOfCredentials. Every credential touched is requeued exactly once
// before the call resolves.
func attempt[T any](ctx context.Context, s *Scheduler, kind core.OpKind, empty T, call func(context.Context, social.Client) (T, error)) (T, error) {
	desc, ok := core.Descriptors[kind]
	if !ok {
		return empty, fmt.Errorf("unknown operation kind %q", kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[kind]
	if queue == nil || queue.Len() == 0 {
		metrics.RecordOperationError(string(kind), "out_of_credentials")
		return empty, fmt.Errorf("%s: %w", kind, ErrOutOfCredentials)
	}

	if err := s.stagger(ctx, queue.Len(), desc.RequestsPerMinute); err != nil {
		return empty, err
	}

	s.totalRequests++
	if s.totalRequests%progressLogInterval == 0 {
		s.logInfo("request progress",
			zap.Int("total_requests", s.totalRequests),
			zap.String("op", string(kind)))
	}

	var tried []*credential
	requeue := func(extra *credential) {
		if extra != nil {
			heap.Push(queue, extra)
		}
		for _, cred := range tried {
			heap.Push(queue, cred)
		}
		tried = nil
	}

	attempts := queue.Len()
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			requeue(nil)
			return empty, err
		}

		cred := heap.Pop(queue).(*credential)

		if wait := s.renewalWait(cred); wait > 0 {
			if err := s.sleep(ctx, wait); err != nil {
				requeue(cred)
				return empty, err
			}
		}

		result, err := call(ctx, cred.client)
		if err == nil {
			requeue(cred)
			metrics.RecordOperation(string(kind), true)
			return result, nil
		}

		s.refreshRenewal(ctx, desc, cred)

		switch {
		case social.IsNotAuthorized(err):
			// Private resource. Every credential gets the same refusal, so
			// trying the rest only burns quota.
			requeue(cred)
			metrics.RecordOperation(string(kind), true)
			return empty, nil
		case social.IsRateLimited(err):
			tried = append(tried, cred)
		default:
			s.logWarn("call failed, keeping credential in rotation",
				zap.Int64("credential_id", cred.id),
				zap.String("op", string(kind)),
				zap.Error(err))
			metrics.RecordOperationError(string(kind), "invocation")
			tried = append(tried, cred)
		}
	}

	requeue(nil)
	metrics.RecordOperationError(string(kind), "out_of_credentials")
	return empty, fmt.Errorf("%s: all %d credentials exhausted: %w", kind, attempts, ErrOutOfCredentials)
}

// stagger enforces the minimum spacing between consecutive dispatches:
// 60/(n*rpm) seconds, shared across every operation kind so aggregate volume
// stays smooth.
func (s *Scheduler) stagger(ctx context.Context, n, rpm int) error {
	if n <= 0 || rpm <= 0 {
		return nil
	}

	spacing := time.Duration(float64(time.Minute) / (float64(n) * float64(rpm)))
	now := s.now()
	if !s.lastDispatch.IsZero() {
		if elapsed := now.Sub(s.lastDispatch); elapsed < spacing {
			if err := s.sleep(ctx, spacing-elapsed); err != nil {
				return err
			}
			now = s.now()
		}
	}
	s.lastDispatch = now
	return nil
}

func (s *Scheduler) renewalWait(cred *credential) time.Duration {
	if cred.renewalAt == 0 {
		return 0
	}
	renewal := time.Unix(cred.renewalAt, 0)
	now := s.now()
	if !renewal.After(now) {
		return 0
	}
	return renewal.Sub(now) + renewalBuffer
}

// refreshRenewal re-probes the credential's quota after a failed invocation
// so its next position in the heap reflects reality.
func (s *Scheduler) refreshRenewal(ctx context.Context, desc core.OpDescriptor, cred *credential) {
	status, err := cred.client.CheckRateLimit(ctx, desc.RateLimitEndpoint)
	if err != nil {
		s.logWarn("quota re-probe failed",
			zap.Int64("credential_id", cred.id),
			zap.String("endpoint", desc.RateLimitEndpoint),
			zap.Error(err))
		return
	}

	if status.Remaining == 0 {
		cred.renewalAt = status.Reset
	} else {
		cred.renewalAt = 0
	}
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Scheduler) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

func (s *Scheduler) logInfo(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Info(msg, fields...)
	}
}

func (s *Scheduler) logWarn(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Warn(msg, fields...)
	}
}
