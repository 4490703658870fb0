package admission

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"

	"github.com/cmwaters/gatekeeper/pkg/account"
	"github.com/cmwaters/gatekeeper/pkg/metrics"
	"github.com/cmwaters/gatekeeper/store"
)

// ErrBadSigner rejects a restricted call whose signer is not in the
// allow-list. The transaction is dropped from the pipeline, never
// executed and never retried; the submitter's only recourse is to
// resubmit once the account has been voted in.
var ErrBadSigner = errors.New("signer is not in the allow-list")

// MaxLongevity is the validity lifetime attached to admitted
// transactions. Admission never expires a transaction on its own.
const MaxLongevity = uint64(math.MaxUint64)

// ExecutionInfo carries the host-declared facts about a call that the
// gate folds into the admission metadata.
type ExecutionInfo struct {
	// Weight is the declared execution cost of the call.
	Weight uint64
}

// Admission is the scheduling metadata returned with every accepted
// transaction. The host pipeline consumes it; none of it affects the
// accept/reject decision.
type Admission struct {
	Priority  uint64
	Longevity uint64
	Propagate bool
}

// Gate is the admission check consulted by the host pipeline before a
// transaction is accepted into the queue and again before it is
// executed. Both consultations apply identical logic and no state is
// carried between them.
//
// The gate only reads: it asks the host-supplied Matcher whether the
// call is restricted and, if so, the store whether the signer is a
// member. It is safe for concurrent use from the queue and gossip
// paths.
type Gate struct {
	store   store.Store
	matcher Matcher

	cache   *memberCache
	metrics *metrics.AdmissionMetrics
	logger  zerolog.Logger
}

func NewGate(st store.Store, matcher Matcher, opts ...GateOption) (*Gate, error) {
	g := &Gate{
		store:   st,
		matcher: matcher,
		metrics: metrics.NopAdmissionMetrics(),
		logger:  zerolog.New(os.Stdout),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Validate is the admission-time check. A restricted call from a
// non-member is rejected with ErrBadSigner; everything else is accepted
// with default scheduling metadata: priority follows the call's declared
// execution cost, validity is maximal and propagation is allowed.
func (g *Gate) Validate(signer account.ID, call any, info ExecutionInfo) (Admission, error) {
	if g.matcher.Matches(call) {
		isMember, err := g.isMember(signer)
		if err != nil {
			return Admission{}, fmt.Errorf("checking signer membership: %w", err)
		}
		if !isMember {
			g.metrics.Rejected.Add(1)
			g.logger.Debug().
				Stringer("signer", signer).
				Msg("restricted call from non-member rejected")
			return Admission{}, ErrBadSigner
		}
	}
	g.metrics.Accepted.Add(1)
	return Admission{
		Priority:  info.Weight,
		Longevity: MaxLongevity,
		Propagate: true,
	}, nil
}

// PreExecute is the pre-execution check. It applies exactly the logic of
// Validate and discards the metadata.
func (g *Gate) PreExecute(signer account.ID, call any, info ExecutionInfo) error {
	_, err := g.Validate(signer, call, info)
	return err
}

func (g *Gate) isMember(id account.ID) (bool, error) {
	if g.cache != nil && g.cache.has(id) {
		g.metrics.CacheHits.Add(1)
		return true, nil
	}
	isMember, err := g.store.IsMember(id)
	if err != nil {
		return false, err
	}
	if isMember && g.cache != nil {
		g.cache.add(id)
	}
	return isMember, nil
}

// GateOption is a set of configurable parameters for the Gate. If left
// empty, defaults will be used.
type GateOption func(g *Gate) error

// WithLogger sets the logger used by the Gate.
func WithLogger(logger zerolog.Logger) GateOption {
	return func(g *Gate) error {
		g.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics recorded by the Gate.
func WithMetrics(m *metrics.AdmissionMetrics) GateOption {
	return func(g *Gate) error {
		g.metrics = m
		return nil
	}
}

// WithMemberCache caches up to size positive membership lookups for the
// concurrent gossip path.
func WithMemberCache(size int) GateOption {
	return func(g *Gate) error {
		cache, err := newMemberCache(size)
		if err != nil {
			return fmt.Errorf("creating member cache: %w", err)
		}
		g.cache = cache
		return nil
	}
}
