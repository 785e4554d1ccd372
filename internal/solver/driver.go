// Package solver implements the §6 driver interface: the facade a search
// loop and its pluggable branching strategy use to declare variables, post
// constraints, decide, and run search to a verdict. It wires together the
// domain store (internal/domain), the propagation engine (internal/engine),
// the IntSat/resolution conflict analysers (internal/conflict), and the
// supplemented restart and proof-logging infrastructure, the way yass's
// Solver.Solve/Solver.Search (internal/sat/solver.go) wires together its own
// clause database, propagation queue and conflict analysis.
package solver

import (
	"io"
	"time"

	"github.com/rhartert/yalis/internal/branching"
	"github.com/rhartert/yalis/internal/conflict"
	"github.com/rhartert/yalis/internal/domain"
	"github.com/rhartert/yalis/internal/engine"
	"github.com/rhartert/yalis/internal/proof"
	"github.com/rhartert/yalis/internal/propagation"
	"github.com/rhartert/yalis/internal/restart"
)

// Status is the verdict satisfy() returns (§6).
type Status int

const (
	StatusUnknown Status = iota
	StatusSatisfiable
	StatusUnsatisfiable
)

func (s Status) String() string {
	switch s {
	case StatusSatisfiable:
		return "SATISFIABLE"
	case StatusUnsatisfiable:
		return "UNSATISFIABLE"
	default:
		return "UNKNOWN"
	}
}

// PostResult reports whether AddConstraint left the problem usable.
type PostResult int

const (
	// PostOK means the constraint was installed without an immediate root
	// conflict.
	PostOK PostResult = iota
	// PostRootInconsistent means installing the constraint already
	// conflicts at the root, so the problem is unsatisfiable regardless
	// of search.
	PostRootInconsistent
)

// Termination lets the outer caller poll cooperatively whether search
// should abandon and return Unknown (§5 "Cancellation", §6). The smallest
// cancellation granule is one propagator invocation: Satisfy only checks
// this between decisions, never mid-propagation.
type Termination interface {
	ShouldStop() bool
}

// Indefinite never requests termination.
type Indefinite struct{}

func (Indefinite) ShouldStop() bool { return false }

// TimeLimit requests termination once Deadline has passed.
type TimeLimit struct {
	Deadline time.Time
}

func (t TimeLimit) ShouldStop() bool { return time.Now().After(t.Deadline) }

const (
	linearPropagatorPriority = 2 // §4.E: "Priority: fixed (e.g., 2)"
	nogoodPropagatorPriority = 3
)

// Solver is the §6 driver: it owns the domain store, the propagation
// engine, and the bookkeeping (restarts, proof log, statistics) that ties
// search decisions to conflict analysis.
type Solver struct {
	store *domain.Store
	eng   *engine.Engine
	opts  Options

	restartPolicy *restart.Policy
	proofLog      *proof.Log
	rootConflict  bool
	decayer       decayer

	startTime time.Time

	// Statistics, exported directly as plain fields like yass's
	// TotalConflicts/TotalRestarts (§2 row G, SPEC_FULL item 5).
	TotalConflicts     int64
	TotalRestarts      int64
	TotalDecisions     int64
	NumIntSatLearned   int64
	NumFallbackLearned int64
}

// New returns a Solver configured by opts, optionally writing learned
// inequalities/nogoods to proofWriter (nil disables proof logging).
func New(opts Options, proofWriter io.Writer) *Solver {
	store := domain.NewStore()
	s := &Solver{
		store:    store,
		eng:      engine.NewEngine(store),
		opts:     opts,
		proofLog: proof.New(proofWriter),
	}
	switch {
	case opts.LubyRestarts:
		s.restartPolicy = restart.NewPolicy(restart.NewLubySequence(100))
	case opts.RestartInterval > 0:
		s.restartPolicy = restart.NewPolicy(restart.NewConstantSequence(opts.RestartInterval))
	}
	return s
}

// NewBoundedInteger declares a new decision variable with the given
// inclusive bounds (§6 "new_bounded_integer").
func (s *Solver) NewBoundedInteger(lb, ub int32) domain.ID {
	return s.store.NewBoundedInteger(lb, ub)
}

// Variables returns every DomainId declared so far, in creation order. It
// is a convenience for branchers (e.g. MaxRegret) that operate over "all
// variables" rather than a caller-selected subset.
func (s *Solver) Variables() []domain.ID {
	ids := make([]domain.ID, s.store.NumVariables())
	for i := range ids {
		ids[i] = domain.ID(i)
	}
	return ids
}

// Store exposes the underlying domain store read-only access branchers
// need (e.g. branching.Brancher.Decide's *domain.Store parameter).
func (s *Solver) Store() *domain.Store { return s.store }

// AddConstraint posts a linear-≤ constraint as a permanent propagator
// (§6 "add_constraint"). It is meant to be called at the root, before
// search begins.
func (s *Solver) AddConstraint(ineq domain.LinearInequality) PostResult {
	prop := propagation.NewLinearLessEqual(s.store, ineq, linearPropagatorPriority)
	if c := s.eng.Register(prop); c != nil {
		s.rootConflict = true
		return PostRootInconsistent
	}
	return PostOK
}

// Decide pushes a new decision level and applies pred as a bound change
// with no reason (§6 "decide"). The caller is responsible for running
// propagation to fixpoint afterwards; Satisfy does this as part of its own
// loop, so this method exists for callers driving search manually.
func (s *Solver) Decide(pred domain.Predicate) error {
	s.store.PushDecisionLevel()
	return domain.ApplyPredicate(s.store, nil, pred)
}

// installConstraint allocates a fresh propagator for a learned linear
// inequality (§4.G process step). Initialisation failure is not fatal: the
// constraint is already conflicting at the backjump level, so the
// propagator is manually enqueued and the next fixpoint cycle will surface
// the conflict and re-enter analysis (§7 InitialisationFailure).
func (s *Solver) installConstraint(ineq domain.LinearInequality) {
	prop := propagation.NewLinearLessEqual(s.store, ineq, linearPropagatorPriority)
	if c := s.eng.Register(prop); c != nil {
		s.store.Queue().Enqueue(prop.ID(), prop.Priority())
	}
}

// installNogood allocates a fresh propagator for a learned nogood (§4.H),
// with the same non-fatal-initialisation-failure handling as
// installConstraint.
func (s *Solver) installNogood(preds []domain.Predicate) {
	prop := propagation.NewNogood(s.store, preds, nogoodPropagatorPriority)
	if c := s.eng.Register(prop); c != nil {
		s.store.Queue().Enqueue(prop.ID(), prop.Priority())
	}
}

// shouldStop combines the caller-supplied Termination with this Solver's
// own Options-driven limits, the way yass's Solver.shouldStop combines
// maxConflict/timeout (internal/sat/solver.go).
func (s *Solver) shouldStop(term Termination) bool {
	if term != nil && term.ShouldStop() {
		return true
	}
	if s.opts.MaxConflicts >= 0 && s.TotalConflicts >= s.opts.MaxConflicts {
		return true
	}
	if s.opts.Timeout >= 0 && time.Since(s.startTime) >= s.opts.Timeout {
		return true
	}
	return false
}

// decayer is implemented by branchers that maintain a VSIDS-style activity
// ordering (e.g. branching.ActivityBrancher): Decay shrinks the relative
// weight of past Bump calls so recent conflicts dominate variable choice.
type decayer interface {
	Decay()
}

// resolveAndLearn runs conflict analysis for c and installs whatever it
// learns. It returns (status, true) when the result is terminal (Satisfy
// should return status immediately), or (_, false) when search should
// resume propagation.
func (s *Solver) resolveAndLearn(resolver *conflict.IntSatResolver, c engine.Conflict) (Status, bool) {
	s.TotalConflicts++
	if s.decayer != nil {
		s.decayer.Decay()
	}
	result := resolver.Resolve(s.store, s.eng, c)

	switch result.Outcome {
	case conflict.OutcomeRootConflict:
		return StatusUnsatisfiable, true
	case conflict.OutcomeConstraint:
		s.NumIntSatLearned++
		s.eng.Backtrack(result.BackjumpLevel)
		_ = s.proofLog.LogConstraint(result.Constraint)
		s.installConstraint(result.Constraint)
	case conflict.OutcomeNogood:
		s.NumFallbackLearned++
		s.eng.Backtrack(result.BackjumpLevel)
		_ = s.proofLog.LogNogood(result.Nogood)
		s.installNogood(result.Nogood)
	}

	if s.restartPolicy != nil {
		s.restartPolicy.NotifyConflict()
		if s.restartPolicy.ShouldRestart() {
			s.eng.Backtrack(0)
			s.restartPolicy.NotifyRestart()
			s.TotalRestarts++
		}
	}
	return StatusUnknown, false
}

// Satisfy runs search to a verdict (§6 "satisfy"): it alternates fixpoint
// propagation with brancher-chosen decisions, invoking conflict analysis
// and backjumping whenever propagation fails, until either every variable
// is assigned (Satisfiable), the root is found unsatisfiable
// (Unsatisfiable), or term requests a stop (Unknown).
//
// If brancher also implements conflict.ActivityBumper (as
// branching.ActivityBrancher does), its Bump method receives the
// resolution fallback's activity-bookkeeping side effect (§4.H).
func (s *Solver) Satisfy(brancher branching.Brancher, term Termination) (Status, error) {
	if s.rootConflict {
		return StatusUnsatisfiable, nil
	}
	if term == nil {
		term = Indefinite{}
	}
	s.startTime = time.Now()

	var bumper conflict.ActivityBumper
	if b, ok := brancher.(conflict.ActivityBumper); ok {
		bumper = b
	}
	if d, ok := brancher.(decayer); ok {
		s.decayer = d
	}
	if u, ok := brancher.(domain.UnassignObserver); ok {
		s.store.OnUnassign(u)
	}
	resolver := conflict.NewIntSatResolver(bumper)

	for {
		if c := s.eng.Run(); c != nil {
			if status, done := s.resolveAndLearn(resolver, *c); done {
				return status, nil
			}
			continue
		}

		if s.shouldStop(term) {
			return StatusUnknown, nil
		}

		pred, ok := brancher.Decide(s.store)
		if !ok {
			return StatusSatisfiable, nil
		}

		s.TotalDecisions++
		s.store.PushDecisionLevel()
		if err := domain.ApplyPredicate(s.store, nil, pred); err != nil {
			if status, done := s.resolveAndLearn(resolver, engine.Conflict{FromDecision: true}); done {
				return status, nil
			}
		}
	}
}

// IntegerValue returns x's solved value (§6 "get_integer_value"). Only
// meaningful after Satisfy has returned StatusSatisfiable. It also
// satisfies internal/output's valuer interface.
func (s *Solver) IntegerValue(x domain.ID) int32 {
	return s.store.LowerBound(x)
}

// PredicateHolds reports whether p holds in the current (solved) domain
// state. It satisfies internal/output's valuer interface.
func (s *Solver) PredicateHolds(p domain.Predicate) bool {
	switch p.Kind() {
	case domain.KindTrue:
		return true
	case domain.KindFalse:
		return false
	case domain.KindLowerBound:
		return s.store.LowerBound(p.Domain()) >= p.Value()
	case domain.KindUpperBound:
		return s.store.UpperBound(p.Domain()) <= p.Value()
	case domain.KindEqual:
		return s.store.IsAssigned(p.Domain()) && s.store.LowerBound(p.Domain()) == p.Value()
	case domain.KindNotEqual:
		return !s.store.Contains(p.Domain(), p.Value())
	default:
		return false
	}
}
