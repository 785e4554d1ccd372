package conflict

import (
	"testing"

	"github.com/rhartert/yalis/internal/domain"
	"github.com/rhartert/yalis/internal/engine"
	"github.com/rhartert/yalis/internal/propagation"
	"github.com/stretchr/testify/require"
)

// noExplanationProp is a minimal propagator with no linear explanation, used
// to exercise the resolver's fallback-to-root-conflict path when a conflict
// cannot be explained as an inequality.
type noExplanationProp struct {
	id domain.PropagatorID
}

func (p *noExplanationProp) ID() domain.PropagatorID { return p.id }
func (p *noExplanationProp) Priority() int           { return 0 }
func (p *noExplanationProp) Initialise(ctx *engine.Context) error { return nil }
func (p *noExplanationProp) Propagate(ctx *engine.Context) error  { return nil }
func (p *noExplanationProp) LinearExplanation() (domain.LinearInequality, bool) {
	return domain.LinearInequality{}, false
}

type bumpRecorder struct {
	bumped []domain.ID
}

func (b *bumpRecorder) Bump(x domain.ID) { b.bumped = append(b.bumped, x) }

func TestResolve_RootConflictAtLevelZero(t *testing.T) {
	store := domain.NewStore()
	eng := engine.NewEngine(store)
	r := NewResolutionResolver(nil)

	result := r.Resolve(store, eng, engine.Conflict{FromDecision: true})

	require.Equal(t, OutcomeRootConflict, result.Outcome)
	require.Equal(t, 0, result.BackjumpLevel)
}

func TestResolve_FromDecisionAlwaysRootConflict(t *testing.T) {
	store := domain.NewStore()
	store.NewBoundedInteger(0, 5)
	eng := engine.NewEngine(store)
	r := NewResolutionResolver(nil)

	store.PushDecisionLevel()

	result := r.Resolve(store, eng, engine.Conflict{FromDecision: true})

	require.Equal(t, OutcomeRootConflict, result.Outcome)
}

func TestResolve_PropagatorWithoutLinearExplanationFallsBackToRootConflict(t *testing.T) {
	store := domain.NewStore()
	eng := engine.NewEngine(store)
	r := NewResolutionResolver(nil)

	p := &noExplanationProp{id: store.NewPropagator(0)}
	require.Nil(t, eng.Register(p))

	store.PushDecisionLevel()

	result := r.Resolve(store, eng, engine.Conflict{Propagator: p.ID()})

	require.Equal(t, OutcomeRootConflict, result.Outcome)
}

// TestResolve_LearnsNogoodAcrossTwoDecisionLevels builds x+y<=5 over
// x,y in [0,10], decides x=4 at level 1 and y=4 at level 2 without
// propagating in between, then lets a single Run() discover the combined
// violation (4+4=8 > 5). The resulting 1-UIP walk should learn
// [y >= 5] \/ [x <= 3] rephrased as the negation of the two decisions, and
// backjump to level 1 (x's decision level).
func TestResolve_LearnsNogoodAcrossTwoDecisionLevels(t *testing.T) {
	store := domain.NewStore()
	x := store.NewBoundedInteger(0, 10)
	y := store.NewBoundedInteger(0, 10)
	eng := engine.NewEngine(store)

	c := propagation.NewLinearLessEqual(store, domain.NewLinearInequality([]domain.Term{
		{Var: x, Coeff: 1},
		{Var: y, Coeff: 1},
	}, 5), 2)
	require.Nil(t, eng.Register(c))

	store.PushDecisionLevel()
	require.NoError(t, domain.ApplyPredicate(store, nil, domain.EQ(x, 4)))

	store.PushDecisionLevel()
	require.NoError(t, domain.ApplyPredicate(store, nil, domain.EQ(y, 4)))

	conflict := eng.Run()
	require.NotNil(t, conflict)
	require.Equal(t, c.ID(), conflict.Propagator)
	require.False(t, conflict.FromDecision)

	bumper := &bumpRecorder{}
	r := NewResolutionResolver(bumper)
	result := r.Resolve(store, eng, *conflict)

	require.Equal(t, OutcomeNogood, result.Outcome)
	require.Equal(t, 1, result.BackjumpLevel)
	require.Equal(t, []domain.Predicate{domain.LB(y, 5), domain.UB(x, 3)}, result.Nogood)
	require.ElementsMatch(t, []domain.ID{x, y}, bumper.bumped)
}

// TestResolve_NogoodCausedConflictIsNotFalseUNSAT installs a learned nogood
// [x<=3 \/ y<=3] (i.e. x,y can't both be >= 4), then decides x=4 at level 1
// and y=4 at level 2: the nogood itself conflicts, with no linear
// explanation available. Resolve must still produce a real nogood and
// backjump rather than reporting OutcomeRootConflict regardless of level,
// since the conflict is not at the root.
func TestResolve_NogoodCausedConflictIsNotFalseUNSAT(t *testing.T) {
	store := domain.NewStore()
	x := store.NewBoundedInteger(0, 10)
	y := store.NewBoundedInteger(0, 10)
	eng := engine.NewEngine(store)

	n := propagation.NewNogood(store, []domain.Predicate{domain.UB(x, 3), domain.UB(y, 3)}, 0)
	require.Nil(t, eng.Register(n))

	store.PushDecisionLevel()
	require.NoError(t, domain.ApplyPredicate(store, nil, domain.EQ(x, 4)))

	store.PushDecisionLevel()
	require.NoError(t, domain.ApplyPredicate(store, nil, domain.EQ(y, 4)))

	conflict := eng.Run()
	require.NotNil(t, conflict)
	require.Equal(t, n.ID(), conflict.Propagator)
	require.False(t, conflict.FromDecision)

	bumper := &bumpRecorder{}
	r := NewResolutionResolver(bumper)
	result := r.Resolve(store, eng, *conflict)

	require.Equal(t, OutcomeNogood, result.Outcome)
	require.Equal(t, 1, result.BackjumpLevel)
	require.ElementsMatch(t, []domain.ID{x, y}, bumper.bumped)
}
