package proof

import (
	"bytes"
	"testing"

	"github.com/rhartert/yalis/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestLog_LogConstraint_WritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	ineq := domain.NewLinearInequality([]domain.Term{{Var: domain.ID(0), Coeff: 2}}, 5)
	require.NoError(t, log.LogConstraint(ineq))

	require.Equal(t, "2x0 <= 5\n", buf.String())
}

func TestLog_LogNogood_WritesDisjunction(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	preds := []domain.Predicate{domain.LB(domain.ID(0), 3), domain.UB(domain.ID(1), 5)}
	require.NoError(t, log.LogNogood(preds))

	require.Equal(t, "[x0 >= 3] \\/ [x1 <= 5]\n", buf.String())
}

func TestLog_NilWriterIsNoOp(t *testing.T) {
	log := New(nil)

	require.NoError(t, log.LogConstraint(domain.NewLinearInequality(nil, 0)))
	require.NoError(t, log.LogNogood(nil))
}

func TestLog_EmptyNogoodIsFalse(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	require.NoError(t, log.LogNogood(nil))

	require.Equal(t, "false\n", buf.String())
}
