package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rhartert/yalis/internal/domain"
	"github.com/rhartert/yalis/internal/solver"
)

// yalis's own tiny text format, not FlatZinc: FlatZinc parsing and
// lowering is explicitly out of scope (spec §1), and DIMACS CNF (yass's
// own format) has no notion of bounded integer domains or coefficients.
// Each non-blank, non-comment line is one of:
//
//	var <lb> <ub>                       declare the next variable
//	con <c1> <c2> ... <cn> <= <rhs>     post sum(ci*xi) <= rhs over every
//	                                     variable declared so far, in order
//
// Lines starting with '#' are comments.
type instance struct {
	vars []domain.ID
}

// loadInstance reads filename and declares/posts every variable and
// constraint it describes against s, in the order encountered.
func loadInstance(filename string, s *solver.Solver) (*instance, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open instance file: %w", err)
	}
	defer f.Close()

	in := &instance{}
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "var":
			if err := in.parseVar(s, fields); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		case "con":
			if err := in.parseConstraint(s, fields); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read instance file: %w", err)
	}
	return in, nil
}

func (in *instance) parseVar(s *solver.Solver, fields []string) error {
	if len(fields) != 3 {
		return fmt.Errorf("want %q lb ub", "var")
	}
	lb, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("invalid lower bound %q: %w", fields[1], err)
	}
	ub, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("invalid upper bound %q: %w", fields[2], err)
	}
	in.vars = append(in.vars, s.NewBoundedInteger(int32(lb), int32(ub)))
	return nil
}

func (in *instance) parseConstraint(s *solver.Solver, fields []string) error {
	rest := fields[1:]
	if len(rest) != len(in.vars)+2 || rest[len(rest)-2] != "<=" {
		return fmt.Errorf("want %q c1 c2 ... cN <= rhs with one coefficient per declared variable", "con")
	}
	coeffs := rest[:len(in.vars)]
	rhs, err := strconv.Atoi(rest[len(rest)-1])
	if err != nil {
		return fmt.Errorf("invalid rhs %q: %w", rest[len(rest)-1], err)
	}

	terms := make([]domain.Term, 0, len(coeffs))
	for i, c := range coeffs {
		coeff, err := strconv.Atoi(c)
		if err != nil {
			return fmt.Errorf("invalid coefficient %q: %w", c, err)
		}
		if coeff == 0 {
			continue
		}
		terms = append(terms, domain.Term{Var: in.vars[i], Coeff: int32(coeff)})
	}

	ineq := domain.NewLinearInequality(terms, int32(rhs))
	if s.AddConstraint(ineq) == solver.PostRootInconsistent {
		return fmt.Errorf("constraint %q is already conflicting at the root", strings.Join(fields, " "))
	}
	return nil
}
