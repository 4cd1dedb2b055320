package decl

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Neumenon/adt/adt"
)

// Result is the outcome of decoding one document.
type Result struct {
	Index int
	Value *adt.Value
	Err   error
}

// CheckAll decodes docs concurrently, at most jobs at a time (jobs <= 0
// means no limit). Results are in document order. Documents not yet
// started when ctx is done report ctx.Err().
func (s *Set) CheckAll(ctx context.Context, docs [][]byte, jobs int) []Result {
	results := make([]Result, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Index: i, Err: err}
				return nil
			}
			v, err := s.Decode(doc)
			results[i] = Result{Index: i, Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.log.Debug("checked documents", zap.Int("count", len(docs)), zap.Int("failed", failed), zap.Int("jobs", jobs))
	return results
}

// Coverage reports whether handlers for tags would exhaust union. It
// returns nil, an *adt.NonExhaustiveMatchError naming the uncovered
// members, or a *NotDeclaredError for an unknown name.
func (s *Set) Coverage(union string, tags []string) error {
	u, ok := s.Union(union)
	if !ok {
		return &NotDeclaredError{Kind: "union", Name: union}
	}
	cases := make([]adt.Case, 0, len(tags))
	for _, tag := range tags {
		c, ok := s.Constructor(tag)
		if !ok {
			return &NotDeclaredError{Kind: "type", Name: tag}
		}
		cases = append(cases, adt.On(c, func(...any) struct{} { return struct{}{} }))
	}
	return adt.Bind[struct{}](u, cases...).Err()
}
