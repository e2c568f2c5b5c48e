// Package validation lowers the confidence of plan options whose
// justification cannot be traced back to the catalog.
package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-poi-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

const (
	severeIssueCap = 0.4
	minorIssueCap  = 0.55
)

// Pipeline runs the semantic check and the judge side by side and merges
// their findings into the plan. Either check may be nil.
type Pipeline struct {
	semantic *SemanticValidator
	judge    *Judge
	logger   *slog.Logger
}

func NewPipeline(semantic *SemanticValidator, judge *Judge, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		semantic: semantic,
		judge:    judge,
		logger:   logger,
	}
}

// Run annotates plan in place. It waits for both checks; a check that fails,
// times out or panics contributes nothing and does not affect the other.
func (p *Pipeline) Run(ctx context.Context, plan *types.Plan, places types.PlaceIndex) {
	ctx, span := otel.Tracer("Validation").Start(ctx, "Run")
	defer span.End()

	snapshot := plan.Snapshot()

	var (
		verdicts map[uuid.UUID]Verdict
		review   = types.NoIssues()
		g        errgroup.Group
	)

	if p.semantic != nil {
		g.Go(func() (err error) {
			defer p.recoverCheck(ctx, "semantic", &err)
			v, err := p.semantic.Validate(ctx, snapshot, places)
			if err != nil {
				p.skipped(ctx, "semantic", err)
				return nil
			}
			verdicts = v
			return nil
		})
	} else {
		p.skipped(ctx, "semantic", nil)
	}

	if p.judge != nil {
		g.Go(func() (err error) {
			defer p.recoverCheck(ctx, "judge", &err)
			review = p.judge.Review(ctx, snapshot, places)
			return nil
		})
	} else {
		p.skipped(ctx, "judge", nil)
	}

	_ = g.Wait()

	plan.Lock()
	defer plan.Unlock()
	applied := ApplySemantic(plan, verdicts)
	flagged := ApplyJudge(plan, review)

	for _, issue := range review.Issues {
		metrics.Get().JudgeIssuesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(issue.Type))))
	}
	span.SetAttributes(
		attribute.Int("semantic.applied", applied),
		attribute.Int("judge.flagged", flagged),
	)
}

func (p *Pipeline) recoverCheck(ctx context.Context, check string, err *error) {
	if r := recover(); r != nil {
		p.skipped(ctx, check, fmt.Errorf("panic: %v", r))
		*err = nil
	}
}

func (p *Pipeline) skipped(ctx context.Context, check string, err error) {
	metrics.Get().ValidationSkippedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("check", check)))
	if err != nil {
		p.logger.WarnContext(ctx, "Validation check skipped", slog.String("check", check), slog.Any("error", err))
	}
}

// ApplySemantic merges verdicts into the plan and returns how many options
// were touched. Confidence only ever goes down.
func ApplySemantic(plan *types.Plan, verdicts map[uuid.UUID]Verdict) int {
	if len(verdicts) == 0 {
		return 0
	}
	n := 0
	plan.Options(func(opt *types.PlanOption) {
		v, ok := verdicts[opt.PlaceID()]
		if !ok {
			return
		}
		if v.Substitute != "" {
			opt.Why = v.Substitute
			opt.Substituted = true
		}
		opt.Demote(v.Similarity, v.Confidence)
		n++
	})
	return n
}

// ApplyJudge caps the confidence of every option the judge flagged and
// returns how many were flagged.
func ApplyJudge(plan *types.Plan, review types.JudgeResult) int {
	if len(review.Issues) == 0 {
		return 0
	}
	byOption := make(map[string][]types.JudgeIssue, len(review.Issues))
	for _, issue := range review.Issues {
		byOption[issue.OptionID] = append(byOption[issue.OptionID], issue)
	}
	n := 0
	plan.Options(func(opt *types.PlanOption) {
		issues := byOption[opt.PlaceID().String()]
		if len(issues) == 0 {
			return
		}
		for _, issue := range issues {
			if issue.Type.Severe() {
				opt.Demote(severeIssueCap, types.ConfidenceLow)
			} else {
				opt.Demote(minorIssueCap, types.ConfidenceAIGenerated)
			}
		}
		n++
	})
	return n
}
