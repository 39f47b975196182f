package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"vsix-sync/internal/core"
	"vsix-sync/internal/policies"
	"vsix-sync/internal/types"
)

// Plan snapshots the target editor and one market's mirror and reconciles
// them into an ordered action plan. It performs no changes.
func (s Service) Plan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	spec, err := s.loadMarkets(ctx, req.MarketsPath)
	if err != nil {
		return PlanResult{}, err
	}
	market, err := core.FindMarket(spec, req.Market)
	if err != nil {
		return PlanResult{}, err
	}
	editorCLI := firstNonEmpty(req.EditorCLI, spec.Defaults.EditorCLI, "code")
	disabledFile := firstNonEmpty(req.DisabledFile, spec.Defaults.DisabledFile)

	installed, err := s.NewInstalled(editorCLI, disabledFile).List(ctx)
	if err != nil {
		return PlanResult{}, err
	}
	mirrored, err := s.mirroredArtifacts(market)
	if err != nil {
		return PlanResult{}, err
	}

	log.Info().Str("market", market.Name).
		Int("installed", len(installed)).
		Int("mirrored", len(mirrored)).
		Str("policy", policies.Describe(req.Policy)).
		Msg("generating plan")
	plan := core.GeneratePlan(installed, mirrored, req.Policy)
	return PlanResult{Market: market, EditorCLI: editorCLI, Plan: plan}, nil
}

// Apply generates a plan and executes it action by action in plan order.
// A failed action is recorded and skipped past; actions for other ids
// still run.
func (s Service) Apply(ctx context.Context, req ApplyRequest) (ApplyResult, error) {
	planned, err := s.Plan(ctx, req.PlanRequest)
	if err != nil {
		return ApplyResult{}, err
	}
	result := ApplyResult{
		Market: planned.Market,
		Plan:   planned.Plan,
		DryRun: req.DryRun,
	}
	if req.DryRun || planned.Plan.Empty() {
		return result, nil
	}

	executor := s.NewExecutor(planned.EditorCLI)
	for _, action := range planned.Plan.Actions {
		record := types.ApplyRecord{Action: action}
		if err := executor.Apply(ctx, action); err != nil {
			record.Err = err.Error()
			log.Error().Str("id", action.ID).Str("kind", string(action.Kind)).
				Err(err).Msg("action failed")
		}
		result.Report.Records = append(result.Report.Records, record)
	}
	return result, nil
}
