package service

import (
	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

// Orchestrator runs the subsystem strategies in a fixed order and merges
// their outputs. The order is display framing only; the steps are
// independent.
type Orchestrator struct {
	Env *Env
}

func NewOrchestrator(env *Env) *Orchestrator {
	return &Orchestrator{Env: env}
}

// SetupInfrastructure walks database → cache → queue → search → storage,
// each step gated by the app type's options and, for cache/queue/storage,
// an extra confirm. Results land in one flat map under subsystem prefixes.
func (o *Orchestrator) SetupInfrastructure(app App, opts Options) (*appconfig.ConfigMap, error) {
	merged := appconfig.NewConfigMap()

	type step struct {
		strategy Strategy
		enabled  bool
		// confirm gates the step behind a yes/no question; nil means the
		// step runs whenever enabled.
		confirm func() (bool, error)
	}

	steps := []step{
		{strategy: &DatabaseStrategy{Env: o.Env}, enabled: opts.NeedsDatabase},
		{
			strategy: &CacheStrategy{Env: o.Env},
			enabled:  opts.NeedsCache,
			confirm:  o.confirmStep("cache", "Set up Redis for cache and sessions?", true),
		},
		{
			strategy: &QueueStrategy{Env: o.Env},
			enabled:  opts.NeedsQueue,
			confirm:  o.confirmStep("queue", "Set up a queue worker broker?", false),
		},
		{strategy: &SearchStrategy{Env: o.Env}, enabled: opts.NeedsSearch},
		{
			strategy: &StorageStrategy{Env: o.Env},
			enabled:  opts.NeedsStorage,
			confirm:  o.confirmStep("storage", "Set up S3-compatible object storage?", false),
		},
	}

	for _, st := range steps {
		if !st.enabled {
			if !o.Env.Quiet {
				ui.StepSkipped(st.strategy.Name())
			}
			continue
		}
		if st.confirm != nil {
			wanted, err := st.confirm()
			if err != nil {
				return nil, err
			}
			if !wanted {
				if !o.Env.Quiet {
					ui.StepSkipped(st.strategy.Name())
				}
				continue
			}
		}

		result, err := st.strategy.Setup(app, opts)
		if err != nil {
			return nil, err
		}
		merged.Merge(result.Values)

		if !o.Env.Quiet {
			detail := "local"
			if result.UsingDocker {
				detail = "docker"
			}
			if result.Values.Len() == 0 {
				detail = "none"
			}
			ui.StepDone(st.strategy.Name(), detail)
		}
	}

	return merged, nil
}

func (o *Orchestrator) confirmStep(flagName, question string, defaultYes bool) func() (bool, error) {
	return func() (bool, error) {
		return prompt.Bool(o.Env.flag(flagName), o.Env.Interactive, func() (bool, error) {
			return o.Env.Prompter.Confirm(question, "", defaultYes)
		}, defaultYes)
	}
}
