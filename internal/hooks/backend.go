package hooks

import (
	"context"

	"github.com/mark3labs/intake/internal/intake"
	"github.com/mark3labs/intake/internal/logger"
)

// WrapBackend runs the on_submit hooks after next accepts a submission.
// Hook failures are logged and never turn an accepted submission into a
// failed one. A nil or empty config returns next unchanged.
func WrapBackend(next intake.Backend, cfg *Config, workDir string) intake.Backend {
	if cfg == nil || len(cfg.Hooks.OnSubmit) == 0 {
		return next
	}
	return intake.BackendFunc(func(ctx context.Context, form intake.FormData) (intake.Receipt, error) {
		receipt, err := next.Submit(ctx, form)
		if err != nil {
			return receipt, err
		}

		out, err := ExecuteAll(ctx, cfg.Hooks.OnSubmit, workDir, VariablesFor(form, receipt))
		if err != nil {
			logger.Warn("on_submit hooks interrupted for %s: %v", receipt.Reference, err)
			return receipt, nil
		}
		if out != "" {
			logger.Info("on_submit hooks for %s:\n%s", receipt.Reference, out)
		}
		return receipt, nil
	})
}
