package cmd

import (
	"github.com/pkg/errors"
	"github.com/textailor/textailor/pkg/config"
	"github.com/textailor/textailor/pkg/latex"
	"github.com/textailor/textailor/pkg/ledger"
	"github.com/textailor/textailor/pkg/llm"
	"github.com/textailor/textailor/pkg/tailor"
	"github.com/textailor/textailor/pkg/usage"
	"go.uber.org/zap"
)

// buildTailor wires the pipeline from configuration. Every command that
// talks to the ledger or the API goes through here.
func buildTailor(logger *zap.Logger) (cfg config.Config, t *tailor.Tailor, err error) {
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return cfg, t, err
	}

	client := llm.NewClient(cfg.AnthropicAPIKey, cfg.GetModel())
	compiler := latex.NewCompiler(cfg.GetEngine())

	var l *ledger.Ledger
	l, err = ledger.Open(cfg.LedgerPath(), logger)
	if err != nil {
		err = errors.Wrap(err, "failed to open application ledger")
		return cfg, t, err
	}

	usageLog := usage.NewLog(cfg.UsageLogPath(), cfg.Pricing.InputPerMillionUSD, cfg.Pricing.OutputPerMillionUSD)

	t = tailor.New(client, compiler, usageLog, l, cfg.Defaults.OutputDir, logger)

	return cfg, t, err
}

// openLedger wires just the ledger for commands that never touch the API.
func openLedger(logger *zap.Logger) (l *ledger.Ledger, err error) {
	cfg, err := config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return l, err
	}

	l, err = ledger.Open(cfg.LedgerPath(), logger)
	if err != nil {
		err = errors.Wrap(err, "failed to open application ledger")
		return l, err
	}

	return l, err
}
