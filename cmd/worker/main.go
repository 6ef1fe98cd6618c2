package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"outreach/internal/adapter/repo"
	"outreach/internal/crm"
	"outreach/internal/domain"
	"outreach/internal/enrich"
	"outreach/internal/infra"
)

const runPollInterval = 2 * time.Second

type runWorker struct {
	ctx      context.Context
	runs     domain.RunRepository
	enricher *enrich.Enricher
	logger   infra.Logger
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	crmClient, err := crm.NewClient(crm.Options{
		APIKey:  cfg.CRMAPIKey,
		BaseURL: cfg.CRMBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure crm client")
	}

	worker := &runWorker{
		ctx:      ctx,
		runs:     repo.NewRunRepository(pool),
		enricher: enrich.NewEnricher(crmClient, repo.NewOutreachRepository(pool), logger),
		logger:   logger,
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *runWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		run, err := w.runs.ClaimQueued(w.ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				time.Sleep(runPollInterval)
				continue
			}
			w.logger.Error().Err(err).Msg("worker: failed to claim run")
			time.Sleep(runPollInterval)
			continue
		}

		w.handleRun(run)
	}
}

func (w *runWorker) handleRun(run *domain.OutreachRun) {
	w.logger.Info().
		Str("run_id", run.ID).
		Str("list_id", run.ListID).
		Int("accounts", len(run.AccountNumbers)).
		Msg("worker: picked run")

	result, err := w.enricher.EnrichList(w.ctx, run.ListID, run.AccountNumbers)
	if err != nil {
		w.logger.Error().Err(err).Str("run_id", run.ID).Msg("worker: run failed")
		if completeErr := w.runs.Complete(w.ctx, run.ID, domain.RunFailed, nil, err.Error()); completeErr != nil {
			w.logger.Error().Err(completeErr).Str("run_id", run.ID).Msg("worker: complete failed")
		}
		return
	}

	// Partial failures degrade individual groups but never fail the run.
	var errMsg string
	if len(result.Failures) > 0 {
		msgs := make([]string, 0, len(result.Failures))
		for _, f := range result.Failures {
			msgs = append(msgs, f.Error())
		}
		errMsg = strings.Join(msgs, "; ")
	}
	if err := w.runs.Complete(w.ctx, run.ID, domain.RunSucceeded, result.NotFound, errMsg); err != nil {
		w.logger.Error().Err(err).Str("run_id", run.ID).Msg("worker: complete failed")
	}
}
