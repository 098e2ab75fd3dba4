package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"estate_matcher/models"
	"estate_matcher/services"
)

const commandPollInterval = 2 * time.Second

// Worker is what the scheduler drives
type Worker interface {
	Trigger()
	Schedule()
	Pause()
	Resume()
	RematchProperty(ctx context.Context, id uuid.UUID) (*services.MatchReport, error)
	RematchClient(ctx context.Context, id uuid.UUID) (*services.MatchReport, error)
}

// CommandStore is the command queue in the journal
type CommandStore interface {
	GetPendingCommands() ([]models.Command, error)
	MarkCommandProcessed(id int64) error
	ParseCommandParams(cmd *models.Command) (*models.CommandParams, error)
}

type Config struct {
	Cron     string
	Interval time.Duration
}

type Scheduler struct {
	cfg       Config
	worker    Worker
	store     CommandStore
	logger    *zap.Logger
	cron      *cron.Cron
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	pollEvery time.Duration
}

func New(cfg Config, worker Worker, store CommandStore, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cfg:       cfg,
		worker:    worker,
		store:     store,
		logger:    logger.Named("scheduler"),
		cron:      cron.New(),
		stopCh:    make(chan struct{}),
		pollEvery: commandPollInterval,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	// Always poll commands
	go s.pollCommands(ctx)

	if s.cfg.Cron != "" {
		s.logger.Info("starting with cron", zap.String("cron", s.cfg.Cron))
		if _, err := s.cron.AddFunc(s.cfg.Cron, s.worker.Schedule); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Interval > 0 {
		s.logger.Info("starting with interval", zap.Duration("interval", s.cfg.Interval))
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.worker.Schedule()
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		s.logger.Info("no schedule configured, daemon will only respond to commands")
	}

	return nil
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cron.Stop()
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
	})
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(s.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processCommands(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) processCommands(ctx context.Context) {
	cmds, err := s.store.GetPendingCommands()
	if err != nil {
		s.logger.Error("get commands", zap.Error(err))
		return
	}

	for i := range cmds {
		cmd := &cmds[i]
		s.logger.Info("processing command", zap.Int64("command_id", cmd.ID), zap.String("command", string(cmd.Command)))
		if err := s.handleCommand(ctx, cmd); err != nil {
			s.logger.Warn("command error", zap.Int64("command_id", cmd.ID), zap.Error(err))
		}
		// failed commands are not retried
		if err := s.store.MarkCommandProcessed(cmd.ID); err != nil {
			s.logger.Error("mark command processed", zap.Int64("command_id", cmd.ID), zap.Error(err))
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdRematchAll:
		s.worker.Trigger()
		return nil
	case models.CmdPause:
		s.worker.Pause()
		return nil
	case models.CmdResume:
		s.worker.Resume()
		return nil
	case models.CmdRematchProperty, models.CmdRematchClient:
		id, err := s.targetID(cmd)
		if err != nil {
			return err
		}
		if cmd.Command == models.CmdRematchProperty {
			_, err = s.worker.RematchProperty(ctx, id)
		} else {
			_, err = s.worker.RematchClient(ctx, id)
		}
		return err
	default:
		return fmt.Errorf("unknown command %q", cmd.Command)
	}
}

func (s *Scheduler) targetID(cmd *models.Command) (uuid.UUID, error) {
	params, err := s.store.ParseCommandParams(cmd)
	if err != nil {
		return uuid.Nil, err
	}
	if params == nil || params.TargetID == "" {
		return uuid.Nil, fmt.Errorf("%s: missing target_id", cmd.Command)
	}
	id, err := uuid.Parse(params.TargetID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: bad target_id: %w", cmd.Command, err)
	}
	return id, nil
}
