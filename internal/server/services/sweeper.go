package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cocoinbox/cocoinbox/internal/logging"
)

type sweepable interface {
	Sweep(ctx context.Context) (int64, error)
}

// Sweeper removes burned and expired notes, expired files, and deactivates
// expired mailboxes.
type Sweeper struct {
	targets map[string]sweepable
	logger  logging.Logger
}

func NewSweeper(notes *NoteService, files *FileService, mailboxes *MailboxService, logger logging.Logger) *Sweeper {
	return &Sweeper{
		targets: map[string]sweepable{"notes": notes, "files": files, "mailboxes": mailboxes},
		logger:  logger,
	}
}

// Sweep runs every target even if one fails.
func (s *Sweeper) Sweep(ctx context.Context) error {
	var errs []error
	for name, t := range s.targets {
		n, err := t.Sweep(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("sweep %s: %w", name, err))
			continue
		}
		if n > 0 {
			s.logger.Info(ctx, "sweep", "target", name, "affected", n)
		}
	}
	return errors.Join(errs...)
}
