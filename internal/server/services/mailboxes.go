package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/cryptox"
	"github.com/cocoinbox/cocoinbox/internal/logging"
	"github.com/cocoinbox/cocoinbox/internal/server/auth"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MailProvider is the disposable mail backend.
type MailProvider interface {
	Domain(ctx context.Context) (string, error)
	CreateAccount(ctx context.Context, address, password string) error
	Messages(ctx context.Context, address, password string) ([]models.MailMessage, error)
}

type MailboxInput struct {
	AliasName string `validate:"max=64"`
}

type MailboxService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	provider    MailProvider
	sealer      *cryptox.Sealer
	logger      logging.Logger
	now         func() time.Time
}

func NewMailboxService(db *sql.DB, m repomanager.RepositoryManager, provider MailProvider, sealer *cryptox.Sealer, logger logging.Logger) *MailboxService {
	return &MailboxService{db: db, repomanager: m, provider: provider, sealer: sealer, logger: logger, now: time.Now}
}

func (s *MailboxService) Create(ctx context.Context, in MailboxInput) (*models.Mailbox, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	in.AliasName = strings.TrimSpace(in.AliasName)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	domain, err := s.provider.Domain(ctx)
	if err != nil {
		return nil, s.providerError(ctx, "provider domain", err)
	}

	local := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	address := local + "@" + domain
	password, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, storeError(ctx, s.logger, "mailbox password", err)
	}

	if err := s.provider.CreateAccount(ctx, address, password); err != nil {
		return nil, s.providerError(ctx, "provider account", err)
	}

	ct, nonce := s.sealer.Seal([]byte(password))
	mb, err := s.repomanager.Mailboxes(s.db).Create(ctx, &models.Mailbox{
		UserID:            user.ID,
		Address:           address,
		AliasName:         in.AliasName,
		EncryptedPassword: ct,
		Nonce:             nonce,
		ExpiresAt:         s.now().Add(common.MailboxLifetime),
	})
	if err != nil {
		return nil, storeError(ctx, s.logger, "create mailbox", err)
	}
	return mb, nil
}

func (s *MailboxService) List(ctx context.Context) ([]*models.Mailbox, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Mailboxes(s.db).ListActive(ctx, user.ID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "list mailboxes", err)
	}
	return list, nil
}

func (s *MailboxService) Deactivate(ctx context.Context, id string) error {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	if err := s.repomanager.Mailboxes(s.db).Deactivate(ctx, id, user.ID); err != nil {
		return storeError(ctx, s.logger, "deactivate mailbox", err)
	}
	return nil
}

func (s *MailboxService) Messages(ctx context.Context, id string) ([]models.MailMessage, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	mb, err := s.repomanager.Mailboxes(s.db).GetActive(ctx, id, user.ID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "get mailbox", err)
	}

	password, err := s.sealer.Open(mb.EncryptedPassword, mb.Nonce)
	if err != nil {
		return nil, storeError(ctx, s.logger, "unseal mailbox password", err)
	}
	defer common.WipeByteArray(password)

	msgs, err := s.provider.Messages(ctx, mb.Address, string(password))
	if err != nil {
		return nil, s.providerError(ctx, "provider messages", err)
	}
	return msgs, nil
}

func (s *MailboxService) Sweep(ctx context.Context) (int64, error) {
	return s.repomanager.Mailboxes(s.db).DeactivateExpired(ctx)
}

func (s *MailboxService) providerError(ctx context.Context, op string, err error) error {
	s.logger.Warn(ctx, op+" failed", "error", err)
	return common.ErrorProviderUnavailable
}
