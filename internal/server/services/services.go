// Package services holds the server-side business logic. Every resource
// operation first resolves the caller from the context and then scopes all
// store access to that caller.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput maps validator failures onto common.ErrorValidation.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", common.ErrorValidation, err)
}

// storeError passes NotFound through and turns everything else into
// ErrorInternal after logging the cause.
func storeError(ctx context.Context, log logging.Logger, op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	log.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}

// Resource ids are UUIDs in the store; anything else cannot exist.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}

// Set bundles the services a transport exposes.
type Set struct {
	Users     *UserService
	Notes     *NoteService
	Files     *FileService
	Mailboxes *MailboxService
}
