package usecase

import (
	"context"
	"fmt"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/metrics"
	"go.uber.org/zap"
)

// ModerationUsecase changes account states and roles. Role gates for the caller are
// enforced by the transport; SetRole additionally caps the role a caller can grant.
type ModerationUsecase struct {
	people    domain.PersonRepository
	publisher EventPublisher
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewModerationUsecase(repos Repositories, pub EventPublisher, m *metrics.MetricsManager, log *logger.Logger) *ModerationUsecase {
	return &ModerationUsecase{
		people:    repos.People,
		publisher: pub,
		metrics:   m,
		logger:    log.Named("ModerationUsecase"),
	}
}

func (uc *ModerationUsecase) GetPerson(ctx context.Context, id string) (*domain.Person, error) {
	return uc.people.GetByID(ctx, id)
}

// SetAccountState overwrites the target's account state. No history is kept.
func (uc *ModerationUsecase) SetAccountState(ctx context.Context, targetID string, state domain.AccountState, moderatorID string) (*domain.Person, error) {
	uc.logger.Info("Setting account state",
		zap.String("target_user_id", targetID),
		zap.String("moderator_id", moderatorID),
		zap.String("new_state", string(state)))

	if !state.IsValid() {
		return nil, fmt.Errorf("%w: unknown account state '%s'", domain.ErrInvalidInput, state)
	}
	if targetID == "" {
		return nil, fmt.Errorf("%w: target user cannot be empty", domain.ErrInvalidInput)
	}

	person, err := uc.people.UpdateState(ctx, targetID, state)
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.logger, SubjectPersonStateChanged, map[string]interface{}{
		"user_id":      person.ID,
		"state":        string(person.State),
		"moderator_id": moderatorID,
	})
	uc.metrics.IncAccountState(string(state))
	return person, nil
}

// SetRole changes the target's role. Callers below administrator are refused, and nobody can
// grant a role above their own.
func (uc *ModerationUsecase) SetRole(ctx context.Context, targetID string, role domain.Role, actorID string, actorRole domain.Role) (*domain.Person, error) {
	uc.logger.Info("Setting role",
		zap.String("target_user_id", targetID),
		zap.String("actor_id", actorID),
		zap.String("new_role", string(role)))

	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role '%s'", domain.ErrInvalidInput, role)
	}
	if !actorRole.AtLeast(domain.RoleAdmin) || role.Rank() > actorRole.Rank() {
		uc.logger.Warn("Role change refused",
			zap.String("actor_role", string(actorRole)), zap.String("requested_role", string(role)))
		return nil, domain.ErrForbidden
	}

	target, err := uc.people.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role.Rank() > actorRole.Rank() {
		return nil, fmt.Errorf("%w: cannot change the role of a higher ranked user", domain.ErrForbidden)
	}

	person, err := uc.people.UpdateRole(ctx, targetID, role)
	if err != nil {
		return nil, err
	}
	publish(ctx, uc.publisher, uc.logger, SubjectPersonRoleChanged, map[string]interface{}{
		"user_id":  person.ID,
		"role":     string(person.Role),
		"actor_id": actorID,
	})
	return person, nil
}
