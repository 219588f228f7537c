package recommender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/pkg/log"
)

// Операции админки. Бэкенд пускает только is_staff (иначе 403).

// Stats — сводка для панели.
func (s *Service) Stats(ctx context.Context) (*models.AdminStats, error) {
	const op = "recommender.Stats"

	var out models.AdminStats
	if err := s.api.Get(ctx, AdminStatsPath, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// Users — все пользователи.
func (s *Service) Users(ctx context.Context) ([]models.AdminUser, error) {
	const op = "recommender.Users"

	var out []models.AdminUser
	if err := s.api.Get(ctx, AdminUsersPath, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// SetStaff выдаёт или отзывает права staff.
func (s *Service) SetStaff(ctx context.Context, id int64, staff bool) (*models.AdminUser, error) {
	const op = "recommender.SetStaff"

	return s.patchUser(ctx, op, id, models.AdminUserPatch{IsStaff: &staff})
}

// SetActive блокирует или разблокирует пользователя.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*models.AdminUser, error) {
	const op = "recommender.SetActive"

	return s.patchUser(ctx, op, id, models.AdminUserPatch{IsActive: &active})
}

func (s *Service) patchUser(ctx context.Context, op string, id int64, patch models.AdminUserPatch) (*models.AdminUser, error) {
	if err := checkID(op, id); err != nil {
		return nil, err
	}

	var out models.AdminUser
	if err := s.api.Patch(ctx, itemPath(AdminUsersPath, id), patch, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("admin_user_updated", slog.Int64("target_user_id", id))

	return &out, nil
}

// DeleteUser удаляет пользователя вместе с его сборками.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	const op = "recommender.DeleteUser"

	if err := checkID(op, id); err != nil {
		return err
	}

	if err := s.api.Delete(ctx, itemPath(AdminUsersPath, id)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("admin_user_deleted", slog.Int64("target_user_id", id))

	return nil
}

// Specs — сохранённые сборки всех пользователей.
func (s *Service) Specs(ctx context.Context) ([]models.SavedSpec, error) {
	const op = "recommender.Specs"

	var out []models.SavedSpec
	if err := s.api.Get(ctx, AdminSavedSpecsPath, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// DeleteSpec удаляет любую сохранённую сборку.
func (s *Service) DeleteSpec(ctx context.Context, id int64) error {
	const op = "recommender.DeleteSpec"

	if err := checkID(op, id); err != nil {
		return err
	}

	if err := s.api.Delete(ctx, itemPath(AdminSavedSpecsPath, id)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("admin_spec_deleted", slog.Int64("spec_id", id))

	return nil
}
