package recommender

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/pkg/log"
)

// ListSaved — сохранённые сборки текущего пользователя, новые первыми.
func (s *Service) ListSaved(ctx context.Context) ([]models.SavedSpec, error) {
	const op = "recommender.ListSaved"

	var out []models.SavedSpec
	if err := s.api.Get(ctx, SavedSpecsPath, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// GetSaved — одна сохранённая сборка. Чужая сборка для бэкенда не существует (404).
func (s *Service) GetSaved(ctx context.Context, id int64) (*models.SavedSpec, error) {
	const op = "recommender.GetSaved"

	if err := checkID(op, id); err != nil {
		return nil, err
	}

	var out models.SavedSpec
	if err := s.api.Get(ctx, itemPath(SavedSpecsPath, id), &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// Save сохраняет сборку из рекомендации вместе с исходным запросом.
// Пустое name — бэкенд покажет build_name.
func (s *Service) Save(ctx context.Context, name string, build models.Build, prompt *models.SourcePrompt) (*models.SavedSpec, error) {
	const op = "recommender.Save"

	req := models.SaveSpecRequest{
		Name:                strings.TrimSpace(name),
		BuildDetails:        build,
		SourcePromptDetails: prompt,
	}

	var out models.SavedSpec
	if err := s.api.Post(ctx, SavedSpecsPath, req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("saved_spec_created", slog.Int64("spec_id", out.ID))

	return &out, nil
}

// Rename меняет имя сохранённой сборки.
func (s *Service) Rename(ctx context.Context, id int64, name string) (*models.SavedSpec, error) {
	const op = "recommender.Rename"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w: name is empty", op, ErrInvalidArgument)
	}

	return s.patchSaved(ctx, op, id, models.SavedSpecPatch{Name: &name})
}

// UpdateNotes заменяет заметки пользователя; пустая строка очищает их.
func (s *Service) UpdateNotes(ctx context.Context, id int64, notes string) (*models.SavedSpec, error) {
	const op = "recommender.UpdateNotes"

	return s.patchSaved(ctx, op, id, models.SavedSpecPatch{UserNotes: &notes})
}

func (s *Service) patchSaved(ctx context.Context, op string, id int64, patch models.SavedSpecPatch) (*models.SavedSpec, error) {
	if err := checkID(op, id); err != nil {
		return nil, err
	}

	var out models.SavedSpec
	if err := s.api.Patch(ctx, itemPath(SavedSpecsPath, id), patch, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// DeleteSaved удаляет сохранённую сборку.
func (s *Service) DeleteSaved(ctx context.Context, id int64) error {
	const op = "recommender.DeleteSaved"

	if err := checkID(op, id); err != nil {
		return err
	}

	if err := s.api.Delete(ctx, itemPath(SavedSpecsPath, id)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("saved_spec_deleted", slog.Int64("spec_id", id))

	return nil
}
