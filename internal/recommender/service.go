// recommender — типизированные обёртки над доменными эндпойнтами бэкенда:
// подбор и пояснение сборок, сохранённые сборки, админка.
package recommender

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/pc-recommender/internal/apiclient"
)

// Эндпойнты.
const (
	RecommendPath       = "/recommend-specs/"
	ExplainPath         = "/explain-build/"
	SavedSpecsPath      = "/saved-specs/"
	AdminStatsPath      = "/admin/stats/"
	AdminUsersPath      = "/admin/users/"
	AdminSavedSpecsPath = "/admin/saved-specs/"
)

var (
	// ErrInvalidArgument — некорректные входные аргументы (проверяются до запроса).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRecommendationFailed — модель не смогла подобрать сборку, бэкенд вернул поле error.
	ErrRecommendationFailed = errors.New("recommendation failed")
	// ErrExplanationFailed — модель не смогла пояснить сборку.
	ErrExplanationFailed = errors.New("explanation failed")
)

// API — то, что сервису нужно от apiclient.Client.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

var _ API = (*apiclient.Client)(nil)

// Service — доменные операции поверх аутентифицированного клиента.
// Обновление токена и повтор запроса выполняет клиент.
type Service struct {
	api API
}

// New создает новый экземпляр Service.
func New(api API) *Service {
	return &Service{api: api}
}

func itemPath(base string, id int64) string {
	return fmt.Sprintf("%s%d/", base, id)
}

func checkID(op string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%s: %w: id must be positive", op, ErrInvalidArgument)
	}

	return nil
}
