package recommender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	apierrors "github.com/pribylovaa/pc-recommender/internal/errors"
	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/pkg/log"
)

// Recommend подбирает сборки под бюджет и пожелания.
//
// Ошибки:
//   - ErrInvalidArgument — бюджет не положителен;
//   - ErrRecommendationFailed — бэкенд вернул поле error (в 2xx или в теле 4xx/5xx);
//     ответ с error и raw_ai_output_on_error возвращается вместе с ошибкой;
//   - прочее — ошибка клиента как есть, с op.
func (s *Service) Recommend(ctx context.Context, req models.RecommendRequest) (*models.RecommendationResponse, error) {
	const op = "recommender.Recommend"

	if req.Budget <= 0 {
		return nil, fmt.Errorf("%s: %w: budget must be positive", op, ErrInvalidArgument)
	}

	req.PreferredGames = cleanGames(req.PreferredGames)
	if req.PreferredGames == nil {
		req.PreferredGames = []string{}
	}

	lg := log.From(ctx)

	var out models.RecommendationResponse
	if err := s.api.Post(ctx, RecommendPath, req, &out); err != nil {
		if failed, ok := recommendationFromError(err); ok {
			lg.Warn("recommend_failed", slog.String("err", failed.Error))
			return failed, fmt.Errorf("%s: %w: %w", op, ErrRecommendationFailed, err)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.Error != "" {
		lg.Warn("recommend_failed", slog.String("err", out.Error))
		return &out, fmt.Errorf("%s: %w: %s", op, ErrRecommendationFailed, out.Error)
	}

	lg.Info("recommend_succeeded", slog.Int("builds", len(out.Recommendations)))

	return &out, nil
}

// recommendationFromError достаёт {error, raw_ai_output_on_error} из тела ошибки.
func recommendationFromError(err error) (*models.RecommendationResponse, bool) {
	e, ok := apierrors.As(err)
	if !ok || len(e.Body) == 0 {
		return nil, false
	}

	var out models.RecommendationResponse
	if json.Unmarshal(e.Body, &out) != nil || out.Error == "" {
		return nil, false
	}

	return &out, true
}

// cleanGames убирает пустые названия и пробелы по краям.
func cleanGames(games []string) []string {
	var out []string
	for _, g := range games {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}

	return out
}

// Explain просит модель пояснить выбранную сборку в контексте исходного запроса.
func (s *Service) Explain(ctx context.Context, build models.Build, query *models.SourcePrompt) (string, error) {
	const op = "recommender.Explain"

	var out models.ExplainResponse
	err := s.api.Post(ctx, ExplainPath, models.ExplainRequest{SelectedBuild: build, OriginalQuery: query}, &out)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if out.Error != "" {
		return "", fmt.Errorf("%s: %w: %s", op, ErrExplanationFailed, out.Error)
	}

	return out.Explanation, nil
}
