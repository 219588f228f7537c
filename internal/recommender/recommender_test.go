package recommender

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pc-recommender/internal/apiclient"
	"github.com/pribylovaa/pc-recommender/internal/backendtest"
	apierrors "github.com/pribylovaa/pc-recommender/internal/errors"
	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore"
)

type fixture struct {
	srv   *backendtest.Server
	svc   *Service
	store *tokenstore.Memory
}

// newFixture — сервис от имени пользователя с правами staff или без.
func newFixture(t *testing.T, username string, staff bool) *fixture {
	t.Helper()

	srv := backendtest.New(backendtest.Options{})
	t.Cleanup(srv.Close)

	return asUser(t, srv, username, staff)
}

func asUser(t *testing.T, srv *backendtest.Server, username string, staff bool) *fixture {
	t.Helper()

	id := srv.AddUser(username, username+"@example.com", "password1", staff)
	pair := srv.IssuePair(id)

	store := tokenstore.NewMemory()
	store.StoreTokens(context.Background(), pair.Access, pair.Refresh)

	c, err := apiclient.New(apiclient.Options{
		BaseURL:        srv.BaseURL(),
		Store:          store,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	return &fixture{srv: srv, svc: New(c), store: store}
}

func TestRecommend_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "neo", false)

	resp, err := f.svc.Recommend(context.Background(), models.RecommendRequest{
		Budget:         40000,
		PreferredGames: []string{" Cyberpunk 2077 ", "", "Dota 2"},
		DesiredGPU:     "RTX 4070",
	})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 2)
	require.Equal(t, "RTX 4070", resp.Recommendations[0].GPU.Name)
	require.Contains(t, resp.AnalysisNotes, "Cyberpunk 2077, Dota 2")
	require.NotNil(t, resp.SourcePromptForSaving)
	require.Equal(t, "THB", resp.SourcePromptForSaving.Currency)
}

func TestRecommend_InvalidBudget_NoRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "neo", false)

	_, err := f.svc.Recommend(context.Background(), models.RecommendRequest{Budget: 0})
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.EqualValues(t, 0, f.srv.Hits(http.MethodPost, RecommendPath))
}

func TestRecommend_ModelFailure_ReturnsRawOutput(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "neo", false)
	f.srv.FailRecommend("AI returned malformed JSON")

	resp, err := f.svc.Recommend(context.Background(), models.RecommendRequest{Budget: 30000})
	require.ErrorIs(t, err, ErrRecommendationFailed)
	require.ErrorIs(t, err, apierrors.ErrServer)
	require.NotNil(t, resp)
	require.Equal(t, "AI returned malformed JSON", resp.Error)
	require.NotEmpty(t, resp.RawAIOutputOnError)
}

func TestRecommend_ErrorFieldIn2xx(t *testing.T) {
	t.Parallel()

	api := &stubAPI{post: func(_ string, _, out any) error {
		out.(*models.RecommendationResponse).Error = "quota exceeded"
		return nil
	}}

	resp, err := New(api).Recommend(context.Background(), models.RecommendRequest{Budget: 1})
	require.ErrorIs(t, err, ErrRecommendationFailed)
	require.Equal(t, "quota exceeded", resp.Error)
}

func TestExplain(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "neo", false)

	resp, err := f.svc.Recommend(context.Background(), models.RecommendRequest{Budget: 50000})
	require.NoError(t, err)

	text, err := f.svc.Explain(context.Background(), resp.Recommendations[0], resp.SourcePromptForSaving)
	require.NoError(t, err)
	require.Contains(t, text, "Value build")
	require.Contains(t, text, "50000")

	_, err = f.svc.Explain(context.Background(), models.Build{}, nil)
	require.ErrorIs(t, err, apierrors.ErrBadRequest)
	require.Equal(t, "selected_build is required.", apierrors.Message(err))
}

func TestSaved_CRUD(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "neo", false)
	ctx := context.Background()

	resp, err := f.svc.Recommend(ctx, models.RecommendRequest{Budget: 40000})
	require.NoError(t, err)

	saved, err := f.svc.Save(ctx, "  ", resp.Recommendations[1], resp.SourcePromptForSaving)
	require.NoError(t, err)
	require.Nil(t, saved.Name)
	require.Equal(t, "Performance build", saved.DisplayName())

	list, err := f.svc.ListSaved(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	renamed, err := f.svc.Rename(ctx, saved.ID, "Gaming rig")
	require.NoError(t, err)
	require.Equal(t, "Gaming rig", renamed.DisplayName())

	noted, err := f.svc.UpdateNotes(ctx, saved.ID, "buy in December")
	require.NoError(t, err)
	require.Equal(t, "buy in December", *noted.UserNotes)

	got, err := f.svc.GetSaved(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, "Gaming rig", *got.Name)
	require.NotNil(t, got.SourcePromptDetails)

	require.NoError(t, f.svc.DeleteSaved(ctx, saved.ID))

	_, err = f.svc.GetSaved(ctx, saved.ID)
	require.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestSaved_OtherUsersSpecIsNotFound(t *testing.T) {
	t.Parallel()

	owner := newFixture(t, "neo", false)
	other := asUser(t, owner.srv, "smith", false)
	ctx := context.Background()

	resp, err := owner.svc.Recommend(ctx, models.RecommendRequest{Budget: 40000})
	require.NoError(t, err)
	saved, err := owner.svc.Save(ctx, "mine", resp.Recommendations[0], nil)
	require.NoError(t, err)

	_, err = other.svc.GetSaved(ctx, saved.ID)
	require.ErrorIs(t, err, apierrors.ErrNotFound)
	require.ErrorIs(t, other.svc.DeleteSaved(ctx, saved.ID), apierrors.ErrNotFound)
}

func TestSaved_ArgumentChecks(t *testing.T) {
	t.Parallel()

	svc := New(&stubAPI{})
	ctx := context.Background()

	_, err := svc.Rename(ctx, 1, "   ")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.GetSaved(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)

	require.ErrorIs(t, svc.DeleteSaved(ctx, -1), ErrInvalidArgument)
	require.ErrorIs(t, svc.DeleteUser(ctx, 0), ErrInvalidArgument)
}

func TestAdmin_Operations(t *testing.T) {
	t.Parallel()

	admin := newFixture(t, "root", true)
	user := asUser(t, admin.srv, "neo", false)
	ctx := context.Background()

	resp, err := user.svc.Recommend(ctx, models.RecommendRequest{Budget: 40000})
	require.NoError(t, err)
	spec, err := user.svc.Save(ctx, "", resp.Recommendations[0], resp.SourcePromptForSaving)
	require.NoError(t, err)

	stats, err := admin.svc.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.TotalUsers)
	require.EqualValues(t, 1, stats.TotalSavedSpecs)
	require.EqualValues(t, 1, stats.RecommendationsToday)

	users, err := admin.svc.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	var neoID int64
	for _, u := range users {
		if u.Username == "neo" {
			neoID = u.UserID()
		}
	}
	require.NotZero(t, neoID)

	promoted, err := admin.svc.SetStaff(ctx, neoID, true)
	require.NoError(t, err)
	require.True(t, promoted.IsStaff)

	blocked, err := admin.svc.SetActive(ctx, neoID, false)
	require.NoError(t, err)
	require.NotNil(t, blocked.IsActive)
	require.False(t, *blocked.IsActive)

	specs, err := admin.svc.Specs(ctx)
	require.NoError(t, err)
	require.Len(t, specs, 1)

	require.NoError(t, admin.svc.DeleteSpec(ctx, spec.ID))
	require.ErrorIs(t, admin.svc.DeleteSpec(ctx, spec.ID), apierrors.ErrNotFound)

	require.NoError(t, admin.svc.DeleteUser(ctx, neoID))

	users, err = admin.svc.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestAdmin_ForbiddenForRegularUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "neo", false)

	_, err := f.svc.Stats(context.Background())
	require.ErrorIs(t, err, apierrors.ErrForbidden)
	require.Equal(t, http.StatusForbidden, apierrors.StatusCode(err))
}

// stubAPI — API без сети.
type stubAPI struct {
	post func(path string, body, out any) error
}

func (s *stubAPI) Get(context.Context, string, any) error { return nil }

func (s *stubAPI) Post(_ context.Context, path string, body, out any) error {
	if s.post == nil {
		return nil
	}

	return s.post(path, body, out)
}

func (s *stubAPI) Patch(context.Context, string, any, any) error { return nil }
func (s *stubAPI) Delete(context.Context, string) error          { return nil }
