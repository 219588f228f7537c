package backendtest

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/pc-recommender/internal/errors"
	"github.com/pribylovaa/pc-recommender/internal/models"
)

func writeNotFound(w http.ResponseWriter) {
	apierrors.WriteDetail(w, http.StatusNotFound, "not_found", "Not found.")
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func price(v float64) *float64 { return &v }

func orDefault(v, def string) string {
	if v != "" {
		return v
	}

	return def
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var in models.RecommendRequest
	if err := decode(r, &in); err != nil {
		writeParseError(w)
		return
	}

	if in.Budget <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Budget is required and must be a positive number."})
		return
	}

	s.mu.Lock()
	failMsg := s.recommendErr
	if failMsg == "" {
		s.recommendCount++
	}
	s.mu.Unlock()

	if failMsg != "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":                  failMsg,
			"raw_ai_output_on_error": "```not json```",
		})
		return
	}

	currency := orDefault(in.Currency, "THB")
	prompt := &models.SourcePrompt{
		Budget:   price(in.Budget),
		Currency: currency,
		DesiredParts: map[string]string{
			"cpu":                 in.DesiredCPU,
			"gpu":                 in.DesiredGPU,
			"ram":                 in.DesiredRAM,
			"storage_type":        in.DesiredStorageType,
			"storage_size":        in.DesiredStorageSize,
			"motherboard_chipset": in.DesiredMotherboardChipset,
			"psu_wattage":         in.DesiredPSUWattage,
		},
		PreferredGames: in.PreferredGames,
	}

	builds := []models.Build{
		fakeBuild("Value build", in, 0.85),
		fakeBuild("Performance build", in, 0.98),
	}

	writeJSON(w, http.StatusOK, models.RecommendationResponse{
		Recommendations:       builds,
		AnalysisNotes:         fmt.Sprintf("Budget %.0f %s; games: %s.", in.Budget, currency, strings.Join(in.PreferredGames, ", ")),
		SourcePromptForSaving: prompt,
	})
}

// fakeBuild раскладывает share бюджета по компонентам в фиксированных долях.
func fakeBuild(name string, in models.RecommendRequest, share float64) models.Build {
	total := in.Budget * share
	part := func(label string, frac float64) *models.Component {
		return &models.Component{Name: label, PriceTHB: price(total * frac)}
	}

	return models.Build{
		BuildName:             name,
		TotalPriceEstimateTHB: price(total),
		CPU:                   part(orDefault(in.DesiredCPU, "AMD Ryzen 5 5600"), 0.2),
		GPU:                   part(orDefault(in.DesiredGPU, "NVIDIA GeForce RTX 4060"), 0.4),
		RAM:                   part(orDefault(in.DesiredRAM, "16GB DDR4 3200"), 0.08),
		Storage:               part(orDefault(in.DesiredStorageType, "1TB NVMe SSD"), 0.08),
		Motherboard:           part(orDefault(in.DesiredMotherboardChipset, "B550"), 0.1),
		PSU:                   part(orDefault(in.DesiredPSUWattage, "650W 80+ Bronze"), 0.07),
		Case:                  part("ATX Mid-Tower", 0.04),
		Cooler:                part("Stock cooler", 0.03),
	}
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request) {
	var in models.ExplainRequest
	if err := decode(r, &in); err != nil {
		writeParseError(w)
		return
	}

	if in.SelectedBuild.BuildName == "" && len(in.SelectedBuild.Components()) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "selected_build is required."})
		return
	}

	var budget float64
	if in.OriginalQuery != nil && in.OriginalQuery.Budget != nil {
		budget = *in.OriginalQuery.Budget
	}

	writeJSON(w, http.StatusOK, models.ExplainResponse{
		Explanation: fmt.Sprintf("%s fits a budget of %.0f with %d components.",
			orDefault(in.SelectedBuild.BuildName, "This build"), budget, len(in.SelectedBuild.Components())),
	})
}

func (s *Server) listSpecs(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	s.mu.Lock()
	out := s.specsLocked(func(sp *models.SavedSpec) bool { return sp.User == u.profile.PK })
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

// specsLocked — копии сборок, отфильтрованные keep, новые первыми.
func (s *Server) specsLocked(keep func(*models.SavedSpec) bool) []models.SavedSpec {
	out := make([]models.SavedSpec, 0, len(s.specs))
	for _, sp := range s.specs {
		if keep(sp) {
			out = append(out, *sp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.After(out[j].SavedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out
}

func (s *Server) createSpec(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	var in models.SaveSpecRequest
	if err := decode(r, &in); err != nil {
		writeParseError(w)
		return
	}

	if in.BuildDetails.BuildName == "" && len(in.BuildDetails.Components()) == 0 {
		apierrors.WriteFields(w, map[string][]string{"build_details": {"This field is required."}})
		return
	}

	s.mu.Lock()
	s.nextSpecID++
	sp := &models.SavedSpec{
		ID:                  s.nextSpecID,
		User:                u.profile.PK,
		BuildDetails:        in.BuildDetails,
		SourcePromptDetails: in.SourcePromptDetails,
		SavedAt:             time.Now().UTC(),
	}
	if in.Name != "" {
		name := in.Name
		sp.Name = &name
	}
	s.specs[sp.ID] = sp
	out := *sp
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

// ownSpecLocked — сборка текущего пользователя; чужая — как отсутствующая.
func (s *Server) ownSpecLocked(r *http.Request) (*models.SavedSpec, bool) {
	id, ok := pathID(r)
	if !ok {
		return nil, false
	}

	sp, ok := s.specs[id]
	if !ok || sp.User != userFrom(r.Context()).profile.PK {
		return nil, false
	}

	return sp, true
}

func (s *Server) getSpec(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sp, ok := s.ownSpecLocked(r)
	var out models.SavedSpec
	if ok {
		out = *sp
	}
	s.mu.Unlock()

	if !ok {
		writeNotFound(w)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) patchSpec(w http.ResponseWriter, r *http.Request) {
	var in models.SavedSpecPatch
	if err := decode(r, &in); err != nil {
		writeParseError(w)
		return
	}

	s.mu.Lock()
	sp, ok := s.ownSpecLocked(r)
	var out models.SavedSpec
	if ok {
		if in.Name != nil {
			name := *in.Name
			sp.Name = &name
		}
		if in.UserNotes != nil {
			notes := *in.UserNotes
			sp.UserNotes = &notes
		}
		out = *sp
	}
	s.mu.Unlock()

	if !ok {
		writeNotFound(w)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteSpec(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sp, ok := s.ownSpecLocked(r)
	if ok {
		delete(s.specs, sp.ID)
	}
	s.mu.Unlock()

	if !ok {
		writeNotFound(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
