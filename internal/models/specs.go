// DTO доменных эндпойнтов рекомендателя.
package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// RecommendRequest — тело POST /recommend-specs/.
// Необязательные пожелания передаются только если заданы.
type RecommendRequest struct {
	Budget                    float64  `json:"budget"`
	Currency                  string   `json:"currency,omitempty"`
	PreferredGames            []string `json:"preferred_games"`
	DesiredCPU                string   `json:"desired_cpu,omitempty"`
	DesiredGPU                string   `json:"desired_gpu,omitempty"`
	DesiredRAM                string   `json:"desired_ram,omitempty"`
	DesiredStorageType        string   `json:"desired_storage_type,omitempty"`
	DesiredStorageSize        string   `json:"desired_storage_size,omitempty"`
	DesiredMotherboardChipset string   `json:"desired_motherboard_chipset,omitempty"`
	DesiredPSUWattage         string   `json:"desired_psu_wattage,omitempty"`
}

// Component — компонент сборки. Модель отдаёт его либо строкой,
// либо объектом {name, price_thb}; при сериализации форма сохраняется.
type Component struct {
	Name     string
	PriceTHB *float64

	object bool
}

type componentObject struct {
	Name     string   `json:"name"`
	PriceTHB *float64 `json:"price_thb,omitempty"`
}

func (c *Component) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*c = Component{}
		return json.Unmarshal(data, &c.Name)
	}

	var obj componentObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*c = Component{Name: obj.Name, PriceTHB: obj.PriceTHB, object: true}

	return nil
}

func (c Component) MarshalJSON() ([]byte, error) {
	if !c.object && c.PriceTHB == nil {
		return json.Marshal(c.Name)
	}

	return json.Marshal(componentObject{Name: c.Name, PriceTHB: c.PriceTHB})
}

// Build — одна рекомендованная сборка. Набор полей задаёт модель ИИ,
// поэтому всё, что не распознано, лежит в Extra.
type Build struct {
	BuildName             string     `json:"build_name,omitempty"`
	TotalPriceEstimateTHB *float64   `json:"total_price_estimate_thb,omitempty"`
	CPU                   *Component `json:"cpu,omitempty"`
	GPU                   *Component `json:"gpu,omitempty"`
	RAM                   *Component `json:"ram,omitempty"`
	Storage               *Component `json:"storage,omitempty"`
	Motherboard           *Component `json:"motherboard,omitempty"`
	PSU                   *Component `json:"psu,omitempty"`
	Case                  *Component `json:"case,omitempty"`
	Cooler                *Component `json:"cooler,omitempty"`
	Notes                 string     `json:"notes,omitempty"`

	Extra Extra `json:"-"`
}

var buildKeys = keySet(
	"build_name", "total_price_estimate_thb",
	"cpu", "gpu", "ram", "storage", "motherboard", "psu", "case", "cooler",
	"notes",
)

func (b *Build) UnmarshalJSON(data []byte) error {
	type plain Build
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	extra, err := splitExtra(data, buildKeys)
	if err != nil {
		return err
	}

	*b = Build(p)
	b.Extra = extra

	return nil
}

func (b Build) MarshalJSON() ([]byte, error) {
	type plain Build
	return mergeExtra(plain(b), b.Extra)
}

// Components возвращает заполненные компоненты в порядке отображения.
func (b Build) Components() []NamedComponent {
	all := []NamedComponent{
		{"CPU", b.CPU}, {"GPU", b.GPU}, {"RAM", b.RAM}, {"Storage", b.Storage},
		{"Motherboard", b.Motherboard}, {"PSU", b.PSU}, {"Case", b.Case}, {"Cooler", b.Cooler},
	}

	out := all[:0]
	for _, c := range all {
		if c.Component != nil && c.Component.Name != "" {
			out = append(out, c)
		}
	}

	return out
}

// NamedComponent — компонент с подписью слота.
type NamedComponent struct {
	Slot      string
	Component *Component
}

// SourcePrompt — исходный запрос, из которого получена рекомендация;
// сохраняется вместе со сборкой.
type SourcePrompt struct {
	Budget         *float64          `json:"budget,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	DesiredParts   map[string]string `json:"desired_parts,omitempty"`
	PreferredGames []string          `json:"preferred_games,omitempty"`

	Extra Extra `json:"-"`
}

var sourcePromptKeys = keySet("budget", "currency", "desired_parts", "preferred_games")

func (s *SourcePrompt) UnmarshalJSON(data []byte) error {
	type plain SourcePrompt
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	extra, err := splitExtra(data, sourcePromptKeys)
	if err != nil {
		return err
	}

	*s = SourcePrompt(p)
	s.Extra = extra

	return nil
}

func (s SourcePrompt) MarshalJSON() ([]byte, error) {
	type plain SourcePrompt
	return mergeExtra(plain(s), s.Extra)
}

// RecommendationResponse — ответ /recommend-specs/.
// При сбое модели бэкенд заполняет Error и RawAIOutputOnError.
type RecommendationResponse struct {
	Recommendations       []Build         `json:"recommendations"`
	AnalysisNotes         string          `json:"analysis_notes,omitempty"`
	SourcePromptForSaving *SourcePrompt   `json:"source_prompt_for_saving,omitempty"`
	Error                 string          `json:"error,omitempty"`
	RawAIOutputOnError    json.RawMessage `json:"raw_ai_output_on_error,omitempty"`
}

// ExplainRequest — тело POST /explain-build/.
type ExplainRequest struct {
	SelectedBuild Build         `json:"selected_build"`
	OriginalQuery *SourcePrompt `json:"original_query"`
}

// ExplainResponse — ответ /explain-build/.
type ExplainResponse struct {
	Explanation string `json:"explanation,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SavedSpec — сохранённая пользователем сборка.
type SavedSpec struct {
	ID                  int64         `json:"id"`
	User                int64         `json:"user,omitempty"`
	Name                *string       `json:"name"`
	BuildDetails        Build         `json:"build_details"`
	SourcePromptDetails *SourcePrompt `json:"source_prompt_details"`
	UserNotes           *string       `json:"user_notes"`
	SavedAt             time.Time     `json:"saved_at"`
}

// DisplayName — имя сборки для списков.
func (s SavedSpec) DisplayName() string {
	if s.Name != nil && *s.Name != "" {
		return *s.Name
	}
	if s.BuildDetails.BuildName != "" {
		return s.BuildDetails.BuildName
	}

	return "Unnamed build"
}

// SaveSpecRequest — тело POST /saved-specs/.
type SaveSpecRequest struct {
	Name                string        `json:"name,omitempty"`
	BuildDetails        Build         `json:"build_details"`
	SourcePromptDetails *SourcePrompt `json:"source_prompt_details,omitempty"`
}

// SavedSpecPatch — частичное обновление (PATCH /saved-specs/{id}/).
type SavedSpecPatch struct {
	Name      *string `json:"name,omitempty"`
	UserNotes *string `json:"user_notes,omitempty"`
}

// AdminStats — ответ /admin/stats/.
type AdminStats struct {
	TotalUsers           int64 `json:"total_users"`
	TotalSavedSpecs      int64 `json:"total_saved_specs"`
	RecommendationsToday int64 `json:"recommendations_today"`
}
