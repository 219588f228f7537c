// errors описывает ошибки ответов бэкенда.
// Каждый не-2xx ответ превращается в *Error, который несёт:
//   - HTTP-статус и краткий стабильный код;
//   - разобранное тело DRF (detail/code/error/ошибки полей);
//   - исходное тело для диагностики.
//
// Пакет импортируется под именем apierrors.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel-ошибки по классам статусов. *Error разворачивается в одну из них,
// поэтому вызывающий код может писать errors.Is(err, apierrors.ErrUnauthorized).
var (
	// ErrBadRequest — 400, ошибки валидации.
	ErrBadRequest = stderrors.New("bad request")
	// ErrUnauthorized — 401, нет/невалидна аутентификация.
	ErrUnauthorized = stderrors.New("unauthorized")
	// ErrForbidden — 403, недостаточно прав.
	ErrForbidden = stderrors.New("forbidden")
	// ErrNotFound — 404.
	ErrNotFound = stderrors.New("not found")
	// ErrConflict — 409.
	ErrConflict = stderrors.New("conflict")
	// ErrRateLimited — 429.
	ErrRateLimited = stderrors.New("rate limited")
	// ErrServer — 5xx.
	ErrServer = stderrors.New("server error")
	// ErrUnexpectedStatus — прочие не-2xx статусы.
	ErrUnexpectedStatus = stderrors.New("unexpected status")
)

// Error — не-2xx ответ бэкенда.
// Code — короткий код: из тела DRF, если он там есть, иначе производный от статуса.
// Detail — detail (или error) из тела.
// Fields — ошибки по полям, включая non_field_errors.
type Error struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Code       string
	Detail     string
	Fields     map[string][]string
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Method != "" {
		fmt.Fprintf(&b, "%s %s: ", e.Method, e.Path)
	}
	fmt.Fprintf(&b, "status %d: %s", e.StatusCode, e.Message())

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message — первое человекочитаемое сообщение: detail, затем
// non_field_errors, затем первая ошибка поля (по алфавиту), затем текст статуса.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}

	if msgs := e.Fields[NonFieldErrors]; len(msgs) > 0 {
		return msgs[0]
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msgs := e.Fields[k]; len(msgs) > 0 {
			return k + ": " + msgs[0]
		}
	}

	if text := http.StatusText(e.StatusCode); text != "" {
		return strings.ToLower(text)
	}

	return "unexpected response"
}

// NonFieldErrors — ключ DRF для ошибок, не привязанных к полю.
const NonFieldErrors = "non_field_errors"

// FromResponse строит *Error по статусу и телу ответа.
// Нераспознаваемое тело не считается ошибкой разбора: сохраняется в Body.
func FromResponse(op, method, path string, status int, body []byte) *Error {
	httpCode, sentinel := baseFromStatus(status)

	e := &Error{
		Op:         op,
		Method:     method,
		Path:       path,
		StatusCode: status,
		Code:       httpCode,
		Body:       body,
		Err:        sentinel,
	}

	parseBody(e, body)

	return e
}

// parseBody разбирает типовые формы тела DRF:
//   - {"detail": "...", "code": "..."};
//   - {"error": "..."} (эндпойнты рекомендателя);
//   - {"field": ["msg", ...], "non_field_errors": [...]};
//   - ["msg", ...].
func parseBody(e *Error, body []byte) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return
	}

	switch trimmed[0] {
	case '[':
		if msgs := stringList(json.RawMessage(trimmed)); len(msgs) > 0 {
			e.Fields = map[string][]string{NonFieldErrors: msgs}
		}
		return
	case '{':
	default:
		return
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return
	}

	if s := jsonString(obj["detail"]); s != "" {
		e.Detail = s
	} else if s := jsonString(obj["error"]); s != "" {
		e.Detail = s
	}
	if s := jsonString(obj["code"]); s != "" {
		e.Code = s
	}

	for key, raw := range obj {
		if _, skip := reservedKeys[key]; skip {
			continue
		}
		if msgs := stringList(raw); len(msgs) > 0 {
			if e.Fields == nil {
				e.Fields = make(map[string][]string)
			}
			e.Fields[key] = msgs
		}
	}
}

// reservedKeys не являются ошибками полей.
var reservedKeys = map[string]struct{}{
	"detail":                 {},
	"error":                  {},
	"code":                   {},
	"raw_ai_output_on_error": {},
}

func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}

	return s
}

// stringList принимает строку или массив строк.
func stringList(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := list[:0]
		for _, s := range list {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return []string{s}
	}

	return nil
}

// baseFromStatus — маппинг HTTP-статуса в короткий код и sentinel.
func baseFromStatus(status int) (string, error) {
	switch {
	case status == http.StatusBadRequest:
		return "invalid_argument", ErrBadRequest
	case status == http.StatusUnauthorized:
		return "unauthenticated", ErrUnauthorized
	case status == http.StatusForbidden:
		return "permission_denied", ErrForbidden
	case status == http.StatusNotFound:
		return "not_found", ErrNotFound
	case status == http.StatusConflict:
		return "already_exists", ErrConflict
	case status == http.StatusTooManyRequests:
		return "resource_exhausted", ErrRateLimited
	case status >= 500:
		return "internal", ErrServer
	default:
		return "unexpected_status", ErrUnexpectedStatus
	}
}

// As достаёт *Error из цепочки.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsUnauthorized — ответ бэкенда был 401.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode возвращает HTTP-статус из цепочки или 0, если ответа не было
// (сетевая ошибка, отмена контекста и т.п.).
func StatusCode(err error) int {
	if apiErr, ok := As(err); ok {
		return apiErr.StatusCode
	}

	return 0
}

// Message — сообщение для пользователя: из *Error, если он есть в цепочке,
// иначе текст самой ошибки.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := As(err); ok {
		return apiErr.Message()
	}

	return err.Error()
}

// DetailBody — тело ответа в форме DRF, которое отдаёт тестовый бэкенд.
type DetailBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// WriteDetail пишет ответ об ошибке в форме DRF.
func WriteDetail(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(DetailBody{Detail: detail, Code: code})
}

// WriteFields пишет ошибки валидации по полям (400).
func WriteFields(w http.ResponseWriter, fields map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(fields)
}
