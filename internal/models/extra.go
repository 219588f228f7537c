package models

import "encoding/json"

// Extra хранит поля, которые бэкенд (ответ ИИ) прислал сверх известных.
// При обратной сериализации они возвращаются на место, известные поля
// имеют приоритет.
type Extra map[string]json.RawMessage

// splitExtra разбирает объект и оставляет в Extra только неизвестные ключи.
func splitExtra(data []byte, known map[string]struct{}) (Extra, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	extra := make(Extra)
	for k, v := range all {
		if _, ok := known[k]; ok {
			continue
		}
		extra[k] = v
	}

	if len(extra) == 0 {
		return nil, nil
	}

	return extra, nil
}

// mergeExtra сериализует v и дописывает в объект ключи из extra.
func mergeExtra(v any, extra Extra) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}

	for k, raw := range extra {
		if _, ok := obj[k]; !ok {
			obj[k] = raw
		}
	}

	return json.Marshal(obj)
}

func keySet(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}

	return m
}
