package workerhttp

import (
	"fmt"
	"strings"

	"github.com/ycycse/alluxio/internal/models"
)

// RequestDescriptor — структурированное представление URI запроса:
// mapping-path (класс ресурса), оставшиеся сегменты пути по порядку и
// query-параметры. После разбора не изменяется.
type RequestDescriptor struct {
	MappingPath string
	Remaining   []string
	Params      map[string]string
}

// Segment возвращает i-й оставшийся сегмент либо пустую строку: парсер не
// проверяет число сегментов, обработчики обязаны защищаться сами.
func (d RequestDescriptor) Segment(i int) string {
	if i < 0 || i >= len(d.Remaining) {
		return ""
	}
	return d.Remaining[i]
}

// Param возвращает значение query-параметра либо пустую строку.
func (d RequestDescriptor) Param(key string) string {
	return d.Params[key]
}

// ParseRequestURI разбирает сырой URI в дескриптор. URI без ведущего '/'
// или без единого сегмента пути — ErrMalformedRequest. Процентное
// декодирование здесь не выполняется: оно откладывается до обработчиков,
// которым нужны зарезервированные символы пути.
func ParseRequestURI(raw string) (RequestDescriptor, error) {
	path := raw
	query := ""
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		path, query = raw[:i], raw[i+1:]
	}

	if !strings.HasPrefix(path, "/") {
		return RequestDescriptor{}, fmt.Errorf("%w: %q", models.ErrMalformedRequest, raw)
	}

	var fields []string
	for _, f := range strings.Split(path, "/") {
		if f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return RequestDescriptor{}, fmt.Errorf("%w: empty path in %q", models.ErrMalformedRequest, raw)
	}

	return RequestDescriptor{
		MappingPath: fields[0],
		Remaining:   fields[1:],
		Params:      parseQuery(query),
	}, nil
}

// parseQuery разбирает key=value&key=value; при дублях ключа побеждает
// последнее значение.
func parseQuery(query string) map[string]string {
	params := map[string]string{}
	if query == "" {
		return params
	}

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		if i := strings.IndexByte(pair, '='); i >= 0 {
			params[pair[:i]] = pair[i+1:]
		} else {
			params[pair] = ""
		}
	}
	return params
}

var reservedReplacer = strings.NewReplacer(
	"%2F", "/",
	"%3A", ":",
	"%3F", "?",
)

// HandleReservedCharacters возвращает path с восстановленными
// зарезервированными символами, которые транспорт не декодирует сам.
// Операция идемпотентна: подстановки не порождают новых эскейпов.
func HandleReservedCharacters(path string) string {
	return reservedReplacer.Replace(path)
}
