package workerhttp

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/ycycse/alluxio/pkg/httperrors"
	"github.com/ycycse/alluxio/pkg/workerproto"
)

// Имена заголовков, которыми оперирует насос соединения.
const (
	headerContentType   = "Content-Type"
	headerContentLength = "Content-Length"
	headerConnection    = "Connection"
)

// ResponseContext связывает статус и заголовки ответа либо с полностью
// буферизованным телом, либо с полезной нагрузкой, отправляемой потоком
// после заголовков. Content-Type и Content-Length выставлены всегда до
// передачи насосу соединения.
type ResponseContext struct {
	Status  int
	Headers map[string]string

	buffered bool
	body     []byte
}

// NewBufferedResponse создаёт полностью буферизованный ответ.
func NewBufferedResponse(status int, contentType string, body []byte) ResponseContext {
	return ResponseContext{
		Status: status,
		Headers: map[string]string{
			headerContentType:   contentType,
			headerContentLength: strconv.Itoa(len(body)),
		},
		buffered: true,
		body:     body,
	}
}

// NewStreamedResponse создаёт ответ, тело которого пишется после
// заголовков отдельным куском. Content-Length равен фактической длине
// полезной нагрузки.
func NewStreamedResponse(status int, contentType string, payload []byte) ResponseContext {
	return ResponseContext{
		Status: status,
		Headers: map[string]string{
			headerContentType:   contentType,
			headerContentLength: strconv.Itoa(len(payload)),
		},
		buffered: false,
		body:     payload,
	}
}

// Buffered сообщает, буферизован ли ответ целиком.
func (r ResponseContext) Buffered() bool { return r.buffered }

// Payload возвращает тело либо потоковую полезную нагрузку.
func (r ResponseContext) Payload() []byte { return r.body }

// headerNames возвращает имена заголовков в стабильном порядке записи:
// сперва Content-Type и Content-Length, затем остальные по алфавиту.
func (r ResponseContext) headerNames() []string {
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		if name == headerContentType || name == headerContentLength {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	ordered := make([]string, 0, len(r.Headers))
	if _, ok := r.Headers[headerContentType]; ok {
		ordered = append(ordered, headerContentType)
	}
	if _, ok := r.Headers[headerContentLength]; ok {
		ordered = append(ordered, headerContentLength)
	}
	return append(ordered, names...)
}

// errorBody — структурированное тело ответа об ошибке.
type errorBody struct {
	Error string `json:"error"`
}

// errorResponse строит ответ для ошибки из таксономии: ни один запрос не
// молчит, у каждой документированной ошибки стабильный статус и читаемое
// сообщение.
func errorResponse(err error) ResponseContext {
	body, marshalErr := json.Marshal(errorBody{Error: err.Error()})
	if marshalErr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	return NewBufferedResponse(httperrors.Status(err), workerproto.ContentTypeJSON, body)
}

// jsonResponse сериализует v в буферизованный JSON-ответ.
func jsonResponse(status int, v any) (ResponseContext, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return ResponseContext{}, err
	}
	return NewBufferedResponse(status, workerproto.ContentTypeJSON, body), nil
}

// textResponse строит буферизованный text/plain ответ.
func textResponse(status int, body string) ResponseContext {
	return NewBufferedResponse(status, workerproto.ContentTypeText, []byte(body))
}
