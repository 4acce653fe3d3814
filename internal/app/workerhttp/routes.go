package workerhttp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ycycse/alluxio/internal/models"
)

// Mapping-path токены API воркера.
const (
	mappingFile   = "file"
	mappingFiles  = "files"
	mappingInfo   = "info"
	mappingLoad   = "load"
	mappingHealth = "health"
)

// Request — один распознанный запрос, как его видит диспетчер: метод,
// сырой URI и полностью прочитанное тело (nil, если тела не было).
type Request struct {
	Method string
	URI    string
	Body   []byte
}

type handlerFunc func(ctx context.Context, desc RequestDescriptor, body []byte) (ResponseContext, error)

type routeKey struct {
	method      string
	mappingPath string
}

// buildRoutes собирает явную таблицу (метод, mapping-path) -> обработчик.
// Таблица вычисляется один раз при конструировании сервера; промах по ней
// даёт детерминированный ответ об ошибке, а не молчание.
func (s *Server) buildRoutes() map[routeKey]handlerFunc {
	return map[routeKey]handlerFunc{
		{http.MethodGet, mappingFile}:   s.getPage,
		{http.MethodGet, mappingFiles}:  s.listFiles,
		{http.MethodGet, mappingInfo}:   s.getFileStatus,
		{http.MethodGet, mappingLoad}:   s.load,
		{http.MethodGet, mappingHealth}: s.healthCheck,
		{http.MethodPost, mappingFile}:  s.writePage,
		{http.MethodPut, mappingFile}:   s.writePage,
	}
}

// Dispatch превращает запрос в ответ. Ошибки парсера и маршрутизации
// перехватываются здесь и становятся структурированными ответами; до
// закрывающего соединение пути они не доходят.
func (s *Server) Dispatch(ctx context.Context, req Request) ResponseContext {
	desc, err := ParseRequestURI(req.URI)
	if err != nil {
		return errorResponse(err)
	}

	handler, ok := s.routes[routeKey{req.Method, desc.MappingPath}]
	if !ok {
		return errorResponse(fmt.Errorf("%w: %s /%s", models.ErrUnmatchedRoute, req.Method, desc.MappingPath))
	}

	resp, err := handler(ctx, desc, req.Body)
	if err != nil {
		return errorResponse(err)
	}
	return resp
}
