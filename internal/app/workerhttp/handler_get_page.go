package workerhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ycycse/alluxio/internal/metrics"
	"github.com/ycycse/alluxio/internal/models"
	"github.com/ycycse/alluxio/pkg/workerproto"
)

// getPage читает диапазон байт страницы позиционным чтением из UFS.
// offset по умолчанию 0; length без явного значения — остаток страницы
// фиксированного размера. Ответ потоковый, Content-Length равен числу
// фактически прочитанных байт (на конце файла их может быть меньше
// запрошенного).
func (s *Server) getPage(ctx context.Context, desc RequestDescriptor, _ []byte) (ResponseContext, error) {
	fileID := desc.Segment(0)
	pageStr := desc.Segment(2)
	if fileID == "" || pageStr == "" {
		return ResponseContext{}, fmt.Errorf("%w: expected /file/{id}/page/{index}", models.ErrMalformedRequest)
	}
	pageIndex, err := strconv.ParseInt(pageStr, 10, 64)
	if err != nil {
		return ResponseContext{}, fmt.Errorf("%w: bad page index %q", models.ErrMalformedRequest, pageStr)
	}

	offset, length, err := s.readRange(desc)
	if err != nil {
		return ResponseContext{}, err
	}
	s.Metrics.Inc(metrics.WorkerBytesRequested, length)

	backing, err := s.Pages.BackingPath(fileID)
	if err != nil {
		return ResponseContext{}, err
	}

	reader, err := s.Ufs.OpenPositionRead(backing)
	if err != nil {
		return ResponseContext{}, fmt.Errorf("%w: open %q: %v", models.ErrBackendIO, backing, err)
	}
	defer reader.Close()

	buf := make([]byte, length)
	n, err := reader.ReadAt(ctx, offset, buf)
	if n == -1 || errors.Is(err, models.ErrPageNotFound) {
		// Отличимая от прочих сбоев ошибка: клиент может опрашивать
		// доступность страницы.
		return ResponseContext{}, fmt.Errorf("%w: fileId %s, pageIndex %d", models.ErrPageNotFound, fileID, pageIndex)
	}
	if err != nil {
		return ResponseContext{}, fmt.Errorf("%w: read fileId %s, pageIndex %d: %v", models.ErrBackendIO, fileID, pageIndex, err)
	}

	s.Metrics.Inc(metrics.WorkerBytesReadCache, length)
	return NewStreamedResponse(http.StatusOK, workerproto.ContentTypeText, buf[:n]), nil
}

// readRange вычисляет (offset, length) чтения из query-параметров.
// Оба отсутствуют — читается страница целиком; задан только offset —
// остаток страницы от него.
func (s *Server) readRange(desc RequestDescriptor) (int64, int64, error) {
	offset := int64(0)
	length := s.Pages.PageSize()

	if v := desc.Param(workerproto.ParamOffset); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("%w: bad offset %q", models.ErrMalformedRequest, v)
		}
		offset = parsed

		if lv := desc.Param(workerproto.ParamLength); lv != "" {
			parsed, err := strconv.ParseInt(lv, 10, 64)
			if err != nil || parsed < 0 {
				return 0, 0, fmt.Errorf("%w: bad length %q", models.ErrMalformedRequest, lv)
			}
			length = parsed
		} else {
			length -= offset
		}
	}

	if length < 0 {
		return 0, 0, fmt.Errorf("%w: offset %d beyond page size", models.ErrMalformedRequest, offset)
	}
	// Диапазон не выходит за страницу: length задаёт размер буфера чтения,
	// и без верхней границы один запрос мог бы запросить аллокацию
	// произвольного размера.
	if length > s.Pages.PageSize()-offset {
		return 0, 0, fmt.Errorf("%w: range [%d, %d) exceeds page size %d", models.ErrMalformedRequest, offset, offset+length, s.Pages.PageSize())
	}
	return offset, length, nil
}
