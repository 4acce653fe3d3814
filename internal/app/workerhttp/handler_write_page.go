package workerhttp

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/ycycse/alluxio/internal/models"
)

// Сообщения в теле исхода записи страницы.
const (
	msgMissingBody  = "The HTTP request doesn't have body content"
	msgWriteFailure = "Failed to write page"
	msgWriteSuccess = "Page written successfully"
)

// writePage записывает тело запроса как страницу кеша. Запись никогда не
// роняет HTTP-обмен: сбои коллаборатора и отсутствие тела сообщаются
// внутри WriteOutcome при статусе 200. Эта асимметрия с чтением —
// намеренный контракт клиентов, её нельзя «чинить».
func (s *Server) writePage(ctx context.Context, desc RequestDescriptor, body []byte) (ResponseContext, error) {
	fileID := desc.Segment(0)
	pageStr := desc.Segment(2)
	if fileID == "" || pageStr == "" {
		return ResponseContext{}, fmt.Errorf("%w: expected /file/{id}/page/{index}", models.ErrMalformedRequest)
	}
	pageIndex, err := strconv.ParseInt(pageStr, 10, 64)
	if err != nil {
		return ResponseContext{}, fmt.Errorf("%w: bad page index %q", models.ErrMalformedRequest, pageStr)
	}

	if len(body) == 0 {
		return jsonResponse(http.StatusOK, models.WriteOutcome{
			Success: false,
			Message: msgMissingBody,
		})
	}

	if err := s.Pages.WritePage(ctx, fileID, pageIndex, body); err != nil {
		log.Printf("failed to write page: fileId=%s pageIndex=%d: %v", fileID, pageIndex, err)
		return jsonResponse(http.StatusOK, models.WriteOutcome{
			Success: false,
			Message: msgWriteFailure,
		})
	}

	return jsonResponse(http.StatusOK, models.WriteOutcome{
		Success: true,
		Message: msgWriteSuccess,
	})
}
