package workerhttp

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/ycycse/alluxio/internal/models"
)

// getFileStatus возвращает статус ровно одного файла, завёрнутый в
// одноэлементный массив: форма ответа совпадает с листингом, чтобы
// клиентам не различать эндпоинты.
func (s *Server) getFileStatus(ctx context.Context, desc RequestDescriptor, _ []byte) (ResponseContext, error) {
	path, err := requirePath(desc)
	if err != nil {
		return ResponseContext{}, err
	}

	st, err := s.Ufs.GetStatus(ctx, path)
	if err != nil {
		log.Printf("failed to get status of path %s: %v", path, err)
		return ResponseContext{}, fmt.Errorf("%w: status %q: %v", models.ErrBackendIO, path, err)
	}

	return jsonResponse(http.StatusOK, []models.FileEntry{entryOf(st)})
}
