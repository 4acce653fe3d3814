package workerhttp

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/ycycse/alluxio/internal/models"
	"github.com/ycycse/alluxio/internal/ufs"
	"github.com/ycycse/alluxio/pkg/workerproto"
)

// listFiles возвращает статусы всех записей каталога path.
func (s *Server) listFiles(ctx context.Context, desc RequestDescriptor, _ []byte) (ResponseContext, error) {
	path, err := requirePath(desc)
	if err != nil {
		return ResponseContext{}, err
	}

	statuses, err := s.Ufs.ListStatus(ctx, path)
	if err != nil {
		log.Printf("failed to list files of path %s: %v", path, err)
		return ResponseContext{}, fmt.Errorf("%w: list %q: %v", models.ErrBackendIO, path, err)
	}

	entries := make([]models.FileEntry, 0, len(statuses))
	for _, st := range statuses {
		entries = append(entries, entryOf(st))
	}
	return jsonResponse(http.StatusOK, entries)
}

// requirePath достаёт обязательный параметр path и один раз восстанавливает
// зарезервированные символы.
func requirePath(desc RequestDescriptor) (string, error) {
	path := desc.Param(workerproto.ParamPath)
	if path == "" {
		return "", fmt.Errorf("%w: missing %q parameter", models.ErrMalformedRequest, workerproto.ParamPath)
	}
	return HandleReservedCharacters(path), nil
}

func entryOf(st ufs.FileStatus) models.FileEntry {
	entryType := models.EntryTypeFile
	if st.Folder {
		entryType = models.EntryTypeDirectory
	}
	return models.FileEntry{
		Type:               entryType,
		Name:               st.Name,
		Path:               st.Path,
		UfsPath:            st.UfsPath,
		LastModifiedMillis: st.LastModifiedMillis,
		Length:             st.Length,
	}
}
