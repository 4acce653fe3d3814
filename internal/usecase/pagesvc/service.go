// Package pagesvc реализует страничный кеш воркера: запись страниц на
// локальный диск, размер страницы и отображение идентификатора файла в
// путь нижележащего хранилища.
package pagesvc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ycycse/alluxio/internal/models"
)

// Service — узкий интерфейс страничного кеша, который потребляет HTTP-ядро.
type Service interface {
	PageSize() int64
	WritePage(ctx context.Context, fileID string, pageIndex int64, data []byte) error
	BackingPath(fileID string) (string, error)
}

type Deps struct {
	PageDir  string
	PageSize int64
}

// Pages хранит страницы в каталогах pageDir/<fileID>/page_<idx> и ведёт
// реестр соответствия fileID -> путь в UFS.
type Pages struct {
	Deps

	mu      sync.RWMutex
	backing map[string]string
}

// New конструирует сервис страниц.
func New(deps Deps) *Pages {
	return &Pages{
		Deps:    deps,
		backing: map[string]string{},
	}
}

var _ Service = (*Pages)(nil)

// PageSize возвращает фиксированный размер страницы кеша.
func (p *Pages) PageSize() int64 {
	return p.Deps.PageSize
}

// WritePage сохраняет содержимое страницы на диск, перезаписывая
// существующую страницу целиком.
func (p *Pages) WritePage(ctx context.Context, fileID string, pageIndex int64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pageIndex < 0 {
		return fmt.Errorf("page index must be non-negative, got %d", pageIndex)
	}

	dir := filepath.Join(p.PageDir, sanitizeID(fileID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir for %q: %v", models.ErrBackendIO, fileID, err)
	}

	page := filepath.Join(dir, fmt.Sprintf("page_%d", pageIndex))
	if err := os.WriteFile(page, data, 0o644); err != nil {
		return fmt.Errorf("%w: write page %d of %q: %v", models.ErrBackendIO, pageIndex, fileID, err)
	}
	return nil
}

// HasPage сообщает, есть ли страница pageIndex файла fileID в кеше.
func (p *Pages) HasPage(fileID string, pageIndex int64) bool {
	page := filepath.Join(p.PageDir, sanitizeID(fileID), fmt.Sprintf("page_%d", pageIndex))
	_, err := os.Stat(page)
	return err == nil
}

// RegisterBacking связывает идентификатор файла с путём в UFS. Повторная
// регистрация заменяет прежний путь.
func (p *Pages) RegisterBacking(fileID, ufsPath string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.backing[fileID] = ufsPath
}

// BackingPath возвращает путь в UFS для идентификатора файла. Для
// незарегистрированных идентификаторов сам идентификатор трактуется как
// логический путь.
func (p *Pages) BackingPath(fileID string) (string, error) {
	if fileID == "" {
		return "", fmt.Errorf("%w: empty file id", models.ErrMalformedRequest)
	}

	p.mu.RLock()
	path, ok := p.backing[fileID]
	p.mu.RUnlock()
	if ok {
		return path, nil
	}
	return fileID, nil
}

// sanitizeID приводит идентификатор к безопасному имени каталога.
func sanitizeID(fileID string) string {
	replacer := strings.NewReplacer("/", "_", ":", "_", "\\", "_", "..", "_")
	out := replacer.Replace(fileID)
	if out == "" {
		out = "_"
	}
	return out
}
