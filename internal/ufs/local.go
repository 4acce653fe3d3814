package ufs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ycycse/alluxio/internal/models"
)

// Local обслуживает запросы поверх локального диска. Логические пути API
// отображаются в файлы относительно root.
type Local struct {
	root string
}

// NewLocal создаёт клиента поверх каталога root.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

var _ Client = (*Local)(nil)

// resolve переводит логический путь в путь на диске. Абсолютные логические
// пути трактуются относительно root.
func (l *Local) resolve(path string) string {
	if l.root == "" {
		return path
	}
	return filepath.Join(l.root, filepath.FromSlash(path))
}

// ListStatus возвращает статусы всех записей каталога path.
func (l *Local) ListStatus(ctx context.Context, path string) ([]FileStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := l.resolve(path)
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("%w: list %q: %v", models.ErrBackendIO, path, err)
	}

	statuses := make([]FileStatus, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("%w: stat %q: %v", models.ErrBackendIO, e.Name(), err)
		}
		statuses = append(statuses, statusOf(joinLogical(path, e.Name()), filepath.Join(full, e.Name()), info))
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses, nil
}

// GetStatus возвращает статус ровно одного файла или каталога.
func (l *Local) GetStatus(ctx context.Context, path string) (FileStatus, error) {
	if err := ctx.Err(); err != nil {
		return FileStatus{}, err
	}

	full := l.resolve(path)
	info, err := os.Stat(full)
	if err != nil {
		return FileStatus{}, fmt.Errorf("%w: stat %q: %v", models.ErrBackendIO, path, err)
	}
	return statusOf(path, full, info), nil
}

// OpenPositionRead открывает позиционного читателя файла path.
// Отсутствующий файл не ошибка открытия: читатель сообщит об этом при
// первом чтении, как того требует контракт страниц.
func (l *Local) OpenPositionRead(path string) (PositionReader, error) {
	return &localReader{path: l.resolve(path)}, nil
}

func statusOf(logical, backing string, info os.FileInfo) FileStatus {
	typeName := info.Name()
	if typeName == "" {
		typeName = filepath.Base(backing)
	}
	return FileStatus{
		Name:               typeName,
		Path:               logical,
		UfsPath:            backing,
		Folder:             info.IsDir(),
		LastModifiedMillis: info.ModTime().UnixMilli(),
		Length:             info.Size(),
	}
}

func joinLogical(dir, name string) string {
	if dir == "" || dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}

// localReader лениво открывает файл и читает через ReadAt.
type localReader struct {
	path string
	f    *os.File
}

// ReadAt читает len(buf) байт со смещения offset. На конце файла вернёт
// меньше запрошенного; отсутствие файла — сигнальная длина -1.
func (r *localReader) ReadAt(ctx context.Context, offset int64, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if r.f == nil {
		f, err := os.Open(r.path)
		if err != nil {
			if os.IsNotExist(err) {
				return -1, fmt.Errorf("%w: %q", models.ErrPageNotFound, r.path)
			}
			return 0, fmt.Errorf("%w: open %q: %v", models.ErrBackendIO, r.path, err)
		}
		r.f = f
	}

	n, err := r.f.ReadAt(buf, offset)
	if err == io.EOF {
		if n == 0 && offset > 0 {
			// Чтение целиком за границей файла — диапазон недоступен.
			return -1, fmt.Errorf("%w: %q offset %d", models.ErrPageNotFound, r.path, offset)
		}
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("%w: read %q: %v", models.ErrBackendIO, r.path, err)
	}
	return n, nil
}

// Close закрывает нижележащий файл, если он был открыт.
func (r *localReader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
