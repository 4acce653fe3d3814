// Package loadsvc принимает загрузочные задания: обходит путь в UFS и
// переносит содержимое в страничный кеш в фоне. Сам HTTP-вызов /load
// синхронный и возвращает немедленное подтверждение.
package loadsvc

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ycycse/alluxio/internal/ufs"
	"github.com/ycycse/alluxio/internal/usecase/pagesvc"
)

// Service — узкий интерфейс load-коллаборатора, который видит HTTP-ядро.
type Service interface {
	Load(ctx context.Context, path string, opts Options) (string, error)
}

type Deps struct {
	Ufs     ufs.Client
	Pages   *pagesvc.Pages
	Workers int
}

// Loader управляет множеством джоб, по одной активной на путь.
type Loader struct {
	Deps

	mu   sync.Mutex
	jobs map[string]*job
}

// New конструирует сервис загрузки с заданными зависимостями.
func New(deps Deps) *Loader {
	if deps.Workers <= 0 {
		deps.Workers = 1
	}
	return &Loader{
		Deps: deps,
		jobs: map[string]*job{},
	}
}

var _ Service = (*Loader)(nil)

// Load выполняет операцию согласно opts.OpType: submit (дефолт) ставит
// фоновую джобу и сразу возвращает подтверждение, stop останавливает
// джобу пути, progress возвращает отчёт. Ошибку получает только вызов с
// заведомо неисполнимыми аргументами.
func (l *Loader) Load(ctx context.Context, path string, opts Options) (string, error) {
	switch opts.OpType {
	case OpTypeStop:
		return l.stop(path)
	case OpTypeProgress:
		return l.progress(path, opts)
	default:
		return l.submit(path, opts)
	}
}

func (l *Loader) submit(path string, opts Options) (string, error) {
	var filter *regexp.Regexp
	if opts.FileFilterRegx != "" {
		var err error
		filter, err = regexp.Compile(opts.FileFilterRegx)
		if err != nil {
			return "", fmt.Errorf("invalid fileFilterRegx %q: %w", opts.FileFilterRegx, err)
		}
	}

	l.mu.Lock()
	if existing, ok := l.jobs[path]; ok {
		if done, _ := existing.done(); !done {
			l.mu.Unlock()
			return fmt.Sprintf("Load job for path %s is already running: %s", path, existing.id), nil
		}
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	j := &job{
		id:      uuid.NewString(),
		path:    path,
		opts:    opts,
		started: time.Now(),
		cancel:  cancel,
		state:   JobRunning,
	}
	l.jobs[path] = j
	l.mu.Unlock()

	go l.run(jobCtx, j, filter)

	return fmt.Sprintf("Load job submitted: id=%s path=%s", j.id, path), nil
}

func (l *Loader) stop(path string) (string, error) {
	l.mu.Lock()
	j, ok := l.jobs[path]
	l.mu.Unlock()
	if !ok {
		return fmt.Sprintf("No load job found for path %s", path), nil
	}

	j.cancel()
	j.setState(JobStopped)
	return fmt.Sprintf("Load job stopped: id=%s path=%s", j.id, path), nil
}

func (l *Loader) progress(path string, opts Options) (string, error) {
	l.mu.Lock()
	j, ok := l.jobs[path]
	l.mu.Unlock()
	if !ok {
		return fmt.Sprintf("No load job found for path %s", path), nil
	}
	return j.progress(opts.ProgressFormat, opts.Verbose), nil
}

// run обходит дерево пути и переносит файлы в кеш воркерами errgroup.
func (l *Loader) run(ctx context.Context, j *job, filter *regexp.Regexp) {
	files, err := l.collect(ctx, j.path, j.opts.PartialListing)
	if err != nil {
		j.addFailure(err.Error())
		j.setState(JobFailed)
		log.Printf("load %s: listing failed: %v", j.path, err)
		return
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(l.Workers)

	for _, st := range files {
		st := st
		if filter != nil && !filter.MatchString(st.Path) {
			j.addSkipped()
			continue
		}

		eg.Go(func() error {
			if err := l.loadOne(egCtx, j, st); err != nil {
				j.addFailure(fmt.Sprintf("%s: %v", st.Path, err))
				if j.opts.Verbose {
					log.Printf("load %s: %v", st.Path, err)
				}
			}
			return egCtx.Err()
		})
	}

	err = eg.Wait()
	switch {
	case err != nil:
		j.setState(JobStopped)
	case j.failureCount() > 0:
		// Частичный провал — не успех: иначе отчёт без verbose его скроет.
		j.setState(JobFailed)
	default:
		j.setState(JobSucceeded)
	}
}

// collect собирает статусы файлов под path; каталоги обходятся
// рекурсивно, при partialListing берётся только верхний уровень.
func (l *Loader) collect(ctx context.Context, path string, partial bool) ([]ufs.FileStatus, error) {
	root, err := l.Ufs.GetStatus(ctx, path)
	if err != nil {
		return nil, err
	}
	if !root.Folder {
		return []ufs.FileStatus{root}, nil
	}

	var out []ufs.FileStatus
	queue := []string{path}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := l.Ufs.ListStatus(ctx, dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Folder {
				if !partial {
					queue = append(queue, e.Path)
				}
				continue
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// loadOne переносит один файл: регистрирует отображение id -> UFS-путь и,
// если требуется не только метаданные, читает файл постранично в кеш.
func (l *Loader) loadOne(ctx context.Context, j *job, st ufs.FileStatus) error {
	l.Pages.RegisterBacking(st.Path, st.Path)

	if j.opts.LoadMetadataOnly {
		j.addFile(0)
		return nil
	}
	if j.opts.SkipIfExists && l.Pages.HasPage(st.Path, 0) {
		j.addSkipped()
		return nil
	}

	pageSize := l.Pages.PageSize()
	reader, err := l.Ufs.OpenPositionRead(st.Path)
	if err != nil {
		return err
	}
	defer reader.Close()

	var copied int64
	buf := make([]byte, pageSize)
	for offset, index := int64(0), int64(0); offset < st.Length; offset, index = offset+pageSize, index+1 {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := reader.ReadAt(ctx, offset, buf)
		if err != nil {
			return err
		}
		if n <= 0 {
			break
		}
		if err := l.Pages.WritePage(ctx, st.Path, index, buf[:n]); err != nil {
			return err
		}
		copied += int64(n)
		throttle(ctx, j.opts.Bandwidth, int64(n))
	}

	if j.opts.Verify && copied != st.Length {
		return fmt.Errorf("verification failed: copied %d of %d bytes", copied, st.Length)
	}

	j.addFile(copied)
	return nil
}

// throttle грубо ограничивает скорость: после каждой страницы спим время,
// которое страница должна занимать при заданной полосе.
func throttle(ctx context.Context, bandwidth, n int64) {
	if bandwidth <= 0 || n <= 0 {
		return
	}
	d := time.Duration(float64(n) / float64(bandwidth) * float64(time.Second))
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
