package loadsvc

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ycycse/alluxio/internal/ufs"
	"github.com/ycycse/alluxio/internal/usecase/pagesvc"
)

func newLoader(t *testing.T) (*Loader, *pagesvc.Pages, string) {
	t.Helper()

	ufsRoot := t.TempDir()
	pages := pagesvc.New(pagesvc.Deps{PageDir: t.TempDir(), PageSize: 8})
	loader := New(Deps{
		Ufs:     ufs.NewLocal(ufsRoot),
		Pages:   pages,
		Workers: 2,
	})
	return loader, pages, ufsRoot
}

// waitDone опрашивает прогресс, пока джоба не покинет состояние RUNNING.
func waitDone(t *testing.T, l *Loader, path string) progressReport {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		out, err := l.Load(context.Background(), path, Options{
			OpType:         OpTypeProgress,
			ProgressFormat: ProgressFormatJSON,
		})
		if err != nil {
			t.Fatal(err)
		}

		var rep progressReport
		if err := json.Unmarshal([]byte(out), &rep); err != nil {
			t.Fatalf("progress is not JSON: %v (%q)", err, out)
		}
		if rep.State != JobRunning {
			return rep
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("load job did not finish")
	return progressReport{}
}

func Test_Load_SubmitCopiesPages(t *testing.T) {
	loader, pages, root := newLoader(t)

	// 20 байт при размере страницы 8 — три страницы.
	if err := os.WriteFile(filepath.Join(root, "data.bin"), []byte("01234567890123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := loader.Load(context.Background(), "/data.bin", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "submitted") {
		t.Fatalf("ack: %q", out)
	}

	rep := waitDone(t, loader, "/data.bin")
	if rep.State != JobSucceeded {
		t.Fatalf("state: %s (%+v)", rep.State, rep)
	}
	if rep.FilesLoaded != 1 || rep.BytesLoaded != 20 {
		t.Fatalf("report: %+v", rep)
	}

	for idx := int64(0); idx < 3; idx++ {
		if !pages.HasPage("/data.bin", idx) {
			t.Fatalf("page %d not cached", idx)
		}
	}
}

func Test_Load_DirectoryRecursive(t *testing.T) {
	loader, pages, root := newLoader(t)

	if err := os.MkdirAll(filepath.Join(root, "d", "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"d/a.txt":     "aaaa",
		"d/sub/b.txt": "bbbb",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(name)), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := loader.Load(context.Background(), "/d", DefaultOptions()); err != nil {
		t.Fatal(err)
	}

	rep := waitDone(t, loader, "/d")
	if rep.State != JobSucceeded || rep.FilesLoaded != 2 {
		t.Fatalf("report: %+v", rep)
	}
	if !pages.HasPage("/d/a.txt", 0) || !pages.HasPage("/d/sub/b.txt", 0) {
		t.Fatal("pages of nested files not cached")
	}
}

func Test_Load_FileFilter(t *testing.T) {
	loader, pages, root := newLoader(t)

	for _, name := range []string{"keep.txt", "drop.bin"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	opts := DefaultOptions()
	opts.FileFilterRegx = `\.txt$`
	if _, err := loader.Load(context.Background(), "/", opts); err != nil {
		t.Fatal(err)
	}

	rep := waitDone(t, loader, "/")
	if rep.FilesLoaded != 1 || rep.FilesSkip != 1 {
		t.Fatalf("report: %+v", rep)
	}
	if pages.HasPage("/drop.bin", 0) {
		t.Fatal("filtered file was loaded")
	}
	if !pages.HasPage("/keep.txt", 0) {
		t.Fatal("matching file was not loaded")
	}
}

func Test_Load_InvalidFilterIsError(t *testing.T) {
	loader, _, _ := newLoader(t)

	opts := DefaultOptions()
	opts.FileFilterRegx = "("
	if _, err := loader.Load(context.Background(), "/x", opts); err == nil {
		t.Fatal("invalid regexp must fail the call")
	}
}

func Test_Load_MetadataOnly(t *testing.T) {
	loader, pages, root := newLoader(t)

	if err := os.WriteFile(filepath.Join(root, "m.txt"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.LoadMetadataOnly = true
	if _, err := loader.Load(context.Background(), "/m.txt", opts); err != nil {
		t.Fatal(err)
	}

	rep := waitDone(t, loader, "/m.txt")
	if rep.State != JobSucceeded || rep.BytesLoaded != 0 {
		t.Fatalf("report: %+v", rep)
	}
	if pages.HasPage("/m.txt", 0) {
		t.Fatal("metadata-only load wrote pages")
	}
	// Отображение id -> путь зарегистрировано.
	if got, err := pages.BackingPath("/m.txt"); err != nil || got != "/m.txt" {
		t.Fatalf("backing: %q %v", got, err)
	}
}

func Test_Load_SkipIfExists(t *testing.T) {
	loader, pages, root := newLoader(t)

	if err := os.WriteFile(filepath.Join(root, "s.txt"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Нулевая страница уже в кеше: с skipIfExists файл не перечитывается.
	if err := pages.WritePage(context.Background(), "/s.txt", 0, []byte("old")); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.SkipIfExists = true
	if _, err := loader.Load(context.Background(), "/s.txt", opts); err != nil {
		t.Fatal(err)
	}

	rep := waitDone(t, loader, "/s.txt")
	if rep.State != JobSucceeded || rep.FilesSkip != 1 || rep.FilesLoaded != 0 {
		t.Fatalf("report: %+v", rep)
	}
	if rep.BytesLoaded != 0 {
		t.Fatalf("skipped file was re-read: %+v", rep)
	}
}

func Test_Load_PartialListingTopLevelOnly(t *testing.T) {
	loader, pages, root := newLoader(t)

	if err := os.MkdirAll(filepath.Join(root, "p", "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"p/top.txt", "p/sub/deep.txt"} {
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(name)), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	opts := DefaultOptions()
	opts.PartialListing = true
	if _, err := loader.Load(context.Background(), "/p", opts); err != nil {
		t.Fatal(err)
	}

	rep := waitDone(t, loader, "/p")
	if rep.State != JobSucceeded || rep.FilesLoaded != 1 {
		t.Fatalf("report: %+v", rep)
	}
	if !pages.HasPage("/p/top.txt", 0) {
		t.Fatal("top-level file not cached")
	}
	if pages.HasPage("/p/sub/deep.txt", 0) {
		t.Fatal("nested file cached despite partialListing")
	}
}

// inflatedStatus завышает длину файла поверх реального UFS: чтение отдаёт
// меньше байт, чем обещает статус.
type inflatedStatus struct {
	ufs.Client
	extra int64
}

func (c inflatedStatus) GetStatus(ctx context.Context, path string) (ufs.FileStatus, error) {
	st, err := c.Client.GetStatus(ctx, path)
	st.Length += c.extra
	return st, err
}

func Test_Load_VerifyMismatchFailsJob(t *testing.T) {
	root := t.TempDir()
	pages := pagesvc.New(pagesvc.Deps{PageDir: t.TempDir(), PageSize: 8})
	loader := New(Deps{
		Ufs:     inflatedStatus{ufs.NewLocal(root), 3},
		Pages:   pages,
		Workers: 2,
	})

	if err := os.WriteFile(filepath.Join(root, "v.txt"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.Verify = true
	if _, err := loader.Load(context.Background(), "/v.txt", opts); err != nil {
		t.Fatal(err)
	}

	rep := waitDone(t, loader, "/v.txt")
	if rep.State != JobFailed || rep.FilesFailed != 1 || rep.FilesLoaded != 0 {
		t.Fatalf("report: %+v", rep)
	}

	out, err := loader.Load(context.Background(), "/v.txt", Options{
		OpType:         OpTypeProgress,
		ProgressFormat: ProgressFormatJSON,
		Verbose:        true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "verification failed") {
		t.Fatalf("verbose progress: %q", out)
	}
}

func Test_Load_StopUnknownPath(t *testing.T) {
	loader, _, _ := newLoader(t)

	out, err := loader.Load(context.Background(), "/none", Options{OpType: OpTypeStop})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No load job found") {
		t.Fatalf("ack: %q", out)
	}
}

func Test_Load_ProgressText(t *testing.T) {
	loader, _, root := newLoader(t)

	if err := os.WriteFile(filepath.Join(root, "t.txt"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loader.Load(context.Background(), "/t.txt", DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	waitDone(t, loader, "/t.txt")

	out, err := loader.Load(context.Background(), "/t.txt", Options{
		OpType:         OpTypeProgress,
		ProgressFormat: ProgressFormatText,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "SUCCEEDED") {
		t.Fatalf("text progress: %q", out)
	}
}

func Test_OpTypeOf(t *testing.T) {
	cases := map[string]OpType{
		"submit":   OpTypeSubmit,
		"STOP":     OpTypeStop,
		"Progress": OpTypeProgress,
		"other":    OpTypeUnset,
		"":         OpTypeUnset,
	}
	for in, want := range cases {
		if got := OpTypeOf(in); got != want {
			t.Fatalf("OpTypeOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func Test_JobReaper_EvictsFinished(t *testing.T) {
	loader, _, root := newLoader(t)

	if err := os.WriteFile(filepath.Join(root, "r.txt"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loader.Load(context.Background(), "/r.txt", DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	waitDone(t, loader, "/r.txt")

	loader.reapOnce(time.Nanosecond)

	out, err := loader.Load(context.Background(), "/r.txt", Options{OpType: OpTypeProgress})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No load job found") {
		t.Fatalf("job survived the reaper: %q", out)
	}
}
