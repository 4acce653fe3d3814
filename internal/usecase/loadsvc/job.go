package loadsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// JobState — состояние load-джобы.
type JobState string

const (
	JobRunning   JobState = "RUNNING"
	JobSucceeded JobState = "SUCCEEDED"
	JobFailed    JobState = "FAILED"
	JobStopped   JobState = "STOPPED"
)

// job отслеживает одну фоновую загрузку пути из UFS в страничный кеш.
type job struct {
	id      string
	path    string
	opts    Options
	started time.Time

	cancel context.CancelFunc

	mu          sync.Mutex
	state       JobState
	filesLoaded int64
	filesSkip   int64
	bytesLoaded int64
	failures    []string
	finished    time.Time
}

func (j *job) setState(s JobState) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state == JobRunning {
		j.state = s
		j.finished = time.Now()
	}
}

func (j *job) addFile(bytes int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.filesLoaded++
	j.bytesLoaded += bytes
}

func (j *job) addSkipped() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.filesSkip++
}

func (j *job) addFailure(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.failures = append(j.failures, msg)
}

func (j *job) failureCount() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return int64(len(j.failures))
}

// done сообщает, завершена ли джоба, и момент завершения.
func (j *job) done() (bool, time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state != JobRunning, j.finished
}

// progressReport пишет отчёт о прогрессе в заданном формате.
type progressReport struct {
	JobID       string   `json:"job_id"`
	Path        string   `json:"path"`
	State       JobState `json:"state"`
	FilesLoaded int64    `json:"files_loaded"`
	FilesSkip   int64    `json:"files_skipped"`
	FilesFailed int64    `json:"files_failed"`
	BytesLoaded int64    `json:"bytes_loaded"`
	Failures    []string `json:"failures,omitempty"`
}

func (j *job) progress(format string, verbose bool) string {
	j.mu.Lock()
	rep := progressReport{
		JobID:       j.id,
		Path:        j.path,
		State:       j.state,
		FilesLoaded: j.filesLoaded,
		FilesSkip:   j.filesSkip,
		FilesFailed: int64(len(j.failures)),
		BytesLoaded: j.bytesLoaded,
	}
	if verbose {
		rep.Failures = append([]string{}, j.failures...)
	}
	j.mu.Unlock()

	if format == ProgressFormatJSON {
		b, err := json.Marshal(rep)
		if err != nil {
			return fmt.Sprintf("failed to render progress: %v", err)
		}
		return string(b)
	}

	s := fmt.Sprintf("Job %s for path %s is %s: %d file(s) loaded, %d skipped, %d failed, %d byte(s)",
		rep.JobID, rep.Path, rep.State, rep.FilesLoaded, rep.FilesSkip, rep.FilesFailed, rep.BytesLoaded)
	if verbose && len(rep.Failures) > 0 {
		for _, f := range rep.Failures {
			s += "\n  failure: " + f
		}
	}
	return s
}
