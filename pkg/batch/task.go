package batch

import (
	"time"

	"github.com/sdejongh/sidediff/pkg/models"
)

// TaskStatus represents the state of a file task
type TaskStatus string

const (
	// TaskPending indicates the task is waiting for a worker
	TaskPending TaskStatus = "pending"
	// TaskProcessing indicates a worker is comparing the file
	TaskProcessing TaskStatus = "processing"
	// TaskCompleted indicates the comparison finished, whatever its outcome
	TaskCompleted TaskStatus = "completed"
	// TaskSkipped indicates the batch was cancelled before the task ran
	TaskSkipped TaskStatus = "skipped"
)

// fileTask is one path to compare
type fileTask struct {
	path    string
	status  TaskStatus
	started time.Time
	result  models.FileResult
}

func newFileTask(path string) *fileTask {
	return &fileTask{path: path, status: TaskPending}
}

func (t *fileTask) markProcessing() {
	t.status = TaskProcessing
	t.started = time.Now()
}

func (t *fileTask) complete(res models.FileResult) {
	res.Path = t.path
	res.Duration = time.Since(t.started)
	t.result = res
	t.status = TaskCompleted
}

// fail records a comparison that could not be carried out
func (t *fileTask) fail(err error) {
	t.complete(models.FileResult{Status: models.FileFailed, Error: err.Error()})
}
