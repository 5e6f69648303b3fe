package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/yt-grabber/internal/acquire"
	"github.com/ytget/yt-grabber/internal/model"
)

// Parallelism limits
const (
	MinParallelDownloads = 1
	MaxParallelDownloads = 10
)

// TaskIDPrefix prefixes every generated task ID
const TaskIDPrefix = "task-"

// Service errors
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskDuplicate = errors.New("task already exists")
	ErrTaskActive    = errors.New("task is still active")
	ErrTaskInactive  = errors.New("task is not active")
)

// Service handles download operations
type Service struct {
	runner  Runner
	metrics *Metrics

	tasks       map[string]*model.DownloadTask
	order       []string
	cancels     map[string]context.CancelFunc
	tasksMutex  sync.RWMutex
	maxParallel int
	activeCount int
	pending     sync.WaitGroup

	callbackMutex sync.RWMutex
	onUpdate      func(*model.DownloadTask) // callback for UI updates
}

// NewService creates a new download service
func NewService(runner Runner, maxParallel int) *Service {
	return &Service{
		runner:      runner,
		tasks:       make(map[string]*model.DownloadTask),
		cancels:     make(map[string]context.CancelFunc),
		maxParallel: clampParallel(maxParallel),
	}
}

// SetUpdateCallback sets the callback function for task updates. The callback
// receives a copy of the task and may run on any goroutine.
func (s *Service) SetUpdateCallback(callback func(*model.DownloadTask)) {
	s.callbackMutex.Lock()
	s.onUpdate = callback
	s.callbackMutex.Unlock()
}

// SetMetrics records task outcomes into m. Call it before queueing tasks.
func (s *Service) SetMetrics(m *Metrics) {
	s.tasksMutex.Lock()
	s.metrics = m
	s.tasksMutex.Unlock()
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Service) SetMaxParallelDownloads(max int) {
	s.tasksMutex.Lock()
	s.maxParallel = clampParallel(max)
	started := s.startPendingLocked()
	s.tasksMutex.Unlock()

	s.launch(started)
}

// AddTask queues an acquisition of identifier
func (s *Service) AddTask(identifier string, audioOnly bool) (*model.DownloadTask, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier is empty", acquire.ErrInvalidInput)
	}

	s.tasksMutex.Lock()
	for _, task := range s.tasks {
		if task.Identifier == identifier && task.AudioOnly == audioOnly && !task.Status.IsFinished() {
			s.tasksMutex.Unlock()
			return nil, fmt.Errorf("%w for %s (%s)", ErrTaskDuplicate, identifier, task.Mode())
		}
	}

	task := &model.DownloadTask{
		ID:         generateTaskID(),
		Identifier: identifier,
		AudioOnly:  audioOnly,
		Status:     model.TaskStatusPending,
		Stage:      model.StageIdle,
		StartedAt:  time.Now(),
	}
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	s.pending.Add(1)

	started := s.startPendingLocked()
	snapshot := task.Snapshot()
	s.tasksMutex.Unlock()

	if snapshot.Status == model.TaskStatusPending {
		s.notifyUpdate(&snapshot)
	}
	s.launch(started)
	return &snapshot, nil
}

// AddBatch queues every identifier of a comma or whitespace separated list.
// Tasks that could be queued are returned even when others were rejected.
func (s *Service) AddBatch(input string, audioOnly bool) ([]*model.DownloadTask, error) {
	identifiers := SplitIdentifiers(input)
	if len(identifiers) == 0 {
		return nil, fmt.Errorf("%w: no identifiers given", acquire.ErrInvalidInput)
	}

	var (
		added []*model.DownloadTask
		errs  []error
	)
	for _, identifier := range identifiers {
		task, err := s.AddTask(identifier, audioOnly)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		added = append(added, task)
	}
	return added, errors.Join(errs...)
}

// SplitIdentifiers splits a comma or whitespace separated list, dropping blanks
func SplitIdentifiers(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// GetTask returns a copy of the task with the given ID
func (s *Service) GetTask(id string) (*model.DownloadTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, false
	}
	snapshot := task.Snapshot()
	return &snapshot, true
}

// GetAllTasks returns copies of all tasks in the order they were added
func (s *Service) GetAllTasks() []*model.DownloadTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.DownloadTask, 0, len(s.order))
	for _, id := range s.order {
		snapshot := s.tasks[id].Snapshot()
		tasks = append(tasks, &snapshot)
	}
	return tasks
}

// StopTask stops a pending or running task
func (s *Service) StopTask(id string) error {
	s.tasksMutex.Lock()

	task, exists := s.tasks[id]
	if !exists {
		s.tasksMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	switch {
	case task.Status == model.TaskStatusPending:
		task.Status = model.TaskStatusStopped
		task.FinishedAt = time.Now()
		s.pending.Done()
	case task.Status.IsActive():
		task.Status = model.TaskStatusStopping
		if cancel, ok := s.cancels[id]; ok {
			cancel()
		}
	default:
		s.tasksMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskInactive, task.Status)
	}

	snapshot := task.Snapshot()
	s.tasksMutex.Unlock()

	s.notifyUpdate(&snapshot)
	return nil
}

// RemoveTask forgets a finished task
func (s *Service) RemoveTask(id string) error {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if !task.Status.IsFinished() {
		return fmt.Errorf("%w: %s", ErrTaskActive, task.Status)
	}

	delete(s.tasks, id)
	for i, queued := range s.order {
		if queued == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Wait blocks until every queued task has finished
func (s *Service) Wait() {
	s.pending.Wait()
}

// StopAll stops every pending and running task. Pending tasks go first so
// that freed capacity does not launch them.
func (s *Service) StopAll() {
	tasks := s.GetAllTasks()
	for _, pass := range []func(model.TaskStatus) bool{
		func(st model.TaskStatus) bool { return st == model.TaskStatusPending },
		model.TaskStatus.IsActive,
	} {
		for _, task := range tasks {
			if !pass(task.Status) {
				continue
			}
			if err := s.StopTask(task.ID); err != nil && !errors.Is(err, ErrTaskInactive) {
				log.Printf("failed to stop task %s: %v", task.ID, err)
			}
		}
	}
}

// launchItem is a task moved to Starting that still needs its goroutine
type launchItem struct {
	ctx      context.Context
	task     *model.DownloadTask
	snapshot model.DownloadTask
}

// startPendingLocked moves pending tasks to Starting in queue order while
// capacity remains. Callers hold tasksMutex and pass the result to launch
// after unlocking.
func (s *Service) startPendingLocked() []launchItem {
	var started []launchItem
	for _, id := range s.order {
		if s.activeCount >= s.maxParallel {
			break
		}
		task := s.tasks[id]
		if task.Status != model.TaskStatusPending {
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		s.cancels[id] = cancel
		s.activeCount++
		task.Status = model.TaskStatusStarting
		started = append(started, launchItem{ctx: ctx, task: task, snapshot: task.Snapshot()})
	}
	return started
}

// launch announces the started tasks and runs each on its own goroutine
func (s *Service) launch(items []launchItem) {
	for i := range items {
		s.notifyUpdate(&items[i].snapshot)
		go s.runTask(items[i].ctx, items[i].task)
	}
}

// runTask performs the acquisition of one task
func (s *Service) runTask(ctx context.Context, task *model.DownloadTask) {
	s.tasksMutex.Lock()
	if task.Status == model.TaskStatusStarting {
		task.Status = model.TaskStatusDownloading
	}
	identifier, audioOnly := task.Identifier, task.AudioOnly
	metrics := s.metrics
	snapshot := task.Snapshot()
	s.tasksMutex.Unlock()
	s.notifyUpdate(&snapshot)

	begin := time.Now()
	metrics.started()

	outputPath, err := s.runner.Run(ctx, acquire.Request{
		Identifier: identifier,
		AudioOnly:  audioOnly,
		OnProgress: func(fraction float64) {
			s.updateTask(task, func(t *model.DownloadTask) {
				t.Progress = fraction
				t.Percent = int(fraction * 100)
			})
		},
		OnStage: func(stage model.Stage) {
			s.updateTask(task, func(t *model.DownloadTask) {
				t.Stage = stage
			})
		},
	})

	s.tasksMutex.Lock()
	if cancel, ok := s.cancels[task.ID]; ok {
		cancel()
		delete(s.cancels, task.ID)
	}
	s.activeCount--

	switch {
	case err != nil && task.Status == model.TaskStatusStopping:
		task.Status = model.TaskStatusStopped
	case err != nil:
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
		task.ErrorKind = acquire.KindOf(err).String()
		log.Printf("task %s (%s) failed: %v", task.ID, identifier, err)
	default:
		task.Status = model.TaskStatusCompleted
		task.Stage = model.StageDone
		task.Progress = 1.0
		task.Percent = 100
		task.OutputPath = outputPath
	}
	task.FinishedAt = time.Now()
	metrics.finished(task, task.FinishedAt.Sub(begin))
	snapshot = task.Snapshot()

	started := s.startPendingLocked()
	s.tasksMutex.Unlock()

	s.notifyUpdate(&snapshot)
	s.launch(started)
	s.pending.Done()
}

func (s *Service) updateTask(task *model.DownloadTask, mutate func(*model.DownloadTask)) {
	s.tasksMutex.Lock()
	mutate(task)
	snapshot := task.Snapshot()
	s.tasksMutex.Unlock()

	s.notifyUpdate(&snapshot)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.DownloadTask) {
	s.callbackMutex.RLock()
	callback := s.onUpdate
	s.callbackMutex.RUnlock()

	if callback != nil {
		callback(task)
	}
}

func clampParallel(n int) int {
	return min(max(n, MinParallelDownloads), MaxParallelDownloads)
}

// generateTaskID generates a unique task ID using UUID v7 for better uniqueness and time ordering
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
