package download

import (
	"context"

	"github.com/ytget/yt-grabber/internal/acquire"
	"github.com/ytget/yt-grabber/internal/model"
)

// Runner executes one acquisition. *acquire.Workflow implements it.
type Runner interface {
	Run(ctx context.Context, req acquire.Request) (string, error)
}

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(*model.DownloadTask))
	AddTask(identifier string, audioOnly bool) (*model.DownloadTask, error)
	AddBatch(input string, audioOnly bool) ([]*model.DownloadTask, error)
	GetTask(id string) (*model.DownloadTask, bool)
	GetAllTasks() []*model.DownloadTask
	StopTask(id string) error
	RemoveTask(id string) error

	// SetMaxParallelDownloads sets the maximum number of parallel downloads
	SetMaxParallelDownloads(max int)

	// Wait blocks until every queued task has finished
	Wait()
}

var (
	_ Runner     = (*acquire.Workflow)(nil)
	_ Downloader = (*Service)(nil)
)
