package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-grabber/internal/acquire"
	"github.com/ytget/yt-grabber/internal/config"
	"github.com/ytget/yt-grabber/internal/download"
	"github.com/ytget/yt-grabber/internal/model"
)

// fakeDownloader keeps tasks in memory; tests move them through states with set
type fakeDownloader struct {
	mu          sync.Mutex
	tasks       map[string]*model.DownloadTask
	order       []string
	onUpdate    func(*model.DownloadTask)
	maxParallel int
	stopped     []string
	nextID      int
}

func newFakeDownloader() *fakeDownloader {
	return &fakeDownloader{tasks: make(map[string]*model.DownloadTask)}
}

func (f *fakeDownloader) SetUpdateCallback(cb func(*model.DownloadTask)) { f.onUpdate = cb }

func (f *fakeDownloader) AddTask(identifier string, audioOnly bool) (*model.DownloadTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.Identifier == identifier && t.AudioOnly == audioOnly && !t.Status.IsFinished() {
			return nil, fmt.Errorf("%w for %s", download.ErrTaskDuplicate, identifier)
		}
	}
	f.nextID++
	task := &model.DownloadTask{
		ID:         fmt.Sprintf("t%d", f.nextID),
		Identifier: identifier,
		AudioOnly:  audioOnly,
		Status:     model.TaskStatusPending,
		Stage:      model.StageIdle,
	}
	f.tasks[task.ID] = task
	f.order = append(f.order, task.ID)
	snapshot := *task
	return &snapshot, nil
}

func (f *fakeDownloader) AddBatch(input string, audioOnly bool) ([]*model.DownloadTask, error) {
	var (
		added []*model.DownloadTask
		errs  []error
	)
	for _, id := range download.SplitIdentifiers(input) {
		task, err := f.AddTask(id, audioOnly)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		added = append(added, task)
	}
	return added, errors.Join(errs...)
}

func (f *fakeDownloader) GetTask(id string) (*model.DownloadTask, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

func (f *fakeDownloader) GetAllTasks() []*model.DownloadTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.DownloadTask, 0, len(f.order))
	for _, id := range f.order {
		snapshot := *f.tasks[id]
		out = append(out, &snapshot)
	}
	return out
}

func (f *fakeDownloader) StopTask(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeDownloader) RemoveTask(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tasks[id].Status.IsFinished() {
		return download.ErrTaskActive
	}
	delete(f.tasks, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeDownloader) SetMaxParallelDownloads(n int) { f.maxParallel = n }

func (f *fakeDownloader) Wait() {}

func (f *fakeDownloader) set(id string, mutate func(*model.DownloadTask)) {
	f.mu.Lock()
	mutate(f.tasks[id])
	f.mu.Unlock()
}

type fakeExpander struct {
	playlist *model.Playlist
	err      error
}

func (f *fakeExpander) ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	return f.playlist, f.err
}

func newTestRoot(t *testing.T, playlists PlaylistExpander) (*RootUI, *fakeDownloader, *config.Settings) {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)

	window := test.NewWindow(nil)
	t.Cleanup(window.Close)

	settings := config.NewSettings(app)
	svc := newFakeDownloader()
	ui := NewRootUI(window, settings, svc, playlists, nil)
	ui.revealFile = func(string) error { return nil }
	return ui, svc, settings
}

func TestRootDefaultsToAudio(t *testing.T) {
	ui, _, _ := newTestRoot(t, nil)

	assert.True(t, ui.audioMode)
	assert.Equal(t, ui.localization.GetText(KeyAudio), ui.modeRadio.Selected)
	assert.True(t, ui.revealBtn.Hidden)
}

func TestDownloadClickEmptyInput(t *testing.T) {
	ui, svc, _ := newTestRoot(t, nil)

	ui.idEntry.SetText("   ")
	ui.onDownloadClick()

	assert.Equal(t, ui.localization.GetText(KeyPleaseEnterID), ui.statusLabel.Text)
	assert.Empty(t, svc.GetAllTasks())
	assert.False(t, ui.downloadBtn.Disabled())
}

func TestDownloadClickQueuesBatch(t *testing.T) {
	ui, svc, _ := newTestRoot(t, nil)

	test.Type(ui.idEntry, "abc, def")
	ui.onDownloadClick()

	tasks := svc.GetAllTasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "abc", tasks[0].Identifier)
	assert.True(t, tasks[0].AudioOnly)
	assert.True(t, ui.downloadBtn.Disabled())
	assert.True(t, ui.idEntry.Disabled())
	assert.Empty(t, ui.idEntry.Text)
	assert.Equal(t, ui.localization.Format(KeyBatchProgress, 0, 2, ui.localization.GetText(KeyStagePending)), ui.statusLabel.Text)
}

func TestDownloadClickVideoMode(t *testing.T) {
	ui, svc, _ := newTestRoot(t, nil)

	ui.modeRadio.SetSelected(ui.localization.GetText(KeyVideo))
	ui.idEntry.SetText("abc")
	ui.onDownloadClick()

	tasks := svc.GetAllTasks()
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].AudioOnly)
}

func TestDownloadClickDuplicate(t *testing.T) {
	ui, svc, _ := newTestRoot(t, nil)
	_, err := svc.AddTask("abc", true)
	require.NoError(t, err)

	ui.idEntry.SetText("abc")
	ui.onDownloadClick()

	assert.Equal(t, ui.localization.GetText(KeyAlreadyInQueue), ui.statusLabel.Text)
	assert.False(t, ui.downloadBtn.Disabled())
}

func TestRefreshProgressAggregates(t *testing.T) {
	ui, svc, _ := newTestRoot(t, nil)

	ui.idEntry.SetText("a b")
	ui.onDownloadClick()

	svc.set("t1", func(task *model.DownloadTask) {
		task.Status = model.TaskStatusDownloading
		task.Stage = model.StageTransfer
		task.Progress = 0.5
	})
	ui.refreshProgress()

	assert.InDelta(t, 0.25, ui.progressBar.Value, 1e-9)
	assert.Equal(t, ui.localization.Format(KeyBatchProgress, 0, 2, ui.localization.GetText(KeyStageTransfer)), ui.statusLabel.Text)
	assert.Len(t, ui.rows, 2)
}

func TestRefreshProgressCompletion(t *testing.T) {
	ui, svc, settings := newTestRoot(t, nil)
	settings.SetAutoRevealOnComplete(true)

	var revealed []string
	ui.revealFile = func(path string) error {
		revealed = append(revealed, path)
		return nil
	}

	ui.idEntry.SetText("abc")
	ui.onDownloadClick()
	svc.set("t1", func(task *model.DownloadTask) {
		task.Status = model.TaskStatusCompleted
		task.Stage = model.StageDone
		task.Progress = 1
		task.OutputPath = "/out/Song Title.mp3"
	})

	ui.refreshProgress()
	ui.refreshProgress()

	assert.Equal(t, ui.localization.Format(KeyDownloadCompleted, "Song Title"), ui.statusLabel.Text)
	assert.Zero(t, ui.progressBar.Value)
	assert.False(t, ui.downloadBtn.Disabled())
	assert.False(t, ui.revealBtn.Hidden)
	assert.Equal(t, "/out/Song Title.mp3", ui.lastOutput)
	assert.Equal(t, []string{"/out/Song Title.mp3"}, revealed, "auto reveal runs once per task")
}

func TestRefreshProgressErrorKinds(t *testing.T) {
	kinds := []acquire.Kind{
		acquire.KindInvalidInput,
		acquire.KindResolution,
		acquire.KindNoStreams,
		acquire.KindTransfer,
		acquire.KindTranscode,
	}

	seen := make(map[string]bool)
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			ui, svc, _ := newTestRoot(t, nil)

			ui.idEntry.SetText("abc")
			ui.onDownloadClick()
			svc.set("t1", func(task *model.DownloadTask) {
				task.Status = model.TaskStatusError
				task.Stage = model.StageFailed
				task.ErrorKind = kind.String()
			})
			ui.refreshProgress()

			assert.Equal(t, ui.localization.ErrorKindMessage(kind.String()), ui.statusLabel.Text)
			assert.False(t, seen[ui.statusLabel.Text], "message for %s is not distinct", kind)
			seen[ui.statusLabel.Text] = true
			assert.False(t, ui.downloadBtn.Disabled())
		})
	}
}

func TestRefreshProgressPartialFailure(t *testing.T) {
	ui, svc, _ := newTestRoot(t, nil)

	ui.idEntry.SetText("a,b")
	ui.onDownloadClick()
	svc.set("t1", func(task *model.DownloadTask) {
		task.Status = model.TaskStatusCompleted
		task.OutputPath = "/out/a.mp3"
	})
	svc.set("t2", func(task *model.DownloadTask) {
		task.Status = model.TaskStatusError
		task.ErrorKind = acquire.KindNoStreams.String()
	})
	ui.refreshProgress()

	expected := ui.localization.Format(KeyBatchFailed, 1, 2, ui.localization.GetText(KeyErrNoStreams))
	assert.Equal(t, expected, ui.statusLabel.Text)
}

func TestQueuePlaylist(t *testing.T) {
	ui, svc, _ := newTestRoot(t, nil)

	playlist := model.NewPlaylist("PL1", "https://www.youtube.com/playlist?list=PL1")
	playlist.AddEntry(&model.PlaylistEntry{VideoID: "v1"})
	playlist.AddEntry(&model.PlaylistEntry{VideoID: "v2"})
	playlist.AddEntry(&model.PlaylistEntry{VideoID: "v3"})

	ui.setInputsEnabled(false)
	ui.queuePlaylist(playlist, false)

	tasks := svc.GetAllTasks()
	require.Len(t, tasks, 3)
	for i, id := range []string{"v1", "v2", "v3"} {
		assert.Equal(t, id, tasks[i].Identifier)
		assert.False(t, tasks[i].AudioOnly)
	}
	assert.True(t, ui.downloadBtn.Disabled(), "inputs stay disabled while the batch runs")
}

func TestPlaylistExpansion(t *testing.T) {
	playlist := model.NewPlaylist("PL1", "https://www.youtube.com/playlist?list=PL1")
	playlist.AddEntry(&model.PlaylistEntry{VideoID: "v1"})
	ui, svc, _ := newTestRoot(t, &fakeExpander{playlist: playlist})

	ui.idEntry.SetText("https://www.youtube.com/playlist?list=PL1")
	ui.onDownloadClick()

	require.Eventually(t, func() bool {
		return len(svc.GetAllTasks()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "v1", svc.GetAllTasks()[0].Identifier)
}

func TestPlaylistFailure(t *testing.T) {
	ui, _, _ := newTestRoot(t, nil)

	ui.setInputsEnabled(false)
	ui.onPlaylistFailed(errors.New("private playlist"))

	assert.Equal(t, ui.localization.GetText(KeyErrPlaylist), ui.statusLabel.Text)
	assert.False(t, ui.downloadBtn.Disabled())
}

func TestClearFinished(t *testing.T) {
	ui, svc, _ := newTestRoot(t, nil)

	ui.idEntry.SetText("a b")
	ui.onDownloadClick()
	svc.set("t1", func(task *model.DownloadTask) { task.Status = model.TaskStatusStopped })

	ui.onClearFinished()

	tasks := svc.GetAllTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "t2", tasks[0].ID)
	assert.Len(t, ui.rows, 1)
}

func TestStopTask(t *testing.T) {
	ui, svc, _ := newTestRoot(t, nil)

	ui.onStopTask("t9")

	assert.Equal(t, []string{"t9"}, svc.stopped)
}

func TestLanguageChangeKeepsMode(t *testing.T) {
	ui, _, settings := newTestRoot(t, nil)

	ui.modeRadio.SetSelected(ui.localization.GetText(KeyVideo))
	ui.onLanguageChange(LangRussian)

	assert.Equal(t, LangRussian, settings.GetLanguage())
	assert.Equal(t, "Скачать", ui.downloadBtn.Text)
	assert.False(t, ui.audioMode)
	assert.Equal(t, "Видео", ui.modeRadio.Selected)
}

func TestLanguageMenuOrder(t *testing.T) {
	ui, _, _ := newTestRoot(t, nil)

	for i := 0; i < 20; i++ {
		ui.createMenu()
		menu := ui.window.MainMenu()
		require.NotNil(t, menu)
		require.Len(t, menu.Items, 2)

		var labels []string
		for _, item := range menu.Items[1].Items {
			labels = append(labels, item.Label)
		}
		require.Equal(t, []string{"English", "Русский"}, labels)
		assert.True(t, menu.Items[1].Items[0].Checked)
	}
}

func TestApplySettings(t *testing.T) {
	ui, svc, settings := newTestRoot(t, nil)
	called := false
	ui.onSettingsSaved = func() { called = true }

	settings.SetMaxParallelDownloads(3)
	ui.applySettings()

	assert.Equal(t, 3, svc.maxParallel)
	assert.True(t, called)
}

func TestTaskRowUpdate(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	var stopped, revealed string
	row := NewTaskRow(NewLocalization(), func(id string) { stopped = id }, func(p string) { revealed = p })

	row.UpdateTask(&model.DownloadTask{ID: "t1", Identifier: "abc", Status: model.TaskStatusDownloading, Stage: model.StageTransfer, Percent: 42})
	assert.Equal(t, "42%", row.progressLabel.Text)
	assert.False(t, row.stopBtn.Hidden)
	assert.True(t, row.revealBtn.Hidden)

	test.Tap(row.stopBtn)
	assert.Equal(t, "t1", stopped)

	row.UpdateTask(&model.DownloadTask{ID: "t1", Identifier: "abc", Status: model.TaskStatusCompleted, OutputPath: "/out/x.mp3"})
	assert.True(t, row.stopBtn.Hidden)
	assert.False(t, row.revealBtn.Hidden)

	test.Tap(row.revealBtn)
	assert.Equal(t, "/out/x.mp3", revealed)
}
