package ui

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-grabber/internal/config"
	"github.com/ytget/yt-grabber/internal/download"
	"github.com/ytget/yt-grabber/internal/model"
	"github.com/ytget/yt-grabber/internal/platform"
)

// PlaylistExpander turns a playlist URL into its entries.
// *platform.PlaylistParser implements it.
type PlaylistExpander interface {
	ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error)
}

var _ PlaylistExpander = (*platform.PlaylistParser)(nil)

// RootUI represents the main window
type RootUI struct {
	window          fyne.Window
	settings        *config.Settings
	localization    *Localization
	downloadSvc     download.Downloader
	playlists       PlaylistExpander
	onSettingsSaved func()
	revealFile      func(string) error

	idEntry     *widget.Entry
	modeRadio   *widget.RadioGroup
	downloadBtn *widget.Button
	settingsBtn *widget.Button
	revealBtn   *widget.Button
	clearBtn    *widget.Button
	progressBar *widget.ProgressBar
	statusLabel *widget.Label
	taskList    *widget.List

	audioMode bool

	// UI goroutine only
	rows       []*model.DownloadTask
	lastOutput string

	batchMu  sync.Mutex
	batch    []string
	busy     bool
	revealed map[string]bool
}

// NewRootUI builds the window content. onSettingsSaved runs after the settings
// dialog stored new values, so the caller can reconfigure the workflow.
func NewRootUI(window fyne.Window, settings *config.Settings, downloadSvc download.Downloader, playlists PlaylistExpander, onSettingsSaved func()) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:          window,
		settings:        settings,
		localization:    localization,
		downloadSvc:     downloadSvc,
		playlists:       playlists,
		onSettingsSaved: onSettingsSaved,
		revealFile:      platform.OpenFileInManager,
		audioMode:       true,
		revealed:        make(map[string]bool),
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	ui.downloadSvc.SetUpdateCallback(ui.onTaskUpdate)

	ui.setupUI()
	return ui
}

// Localization returns the active text catalog
func (ui *RootUI) Localization() *Localization {
	return ui.localization
}

func (ui *RootUI) setupUI() {
	ui.createMenu()

	ui.idEntry = widget.NewEntry()
	ui.idEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterID))
	ui.idEntry.OnSubmitted = func(string) {
		ui.onDownloadClick()
	}

	ui.modeRadio = widget.NewRadioGroup(ui.modeOptions(), func(selected string) {
		if selected == "" {
			return
		}
		ui.audioMode = selected == ui.localization.GetText(KeyAudio)
	})
	ui.modeRadio.Horizontal = true
	ui.modeRadio.Required = true
	ui.modeRadio.SetSelected(ui.modeLabel())

	ui.downloadBtn = widget.NewButton(ui.localization.GetText(KeyDownload), ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance

	ui.settingsBtn = widget.NewButton(IconSettings, ui.onShowSettings)
	ui.settingsBtn.Importance = widget.LowImportance

	ui.progressBar = widget.NewProgressBar()

	ui.statusLabel = widget.NewLabel("")
	ui.statusLabel.Wrapping = fyne.TextWrapWord

	ui.revealBtn = widget.NewButton(IconFolder+" "+ui.localization.GetText(KeyShowInFolder), func() {
		ui.onRevealFile(ui.lastOutput)
	})
	ui.revealBtn.Hide()

	ui.clearBtn = widget.NewButton(IconClear+" "+ui.localization.GetText(KeyClearFinished), ui.onClearFinished)
	ui.clearBtn.Importance = widget.LowImportance

	ui.taskList = widget.NewList(
		func() int { return len(ui.rows) },
		func() fyne.CanvasObject {
			return NewTaskRow(ui.localization, ui.onStopTask, ui.onRevealFile)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(ui.rows) {
				return
			}
			if row, ok := obj.(*TaskRow); ok {
				row.UpdateTask(ui.rows[id])
			}
		},
	)

	inputRow := container.NewBorder(nil, nil, ui.settingsBtn, ui.downloadBtn, ui.idEntry)
	statusRow := container.NewBorder(nil, nil, nil, container.NewHBox(ui.revealBtn, ui.clearBtn), ui.statusLabel)
	top := container.NewVBox(inputRow, ui.modeRadio, ui.progressBar, statusRow, widget.NewSeparator())

	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, ui.taskList))
}

func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languages := ui.localization.GetAvailableLanguages()
	codes := make([]string, 0, len(languages))
	for code := range languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for _, code := range codes {
		langCode := code
		item := fyne.NewMenuItem(languages[code], func() {
			ui.onLanguageChange(langCode)
		})
		item.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

func (ui *RootUI) modeOptions() []string {
	return []string{ui.localization.GetText(KeyAudio), ui.localization.GetText(KeyVideo)}
}

func (ui *RootUI) modeLabel() string {
	return ui.localization.GetText(modeKey(ui.audioMode))
}

func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)

	ui.refreshUITexts()
	ui.createMenu()
}

func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))

	ui.idEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterID))
	ui.downloadBtn.SetText(ui.localization.GetText(KeyDownload))
	ui.revealBtn.SetText(IconFolder + " " + ui.localization.GetText(KeyShowInFolder))
	ui.clearBtn.SetText(IconClear + " " + ui.localization.GetText(KeyClearFinished))

	audio := ui.audioMode
	ui.modeRadio.Options = ui.modeOptions()
	ui.audioMode = audio
	ui.modeRadio.SetSelected(ui.modeLabel())

	ui.taskList.Refresh()
}

// onDownloadClick queues the entered identifiers and returns immediately.
// Results arrive through onTaskUpdate.
func (ui *RootUI) onDownloadClick() {
	input := strings.TrimSpace(ui.idEntry.Text)
	if input == "" {
		ui.setStatus(ui.localization.GetText(KeyPleaseEnterID), widget.WarningImportance)
		dialog.ShowInformation(ui.localization.GetText(KeyAppTitle), ui.localization.GetText(KeyPleaseEnterID), ui.window)
		return
	}

	audioOnly := ui.audioMode
	ui.setInputsEnabled(false)
	ui.revealBtn.Hide()
	ui.progressBar.SetValue(0)

	if ui.playlists != nil && platform.LooksLikePlaylist(input) {
		ui.setStatus(ui.localization.GetText(KeyExpandingPlaylist), widget.MediumImportance)
		go func() {
			playlist, err := ui.playlists.ParsePlaylist(context.Background(), input)
			fyne.Do(func() {
				if err != nil {
					ui.onPlaylistFailed(err)
					return
				}
				ui.queuePlaylist(playlist, audioOnly)
			})
		}()
		return
	}

	tasks, err := ui.downloadSvc.AddBatch(input, audioOnly)
	ui.startBatch(tasks, err)
}

func (ui *RootUI) queuePlaylist(playlist *model.Playlist, audioOnly bool) {
	log.Printf("queueing playlist %q with %d entries", playlist.Title, len(playlist.Entries))

	var (
		tasks    []*model.DownloadTask
		firstErr error
	)
	for _, id := range playlist.VideoIDs() {
		task, err := ui.downloadSvc.AddTask(id, audioOnly)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		tasks = append(tasks, task)
	}
	ui.startBatch(tasks, firstErr)
}

func (ui *RootUI) onPlaylistFailed(err error) {
	log.Printf("playlist expansion failed: %v", err)
	ui.setStatus(ui.localization.GetText(KeyErrPlaylist), widget.DangerImportance)
	ui.setInputsEnabled(true)
}

// startBatch tracks the tasks queued by one click. A rejected part of the
// input is reported but does not cancel what was queued.
func (ui *RootUI) startBatch(tasks []*model.DownloadTask, err error) {
	if err != nil {
		log.Printf("queueing %q: %v", ui.idEntry.Text, err)
	}
	if len(tasks) == 0 {
		ui.setStatus(ui.localization.ErrorMessage(err), widget.DangerImportance)
		ui.setInputsEnabled(true)
		return
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	ui.batchMu.Lock()
	ui.batch = ids
	ui.busy = true
	ui.batchMu.Unlock()

	ui.idEntry.SetText("")
	status := ui.localization.Format(KeyTaskAdded, len(tasks))
	if err != nil {
		status += MiddleDotSeparator + ui.localization.ErrorMessage(err)
	}
	ui.setStatus(status, widget.MediumImportance)
	ui.refreshProgress()
}

// onTaskUpdate may run on any goroutine
func (ui *RootUI) onTaskUpdate(task *model.DownloadTask) {
	if task.Status.IsFinished() {
		log.Printf("task %s %s: %s", task.ID, task.Status, task.OutputPath)
	}
	fyne.Do(ui.refreshProgress)
}

// refreshProgress re-reads the service state and redraws the list, the
// aggregate progress of the current batch and the status text.
func (ui *RootUI) refreshProgress() {
	ui.rows = ui.downloadSvc.GetAllTasks()
	ui.taskList.Refresh()

	ui.batchMu.Lock()
	ids := append([]string(nil), ui.batch...)
	busy := ui.busy
	ui.batchMu.Unlock()

	for _, task := range ui.rows {
		if task.Status == model.TaskStatusCompleted && task.OutputPath != "" && !ui.revealed[task.ID] {
			ui.revealed[task.ID] = true
			ui.onTaskCompleted(task)
		}
	}

	if !busy || len(ids) == 0 {
		return
	}

	var (
		sum      float64
		done     int
		failed   []*model.DownloadTask
		current  *model.DownloadTask
		lastDone *model.DownloadTask
	)
	for _, id := range ids {
		task, ok := ui.downloadSvc.GetTask(id)
		if !ok {
			// removed from the queue, count it as finished
			sum++
			done++
			continue
		}
		switch {
		case task.Status == model.TaskStatusCompleted:
			sum++
			done++
			lastDone = task
		case task.Status.IsFinished():
			sum++
			done++
			if task.Status == model.TaskStatusError {
				failed = append(failed, task)
			}
		default:
			sum += task.Progress
			if current == nil && task.Status.IsActive() {
				current = task
			}
		}
	}

	total := len(ids)
	if done < total {
		ui.progressBar.SetValue(sum / float64(total))
		stage := ui.localization.GetText(KeyStagePending)
		if current != nil {
			stage = ui.localization.TaskStatusText(current)
		}
		if total == 1 {
			ui.setStatus(stage, widget.MediumImportance)
		} else {
			ui.setStatus(ui.localization.Format(KeyBatchProgress, done, total, stage), widget.MediumImportance)
		}
		return
	}

	ui.finishBatch(total, failed, lastDone)
}

func (ui *RootUI) finishBatch(total int, failed []*model.DownloadTask, lastDone *model.DownloadTask) {
	ui.batchMu.Lock()
	ui.busy = false
	ui.batch = nil
	ui.batchMu.Unlock()

	// bar goes back to zero once the run is over
	ui.progressBar.SetValue(0)
	ui.setInputsEnabled(true)

	switch {
	case len(failed) > 0 && total == 1:
		ui.setStatus(ui.localization.ErrorKindMessage(failed[0].ErrorKind), widget.DangerImportance)
	case len(failed) > 0:
		ui.setStatus(ui.localization.Format(KeyBatchFailed, len(failed), total, ui.localization.ErrorKindMessage(failed[0].ErrorKind)), widget.DangerImportance)
	case lastDone != nil:
		ui.setStatus(ui.localization.Format(KeyDownloadCompleted, lastDone.GetDisplayTitle()), widget.SuccessImportance)
	default:
		ui.setStatus(ui.localization.GetText(KeyDownloadStopped), widget.MediumImportance)
	}
}

func (ui *RootUI) onTaskCompleted(task *model.DownloadTask) {
	ui.lastOutput = task.OutputPath
	ui.revealBtn.Show()

	if app := fyne.CurrentApp(); app != nil {
		app.SendNotification(fyne.NewNotification(
			ui.localization.GetText(KeyAppTitle),
			ui.localization.Format(KeyDownloadCompleted, task.GetDisplayTitle()),
		))
	}

	if ui.settings.GetAutoRevealOnComplete() {
		ui.onRevealFile(task.OutputPath)
	}
}

func (ui *RootUI) onStopTask(taskID string) {
	if err := ui.downloadSvc.StopTask(taskID); err != nil {
		log.Printf("stop task %s: %v", taskID, err)
	}
}

func (ui *RootUI) onRevealFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := ui.revealFile(filePath); err != nil {
		log.Printf("reveal %s: %v", filePath, err)
		ui.setStatus(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), widget.DangerImportance)
	}
}

func (ui *RootUI) onClearFinished() {
	for _, task := range ui.downloadSvc.GetAllTasks() {
		if !task.Status.IsFinished() {
			continue
		}
		if err := ui.downloadSvc.RemoveTask(task.ID); err != nil {
			log.Printf("remove task %s: %v", task.ID, err)
		}
		delete(ui.revealed, task.ID)
	}
	ui.refreshProgress()
}

func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.localization, ui.window, ui.applySettings).Show()
}

func (ui *RootUI) applySettings() {
	ui.downloadSvc.SetMaxParallelDownloads(ui.settings.GetMaxParallelDownloads())
	ui.localization.SetLanguage(ui.settings.GetLanguage())
	ui.refreshUITexts()
	ui.createMenu()

	if ui.onSettingsSaved != nil {
		ui.onSettingsSaved()
	}
}

// ShowWarning puts message in the status line without blocking the window
func (ui *RootUI) ShowWarning(message string) {
	ui.setStatus(message, widget.WarningImportance)
}

func (ui *RootUI) setInputsEnabled(enabled bool) {
	if enabled {
		ui.idEntry.Enable()
		ui.modeRadio.Enable()
		ui.downloadBtn.Enable()
		return
	}
	ui.idEntry.Disable()
	ui.modeRadio.Disable()
	ui.downloadBtn.Disable()
}

func (ui *RootUI) setStatus(text string, importance widget.Importance) {
	ui.statusLabel.Importance = importance
	ui.statusLabel.SetText(text)
}
