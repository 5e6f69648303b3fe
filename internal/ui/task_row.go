package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-grabber/internal/model"
)

// TaskRow renders one queued acquisition
type TaskRow struct {
	widget.BaseWidget

	task         model.DownloadTask
	localization *Localization

	titleLabel    *widget.Label
	statusLabel   *widget.Label
	progressLabel *widget.Label
	stopBtn       *widget.Button
	revealBtn     *widget.Button

	onStop   func(taskID string)
	onReveal func(filePath string)
}

// NewTaskRow creates a new task row widget
func NewTaskRow(localization *Localization, onStop, onReveal func(string)) *TaskRow {
	tr := &TaskRow{
		localization: localization,
		onStop:       onStop,
		onReveal:     onReveal,
	}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	return tr
}

func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.statusLabel.Truncation = fyne.TextTruncateEllipsis

	tr.progressLabel = widget.NewLabel("")
	tr.progressLabel.Alignment = fyne.TextAlignTrailing

	tr.stopBtn = widget.NewButton(IconStop, func() {
		if tr.onStop != nil {
			tr.onStop(tr.task.ID)
		}
	})
	tr.stopBtn.Importance = widget.LowImportance

	tr.revealBtn = widget.NewButton(IconFolder, func() {
		if tr.onReveal != nil && tr.task.OutputPath != "" {
			tr.onReveal(tr.task.OutputPath)
		}
	})
	tr.revealBtn.Importance = widget.LowImportance
}

// CreateRenderer implements fyne.Widget
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	actions := container.NewHBox(tr.progressLabel, tr.stopBtn, tr.revealBtn)
	text := container.NewVBox(tr.titleLabel, tr.statusLabel)
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, nil, actions, text))
}

// MinSize keeps rows at a readable height
func (tr *TaskRow) MinSize() fyne.Size {
	size := tr.BaseWidget.MinSize()
	if size.Height < RowMinHeight {
		size.Height = RowMinHeight
	}
	return size
}

// UpdateTask shows task in the row
func (tr *TaskRow) UpdateTask(task *model.DownloadTask) {
	if task == nil {
		return
	}
	tr.task = *task

	tr.titleLabel.SetText(fmt.Sprintf("%s%s%s", task.GetDisplayTitle(), MiddleDotSeparator, tr.localization.GetText(modeKey(task.AudioOnly))))

	status := tr.localization.TaskStatusText(task)
	switch task.Status {
	case model.TaskStatusError:
		tr.statusLabel.Importance = widget.DangerImportance
		status = IconError + " " + status
	case model.TaskStatusCompleted:
		tr.statusLabel.Importance = widget.SuccessImportance
		status = IconDone + " " + status
	default:
		tr.statusLabel.Importance = widget.MediumImportance
	}
	tr.statusLabel.SetText(status)

	switch {
	case task.Status == model.TaskStatusCompleted:
		tr.progressLabel.SetText("")
	case task.Status.IsActive():
		tr.progressLabel.SetText(fmt.Sprintf(ProgressLabelFormat, task.Percent))
	default:
		tr.progressLabel.SetText(DashPlaceholder)
	}

	if task.Status.IsFinished() {
		tr.stopBtn.Hide()
	} else {
		tr.stopBtn.Show()
	}
	if task.Status == model.TaskStatusCompleted && task.OutputPath != "" {
		tr.revealBtn.Show()
	} else {
		tr.revealBtn.Hide()
	}

	tr.Refresh()
}

func modeKey(audioOnly bool) string {
	if audioOnly {
		return KeyAudio
	}
	return KeyVideo
}
