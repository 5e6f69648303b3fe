package ui

import (
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-grabber/internal/config"
)

// SettingsDialog edits the persisted settings
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	outputDirEntry        *widget.Entry
	audioFormatSelect     *widget.Select
	maxParallelEntry      *widget.Entry
	ffmpegPathEntry       *widget.Entry
	resolveTimeoutEntry   *widget.Entry
	transferTimeoutEntry  *widget.Entry
	transcodeTimeoutEntry *widget.Entry
	retriesEntry          *widget.Entry
	autoRevealCheck       *widget.Check
	languageSelect        *widget.Select

	// label shown in languageSelect -> language code
	languageCodes map[string]string
}

// NewSettingsDialog creates a new settings dialog. onSaved runs after the
// values were written.
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onSaved func()) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
		onSaved:      onSaved,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	l := sd.localization

	sd.outputDirEntry = widget.NewEntry()
	browseBtn := widget.NewButton(l.GetText(KeyBrowse), sd.onBrowseDirectory)
	outputDirRow := container.NewBorder(nil, nil, nil, browseBtn, sd.outputDirEntry)

	sd.audioFormatSelect = widget.NewSelect(sd.settings.GetAudioFormatOptions(), nil)

	sd.maxParallelEntry = widget.NewEntry()
	sd.maxParallelEntry.SetPlaceHolder(strconv.Itoa(config.MinMaxParallel) + "-" + strconv.Itoa(config.MaxMaxParallel))

	sd.ffmpegPathEntry = widget.NewEntry()
	sd.ffmpegPathEntry.SetPlaceHolder("ffmpeg")

	sd.resolveTimeoutEntry = widget.NewEntry()
	sd.transferTimeoutEntry = widget.NewEntry()
	sd.transcodeTimeoutEntry = widget.NewEntry()
	sd.retriesEntry = widget.NewEntry()
	sd.retriesEntry.SetPlaceHolder("0-" + strconv.Itoa(config.MaxRetries))

	sd.autoRevealCheck = widget.NewCheck(l.GetText(KeyAutoReveal), nil)

	sd.languageCodes = make(map[string]string)
	var languageLabels []string
	for code, label := range sd.settings.GetLanguageOptions() {
		sd.languageCodes[label] = code
		languageLabels = append(languageLabels, label)
	}
	sort.Strings(languageLabels)
	sd.languageSelect = widget.NewSelect(languageLabels, nil)

	form := widget.NewForm(
		widget.NewFormItem(l.GetText(KeyOutputDirectory), outputDirRow),
		widget.NewFormItem(l.GetText(KeyAudioFormat), sd.audioFormatSelect),
		widget.NewFormItem(l.GetText(KeyMaxParallel), sd.maxParallelEntry),
		widget.NewFormItem(l.GetText(KeyFFmpegPath), sd.ffmpegPathEntry),
		widget.NewFormItem(l.GetText(KeyResolveTimeout), sd.resolveTimeoutEntry),
		widget.NewFormItem(l.GetText(KeyTransferTimeout), sd.transferTimeoutEntry),
		widget.NewFormItem(l.GetText(KeyTranscodeTimeout), sd.transcodeTimeoutEntry),
		widget.NewFormItem(l.GetText(KeyRetries), sd.retriesEntry),
		widget.NewFormItem(l.GetText(KeyLanguage), sd.languageSelect),
	)

	content := container.NewVBox(form, sd.autoRevealCheck)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		container.NewVScroll(content),
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.outputDirEntry.SetText(sd.settings.GetOutputDirectory())
	sd.audioFormatSelect.SetSelected(sd.settings.GetAudioFormat())
	sd.maxParallelEntry.SetText(strconv.Itoa(sd.settings.GetMaxParallelDownloads()))
	sd.ffmpegPathEntry.SetText(sd.settings.GetFFmpegPath())
	sd.resolveTimeoutEntry.SetText(strconv.Itoa(sd.settings.GetResolveTimeout()))
	sd.transferTimeoutEntry.SetText(strconv.Itoa(sd.settings.GetTransferTimeout()))
	sd.transcodeTimeoutEntry.SetText(strconv.Itoa(sd.settings.GetTranscodeTimeout()))
	sd.retriesEntry.SetText(strconv.Itoa(sd.settings.GetRetries()))
	sd.autoRevealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())

	current := sd.settings.GetLanguage()
	for label, code := range sd.languageCodes {
		if code == current {
			sd.languageSelect.SetSelected(label)
		}
	}
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.outputDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave writes the edited values. Empty or malformed numbers leave the
// stored value untouched.
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if dir := strings.TrimSpace(sd.outputDirEntry.Text); dir != "" {
		sd.settings.SetOutputDirectory(dir)
	}
	if sd.audioFormatSelect.Selected != "" {
		sd.settings.SetAudioFormat(sd.audioFormatSelect.Selected)
	}
	if n, ok := parseInt(sd.maxParallelEntry.Text); ok {
		sd.settings.SetMaxParallelDownloads(n)
	}
	sd.settings.SetFFmpegPath(sd.ffmpegPathEntry.Text)
	if n, ok := parseInt(sd.resolveTimeoutEntry.Text); ok {
		sd.settings.SetResolveTimeout(n)
	}
	if n, ok := parseInt(sd.transferTimeoutEntry.Text); ok {
		sd.settings.SetTransferTimeout(n)
	}
	if n, ok := parseInt(sd.transcodeTimeoutEntry.Text); ok {
		sd.settings.SetTranscodeTimeout(n)
	}
	if n, ok := parseInt(sd.retriesEntry.Text); ok {
		sd.settings.SetRetries(n)
	}
	sd.settings.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)
	if code, ok := sd.languageCodes[sd.languageSelect.Selected]; ok {
		sd.settings.SetLanguage(code)
		sd.localization.SetLanguage(code)
	}

	if sd.onSaved != nil {
		sd.onSaved()
	}

	if sd.window != nil {
		dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
	}
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
