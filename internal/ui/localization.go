package ui

import (
	"errors"
	"fmt"

	"github.com/ytget/yt-grabber/internal/acquire"
	"github.com/ytget/yt-grabber/internal/download"
	"github.com/ytget/yt-grabber/internal/model"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Language codes with translations
const (
	LangEnglish = "en"
	LangRussian = "ru"
	LangSystem  = "system"
)

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyDownload          = "download"
	KeyAudio             = "audio"
	KeyVideo             = "video"
	KeyShowInFolder      = "show_in_folder"
	KeyClearFinished     = "clear_finished"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyOutputDirectory   = "output_directory"
	KeyAudioFormat       = "audio_format"
	KeyMaxParallel       = "max_parallel"
	KeyFFmpegPath        = "ffmpeg_path"
	KeyResolveTimeout    = "resolve_timeout"
	KeyTransferTimeout   = "transfer_timeout"
	KeyTranscodeTimeout  = "transcode_timeout"
	KeyRetries           = "retries"
	KeyAutoReveal        = "auto_reveal"
	KeySave              = "save"
	KeyCancel            = "cancel"
	KeyBrowse            = "browse"
	KeyEnterID           = "enter_id"
	KeySettingsSaved     = "settings_saved"
	KeyTaskAdded         = "task_added"
	KeyExpandingPlaylist = "expanding_playlist"
	KeyDownloadCompleted = "download_completed"
	KeyDownloadStopped   = "download_stopped"
	KeyBatchProgress     = "batch_progress"
	KeyBatchFailed       = "batch_failed"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyPleaseEnterID     = "please_enter_id"
	KeyAlreadyInQueue    = "already_in_queue"
	KeyFFmpegMissing     = "ffmpeg_missing"

	// Error kinds
	KeyErrInvalidInput = "err_invalid_input"
	KeyErrResolution   = "err_resolution"
	KeyErrNoStreams    = "err_no_streams"
	KeyErrTransfer     = "err_transfer"
	KeyErrTranscode    = "err_transcode"
	KeyErrPlaylist     = "err_playlist"
	KeyErrUnknown      = "err_unknown"

	// Stages
	KeyStagePending     = "stage_pending"
	KeyStageValidating  = "stage_validating"
	KeyStageResolving   = "stage_resolving"
	KeyStageSelecting   = "stage_selecting"
	KeyStageTransfer    = "stage_transfer"
	KeyStageTranscoding = "stage_transcoding"
	KeyStageDone        = "stage_done"
	KeyStageStopping    = "stage_stopping"
)

var errorKindKeys = map[string]string{
	acquire.KindInvalidInput.String(): KeyErrInvalidInput,
	acquire.KindResolution.String():   KeyErrResolution,
	acquire.KindNoStreams.String():    KeyErrNoStreams,
	acquire.KindTransfer.String():     KeyErrTransfer,
	acquire.KindTranscode.String():    KeyErrTranscode,
}

var stageKeys = map[model.Stage]string{
	model.StageIdle:        KeyStagePending,
	model.StageValidating:  KeyStageValidating,
	model.StageResolving:   KeyStageResolving,
	model.StageSelecting:   KeyStageSelecting,
	model.StageTransfer:    KeyStageTransfer,
	model.StageTranscoding: KeyStageTranscoding,
	model.StageDone:        KeyStageDone,
}

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: LangEnglish,
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == LangSystem {
		lang = LangEnglish
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if text, found := l.texts[l.currentLanguage][key]; found {
		return text
	}
	if text, found := l.texts[LangEnglish][key]; found {
		return text
	}
	return key
}

// Format returns the localized text for key formatted with args
func (l *Localization) Format(key string, args ...any) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		LangEnglish: "English",
		LangRussian: "Русский",
	}
}

// ErrorKindMessage returns the message for a task error kind as recorded
// in model.DownloadTask.ErrorKind
func (l *Localization) ErrorKindMessage(kind string) string {
	if key, ok := errorKindKeys[kind]; ok {
		return l.GetText(key)
	}
	return l.GetText(KeyErrUnknown)
}

// ErrorMessage returns the message for an error returned by the download service
func (l *Localization) ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, download.ErrTaskDuplicate):
		return l.GetText(KeyAlreadyInQueue)
	case acquire.KindOf(err) != acquire.KindUnknown:
		return l.ErrorKindMessage(acquire.KindOf(err).String())
	case errors.Is(err, acquire.ErrInvalidInput):
		return l.GetText(KeyErrInvalidInput)
	default:
		return l.GetText(KeyErrUnknown) + ": " + err.Error()
	}
}

// StageText returns the label shown for a running stage
func (l *Localization) StageText(stage model.Stage) string {
	if key, ok := stageKeys[stage]; ok {
		return l.GetText(key)
	}
	return string(stage)
}

// TaskStatusText describes the task for its current status
func (l *Localization) TaskStatusText(task *model.DownloadTask) string {
	switch task.Status {
	case model.TaskStatusPending:
		return l.GetText(KeyStagePending)
	case model.TaskStatusStopping:
		return l.GetText(KeyStageStopping)
	case model.TaskStatusStopped:
		return l.GetText(KeyDownloadStopped)
	case model.TaskStatusCompleted:
		return l.GetText(KeyStageDone)
	case model.TaskStatusError:
		return l.ErrorKindMessage(task.ErrorKind)
	default:
		return l.StageText(task.Stage)
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts[LangEnglish] = map[string]string{
		KeyAppTitle:          "YouTube Grabber",
		KeyDownload:          "Download",
		KeyAudio:             "Audio",
		KeyVideo:             "Video",
		KeyShowInFolder:      "Show in folder",
		KeyClearFinished:     "Clear finished",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyOutputDirectory:   "Output Directory",
		KeyAudioFormat:       "Audio Format",
		KeyMaxParallel:       "Max Parallel Downloads",
		KeyFFmpegPath:        "FFmpeg Path (empty uses PATH)",
		KeyResolveTimeout:    "Metadata Timeout, s (0 = none)",
		KeyTransferTimeout:   "Transfer Timeout, s (0 = none)",
		KeyTranscodeTimeout:  "Conversion Timeout, s (0 = none)",
		KeyRetries:           "Retries",
		KeyAutoReveal:        "Show file when finished",
		KeySave:              "Save",
		KeyCancel:            "Cancel",
		KeyBrowse:            "Browse",
		KeyEnterID:           "YouTube ID, URL, comma separated list or playlist URL",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyTaskAdded:         "Queued %d item(s)",
		KeyExpandingPlaylist: "Reading playlist...",
		KeyDownloadCompleted: "The download has been completed: %s",
		KeyDownloadStopped:   "Stopped",
		KeyBatchProgress:     "%d of %d done · %s",
		KeyBatchFailed:       "%d of %d failed: %s",
		KeyErrorOpeningFile:  "Error opening file",
		KeyPleaseEnterID:     "Please enter a YouTube ID.",
		KeyAlreadyInQueue:    "Already in queue",
		KeyFFmpegMissing:     "ffmpeg was not found, audio downloads will fail",

		KeyErrInvalidInput: "The identifier is not valid.",
		KeyErrResolution:   "Could not read the video information. Check the ID and your connection.",
		KeyErrNoStreams:    "No downloadable stream is available for this video.",
		KeyErrTransfer:     "The download was interrupted.",
		KeyErrTranscode:    "The audio conversion failed. Is ffmpeg installed?",
		KeyErrPlaylist:     "Could not read the playlist.",
		KeyErrUnknown:      "Unexpected error",

		KeyStagePending:     "Waiting",
		KeyStageValidating:  "Checking input",
		KeyStageResolving:   "Reading video information",
		KeyStageSelecting:   "Choosing stream",
		KeyStageTransfer:    "Downloading",
		KeyStageTranscoding: "Converting audio",
		KeyStageDone:        "Done",
		KeyStageStopping:    "Stopping...",
	}

	// Russian texts
	l.texts[LangRussian] = map[string]string{
		KeyAppTitle:          "YouTube Граббер",
		KeyDownload:          "Скачать",
		KeyAudio:             "Аудио",
		KeyVideo:             "Видео",
		KeyShowInFolder:      "Показать в папке",
		KeyClearFinished:     "Убрать завершённые",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyOutputDirectory:   "Папка загрузки",
		KeyAudioFormat:       "Формат аудио",
		KeyMaxParallel:       "Макс. параллельных",
		KeyFFmpegPath:        "Путь к FFmpeg (пусто = PATH)",
		KeyResolveTimeout:    "Таймаут метаданных, с (0 = нет)",
		KeyTransferTimeout:   "Таймаут загрузки, с (0 = нет)",
		KeyTranscodeTimeout:  "Таймаут конвертации, с (0 = нет)",
		KeyRetries:           "Повторы",
		KeyAutoReveal:        "Показывать файл по завершении",
		KeySave:              "Сохранить",
		KeyCancel:            "Отмена",
		KeyBrowse:            "Обзор",
		KeyEnterID:           "ID YouTube, URL, список через запятую или плейлист",
		KeySettingsSaved:     "Настройки успешно сохранены!",
		KeyTaskAdded:         "В очереди: %d",
		KeyExpandingPlaylist: "Чтение плейлиста...",
		KeyDownloadCompleted: "Загрузка завершена: %s",
		KeyDownloadStopped:   "Остановлено",
		KeyBatchProgress:     "Готово %d из %d · %s",
		KeyBatchFailed:       "Ошибок %d из %d: %s",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyPleaseEnterID:     "Пожалуйста, введите ID YouTube.",
		KeyAlreadyInQueue:    "Уже в очереди",
		KeyFFmpegMissing:     "ffmpeg не найден, загрузка аудио не будет работать",

		KeyErrInvalidInput: "Неверный идентификатор.",
		KeyErrResolution:   "Не удалось получить информацию о видео. Проверьте ID и подключение.",
		KeyErrNoStreams:    "Для этого видео нет доступных потоков.",
		KeyErrTransfer:     "Загрузка прервана.",
		KeyErrTranscode:    "Не удалось конвертировать аудио. Установлен ли ffmpeg?",
		KeyErrPlaylist:     "Не удалось прочитать плейлист.",
		KeyErrUnknown:      "Непредвиденная ошибка",

		KeyStagePending:     "Ожидание",
		KeyStageValidating:  "Проверка ввода",
		KeyStageResolving:   "Получение информации о видео",
		KeyStageSelecting:   "Выбор потока",
		KeyStageTransfer:    "Загрузка",
		KeyStageTranscoding: "Конвертация аудио",
		KeyStageDone:        "Готово",
		KeyStageStopping:    "Остановка...",
	}
}
