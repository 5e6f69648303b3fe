package main

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/yt-grabber/internal/acquire"
	"github.com/ytget/yt-grabber/internal/config"
	"github.com/ytget/yt-grabber/internal/download"
	"github.com/ytget/yt-grabber/internal/platform"
	"github.com/ytget/yt-grabber/internal/transcode"
	"github.com/ytget/yt-grabber/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.yt-grabber"
	AppName = "YT Grabber"
)

func main() {
	log.Printf("%s v%s starting...", AppName, version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewAppTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	settings := config.NewSettings(myApp)
	if err := platform.CreateDirectoryIfNotExists(settings.GetOutputDirectory()); err != nil {
		log.Printf("failed to ensure output dir: %v", err)
	}

	ffmpegPath := settings.GetFFmpegPath()
	_, ffmpegErr := platform.ValidateFFmpeg(ffmpegPath)
	if ffmpegErr != nil {
		log.Printf("warning: %v", ffmpegErr)
	}

	youtubeClient := platform.NewYouTubeClient(nil)
	workflow := acquire.New(settings.WorkflowConfig(), youtubeClient, youtubeClient, transcode.NewService(ffmpegPath))
	downloadSvc := download.NewService(workflow, settings.GetMaxParallelDownloads())

	onSettingsSaved := func() {
		if err := platform.CreateDirectoryIfNotExists(settings.GetOutputDirectory()); err != nil {
			log.Printf("failed to ensure output dir: %v", err)
		}
		workflow.Reconfigure(settings.WorkflowConfig(), transcode.NewService(settings.GetFFmpegPath()))
	}

	root := ui.NewRootUI(myWindow, settings, downloadSvc, platform.NewPlaylistParser(), onSettingsSaved)
	if ffmpegErr != nil {
		root.ShowWarning(root.Localization().GetText(ui.KeyFFmpegMissing))
	}

	myApp.Lifecycle().SetOnStopped(func() {
		downloadSvc.StopAll()
		downloadSvc.Wait()
	})

	myWindow.ShowAndRun()
}
