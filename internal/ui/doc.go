package ui

// Package ui contains the Fyne-based desktop user interface for the application.
// It hands identifiers to the download service, follows task updates through
// the service callback and renders progress, results and settings. All UI
// strings are localized via Localization.
