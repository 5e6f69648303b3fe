package ui

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconStop     = "■"
	IconClear    = "🧹"
	IconError    = "❌"
	IconDone     = "✔"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
)

// Window and dialog sizing
const (
	WindowWidth  float32 = 640
	WindowHeight float32 = 420

	SettingsDialogWidth  float32 = 520
	SettingsDialogHeight float32 = 560
)

// RowMinHeight is the minimum height of a queue row
const RowMinHeight float32 = 48
