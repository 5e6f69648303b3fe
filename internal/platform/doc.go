package platform

// Package platform contains OS/platform integration and external service glue:
// the YouTube metadata and stream client, playlist expansion via ytdlp,
// filesystem helpers, external binary checks and OS reveal.
