package transcode

// Package transcode converts downloaded audio streams into a standard audio
// format by running ffmpeg as an external process.
