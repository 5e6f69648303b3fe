package acquire

// Package acquire implements the acquisition workflow: resolve stream metadata
// for a media item, pick the best audio or combined stream, transfer it to the
// output directory with progress, and optionally transcode audio into a
// standard format. Network, transfer and transcoding are delegated to the
// Resolver, Transferer and Transcoder collaborators.
