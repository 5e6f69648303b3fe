package download

// Package download runs acquisition workflows as background tasks. It tracks
// task lifecycle, bounds parallelism, propagates stage and progress changes to
// the UI through a callback and supports stopping tasks mid-flight.
