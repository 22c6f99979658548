// Package media validates produced MP3 files.
//
// A file passes when it is at least MinSizeBytes long and a Prober reports a
// duration of at least MinDurationSeconds. Probers shell out to ffprobe or
// decode the MP3 in-process.
package media
