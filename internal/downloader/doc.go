// Package downloader runs the external spotdl tool for one download request and relays its console output as an
// ordered stream of events.
//
// # Command Builder
//
// [Builder.Build] turns a [Request] into the tool's argument list: fixed audio and lyrics options followed by an
// output template chosen by [Mode]. [LooksLikeSpotify] is the shallow lexical filter applied to URLs before anything
// is started.
//
// # Process Runner & Line Relay
//
// [Runner.Stream] starts the tool with the music root as its working directory, merges stdout and stderr, and emits
// one [Event] per line together with a [Stats] snapshot. The stream always ends with exactly one terminal event
// ([EventComplete] or [EventError]) and the channel is closed afterwards.
//
// The subprocess is bound to the caller's context: cancelling it (for example when the browser disconnects) kills
// the tool.
//
// # Playlist Snapshot & Finalizer
//
// In playlist mode the runner records the mtimes of every directory under <music>/playlists before starting the
// tool ([TakeSnapshot]). After a successful run [Finalize] picks the directory that changed most recently and
// [WriteListing] writes a plain .m3u listing of its audio files.
//
// # Errors
//
// Every failure is an [*Error] carrying a [Kind]. The user-facing text of the terminal event is derived from the
// kind only at the stream boundary ([Error.Message]).
package downloader
