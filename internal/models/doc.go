// Package models defines the persisted entities of the spotweb download front end.
//
// The only entity is [Download], one row per request that reached the downloader, carrying the URL, layout mode,
// output counters, exit code, generated playlist listing and any failure message.
//
// All persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft
// delete support. The [Repository] interface defines standard CRUD operations for database access.
package models
