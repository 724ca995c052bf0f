// Package logtail reads the tail of the client's log file and parses its
// zerolog JSON lines for the Logs view.
//
// Read keeps a fixed window of the newest maxLines lines while scanning
// foodbridge.log. A missing file is not an error; the view shows nothing yet.
//
// Parse turns one line into an Entry with the well-known zerolog keys (time,
// level, message, error) lifted out and every other key kept as a string in
// Fields. Lines that are not JSON, such as a panic trace, come back with the
// raw text as the message.
package logtail
