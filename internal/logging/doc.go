// Package logging provides opt-in file-based logging with rotation for SnapFind.
// When the --debug flag is set, structured JSON logs are written to
// ~/.snapfind/logs/snapfind.log. The serve command logs to the file only,
// because stdout carries the MCP protocol stream.
package logging
