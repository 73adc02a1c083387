// Package chrome reads browsing history from Chrome's SQLite databases.
//
// Chrome keeps its History file locked while running, so every database is
// copied to a temporary file before it is opened.
package chrome
