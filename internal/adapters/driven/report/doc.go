// Package report renders analysis results and theme hierarchies.
//
// JSON is the stable interchange shape; YAML carries the same fields, and
// Markdown is meant for reading.
package report
