// ABOUTME: Playback config file parser
// ABOUTME: Reads FILENAME=DEVICE lines into entries resolved against the config directory
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Entry is one FILENAME=DEVICE line of the config file
type Entry struct {
	Line     int    // 1-based line number
	Filename string // Filename as written, with "\ " unescaped
	Path     string // Filename resolved against the config file's directory
	Device   string // Device name or index string
}

// ParseError reports a malformed config line
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Load parses the config file at path. Filenames are resolved relative to
// the directory holding the config file.
func Load(path string) ([]Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f, filepath.Dir(abs))
}

// Parse reads entries from r, resolving relative filenames against baseDir.
// Blank lines and lines starting with '#' or '!' are skipped.
func Parse(r io.Reader, baseDir string) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")

		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}

		entry, err := parseLine(text, lineNo, baseDir)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return entries, nil
}

func parseLine(text string, lineNo int, baseDir string) (Entry, error) {
	key, value, ok := strings.Cut(text, "=")
	if !ok {
		return Entry{}, &ParseError{Line: lineNo, Text: text, Reason: "missing '='"}
	}

	filename := Unescape(trimKey(key))
	if filename == "" {
		return Entry{}, &ParseError{Line: lineNo, Text: text, Reason: "empty filename"}
	}

	device := strings.TrimSpace(value)
	if device == "" {
		return Entry{}, &ParseError{Line: lineNo, Text: text, Reason: "empty device"}
	}

	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, filename)
	}

	return Entry{
		Line:     lineNo,
		Filename: filename,
		Path:     path,
		Device:   device,
	}, nil
}

// trimKey strips surrounding whitespace but keeps a trailing escaped space
func trimKey(key string) string {
	rest := strings.TrimLeftFunc(key, unicode.IsSpace)
	trimmed := strings.TrimRightFunc(rest, unicode.IsSpace)
	if strings.HasSuffix(trimmed, `\`) && len(rest) > len(trimmed) && rest[len(trimmed)] == ' ' {
		trimmed += " "
	}
	return trimmed
}

// Unescape replaces backslash-escaped spaces with plain spaces
func Unescape(s string) string {
	return strings.ReplaceAll(s, `\ `, " ")
}
