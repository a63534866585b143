package credential

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultCookieHeader opens a merged file when neither input carries a header.
const DefaultCookieHeader = "# Netscape HTTP Cookie File"

// MergeResult is the outcome of merging two cookie files.
type MergeResult struct {
	Content         string // Merged file content, newline terminated
	Added           int    // Incoming cookie lines not already present
	Total           int    // Cookie lines in the merged file
	IncomingLines   int    // Cookie lines in the incoming file
	InvalidIncoming int    // Incoming cookie lines with fewer than seven fields
}

// Merge combines existing and incoming cookie file content.
// Header lines come first, de-duplicated; cookie lines follow in first-seen order.
// Blank lines are dropped and every line is trimmed.
func Merge(existing, incoming string) MergeResult {
	var (
		headers    []string
		cookies    []string
		seenHeader = make(map[string]bool)
		seenCookie = make(map[string]bool)
		res        MergeResult
	)

	add := func(content string, fromIncoming bool) {
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, httpOnlyPrefix) {
				if !seenHeader[line] {
					seenHeader[line] = true
					headers = append(headers, line)
				}
				continue
			}
			if fromIncoming {
				res.IncomingLines++
				if len(strings.Split(line, "\t")) < numFields {
					res.InvalidIncoming++
				}
			}
			if seenCookie[line] {
				continue
			}
			seenCookie[line] = true
			cookies = append(cookies, line)
			if fromIncoming {
				res.Added++
			}
		}
	}

	add(existing, false)
	add(incoming, true)

	if len(headers) == 0 {
		headers = append(headers, DefaultCookieHeader)
	}

	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	if len(cookies) > 0 {
		b.WriteByte('\n')
		for _, c := range cookies {
			b.WriteString(c)
			b.WriteByte('\n')
		}
	}

	res.Content = b.String()
	res.Total = len(cookies)
	return res
}

// MergeFiles merges the cookie file at incomingPath into existingPath.
// A missing existing file is treated as empty. The result is written atomically.
func MergeFiles(existingPath, incomingPath string) (MergeResult, error) {
	incoming, err := os.ReadFile(incomingPath)
	if err != nil {
		return MergeResult{}, fmt.Errorf("reading incoming cookies: %w", err)
	}

	existing, err := os.ReadFile(existingPath)
	if err != nil && !os.IsNotExist(err) {
		return MergeResult{}, fmt.Errorf("reading existing cookies: %w", err)
	}

	res := Merge(string(existing), string(incoming))
	if err := WriteFileAtomic(existingPath, res.Content); err != nil {
		return MergeResult{}, err
	}
	return res, nil
}

// WriteFileAtomic writes content to path via a temp file and rename
// so readers never observe a partially written file.
func WriteFileAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating cookie dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "cookies-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writer := bufio.NewWriter(tmpFile)
	if _, err := writer.WriteString(content); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing cookies: %w", err)
	}

	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing cookies: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming cookie file: %w", err)
	}

	return nil
}
