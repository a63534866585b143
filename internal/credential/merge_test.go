package credential

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMerge(t *testing.T) {
	existing := "# Netscape HTTP Cookie File\n\n" +
		".facebook.com\tTRUE\t/\tTRUE\t0\tc_user\t1\n"
	incoming := "# Netscape HTTP Cookie File\r\n" +
		"# extra header\r\n" +
		".facebook.com\tTRUE\t/\tTRUE\t0\tc_user\t1\r\n" +
		".facebook.com\tTRUE\t/\tTRUE\t0\txs\t2\r\n" +
		"garbage\r\n"

	res := Merge(existing, incoming)

	want := "# Netscape HTTP Cookie File\n" +
		"# extra header\n" +
		"\n" +
		".facebook.com\tTRUE\t/\tTRUE\t0\tc_user\t1\n" +
		".facebook.com\tTRUE\t/\tTRUE\t0\txs\t2\n" +
		"garbage\n"
	if res.Content != want {
		t.Errorf("Content =\n%q\nwant\n%q", res.Content, want)
	}
	if res.Added != 2 {
		t.Errorf("Added = %d, want 2", res.Added)
	}
	if res.Total != 3 {
		t.Errorf("Total = %d, want 3", res.Total)
	}
	if res.IncomingLines != 3 {
		t.Errorf("IncomingLines = %d, want 3", res.IncomingLines)
	}
	if res.InvalidIncoming != 1 {
		t.Errorf("InvalidIncoming = %d, want 1", res.InvalidIncoming)
	}
}

func TestMergeDefaultHeader(t *testing.T) {
	res := Merge("", "example.com\tFALSE\t/\tFALSE\t0\tk\tv\n")
	want := DefaultCookieHeader + "\n\nexample.com\tFALSE\t/\tFALSE\t0\tk\tv\n"
	if res.Content != want {
		t.Errorf("Content = %q, want %q", res.Content, want)
	}

	empty := Merge("", "")
	if empty.Content != DefaultCookieHeader+"\n" {
		t.Errorf("empty merge = %q", empty.Content)
	}
}

func TestMergeKeepsHTTPOnlyCookies(t *testing.T) {
	line := "#HttpOnly_.facebook.com\tTRUE\t/\tTRUE\t0\txs\tabc"
	res := Merge("", line)
	if res.Total != 1 || res.Added != 1 {
		t.Errorf("HttpOnly line should count as a cookie, got %+v", res)
	}
}

func TestMergeFiles(t *testing.T) {
	dir := t.TempDir()
	existingPath := filepath.Join(dir, "storage", "cookies.txt")
	incomingPath := filepath.Join(dir, "upload.txt")

	if err := os.WriteFile(incomingPath, []byte("example.com\tFALSE\t/\tFALSE\t0\tk\tv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	res, err := MergeFiles(existingPath, incomingPath)
	if err != nil {
		t.Fatalf("MergeFiles() error: %v", err)
	}
	if res.Added != 1 {
		t.Errorf("Added = %d, want 1", res.Added)
	}

	data, err := os.ReadFile(existingPath)
	if err != nil {
		t.Fatalf("reading merged file: %v", err)
	}
	if string(data) != res.Content {
		t.Errorf("file content = %q, want %q", data, res.Content)
	}

	// Merging the same file again adds nothing.
	res, err = MergeFiles(existingPath, incomingPath)
	if err != nil {
		t.Fatalf("second MergeFiles() error: %v", err)
	}
	if res.Added != 0 || res.Total != 1 {
		t.Errorf("second merge = %+v, want 0 added 1 total", res)
	}

	entries, _ := os.ReadDir(filepath.Dir(existingPath))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestMergeFilesMissingIncoming(t *testing.T) {
	dir := t.TempDir()
	if _, err := MergeFiles(filepath.Join(dir, "a.txt"), filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("MergeFiles() should fail when the incoming file is missing")
	}
}
