package models

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// ============== FileRecord Tests ==============

func TestNewFileRecord(t *testing.T) {
	root := filepath.Join(os.TempDir(), "root")
	rec := NewFileRecord(root, "sub/dir/file.txt")

	if rec.RelativePath != "sub/dir/file.txt" {
		t.Errorf("RelativePath = %s, want sub/dir/file.txt", rec.RelativePath)
	}
	want := filepath.Join(root, "sub", "dir", "file.txt")
	if rec.AbsolutePath != want {
		t.Errorf("AbsolutePath = %s, want %s", rec.AbsolutePath, want)
	}
	if rec.Hash != "" {
		t.Error("Hash should be empty until fingerprinted")
	}
	if rec.Dir() != "sub/dir" {
		t.Errorf("Dir() = %s, want sub/dir", rec.Dir())
	}
	if NewFileRecord(root, "top.txt").Dir() != "." {
		t.Error("Dir() of a root-level file should be '.'")
	}
}

func TestDirectorySnapshot(t *testing.T) {
	snap := &DirectorySnapshot{
		RootPath: "/data",
		Files: []FileRecord{
			{RelativePath: "a.txt", Size: 10},
			{RelativePath: "b/c.txt", Size: 32},
		},
	}

	t.Run("Lookup", func(t *testing.T) {
		rec, ok := snap.Lookup("b/c.txt")
		if !ok {
			t.Fatal("Lookup() should find b/c.txt")
		}
		if rec.Size != 32 {
			t.Errorf("Size = %d, want 32", rec.Size)
		}
		if _, ok := snap.Lookup("missing"); ok {
			t.Error("Lookup() should not find missing file")
		}
	})

	t.Run("TotalBytes", func(t *testing.T) {
		if got := snap.TotalBytes(); got != 42 {
			t.Errorf("TotalBytes() = %d, want 42", got)
		}
	})
}

func TestCacheEntryMatches(t *testing.T) {
	entry := CacheEntry{Hash: "abc", Size: 5, ModifiedTimeMillis: 1506644493902.2776}

	tests := []struct {
		name  string
		size  int64
		mtime float64
		want  bool
	}{
		{"SameMetadata", 5, 1506644493902.2776, true},
		{"DifferentSize", 6, 1506644493902.2776, false},
		{"DifferentMtime", 5, 1506644493903, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.Matches(tt.size, tt.mtime); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToMillis(t *testing.T) {
	ts := time.Unix(1506644493, 902277600)
	got := ToMillis(ts)
	if got < 1506644493902 || got >= 1506644493903 {
		t.Errorf("ToMillis() = %f, want 1506644493902.x", got)
	}
	if ToMillis(ts) != got {
		t.Error("ToMillis() should be deterministic")
	}
}

// ============== ExecutionMode Tests ==============

func TestExecutionMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    ExecutionMode
		mutates bool
		verb    string
		wantErr bool
	}{
		{"DryRun", DryRun(), false, "delete", false},
		{"Delete", Delete(), true, "delete", false},
		{"Move", MoveTo("/backup"), true, "move", false},
		{"MoveWithoutDestination", ExecutionMode{Kind: ModeMove}, true, "move", true},
		{"Unknown", ExecutionMode{Kind: "shred"}, true, "delete", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Mutates(); got != tt.mutates {
				t.Errorf("Mutates() = %v, want %v", got, tt.mutates)
			}
			if got := tt.mode.Verb(); got != tt.verb {
				t.Errorf("Verb() = %s, want %s", got, tt.verb)
			}
			err := tt.mode.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if MoveTo("/backup").String() != "move to /backup" {
		t.Errorf("String() = %s", MoveTo("/backup").String())
	}
}

// ============== Report Tests ==============

func TestRunStatusExitCode(t *testing.T) {
	tests := []struct {
		status RunStatus
		want   int
	}{
		{StatusSuccess, 0},
		{StatusFailed, 2},
		{StatusCancelled, 3},
		{RunStatus("bogus"), 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunReportAddError(t *testing.T) {
	report := &RunReport{Status: StatusSuccess}
	report.AddError(&FileError{Path: "/src/a.txt", Op: "delete", Err: os.ErrPermission})

	if report.Status != StatusSuccess {
		t.Errorf("Status = %s, want success", report.Status)
	}
	if report.Status.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", report.Status.ExitCode())
	}
	if len(report.Errors) != 1 {
		t.Fatalf("Errors length = %d, want 1", len(report.Errors))
	}
	if report.Errors[0].Path != "/src/a.txt" || report.Errors[0].Operation != "delete" {
		t.Errorf("unexpected error entry: %+v", report.Errors[0])
	}

	report.Status = StatusCancelled
	report.AddError(&FileError{Path: "x", Op: "move", Err: os.ErrExist})
	if report.Status != StatusCancelled {
		t.Error("AddError() should never change the status")
	}
}

func TestFileErrorUnwrap(t *testing.T) {
	err := &FileError{Path: "a", Op: "remove", Err: os.ErrNotExist}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("FileError should unwrap to the underlying error")
	}
	if err.Error() != "remove a: "+os.ErrNotExist.Error() {
		t.Errorf("Error() = %s", err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "TestField",
		Message: "test message",
	}

	expected := "TestField: test message"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}
