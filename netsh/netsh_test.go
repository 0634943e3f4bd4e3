package netsh

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"a\rb\nc", []string{"a", "b", "c"}},
		{"a\n\nb\n", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		if got := SplitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecoder(t *testing.T) {
	if d, err := Decoder(""); err != nil || d != nil {
		t.Fatalf("Decoder(\"\") = %v, %v; want nil, nil", d, err)
	}
	if _, err := Decoder("koi8-r"); err == nil {
		t.Fatalf("expected error for unsupported encoding")
	}
}

func TestFileSourceDecodesCP866(t *testing.T) {
	raw, err := charmap.CodePage866.NewEncoder().String("SSID 1 : Дом\r\n    Сигнал : 80%\r\n")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "dump.txt")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src, err := NewFileSource(path, "cp866")
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	lines, err := src.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	want := []string{"SSID 1 : Дом", "    Сигнал : 80%"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("Lines = %q, want %q", lines, want)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src, _ := NewFileSource(filepath.Join(t.TempDir(), "missing"), "")
	if _, err := src.Lines(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCommandSourceSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	src := &CommandSource{Name: "sh", Args: []string{"-c", `printf 'SSID 1 : A\r\n    Канал : 6\r\n'`}}
	lines, err := src.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if want := []string{"SSID 1 : A", "    Канал : 6"}; !reflect.DeepEqual(lines, want) {
		t.Fatalf("Lines = %q, want %q", lines, want)
	}
}

func TestCommandSourceFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	src := &CommandSource{Name: "sh", Args: []string{"-c", "echo 'wlan service down' >&2; exit 3"}}
	_, err := src.Lines(context.Background())
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %v, want *CommandError", err)
	}
	if cmdErr.ExitCode != 3 || cmdErr.Stderr != "wlan service down" {
		t.Fatalf("CommandError = %+v", cmdErr)
	}
}

func TestNewCommandSourceRunsNetsh(t *testing.T) {
	src, err := NewCommandSource("cp866")
	if err != nil {
		t.Fatalf("NewCommandSource: %v", err)
	}
	if src.Name != "netsh" || !reflect.DeepEqual(src.Args, []string{"wlan", "show", "networks", "mode=Bssid"}) {
		t.Fatalf("command = %s %v", src.Name, src.Args)
	}
}
