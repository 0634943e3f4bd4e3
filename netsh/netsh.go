// Package netsh supplies raw scan dumps: either by running
// `netsh wlan show networks mode=Bssid` or by reading a saved dump.
package netsh

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Source yields the lines of one scan dump.
type Source interface {
	Lines(ctx context.Context) ([]string, error)
}

// CommandError is returned when the scan utility exits unsuccessfully.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Decoder returns the decoder for a named console encoding. An empty name or
// "utf-8" means no decoding.
func Decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "cp866", "ibm866":
		return charmap.CodePage866.NewDecoder(), nil
	case "cp1251", "windows-1251":
		return charmap.Windows1251.NewDecoder(), nil
	case "cp437", "ibm437":
		return charmap.CodePage437.NewDecoder(), nil
	}
	return nil, errors.Errorf("unsupported encoding %q", name)
}

// CommandSource runs the scan utility.
type CommandSource struct {
	Name    string
	Args    []string
	decoder *encoding.Decoder
}

// NewCommandSource returns a source running netsh with output decoded from enc.
func NewCommandSource(enc string) (*CommandSource, error) {
	dec, err := Decoder(enc)
	if err != nil {
		return nil, err
	}
	return &CommandSource{
		Name:    "netsh",
		Args:    []string{"wlan", "show", "networks", "mode=Bssid"},
		decoder: dec,
	}, nil
}

func (c *CommandSource) Lines(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderrText, _ := decode(c.decoder, stderr.Bytes())
			return nil, &CommandError{
				Command:  c.Name,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderrText),
				Err:      err,
			}
		}
		return nil, errors.Wrapf(err, "running %s", c.Name)
	}
	text, err := decode(c.decoder, stdout.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s output", c.Name)
	}
	return SplitLines(text), nil
}

// FileSource reads a saved dump from disk on every call.
type FileSource struct {
	Path    string
	decoder *encoding.Decoder
}

func NewFileSource(path, enc string) (*FileSource, error) {
	dec, err := Decoder(enc)
	if err != nil {
		return nil, err
	}
	return &FileSource{Path: path, decoder: dec}, nil
}

func (f *FileSource) Lines(ctx context.Context) ([]string, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.Wrap(err, "reading scan dump")
	}
	text, err := decode(f.decoder, b)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", f.Path)
	}
	return SplitLines(text), nil
}

// SplitLines splits on \n, \r\n and lone \r, without a trailing empty line.
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func decode(dec *encoding.Decoder, b []byte) (string, error) {
	if dec == nil {
		return string(b), nil
	}
	out, err := dec.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
