// Package payload loads the command payload file and enforces the local
// preconditions checked before any socket I/O.
package payload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
)

var (
	ErrMissingPath = errors.New("missing payload file argument")
	ErrNotFound    = errors.New("payload file does not exist")
	ErrDirectory   = errors.New("payload path is a directory")
	ErrEmpty       = errors.New("payload file is empty")
	ErrTooLarge    = errors.New("payload file exceeds size limit")
	ErrMalformed   = errors.New("payload is not well-formed JSON")
)

// Limits are the optional checks layered on top of the non-empty rule.
type Limits struct {
	// MaxSize is the largest accepted payload in bytes; zero means unlimited.
	MaxSize     uint64
	RequireJSON bool
}

// Payload is one command read from disk. Data is transmitted verbatim.
type Payload struct {
	Path string
	Data []byte
}

// Size returns the payload length in bytes.
func (p Payload) Size() int {
	return len(p.Data)
}

// HumanSize renders the payload length for user-facing messages.
func (p Payload) HumanSize() string {
	return humanize.IBytes(uint64(len(p.Data)))
}

// CommandName extracts a best-effort command label from a JSON object
// payload: the "cmd" string field when present, otherwise the first key
// (externally tagged enums such as {"AddEntry":{...}}). Returns "" for
// anything else.
func (p Payload) CommandName() string {
	if !gjson.ValidBytes(p.Data) {
		return ""
	}
	root := gjson.ParseBytes(p.Data)
	if !root.IsObject() {
		return ""
	}
	if cmd := root.Get("cmd"); cmd.Type == gjson.String {
		return cmd.String()
	}

	var name string
	root.ForEach(func(key, _ gjson.Result) bool {
		name = key.String()
		return false
	})
	return name
}

// StdinPath names standard input as the payload source.
const StdinPath = "-"

// Load reads path and applies the precondition checks in order: argument
// present, file exists, not a directory, within size limit, non-empty, and
// (optionally) well-formed JSON. StdinPath reads standard input.
func Load(path string, limits Limits) (Payload, error) {
	if strings.TrimSpace(path) == "" {
		return Payload{}, ErrMissingPath
	}

	f, err := open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Payload{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Payload{}, fmt.Errorf("open payload: %w", err)
	}
	if f != os.Stdin {
		defer f.Close()
	}

	info, err := f.Stat()
	if err != nil {
		return Payload{}, fmt.Errorf("stat payload: %w", err)
	}
	if info.IsDir() {
		return Payload{}, fmt.Errorf("%w: %s", ErrDirectory, path)
	}
	// Pipes and devices report size 0; only regular files are pre-checked.
	if info.Mode().IsRegular() && limits.MaxSize > 0 && uint64(info.Size()) > limits.MaxSize {
		return Payload{}, fmt.Errorf("%w: %s is %s, limit %s",
			ErrTooLarge, path, humanize.IBytes(uint64(info.Size())), humanize.IBytes(limits.MaxSize))
	}

	// The limiter also catches files that grow after Stat.
	var r io.Reader = f
	if limits.MaxSize > 0 {
		r = io.LimitReader(f, int64(limits.MaxSize)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, fmt.Errorf("read payload: %w", err)
	}
	if limits.MaxSize > 0 && uint64(len(data)) > limits.MaxSize {
		return Payload{}, fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, path, humanize.IBytes(limits.MaxSize))
	}
	if len(data) == 0 {
		return Payload{}, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	if limits.RequireJSON && !gjson.ValidBytes(data) {
		return Payload{}, fmt.Errorf("%w: %s", ErrMalformed, path)
	}

	return Payload{Path: path, Data: data}, nil
}

func open(path string) (*os.File, error) {
	if path == StdinPath {
		return os.Stdin, nil
	}
	return os.Open(path)
}
