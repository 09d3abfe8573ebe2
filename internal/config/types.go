// Package config resolves, parses, validates, and defaults cmdsock configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by cmdsock.
type Config struct {
	Socket  SocketConfig
	Submit  SubmitConfig
	Payload PayloadConfig
	Log     LogConfig
}

// SocketConfig identifies the daemon endpoint and bounds connection I/O.
type SocketConfig struct {
	Path         string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// SubmitConfig controls what happens after the payload is written.
type SubmitConfig struct {
	AwaitReply   bool
	ReplyTimeout time.Duration
}

// PayloadConfig controls local checks applied before any connection is made.
type PayloadConfig struct {
	MaxSizeRaw  string
	MaxSize     uint64
	RequireJSON bool
}

// LogConfig controls the JSONL log level.
type LogConfig struct {
	Level string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
