package config

import "time"

// DefaultSocketPath is where the passman daemon binds its listener.
const DefaultSocketPath = "/tmp/passman.sock"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Socket: SocketConfig{
			Path:         DefaultSocketPath,
			DialTimeout:  2 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Submit: SubmitConfig{
			AwaitReply:   false,
			ReplyTimeout: 5 * time.Second,
		},
		Payload: PayloadConfig{
			MaxSizeRaw:  "0",
			MaxSize:     0,
			RequireJSON: false,
		},
		Log: LogConfig{Level: "info"},
	}
}
