package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type jsoncConfig struct {
	Socket  *jsoncSocket  `json:"socket"`
	Submit  *jsoncSubmit  `json:"submit"`
	Payload *jsoncPayload `json:"payload"`
	Log     *jsoncLog     `json:"log"`
}

type jsoncSocket struct {
	Path           *string `json:"path"`
	DialTimeoutMS  *int    `json:"dial_timeout_ms"`
	WriteTimeoutMS *int    `json:"write_timeout_ms"`
}

type jsoncSubmit struct {
	AwaitReply     *bool `json:"await_reply"`
	ReplyTimeoutMS *int  `json:"reply_timeout_ms"`
}

type jsoncPayload struct {
	MaxSize     *jsoncSize `json:"max_size"`
	RequireJSON *bool      `json:"require_json"`
}

type jsoncLog struct {
	Level *string `json:"level"`
}

// jsoncSize accepts either a byte count or a humanized size string ("64 KiB").
type jsoncSize string

func (s *jsoncSize) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*s = jsoncSize(fmt.Sprintf("%d", n))
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = jsoncSize(strings.TrimSpace(text))
		return nil
	}

	return fmt.Errorf("expected byte count or size string")
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if s := payload.Socket; s != nil {
		if s.Path != nil {
			cfg.Socket.Path = strings.TrimSpace(*s.Path)
		}
		if err := setMillis(&cfg.Socket.DialTimeout, "socket.dial_timeout_ms", s.DialTimeoutMS); err != nil {
			return err
		}
		if err := setMillis(&cfg.Socket.WriteTimeout, "socket.write_timeout_ms", s.WriteTimeoutMS); err != nil {
			return err
		}
	}

	if s := payload.Submit; s != nil {
		if s.AwaitReply != nil {
			cfg.Submit.AwaitReply = *s.AwaitReply
		}
		if err := setMillis(&cfg.Submit.ReplyTimeout, "submit.reply_timeout_ms", s.ReplyTimeoutMS); err != nil {
			return err
		}
	}

	if p := payload.Payload; p != nil {
		if p.MaxSize != nil {
			raw := string(*p.MaxSize)
			size, err := parseSize(raw)
			if err != nil {
				return fmt.Errorf("invalid payload.max_size: %w", err)
			}
			cfg.Payload.MaxSizeRaw = raw
			cfg.Payload.MaxSize = size
		}
		if p.RequireJSON != nil {
			cfg.Payload.RequireJSON = *p.RequireJSON
		}
	}

	if payload.Log != nil && payload.Log.Level != nil {
		cfg.Log.Level = strings.TrimSpace(*payload.Log.Level)
	}

	return nil
}

const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// setMillis keeps negative values negative so Validate can reject them, and
// refuses values whose Duration would overflow.
func setMillis(dst *time.Duration, key string, ms *int) error {
	if ms == nil {
		return nil
	}
	if v := int64(*ms); v > maxMillis || v < -maxMillis {
		return fmt.Errorf("invalid %s: %d is out of range", key, *ms)
	}
	*dst = time.Duration(*ms) * time.Millisecond
	return nil
}

// parseSize treats "" and "0" as unlimited.
func parseSize(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	if strings.HasPrefix(raw, "-") {
		return 0, fmt.Errorf("size %q must not be negative", raw)
	}
	return humanize.ParseBytes(raw)
}

// normalizeJSONC blanks out // and /* */ comments and drops trailing commas
// so encoding/json can decode the result. Byte offsets of surviving tokens
// are preserved for line/column error reporting.
func normalizeJSONC(content string) (string, error) {
	src := []byte(content)
	out := make([]byte, 0, len(src))

	const (
		code = iota
		str
		lineComment
		blockComment
	)
	state := code

	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch state {
		case str:
			out = append(out, ch)
			if ch == '\\' && i+1 < len(src) {
				i++
				out = append(out, src[i])
			} else if ch == '"' {
				state = code
			}
		case lineComment:
			if ch == '\n' || ch == '\r' {
				state = code
				out = append(out, ch)
			} else {
				out = append(out, ' ')
			}
		case blockComment:
			if ch == '*' && i+1 < len(src) && src[i+1] == '/' {
				state = code
				out = append(out, ' ', ' ')
				i++
			} else if ch == '\n' || ch == '\r' || ch == '\t' {
				out = append(out, ch)
			} else {
				out = append(out, ' ')
			}
		default:
			switch {
			case ch == '"':
				state = str
				out = append(out, ch)
			case ch == '/' && i+1 < len(src) && src[i+1] == '/':
				state = lineComment
				out = append(out, ' ', ' ')
				i++
			case ch == '/' && i+1 < len(src) && src[i+1] == '*':
				state = blockComment
				out = append(out, ' ', ' ')
				i++
			default:
				out = append(out, ch)
			}
		}
	}

	if state == blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return string(dropTrailingCommas(out)), nil
}

// dropTrailingCommas replaces a comma followed only by whitespace and a
// closing bracket with a space. Input must already be comment-free.
func dropTrailingCommas(src []byte) []byte {
	inString := false
	for i := 0; i < len(src); i++ {
		ch := src[i]
		if inString {
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			continue
		}
		if ch != ',' {
			continue
		}
		j := i + 1
		for j < len(src) && strings.IndexByte(" \t\r\n", src[j]) >= 0 {
			j++
		}
		if j < len(src) && (src[j] == '}' || src[j] == ']') {
			src[i] = ' '
		}
	}
	return src
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var offset int64 = -1

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}
	if offset < 0 {
		return err
	}

	line, col := offsetToLineCol(content, offset)
	return fmt.Errorf("line %d column %d: %w", line, col, err)
}

// offsetToLineCol converts a decoder offset (bytes consumed, 1-based end)
// into a 1-based line and column.
func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}
	limit := min(int(offset), len(content))

	before := content[:limit-1]
	line := strings.Count(before, "\n") + 1
	col := limit - (strings.LastIndexByte(before, '\n') + 1)
	return line, col
}
