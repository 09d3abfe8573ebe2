package submit

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
)

// Reply is the passman daemon's one-line answer to a command.
type Reply struct {
	Success bool
	Message string
	Raw     []byte
}

// ParseReply decodes {"success":bool,"message":string}. Unknown fields are
// ignored; a missing success field is a decode error.
func ParseReply(line []byte) (Reply, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Reply{}, fmt.Errorf("decode reply: empty reply")
	}
	if !gjson.ValidBytes(line) {
		return Reply{}, fmt.Errorf("decode reply: invalid JSON %q", truncate(line, 64))
	}

	fields := gjson.GetManyBytes(line, "success", "message")
	success, message := fields[0], fields[1]
	if success.Type != gjson.True && success.Type != gjson.False {
		return Reply{}, fmt.Errorf("decode reply: missing boolean success field")
	}

	return Reply{
		Success: success.Bool(),
		Message: message.String(),
		Raw:     append([]byte(nil), line...),
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
