package submit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantSuccess bool
		wantMessage string
		wantErr     string
	}{
		{name: "success", line: `{"success":true,"message":"New container created: work"}` + "\n", wantSuccess: true, wantMessage: "New container created: work"},
		{name: "failure", line: `{"success":false,"message":"Container not found: x"}`, wantSuccess: false, wantMessage: "Container not found: x"},
		{name: "extra fields ignored", line: `{"message":"m","success":true,"id":4}`, wantSuccess: true, wantMessage: "m"},
		{name: "missing message", line: `{"success":true}`, wantSuccess: true},
		{name: "empty", line: "\n", wantErr: "empty reply"},
		{name: "not json", line: "Received echoed message: hi", wantErr: "invalid JSON"},
		{name: "missing success", line: `{"message":"m"}`, wantErr: "missing boolean success"},
		{name: "string success", line: `{"success":"yes"}`, wantErr: "missing boolean success"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reply, err := ParseReply([]byte(tc.line))
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantSuccess, reply.Success)
			require.Equal(t, tc.wantMessage, reply.Message)
		})
	}
}

func TestParseReplyTruncatesInvalidPayloadInError(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'z'
	}
	_, err := ParseReply(long)
	require.Error(t, err)
	require.Contains(t, err.Error(), "...")
	require.Less(t, len(err.Error()), 120)
}
