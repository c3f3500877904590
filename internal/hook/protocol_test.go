package hook

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func fixedWd(dir string) func() (string, error) {
	return func() (string, error) { return dir, nil }
}

func TestReadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Input
	}{
		{
			name:  "full payload",
			input: `{"session_id":"abc","cwd":"/w","hook_event_name":"SessionEnd","reason":"clear"}`,
			want:  Input{SessionID: "abc", CWD: "/w", HookEventName: "SessionEnd", Reason: "clear"},
		},
		{
			name:  "malformed falls back to working dir",
			input: `{not json`,
			want:  Input{SessionID: UnknownSession, CWD: "/fallback"},
		},
		{
			name:  "empty input",
			input: "",
			want:  Input{SessionID: UnknownSession, CWD: "/fallback"},
		},
		{
			name:  "missing cwd and session",
			input: `{"source":"startup"}`,
			want:  Input{SessionID: UnknownSession, CWD: "/fallback", Source: "startup"},
		},
		{
			name:  "tool input file path",
			input: `{"session_id":"s","cwd":"/w","tool_name":"Edit","tool_input":{"file_path":"/w/a.go"}}`,
			want:  Input{SessionID: "s", CWD: "/w", ToolName: "Edit", FilePath: "/w/a.go"},
		},
		{
			name:  "camel case tool input",
			input: `{"session_id":"s","cwd":"/w","toolInput":{"file_path":"/w/b.go"}}`,
			want:  Input{SessionID: "s", CWD: "/w", FilePath: "/w/b.go"},
		},
		{
			name:  "notebook path",
			input: `{"session_id":"s","cwd":"/w","tool_input":{"notebook_path":"/w/n.ipynb"}}`,
			want:  Input{SessionID: "s", CWD: "/w", FilePath: "/w/n.ipynb"},
		},
		{
			name:  "wrong field type",
			input: `{"session_id":42}`,
			want:  Input{SessionID: UnknownSession, CWD: "/fallback"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReadInput(strings.NewReader(tt.input), fixedWd("/fallback"))
			if got != tt.want {
				t.Errorf("ReadInput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadInput_NoWorkingDir(t *testing.T) {
	failing := func() (string, error) { return "", errors.New("gone") }
	got := ReadInput(strings.NewReader(""), failing)
	if got.CWD != "" || got.SessionID != UnknownSession {
		t.Errorf("ReadInput() = %+v", got)
	}
}

func TestWriteOutput(t *testing.T) {
	t.Run("with context", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteOutput(&buf, NewOutput(EventSessionStart, "> <ctx> & more")); err != nil {
			t.Fatal(err)
		}
		want := `{"hookSpecificOutput":{"hookEventName":"SessionStart","additionalContext":"> <ctx> & more"}}` + "\n"
		if buf.String() != want {
			t.Errorf("WriteOutput() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("without context", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteOutput(&buf, NewOutput(EventSessionEnd, "")); err != nil {
			t.Fatal(err)
		}
		if buf.String() != `{"hookSpecificOutput":{"hookEventName":"SessionEnd"}}`+"\n" {
			t.Errorf("WriteOutput() = %q", buf.String())
		}
	})

	t.Run("nil output", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteOutput(&buf, nil); err != nil || buf.Len() != 0 {
			t.Errorf("WriteOutput(nil) wrote %q, %v", buf.String(), err)
		}
	})
}
