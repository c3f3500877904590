// Package hook implements the editor hook protocol: one JSON object on
// standard input, at most one JSON object on standard output, and exit
// code 2 with feedback on standard error when an edit is blocked.
package hook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Event names as they appear in hook payloads.
const (
	EventSessionStart     = "SessionStart"
	EventSessionEnd       = "SessionEnd"
	EventUserPromptSubmit = "UserPromptSubmit"
	EventPreToolUse       = "PreToolUse"
)

// Input is the payload read from standard input.
type Input struct {
	SessionID     string
	CWD           string
	HookEventName string
	Reason        string
	Source        string
	ToolName      string
	FilePath      string
}

type toolInput struct {
	FilePath     string `json:"file_path"`
	NotebookPath string `json:"notebook_path"`
}

type inputJSON struct {
	SessionID     string     `json:"session_id"`
	CWD           string     `json:"cwd"`
	HookEventName string     `json:"hook_event_name"`
	Reason        string     `json:"reason"`
	Source        string     `json:"source"`
	ToolName      string     `json:"tool_name"`
	ToolInput     *toolInput `json:"tool_input"`
	// Older payloads used camelCase for the tool arguments.
	ToolInputCamel *toolInput `json:"toolInput"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (in *Input) UnmarshalJSON(data []byte) error {
	var raw inputJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*in = Input{
		SessionID:     raw.SessionID,
		CWD:           raw.CWD,
		HookEventName: raw.HookEventName,
		Reason:        raw.Reason,
		Source:        raw.Source,
		ToolName:      raw.ToolName,
	}
	for _, ti := range []*toolInput{raw.ToolInput, raw.ToolInputCamel} {
		if ti == nil {
			continue
		}
		if ti.FilePath != "" {
			in.FilePath = ti.FilePath
		} else if ti.NotebookPath != "" {
			in.FilePath = ti.NotebookPath
		}
		if in.FilePath != "" {
			break
		}
	}
	return nil
}

// UnknownSession is used when the payload carries no session id.
const UnknownSession = "unknown"

// ReadInput decodes the payload from r. An unreadable or malformed payload
// is not an error: the result falls back to the working directory reported
// by getwd, and a missing session id becomes UnknownSession.
func ReadInput(r io.Reader, getwd func() (string, error)) Input {
	var in Input
	if data, err := io.ReadAll(r); err == nil && len(bytes.TrimSpace(data)) > 0 {
		if json.Unmarshal(data, &in) != nil {
			in = Input{}
		}
	}
	if in.CWD == "" && getwd != nil {
		if wd, err := getwd(); err == nil {
			in.CWD = wd
		}
	}
	if in.SessionID == "" {
		in.SessionID = UnknownSession
	}
	return in
}

// Output is the payload written to standard output.
type Output struct {
	HookSpecificOutput SpecificOutput `json:"hookSpecificOutput"`
}

// SpecificOutput carries the event tag and any context to inject.
type SpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

// NewOutput creates an Output for event.
func NewOutput(event, context string) *Output {
	return &Output{HookSpecificOutput: SpecificOutput{HookEventName: event, AdditionalContext: context}}
}

// WriteOutput writes out as a single line of JSON. A nil out writes nothing.
func WriteOutput(w io.Writer, out *Output) error {
	if out == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write hook output: %w", err)
	}
	return nil
}
