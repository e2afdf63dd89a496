package generation

import (
	"encoding/json"
	"strings"
)

// envelope is the JSON object an external process may print
type envelope struct {
	Output  *string `json:"output"`
	Success *bool   `json:"success"`
	Error   string  `json:"error"`
	Details string  `json:"details"`
}

// RecoverOutput extracts the assistant text from process output. A JSON
// envelope {"output": ..., "success": ...} is located by scanning for the
// first '{' and the last '}', so log lines printed around it are tolerated.
// When no envelope decodes, the trimmed raw text is the output.
//
// ok is false only when an envelope explicitly reports success=false; msg
// then carries its error text.
func RecoverOutput(raw string) (output string, ok bool, msg string) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		var env envelope
		if err := json.Unmarshal([]byte(raw[start:end+1]), &env); err == nil && (env.Output != nil || env.Success != nil) {
			if env.Success != nil && !*env.Success {
				msg = env.Error
				if env.Details != "" {
					msg = strings.TrimSpace(msg + ": " + env.Details)
				}
				return "", false, msg
			}
			if env.Output != nil {
				return strings.TrimSpace(*env.Output), true, ""
			}
			return "", true, ""
		}
	}
	return strings.TrimSpace(raw), true, ""
}
