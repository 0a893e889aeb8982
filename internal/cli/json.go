package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonOutput is set by --json.
var jsonOutput bool

// Response is the envelope every --json command prints exactly once.
//
//	{"ok": true, "data": {...}, "warnings": [...], "meta": {...}}
//	{"ok": false, "error": {"code": "...", "message": "...", "suggestion": "..."}}
type Response struct {
	OK       bool       `json:"ok"`
	Data     any        `json:"data,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
	Warnings []Warning  `json:"warnings,omitempty"`
	Meta     *Meta      `json:"meta,omitempty"`
}

// ErrorInfo carries one of the error codes from errors.go.
type ErrorInfo struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning is a condition the command recovered from.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta describes the size of the payload.
type Meta struct {
	Count     int  `json:"count,omitempty"`
	Total     int  `json:"total,omitempty"`
	Truncated bool `json:"truncated,omitempty"`
	Degraded  bool `json:"degraded,omitempty"`
}

func isJSONOutput() bool { return jsonOutput }

func outputJSON(resp Response) {
	// os.Stdout is read per call so tests can swap it.
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func outputSuccess(data any, meta *Meta) {
	outputSuccessWithWarnings(data, nil, meta)
}

func outputSuccessWithWarnings(data any, warnings []Warning, meta *Meta) {
	outputJSON(Response{OK: true, Data: data, Warnings: warnings, Meta: meta})
}

func outputError(code, message, suggestion string) {
	outputJSON(Response{Error: &ErrorInfo{Code: code, Message: message, Suggestion: suggestion}})
}

// handleError reports err in the active output mode. With --json the error
// becomes the envelope and nil is returned so cobra stays quiet; otherwise
// err comes back with the suggestion appended.
func handleError(code string, err error, suggestion string) error {
	if jsonOutput {
		outputError(code, err.Error(), suggestion)
		return nil
	}
	if suggestion == "" {
		return err
	}
	return fmt.Errorf("%w\n\n%s", err, suggestion)
}

func handleErrorMsg(code, message, suggestion string) error {
	return handleError(code, fmt.Errorf("%s", message), suggestion)
}
