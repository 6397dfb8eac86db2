package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
)

// errorOutput is the machine-readable error printed on stderr
type errorOutput struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// printJSON writes v to stdout as indented JSON
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func errorOf(err error) errorOutput {
	out := errorOutput{Code: "ERROR", Message: err.Error()}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		out.Code = string(ae.Code)
		out.Message = ae.Error()
		out.Hint = ae.Hint
	}
	return out
}

// printError writes err to stderr as JSON
func printError(err error) {
	data, mErr := json.MarshalIndent(errorOf(err), "", "  ")
	if mErr != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Fprintln(os.Stderr, string(data))
}
