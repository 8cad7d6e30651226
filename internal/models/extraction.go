package models

import (
	"encoding/json"

	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// ExtractionResult is the tagged outcome of turning a statement file into text.
// Exactly one of Data or Err is set.
type ExtractionResult struct {
	Data             string
	Pages            []string
	Err              pipelineerror.Code
	Message          string
	RequiresPassword bool
}

// OK reports whether extraction produced data.
func (r ExtractionResult) OK() bool {
	return r.Err == pipelineerror.CodeNone
}

// ExtractionSuccess builds a successful result.
func ExtractionSuccess(data string, pages []string) ExtractionResult {
	return ExtractionResult{Data: data, Pages: pages}
}

// ExtractionFailure builds a failed result carrying code and its message.
func ExtractionFailure(code pipelineerror.Code) ExtractionResult {
	return ExtractionResult{
		Err:              code,
		Message:          code.Message(),
		RequiresPassword: code == pipelineerror.CodePasswordRequired,
	}
}

// ExtractionFailureWithMessage is ExtractionFailure with a custom message.
func ExtractionFailureWithMessage(code pipelineerror.Code, message string) ExtractionResult {
	r := ExtractionFailure(code)
	if message != "" {
		r.Message = message
	}
	return r
}

type extractionResultJSON struct {
	Data             *string  `json:"data"`
	Error            *string  `json:"error"`
	Message          string   `json:"message,omitempty"`
	Pages            []string `json:"pages,omitempty"`
	RequiresPassword bool     `json:"requiresPassword"`
}

// MarshalJSON writes {data, error, requiresPassword} with null for the absent side.
func (r ExtractionResult) MarshalJSON() ([]byte, error) {
	out := extractionResultJSON{RequiresPassword: r.RequiresPassword}
	if r.OK() {
		data := r.Data
		out.Data = &data
		out.Pages = r.Pages
	} else {
		code := string(r.Err)
		out.Error = &code
		out.Message = r.Message
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the shape written by MarshalJSON.
func (r *ExtractionResult) UnmarshalJSON(b []byte) error {
	var in extractionResultJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*r = ExtractionResult{RequiresPassword: in.RequiresPassword, Message: in.Message, Pages: in.Pages}
	if in.Data != nil {
		r.Data = *in.Data
	}
	if in.Error != nil {
		r.Err = pipelineerror.Code(*in.Error)
	}
	return nil
}
