// Package categorizer sends extracted statement text to a language model and
// turns its answer into validated, date-ordered candidate transactions.
package categorizer

import (
	"context"
	"encoding/json"
	"strings"

	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// UserPromptPrefix precedes the statement text in the user message.
const UserPromptPrefix = "Please analyze this bank statement text and extract all transactions as JSON:\n\n"

// Client is the categorization capability the pipeline depends on.
type Client interface {
	Categorize(ctx context.Context, req Request) Result
}

// Request is the text to categorize. When Pages and SelectedPages are both
// set, only the selected 1-based pages are sent.
type Request struct {
	Text          string
	Pages         []string
	SelectedPages []int
}

// Input returns the text that is sent to the model. Selected pages that do
// not exist contribute an empty string.
func (r Request) Input() string {
	if len(r.Pages) == 0 || len(r.SelectedPages) == 0 {
		return r.Text
	}
	parts := make([]string, 0, len(r.SelectedPages))
	for _, n := range r.SelectedPages {
		if n >= 1 && n <= len(r.Pages) {
			parts = append(parts, r.Pages[n-1])
		} else {
			parts = append(parts, "")
		}
	}
	return strings.Join(parts, "\n\n")
}

// Result is the tagged outcome of a categorization call.
type Result struct {
	Success      bool
	Transactions []models.CandidateTransaction
	TotalTokens  int
	Error        pipelineerror.Code
	Message      string
	RawResponse  string
}

// Failure builds an unsuccessful result. An empty message uses the code's
// default message.
func Failure(code pipelineerror.Code, message string) Result {
	if message == "" {
		message = code.Message()
	}
	return Result{Error: code, Message: message}
}

// Err converts a failed result into a *pipelineerror.CategorizationError,
// or nil for a successful one.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	var cause error
	if r.Message != "" {
		cause = messageError(r.Message)
	}
	return &pipelineerror.CategorizationError{Code: r.Error, RawResponse: r.RawResponse, Err: cause}
}

type messageError string

func (e messageError) Error() string { return string(e) }

type resultJSON struct {
	Success      bool                          `json:"success"`
	Transactions []models.CandidateTransaction `json:"transactions,omitempty"`
	TotalTokens  int                           `json:"totalTokens,omitempty"`
	Error        string                        `json:"error,omitempty"`
	Message      string                        `json:"message,omitempty"`
	RawResponse  string                        `json:"rawResponse,omitempty"`
}

// MarshalJSON writes {success, transactions?, totalTokens?, error?, message?, rawResponse?}.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Success:     r.Success,
		TotalTokens: r.TotalTokens,
		Error:       string(r.Error),
		Message:     r.Message,
		RawResponse: r.RawResponse,
	}
	if r.Success {
		out.Transactions = r.Transactions
		if out.Transactions == nil {
			out.Transactions = []models.CandidateTransaction{}
		}
	}
	return json.Marshal(out)
}
