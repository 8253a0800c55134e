package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KotFed0t/risk_monitor/internal/model"
)

var (
	ErrUnknownAccount    = errors.New("error unknown account")
	ErrNoAccountSelected = errors.New("error no account selected")
	ErrSubmitInProgress  = errors.New("error submit already in progress")
	ErrStaleResponse     = errors.New("error response for a deselected account")
)

// DirectoryLoadError means the account list could not be fetched. It is
// terminal for the session.
type DirectoryLoadError struct {
	Err error
}

func (e *DirectoryLoadError) Error() string {
	return "failed to load client list: " + e.Err.Error()
}

func (e *DirectoryLoadError) Unwrap() error {
	return e.Err
}

// RefreshError is set when a positions or margin status fetch failed. The
// previous snapshots stay in place.
type RefreshError struct {
	AccountID model.AccountID
	Positions error
	Risk      error
}

func (e *RefreshError) Error() string {
	parts := make([]string, 0, 2)
	if e.Positions != nil {
		parts = append(parts, "positions: "+e.Positions.Error())
	}
	if e.Risk != nil {
		parts = append(parts, "margin status: "+e.Risk.Error())
	}
	return fmt.Sprintf("failed to refresh client %s: %s", e.AccountID, strings.Join(parts, "; "))
}

func (e *RefreshError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Positions != nil {
		errs = append(errs, e.Positions)
	}
	if e.Risk != nil {
		errs = append(errs, e.Risk)
	}
	return errs
}

type ValidationError struct {
	Field  model.DraftField
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SubmissionError means the backend rejected or never received a create
// request. The draft is kept for another attempt.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "failed to add position: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
