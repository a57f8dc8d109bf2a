package usecase

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeDump          ErrorType = "DUMP_ERROR"
	ErrorTypeArchive       ErrorType = "ARCHIVE_ERROR"
	ErrorTypePublish       ErrorType = "PUBLISH_ERROR"
)

// BackupError is the typed failure surfaced by a backup run.
type BackupError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *BackupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *BackupError) Unwrap() error {
	return e.Cause
}

func NewConfigurationError(message string) *BackupError {
	return &BackupError{Type: ErrorTypeConfiguration, Message: message}
}

func NewDumpError(message string, cause error) *BackupError {
	return &BackupError{Type: ErrorTypeDump, Message: message, Cause: cause}
}

func NewArchiveError(message string, cause error) *BackupError {
	return &BackupError{Type: ErrorTypeArchive, Message: message, Cause: cause}
}

func NewPublishError(destination string, cause error) *BackupError {
	return &BackupError{Type: ErrorTypePublish, Message: "copy to " + destination + " failed", Cause: cause}
}

// IsType reports whether any error in err's chain is a BackupError of type t.
func IsType(err error, t ErrorType) bool {
	var backupErr *BackupError
	return errors.As(err, &backupErr) && backupErr.Type == t
}
