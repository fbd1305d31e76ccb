package logmanager

import (
	"errors"
	"io/fs"
	"syscall"
)

// Setup and runtime error kinds
var (
	ErrInvalidLogLevelFormat      = errors.New("log level format is invalid")
	ErrInvalidRotationFileFormat  = errors.New("rotation file format is invalid")
	ErrDirectoryResolutionFailed  = errors.New("log directory resolution failed")
	ErrDirectoryDataLocalNotFound = errors.New("directory data local not found")
	ErrBinPathNotFound            = errors.New("bin path not found")
	ErrBinNameNotFound            = errors.New("bin name not found")
	ErrDirectoryCreationFailed    = errors.New("directory creation failed")
	ErrSinkInstallationFailed     = errors.New("sink installation failed")
	ErrRollingFileFailed          = errors.New("rolling file failed")
	ErrChannelClosed              = errors.New("channel closed")
)

// FailureKind classifies a failed file operation
type FailureKind int

const (
	FailureOther FailureKind = iota
	FailureDirectoryUnreachable
	FailurePermissionDenied
	FailureDiskFull
)

func (k FailureKind) String() string {
	switch k {
	case FailureDirectoryUnreachable:
		return "directory unreachable"
	case FailurePermissionDenied:
		return "permission denied"
	case FailureDiskFull:
		return "disk full"
	default:
		return "io failure"
	}
}

// WriteError reports a failed open, rotation or append on a log file.
// errors.Is(err, ErrRollingFileFailed) is true for every WriteError.
type WriteError struct {
	Kind FailureKind
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return "logmanager: " + e.Op + " '" + e.Path + "': " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is matches ErrRollingFileFailed
func (e *WriteError) Is(target error) bool {
	return target == ErrRollingFileFailed
}

// newWriteError classifies err by its underlying cause
func newWriteError(op, path string, err error) *WriteError {
	kind := FailureOther
	switch {
	case errors.Is(err, syscall.ENOSPC):
		kind = FailureDiskFull
	case errors.Is(err, fs.ErrPermission):
		kind = FailurePermissionDenied
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		kind = FailureDirectoryUnreachable
	}
	return &WriteError{Kind: kind, Op: op, Path: path, Err: err}
}
