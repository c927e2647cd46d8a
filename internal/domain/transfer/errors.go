package transfer

import (
	"context"
	"errors"

	"github.com/codedrop/relay/internal/utils/platformerrors"
)

// ErrCodeTaken is returned by RecordStore.PutIfAbsent when a live record
// already holds the code.
var ErrCodeTaken = errors.New("code already issued")

// Client-facing messages.
const (
	MsgNoFile          = "No file provided"
	MsgTooLarge        = "File exceeds 10 MB limit"
	MsgInvalidFile     = "File data is not valid base64"
	MsgUploadFailed    = "Upload failed. Please try again."
	MsgCodeRequired    = "Code parameter is required"
	MsgNotFound        = "Invalid code or file not found"
	MsgExpired         = "File has expired and is no longer available"
	MsgResolveFailed   = "Server error while generating download link"
	MsgInvalidBlobLink = "Download link is invalid or has expired"
)

const (
	errUUIDNoFile        = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e01"
	errUUIDTooLarge      = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e02"
	errUUIDInvalidFile   = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e03"
	errUUIDBlobPut       = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e04"
	errUUIDRecordPut     = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e05"
	errUUIDCodeExhausted = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e06"
	errUUIDCodeRequired  = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e07"
	errUUIDNotFound      = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e08"
	errUUIDExpired       = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e09"
	errUUIDRecordGet     = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e0a"
	errUUIDPresign       = "5f0c2a61-7e3b-4d0e-9a51-1c6a0c9b7e0b"
)

func validationError(ctx context.Context, message, uuid string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, message, nil, uuid)
}

// TooLargeError is raised when an upload exceeds MaxFileBytes, including when
// the transport layer trips its own body limit first.
func TooLargeError(ctx context.Context) error {
	return validationError(ctx, MsgTooLarge, errUUIDTooLarge)
}

func notFoundError(ctx context.Context, code string) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
		MsgNotFound, nil, errUUIDNotFound, map[string]any{"code": code})
}

func expiredError(ctx context.Context, code string) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExpired,
		MsgExpired, nil, errUUIDExpired, map[string]any{"code": code})
}

func internalError(ctx context.Context, errorType platformerrors.ErrorType, message string, err error, uuid string, fields map[string]any) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, errorType, message, err, uuid, fields)
}
