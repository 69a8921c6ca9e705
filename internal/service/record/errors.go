package record

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrAnalysisNotFound   = errors.New("analysis record not found")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrDuplicateRequest   = errors.New("duplicate request")
	ErrRequestLockFailed  = errors.New("failed to claim request")
	ErrCreateRecordFailed = errors.New("failed to create record")
	ErrFetchRecordFailed  = errors.New("failed to fetch records")
)
