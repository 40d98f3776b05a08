package errors

import "fmt"

var (
	ErrWorkerPanic  = fmt.Errorf("worker panic")
	ErrNotFound     = fmt.Errorf("not found")
	ErrValidation   = fmt.Errorf("validation error")
	ErrUnknownEvent = fmt.Errorf("unknown event")
	ErrPersistence  = fmt.Errorf("persistence failure")
	ErrSinkFull     = fmt.Errorf("connection buffer full")
	ErrSinkClosed   = fmt.Errorf("connection closed")
	ErrNotConnected = fmt.Errorf("connection not registered")
	ErrQueueClosed  = fmt.Errorf("dispatch queue closed")
)
