package mgl

import (
	"errors"
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
)

// ErrReleased is returned by every method of a Map after Release has been called
var ErrReleased = errors.New("map has been released")

// OutOfRangeError is returned when a numeric argument is outside of its domain
type OutOfRangeError struct {
	Message string
}

func (e *OutOfRangeError) Error() string {
	return e.Message
}

// InvalidArgumentError is returned for a malformed style, provider or JSON value
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// NotFoundError is returned for an unknown layer or source
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func outOfRange(format string, args ...interface{}) errorsx.Error {
	return errorsx.Wrap(&OutOfRangeError{fmt.Sprintf(format, args...)})
}

func invalidArgument(format string, args ...interface{}) errorsx.Error {
	return errorsx.Wrap(&InvalidArgumentError{fmt.Sprintf(format, args...)})
}

func notFound(format string, args ...interface{}) errorsx.Error {
	return errorsx.Wrap(&NotFoundError{fmt.Sprintf(format, args...)})
}

func layerNotFound(layerID string) errorsx.Error {
	return notFound("%s is not a valid layer id in map", layerID)
}

func sourceNotFound(sourceID string) errorsx.Error {
	return notFound("%s is not a valid source in map", sourceID)
}
