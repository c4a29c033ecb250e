package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIO is returned when a shader or resource file cannot be read.
	ErrIO = errors.New("resource unreadable")
	// ErrDecode is returned when an image cannot be decoded.
	ErrDecode = errors.New("image decode failed")
	// ErrDevice is returned when the graphics device refuses to create an object.
	ErrDevice = errors.New("device object creation failed")
	// ErrCompile is returned when a shader program fails to compile or link.
	ErrCompile = errors.New("shader compilation failed")

	ErrNotReady        = errors.New("renderer backend not ready")
	ErrForeignResource = errors.New("resource belongs to another renderer")
	ErrUnfreedBuffer   = errors.New("dynamic buffer destroyed while holding a GPU resource")
	ErrTooManyVertices = errors.New("mesh exceeds the 16-bit index range")
	ErrNoDriver        = errors.New("no rendering driver selected")
	ErrUnsupported     = errors.New("driver not supported on this platform")
)

// DeviceErrorPolicy decides what happens when the graphics device fails to
// create an object.
type DeviceErrorPolicy uint8

const (
	// DeviceErrorReturnFailure logs the error and hands it back to the caller.
	DeviceErrorReturnFailure DeviceErrorPolicy = iota
	// DeviceErrorAbort logs the error and terminates the process.
	DeviceErrorAbort
)

func (p DeviceErrorPolicy) String() string {
	switch p {
	case DeviceErrorAbort:
		return "abort"
	default:
		return "return"
	}
}

// ParseDeviceErrorPolicy maps "abort" / "return" to a policy. An empty string
// yields fallback.
func ParseDeviceErrorPolicy(s string, fallback DeviceErrorPolicy) (DeviceErrorPolicy, error) {
	switch strings.ToLower(s) {
	case "":
		return fallback, nil
	case "abort":
		return DeviceErrorAbort, nil
	case "return", "returnfailure", "return_failure":
		return DeviceErrorReturnFailure, nil
	}
	return fallback, fmt.Errorf("invalid device error policy %q", s)
}

// FaultPolicy routes device faults. Abort is called with the formatted message
// when Mode is DeviceErrorAbort; it defaults to LogFatal.
type FaultPolicy struct {
	Mode  DeviceErrorPolicy
	Title string
	Abort func(title, message string)
}

// Fail logs err and applies the policy. It returns err so callers can write
// `return nil, faults.Fail(err)`.
func (f FaultPolicy) Fail(err error) error {
	if err == nil {
		return nil
	}
	if f.Mode == DeviceErrorAbort {
		title := f.Title
		if title == "" {
			title = "Fatal rendering error"
		}
		if f.Abort != nil {
			LogError("%s: %s", title, err)
			f.Abort(title, err.Error())
			return err
		}
		LogFatal("%s: %s", title, err)
		return err
	}
	LogError("%s", err)
	return err
}
