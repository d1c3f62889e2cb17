package omerrors_test

import (
	"errors"
	"fmt"
	"io"

	"github.com/ajitpratap0/metactx/pkg/omerrors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := omerrors.InvalidParameter("guid", "unknown element").
		WithDetail("guid", "6a1f")

	fmt.Println(err.Error())
	fmt.Println(err.Details["parameter"])

	// Output:
	// invalid_parameter: unknown element
	// guid
}

// ExampleWrap shows how store failures are wrapped for callers.
func ExampleWrap() {
	err := omerrors.Wrap(io.ErrUnexpectedEOF, omerrors.ErrorTypePropertyServer, "failed to read element")

	if omerrors.IsPropertyServer(err) {
		fmt.Println("store failure")
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("cause preserved")
	}

	// Output:
	// store failure
	// cause preserved
}

// ExampleIsRetryable shows which error types are retried by the remote client.
func ExampleIsRetryable() {
	fmt.Println(omerrors.IsRetryable(omerrors.New(omerrors.ErrorTypeConnection, "connection refused")))
	fmt.Println(omerrors.IsRetryable(omerrors.New(omerrors.ErrorTypeRateLimit, "slow down")))
	fmt.Println(omerrors.IsRetryable(omerrors.UserNotAuthorized("erinoverview", "refused")))

	// Output:
	// true
	// true
	// false
}
