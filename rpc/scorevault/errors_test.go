package scorevault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	require.NoError(t, ParseError(nil))

	other := errors.New("connection refused")
	require.Equal(t, other, ParseError(other))

	for _, tc := range []struct {
		exception string
		expected  error
	}{
		{`unhandled exception: "AlreadyInitialized"`, ErrAlreadyInitialized},
		{`unhandled exception: "NotInitialized"`, ErrNotInitialized},
		{`unhandled exception: "InvalidInput: score is out of bounds"`, ErrInvalidInput},
		{`unhandled exception: "MissingCredential"`, ErrMissingCredential},
		{`unhandled exception: "AlreadyRegistered"`, ErrAlreadyRegistered},
		{`unhandled exception: "Unauthorized: owner witness check failed"`, ErrUnauthorized},
		{`unhandled exception: "NotFound"`, ErrNotFound},
		{`unhandled exception: "InvariantViolation: histogram is empty"`, ErrInvariantViolation},
	} {
		src := errors.New(tc.exception)
		err := ParseError(src)
		require.ErrorIs(t, err, tc.expected, tc.exception)
		require.ErrorIs(t, err, src, tc.exception)

		for _, e := range contractErrors {
			if e != tc.expected {
				require.NotErrorIs(t, err, e, tc.exception)
			}
		}

		require.ErrorIs(t, ParseFaultException(tc.exception), tc.expected)
	}

	require.NoError(t, ParseFaultException(""))
}
