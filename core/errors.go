package core

import (
	"errors"
	"strconv"
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrPermission caller not allowed to perform the action
	ErrPermission ErrorCode = 100001

	// ErrConfiguration invalid identifier or decimals
	ErrConfiguration ErrorCode = 100100
	// ErrStaleData price age exceeds max age
	ErrStaleData ErrorCode = 100101
	// ErrInvalidValue zero or out of range value
	ErrInvalidValue ErrorCode = 100102
	// ErrUnsupportedAsset asset not configured or inactive
	ErrUnsupportedAsset ErrorCode = 100103
	// ErrCapacity batch too large or index out of buffer
	ErrCapacity ErrorCode = 100104
	// ErrDependencyUnavailable required collaborator not resolvable
	ErrDependencyUnavailable ErrorCode = 100105
	// ErrOverflow 256 bits overflow
	ErrOverflow ErrorCode = 100106
	// ErrUpgradeWindow upgrade attempted outside the authorization window
	ErrUpgradeWindow ErrorCode = 100107
)

var codeNames = map[ErrorCode]string{
	ErrUnknown:               "unknown",
	ErrPermission:            "permission denied",
	ErrConfiguration:         "invalid configuration",
	ErrStaleData:             "stale data",
	ErrInvalidValue:          "invalid value",
	ErrUnsupportedAsset:      "unsupported asset",
	ErrCapacity:              "capacity exceeded",
	ErrDependencyUnavailable: "dependency unavailable",
	ErrOverflow:              "overflow",
	ErrUpgradeWindow:         "upgrade window closed",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	if name, ok := codeNames[e]; ok {
		return name
	}

	return e.String()
}

// CodeOf returns the first ErrorCode found in err's chain, ErrUnknown otherwise
func CodeOf(err error) ErrorCode {
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}

	return ErrUnknown
}
