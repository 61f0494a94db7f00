package codes

import (
	"errors"
	"strconv"

	"safeprice/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"

	// InvalidArguments invalid arguments
	InvalidArguments = 100001
)

var twirpCodes = map[core.ErrorCode]twirp.ErrorCode{
	core.ErrPermission:            twirp.PermissionDenied,
	core.ErrConfiguration:         twirp.InvalidArgument,
	core.ErrInvalidValue:          twirp.InvalidArgument,
	core.ErrStaleData:             twirp.FailedPrecondition,
	core.ErrUnsupportedAsset:      twirp.NotFound,
	core.ErrCapacity:              twirp.OutOfRange,
	core.ErrOverflow:              twirp.OutOfRange,
	core.ErrDependencyUnavailable: twirp.Unavailable,
	core.ErrUpgradeWindow:         twirp.FailedPrecondition,
}

// With with specified error
func With(err error, code int) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// FromError twirp error of err, core error codes are kept as custom code
func FromError(err error) twirp.Error {
	var twerr twirp.Error
	if errors.As(err, &twerr) {
		return twerr
	}

	code := core.CodeOf(err)
	tc, ok := twirpCodes[code]
	if !ok {
		return twirp.InternalErrorWith(err)
	}

	return twirp.NewError(tc, code.Error()).WithMeta(CustomCodeKey, code.String())
}

// Get get error code
func Get(twerr twirp.Error) int {
	if v := twerr.Meta(CustomCodeKey); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			return code
		}
	}

	switch twerr.Code() {
	case twirp.InvalidArgument:
		return InvalidArguments
	default:
		return twirp.ServerHTTPStatusFromErrorCode(twerr.Code())
	}
}
