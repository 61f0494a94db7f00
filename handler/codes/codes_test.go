package codes

import (
	"errors"
	"fmt"
	"testing"

	"safeprice/core"

	"github.com/stretchr/testify/assert"
	"github.com/twitchtv/twirp"
)

func TestFromError(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code twirp.ErrorCode
		want int
	}{
		{fmt.Errorf("asset btc: %w", core.ErrStaleData), twirp.FailedPrecondition, int(core.ErrStaleData)},
		{fmt.Errorf("caller: %w", core.ErrPermission), twirp.PermissionDenied, int(core.ErrPermission)},
		{core.ErrCapacity, twirp.OutOfRange, int(core.ErrCapacity)},
		{errors.New("db down"), twirp.Internal, 500},
		{twirp.InvalidArgumentError("amount", "required"), twirp.InvalidArgument, InvalidArguments},
	} {
		twerr := FromError(tc.err)
		assert.Equal(t, tc.code, twerr.Code(), tc.err.Error())
		assert.Equal(t, tc.want, Get(twerr), tc.err.Error())
	}
}
