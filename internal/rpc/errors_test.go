package rpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ppiankov/tariffwatch/internal/model"
)

func TestCodeMapping(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{nil, codes.OK},
		{fmt.Errorf("%w: bad origin", model.ErrInvalidInput), codes.InvalidArgument},
		{fmt.Errorf("%w: review_1_x", model.ErrNotFound), codes.NotFound},
		{fmt.Errorf("%w: already finalized", model.ErrConflict), codes.FailedPrecondition},
		{fmt.Errorf("%w: 8/8", model.ErrRateLimited), codes.ResourceExhausted},
		{fmt.Errorf("%w: disk full", model.ErrStorage), codes.Internal},
		{context.Canceled, codes.Canceled},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.Unavailable, "down"), codes.Unavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err), "%v", tt.err)
	}
}

func TestToStatusHidesInternalDetail(t *testing.T) {
	err := ToStatus(fmt.Errorf("%w: open /var/lib/x: permission denied", model.ErrStorage))
	s, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, s.Code())
	assert.Equal(t, "internal error", s.Message())
}

func TestStatusRoundTrip(t *testing.T) {
	for _, sentinel := range []error{model.ErrInvalidInput, model.ErrNotFound, model.ErrConflict, model.ErrRateLimited} {
		wire := ToStatus(fmt.Errorf("%w: detail", sentinel))
		back := FromStatus(wire)
		assert.ErrorIs(t, back, sentinel)
		assert.Contains(t, back.Error(), "detail")
	}
}

func TestFromStatusPassesThroughOtherCodes(t *testing.T) {
	err := status.Error(codes.Unavailable, "connection refused")
	assert.Equal(t, err, FromStatus(err))
	assert.Nil(t, FromStatus(nil))
}

func TestJSONCodec(t *testing.T) {
	c := JSONCodec{}
	data, err := c.Marshal(&GetReviewRequest{ID: "review_1_abcdef12"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"id":"review_1_abcdef12"}`, string(data))

	var req GetReviewRequest
	assert.NoError(t, c.Unmarshal(data, &req))
	assert.Equal(t, "review_1_abcdef12", req.ID)
	assert.Equal(t, CodecName, c.Name())
}
