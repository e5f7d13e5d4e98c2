package errorrecord

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	smerrors "github.com/Station-Manager/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationError struct {
	field string
	ctx   map[string]any
}

func (v *validationError) Error() string           { return "invalid " + v.field }
func (v *validationError) Context() map[string]any { return v.ctx }

type tracedError struct{ msg string }

func (t tracedError) Error() string      { return t.msg }
func (t tracedError) StackTrace() string { return "trace of " + t.msg }
func (t tracedError) TargetSite() *TargetSite {
	return &TargetSite{Module: "billing", DeclaringType: "Invoice", Name: "Post"}
}

func TestFromError_Nil(t *testing.T) {
	assert.Nil(t, FromError(nil))
	assert.Nil(t, BuildError(nil))
	assert.Equal(t, "", InnermostErrorMessage(nil))
}

func TestFromError_WrappedChain(t *testing.T) {
	root := errors.New("connection refused")
	mid := fmt.Errorf("dial db: %w", root)
	top := fmt.Errorf("load customer: %w", mid)

	rec := BuildError(top)
	require.NotNil(t, rec)
	assert.Equal(t, 3, rec.Depth())
	assert.Equal(t, "wrapError", rec.ExceptionType)
	assert.Equal(t, "load customer: dial db: connection refused", rec.Message)
	assert.Equal(t, "errorString", rec.InnerError.InnerError.ExceptionType)
	assert.Nil(t, rec.InnerError.InnerError.InnerError)

	assert.Equal(t, "connection refused", InnermostErrorMessage(top))
}

func TestFromError_TypeName(t *testing.T) {
	_, err := os.Open("/definitely/not/here")
	require.Error(t, err)

	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)

	rec := BuildError(err)
	assert.Equal(t, "PathError", rec.ExceptionType)
	require.NotNil(t, rec.InnerError)
	assert.Equal(t, "Errno", rec.InnerError.ExceptionType)
}

func TestFromError_ContextAsSortedData(t *testing.T) {
	err := &validationError{field: "email", ctx: map[string]any{
		"zeta":  "last",
		"alpha": 1,
		"gone":  nil,
	}}

	rec := BuildError(err)
	require.Len(t, rec.Data, 2)
	assert.Equal(t, "alpha", rec.Data[0].Key)
	assert.Equal(t, "1", *rec.Data[0].Value)
	assert.Equal(t, "zeta", rec.Data[1].Key)
	assert.Equal(t, "last", *rec.Data[1].Value)
}

func TestFromError_OptionalCapabilities(t *testing.T) {
	rec := BuildError(tracedError{msg: "posting failed"})
	require.NotNil(t, rec.StackTrace)
	assert.Equal(t, "trace of posting failed", *rec.StackTrace)
	assert.Equal(t, "billing", *rec.ModuleName)
	assert.Equal(t, "Invoice", *rec.DeclaringTypeName)
	assert.Equal(t, "Post", *rec.TargetSiteName)
}

func TestFromError_Joined(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	joined := errors.Join(first, second)

	rec := BuildError(joined)
	require.NotNil(t, rec.InnerError)
	assert.Equal(t, "first", rec.InnerError.Message)
	require.Len(t, rec.Data, 1)
	assert.Equal(t, "joined[1]", rec.Data[0].Key)
	assert.Equal(t, "second", *rec.Data[0].Value)
	assert.Equal(t, "first\nsecond", rec.Message)
}

func TestFromError_DetailedErrorChain(t *testing.T) {
	inner := smerrors.New("db.Connect").Msg("dial tcp 127.0.0.1:5432: connect: connection refused")
	outer := smerrors.New("server.Start").Err(inner).Msg("startup failed")

	rec := BuildError(outer)
	require.NotNil(t, rec)
	assert.Equal(t, "startup failed", rec.Message)
	require.NotNil(t, rec.ModuleName)
	assert.Equal(t, "server", *rec.ModuleName)
	assert.Equal(t, "Start", *rec.TargetSiteName)
	assert.Nil(t, rec.DeclaringTypeName)

	require.NotNil(t, rec.InnerError)
	assert.Equal(t, "dial tcp 127.0.0.1:5432: connect: connection refused", rec.InnerError.Message)
	assert.Equal(t, "db", *rec.InnerError.ModuleName)
	assert.Equal(t, "Connect", *rec.InnerError.TargetSiteName)

	assert.Equal(t, "dial tcp 127.0.0.1:5432: connect: connection refused", InnermostErrorMessage(outer))
}

func TestSiteFromOp(t *testing.T) {
	assert.Nil(t, siteFromOp(""))
	assert.Equal(t, &TargetSite{Name: "start"}, siteFromOp("start"))
	assert.Equal(t, &TargetSite{Module: "logging.Service", Name: "Initialize"}, siteFromOp("logging.Service.Initialize"))
}
