package errorrecord

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:noinline
func panicky() {
	panic("boom\r\nagain")
}

func recoverFrom(fn func()) (ex Exception) {
	defer func() {
		if v := recover(); v != nil {
			ex = Recovered(v)
		}
	}()
	fn()
	return nil
}

func TestRecovered_StringPanic(t *testing.T) {
	ex := recoverFrom(panicky)
	require.NotNil(t, ex)

	rec := Build(ex)
	assert.Equal(t, "panic(string)", rec.ExceptionType)
	assert.Equal(t, "boom   again", rec.Message)
	require.NotNil(t, rec.StackTrace)
	assert.Contains(t, *rec.StackTrace, "goroutine")

	require.NotNil(t, rec.TargetSiteName)
	assert.Equal(t, "panicky", *rec.TargetSiteName)
	assert.True(t, strings.HasSuffix(*rec.ModuleName, "errorrecord"), *rec.ModuleName)
	assert.Nil(t, rec.InnerError)
}

func TestRecovered_ErrorPanic(t *testing.T) {
	cause := errors.New("root cause")
	ex := recoverFrom(func() { panic(cause) })

	rec := Build(ex)
	assert.Equal(t, "panic(errorString)", rec.ExceptionType)
	require.NotNil(t, rec.InnerError)
	assert.Equal(t, "root cause", rec.InnerError.Message)
	assert.Equal(t, "root cause", InnermostMessage(ex))
}

func TestFromPanic_NoFrames(t *testing.T) {
	rec := Build(FromPanic(42, nil, nil))
	assert.Equal(t, "panic(int)", rec.ExceptionType)
	assert.Equal(t, "42", rec.Message)
	assert.Nil(t, rec.StackTrace)
	assert.Nil(t, rec.TargetSiteName)
}

func TestSiteFromFunc(t *testing.T) {
	tests := []struct {
		fn   string
		want *TargetSite
	}{
		{"example.com/app/store.(*Repo).Save", &TargetSite{Module: "example.com/app/store", DeclaringType: "Repo", Name: "Save"}},
		{"example.com/app/store.Repo.Load", &TargetSite{Module: "example.com/app/store", DeclaringType: "Repo", Name: "Load"}},
		{"example.com/app/store.Open", &TargetSite{Module: "example.com/app/store", Name: "Open"}},
		{"example.com/app/store.Open.func1", &TargetSite{Module: "example.com/app/store", Name: "Open.func1"}},
		{"main.main", &TargetSite{Module: "main", Name: "main"}},
		{"weird", &TargetSite{Name: "weird"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, siteFromFunc(tt.fn), tt.fn)
	}
	assert.Nil(t, siteFromFunc(""))
}
