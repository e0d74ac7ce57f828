package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_Version(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  *Context
		want string
	}{
		{name: "nil context", ctx: nil, want: UnknownValue},
		{name: "empty version", ctx: &Context{}, want: UnknownValue},
		{name: "version set", ctx: &Context{Version: "v1.2.0"}, want: "v1.2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.ctx.GetVersion())
		})
	}
}

func TestContext_BuildDateAndRelease(t *testing.T) {
	t.Parallel()

	var nilCtx *Context
	assert.Equal(t, UnknownValue, nilCtx.GetBuildDate())
	assert.Equal(t, "premigrate@unknown", nilCtx.Release())

	ctx := &Context{Version: "v1.2.0", BuildDate: "2024-03-01T10:00:00Z"}
	assert.Equal(t, "2024-03-01T10:00:00Z", ctx.GetBuildDate())
	assert.Equal(t, "premigrate@v1.2.0", ctx.Release())
}
