package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariables_Basics(t *testing.T) {
	v := New(map[string]string{"INSTALL_PATH": "/opt/app"})
	v.Set("USER_NAME", "root")

	val, ok := v.Get("INSTALL_PATH")
	assert.True(t, ok)
	assert.Equal(t, "/opt/app", val)
	assert.Equal(t, "", v.Value("MISSING"))
	assert.Equal(t, []string{"INSTALL_PATH", "USER_NAME"}, v.Names())
	assert.Equal(t, 2, v.Len())

	v.Unset("USER_NAME")
	_, ok = v.Get("USER_NAME")
	assert.False(t, ok)
}

func TestVariables_CloneIsIndependent(t *testing.T) {
	v := New(map[string]string{"A": "1"})
	c := v.Clone()
	c.Set("A", "2")
	assert.Equal(t, "1", v.Value("A"))
	assert.Equal(t, map[string]string{"A": "2"}, c.Map())
}

func TestVariables_NilReceiver(t *testing.T) {
	var v *Variables
	_, ok := v.Get("A")
	assert.False(t, ok)
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 0, v.Clone().Len())
}

func TestVariables_Substitute(t *testing.T) {
	v := New(map[string]string{"APP": "instkit", "VERSION": "1.2.0"})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"braced", "${APP}-${VERSION}", "instkit-1.2.0"},
		{"bare", "$APP/bin", "instkit/bin"},
		{"unbound kept", "${NOPE}/x", "${NOPE}/x"},
		{"no references", "plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Substitute(tt.in))
		})
	}
}
