package structs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildResultValidate(t *testing.T) {
	cases := []struct {
		Name      string
		Given     *BuildResult
		ExpectErr bool
	}{
		{"Completed", NewCompleted("ok", "js", []byte{0, 1}), false},
		{"CompletedNoWasm", NewCompleted("ok", "js", nil), true},
		{"CompletedNoGlue", NewCompleted("ok", "", []byte{1}), true},
		{"CompletedWithDetails", &BuildResult{Status: COMPLETED, JSGlue: "js", Wasm: []byte{1}, Details: "x"}, true},
		{"Failed", NewFailed("boom", "stderr"), false},
		{"FailedNoDetails", NewFailed("timed out", ""), false},
		{"FailedWithArtifacts", &BuildResult{Status: FAILED, Wasm: []byte{1}}, true},
		{"NoStatus", &BuildResult{Message: "?"}, true},
		{"Nil", nil, true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			err := c.Given.Validate()
			if c.ExpectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildResultWasmIsBase64(t *testing.T) {
	r := NewCompleted("ok", "js", []byte("\x00asm"))

	data, err := json.Marshal(r)

	assert.Nil(t, err)
	assert.Contains(t, string(data), `"wasm":"AGFzbQ=="`)
}

func TestBuildResultCopy(t *testing.T) {
	r := NewCompleted("ok", "js", []byte{1, 2, 3})

	cp := r.Copy()
	cp.Wasm[0] = 9

	assert.Equal(t, byte(1), r.Wasm[0])
	assert.Nil(t, (*BuildResult)(nil).Copy())
}

func TestBuildResultCompleted(t *testing.T) {
	assert.True(t, NewCompleted("ok", "js", []byte{1}).Completed())
	assert.False(t, NewFailed("compilation failed", "").Completed())
	assert.False(t, (*BuildResult)(nil).Completed())
}
