package app

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsLoginWait(t *testing.T) {
	tests := []struct {
		url  string
		skip bool
		want bool
	}{
		{"https://stanfordwho.stanford.edu/", false, true},
		{"http://localhost:8080/", false, true},
		{"https://stanfordwho.stanford.edu/", true, false},
		{"file:///tmp/sample.html", false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NeedsLoginWait(tt.url, tt.skip), tt.url)
	}
}

func TestWaitForManualLogin(t *testing.T) {
	var out bytes.Buffer
	err := WaitForManualLogin(context.Background(), strings.NewReader("\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "press Enter")
}

func TestWaitForManualLoginEOF(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WaitForManualLogin(context.Background(), strings.NewReader(""), &out))
}

func TestWaitForManualLoginCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := WaitForManualLogin(ctx, r, &out)
	assert.ErrorIs(t, err, context.Canceled)
}
