package supervisor

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadRSSAnonKBForCurrentProcess(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("RSS reporting is Linux-only")
	}

	kb, ok := readRSSAnonKB(os.Getpid())
	assert.True(t, ok)
	assert.Greater(t, kb, uint64(0))
}

func TestReadRSSAnonKBUnknownPid(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("RSS reporting is Linux-only")
	}

	_, ok := readRSSAnonKB(1 << 30)
	assert.False(t, ok)
}
