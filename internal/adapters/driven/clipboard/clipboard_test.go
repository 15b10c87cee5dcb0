package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_WriteText(t *testing.T) {
	var got string
	s := &System{
		unsupported: func() bool { return false },
		write:       func(text string) error { got = text; return nil },
	}

	require.NoError(t, s.WriteText("# Title"))
	assert.Equal(t, "# Title", got)
}

func TestSystem_Unsupported(t *testing.T) {
	s := &System{
		unsupported: func() bool { return true },
		write:       func(string) error { t.Fatal("write called"); return nil },
	}

	assert.ErrorIs(t, s.WriteText("x"), ErrUnsupported)
}

func TestSystem_WriteError(t *testing.T) {
	boom := errors.New("xclip: exit 1")
	s := &System{
		unsupported: func() bool { return false },
		write:       func(string) error { return boom },
	}

	err := s.WriteText("x")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "write clipboard")
}

func TestMemory(t *testing.T) {
	var m Memory
	require.NoError(t, m.WriteText("hello"))
	assert.Equal(t, "hello", m.Text)
}
