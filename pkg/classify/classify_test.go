package classify

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content []byte
		want    bool
	}{
		{
			name:    "plain text file",
			path:    "notes.txt",
			content: []byte("hello\nworld\n"),
			want:    false,
		},
		{
			name:    "png extension wins before content",
			path:    "image.png",
			content: []byte("actually text"),
			want:    true,
		},
		{
			name:    "null byte in prefix",
			path:    "data.unknownext",
			content: []byte{'a', 'b', 0x00, 'c'},
			want:    true,
		},
		{
			name:    "unknown extension with clean content",
			path:    "data.unknownext",
			content: []byte("no nulls here"),
			want:    false,
		},
		{
			name:    "empty file",
			path:    "empty.unknownext",
			content: []byte{},
			want:    false,
		},
		{
			name: "null byte beyond sniff window is not seen",
			path: "late.unknownext",
			content: append(
				make([]byte, 0, sniffLen+1),
				append(textOf(sniffLen), 0x00)...,
			),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, tt.path, tt.content, 0644))
			require.Equal(t, tt.want, IsBinary(fsys, tt.path))
		})
	}
}

func TestIsBinaryUnreadable(t *testing.T) {
	fsys := afero.NewMemMapFs()
	// Missing files degrade to binary rather than erroring
	require.True(t, IsBinary(fsys, "does-not-exist.unknownext"))
}

func textOf(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return b
}
