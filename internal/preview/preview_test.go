package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRevoke(t *testing.T) {
	c := NewCache()

	url := c.Put("image/jpeg", []byte{0xff, 0xd8})
	require.True(t, strings.HasPrefix(url, PathPrefix))

	id, ok := IDFromURL(url)
	require.True(t, ok)

	img, ok := c.Get(id)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", img.ContentType)
	assert.Equal(t, []byte{0xff, 0xd8}, img.Data)
	assert.False(t, img.CreatedAt.IsZero())
	assert.Equal(t, 1, c.Len())

	assert.True(t, c.Revoke(url))
	assert.False(t, c.Revoke(url), "second revoke is a no-op")

	_, ok = c.Get(id)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestPut_DistinctURLs(t *testing.T) {
	c := NewCache()
	assert.NotEqual(t, c.Put("image/png", nil), c.Put("image/png", nil))
}

func TestIDFromURL(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"/previews/cv37rs3pp9olc6atsptg", "cv37rs3pp9olc6atsptg", true},
		{"/previews/", "", false},
		{"/previews/a/b", "", false},
		{"https://example.com/photo.jpg", "", false},
		{"blob:http://localhost:3000/1234", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, ok := IDFromURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestRevoke_ForeignURL(t *testing.T) {
	c := NewCache()
	c.Put("image/png", []byte("x"))

	assert.False(t, c.Revoke("https://example.com/x.png"))
	assert.Equal(t, 1, c.Len())
}
