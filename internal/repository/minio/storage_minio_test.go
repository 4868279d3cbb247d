package minio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_ObjectURL(t *testing.T) {
	client, err := NewClient("localhost:9000", "key", "secret", false)
	require.NoError(t, err)

	withBase := NewStorage(client, "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/travel-assets/destinations/a.png",
		withBase.ObjectURL("travel-assets", "/destinations/a.png"))

	keyOnly := NewStorage(client, "")
	assert.Equal(t, "destinations/a.png", keyOnly.ObjectURL("travel-assets", "destinations/a.png"))
}
