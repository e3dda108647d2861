package utils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysLiveUnderUserPrefix(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()
	spaceID := uuid.New()
	imageID := uuid.New()
	productID := uuid.New()
	documentID := uuid.New()

	prefix := UserPrefix(userID)
	assert.Equal(t, fmt.Sprintf("users/%s/", userID), prefix)

	keys := []string{
		ProductImageKey(userID, productID, ".jpg"),
		SpaceImageKey(userID, projectID, spaceID, imageID, ".jpg"),
		DocumentKey(userID, projectID, documentID, ".pdf"),
	}
	for _, key := range keys {
		assert.True(t, strings.HasPrefix(key, prefix), "key %q must live under the account prefix", key)
	}
}

func TestKeysNeverCollideAcrossUploads(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()

	first := ProductImageKey(userID, productID, ".jpg")
	second := ProductImageKey(userID, productID, ".jpg")
	assert.NotEqual(t, first, second)
}

func TestPublicURLRoundTrip(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	key := ProductImageKey(userID, productID, ".png")

	url := PublicURL("https://files.test/", "planhaus-assets", key)
	assert.Equal(t, "https://files.test/file/planhaus-assets/"+key, url)

	got, ok := ObjectKeyFromURL(url, "https://files.test", "planhaus-assets")
	require.True(t, ok)
	assert.Equal(t, key, got)
}

func TestObjectKeyFromURLRejectsForeignURLs(t *testing.T) {
	cases := []string{
		"https://evil.example/file/planhaus-assets/users/u/k.jpg",
		"https://files.test/file/other-bucket/users/u/k.jpg",
		"https://files.test/download/planhaus-assets/users/u/k.jpg",
		"https://files.test/file/planhaus-assets/",
		"",
	}
	for _, rawURL := range cases {
		_, ok := ObjectKeyFromURL(rawURL, "https://files.test", "planhaus-assets")
		assert.False(t, ok, "url %q must not resolve to a key", rawURL)
	}
}
