package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Object keys are hierarchical: they embed the owning account id first so a
// whole account can be swept by prefix, then the domain ids, then a generated
// segment so re-uploads never collide.

func UserPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("users/%s/", userID)
}

func ProductImageKey(userID, productID uuid.UUID, ext string) string {
	return fmt.Sprintf("users/%s/products/%s/%s%s", userID, productID, uuid.New(), ext)
}

func SpaceImageKey(userID, projectID, spaceID, imageID uuid.UUID, ext string) string {
	return fmt.Sprintf("users/%s/projects/%s/spaces/%s/images/%s/%s%s",
		userID, projectID, spaceID, imageID, uuid.New(), ext)
}

func DocumentKey(userID, projectID, documentID uuid.UUID, ext string) string {
	return fmt.Sprintf("users/%s/projects/%s/documents/%s/%s%s",
		userID, projectID, documentID, uuid.New(), ext)
}

// PublicURL assembles the download URL for an object key:
// <downloadURL>/file/<bucketName>/<objectKey>
func PublicURL(downloadURL, bucketName, key string) string {
	return fmt.Sprintf("%s/file/%s/%s", strings.TrimSuffix(downloadURL, "/"), bucketName, key)
}

// ObjectKeyFromURL re-derives the object key from a public URL. It returns
// ok=false for any URL that does not belong to the configured bucket, which
// is what keeps delete-by-URL from ever touching foreign URLs.
func ObjectKeyFromURL(rawURL, downloadURL, bucketName string) (string, bool) {
	prefix := fmt.Sprintf("%s/file/%s/", strings.TrimSuffix(downloadURL, "/"), bucketName)
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}
