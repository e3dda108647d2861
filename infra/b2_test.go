package infra

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucketAPI implements just enough of the native bucket protocol for the
// client: authorize, get-upload-url, upload, list-by-prefix with cursor
// pagination, delete-by-version.
type fakeBucketAPI struct {
	mu       sync.Mutex
	objects  map[string][]byte // key -> data
	fileIDs  map[string]string // key -> file id
	pageSize int

	authorizeCalls int
	uploadCalls    int
	deleteCalls    int
	deletedPairs   [][2]string // (fileId, fileName)
	lastUploadSha1 string
}

func newFakeBucketAPI() *fakeBucketAPI {
	return &fakeBucketAPI{
		objects:  map[string][]byte{},
		fileIDs:  map[string]string{},
		pageSize: 1000,
	}
}

func (f *fakeBucketAPI) put(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.fileIDs[key] = "fid-" + key
}

func (f *fakeBucketAPI) handler(serverURL func() string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/b2api/v2/b2_authorize_account", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authorizeCalls++
		f.mu.Unlock()
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accountId":          "acct",
			"authorizationToken": "token-1",
			"apiUrl":             serverURL(),
			"downloadUrl":        serverURL(),
		})
	})

	mux.HandleFunc("/b2api/v2/b2_get_upload_url", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"bucketId":           "bkt1",
			"uploadUrl":          serverURL() + "/upload",
			"authorizationToken": "upload-token-1",
		})
	})

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		key := r.Header.Get("X-Bz-File-Name")
		f.mu.Lock()
		f.uploadCalls++
		f.lastUploadSha1 = r.Header.Get("X-Bz-Content-Sha1")
		f.objects[key] = data
		f.fileIDs[key] = "fid-" + key
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"fileId":   "fid-" + key,
			"fileName": key,
		})
	})

	mux.HandleFunc("/b2api/v2/b2_list_file_names", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prefix        string  `json:"prefix"`
			MaxFileCount  int     `json:"maxFileCount"`
			StartFileName *string `json:"startFileName"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		keys := make([]string, 0, len(f.objects))
		for k := range f.objects {
			if strings.HasPrefix(k, req.Prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		f.mu.Unlock()

		start := 0
		if req.StartFileName != nil {
			for i, k := range keys {
				if k >= *req.StartFileName {
					start = i
					break
				}
			}
		}

		limit := req.MaxFileCount
		if f.pageSize < limit {
			limit = f.pageSize
		}
		end := start + limit
		if end > len(keys) {
			end = len(keys)
		}

		files := make([]map[string]interface{}, 0, end-start)
		for _, k := range keys[start:end] {
			files = append(files, map[string]interface{}{
				"fileId":        "fid-" + k,
				"fileName":      k,
				"contentLength": len(f.objects[k]),
			})
		}

		resp := map[string]interface{}{"files": files}
		if end < len(keys) {
			resp["nextFileName"] = keys[end]
		} else {
			resp["nextFileName"] = nil
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/b2api/v2/b2_delete_file_version", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FileID   string `json:"fileId"`
			FileName string `json:"fileName"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.deleteCalls++
		f.deletedPairs = append(f.deletedPairs, [2]string{req.FileID, req.FileName})
		delete(f.objects, req.FileName)
		delete(f.fileIDs, req.FileName)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})

	return mux
}

func newTestClient(t *testing.T, fake *fakeBucketAPI) (*B2Client, *httptest.Server) {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(fake.handler(func() string { return server.URL }))
	t.Cleanup(server.Close)

	client := &B2Client{
		KeyID:       "key-id",
		AppKey:      "app-key",
		APIBase:     server.URL,
		BucketID:    "bkt1",
		BucketName:  "planhaus-assets",
		DownloadURL: "https://files.test",
		HTTP:        server.Client(),
	}
	return client, server
}

func TestUploadObjectSendsContentHash(t *testing.T) {
	fake := newFakeBucketAPI()
	client, _ := newTestClient(t, fake)

	data := []byte("hello object store")
	url, err := client.UploadObject(context.Background(), data, "text/plain", "users/u1/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/file/planhaus-assets/users/u1/doc.txt", url)

	sum := sha1.Sum(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), fake.lastUploadSha1)
	assert.Equal(t, data, fake.objects["users/u1/doc.txt"])
}

func TestEveryOperationReauthorizes(t *testing.T) {
	fake := newFakeBucketAPI()
	client, _ := newTestClient(t, fake)

	_, err := client.UploadObject(context.Background(), []byte("a"), "text/plain", "k1")
	require.NoError(t, err)
	_, err = client.UploadObject(context.Background(), []byte("b"), "text/plain", "k2")
	require.NoError(t, err)

	// no token caching across calls
	assert.Equal(t, 2, fake.authorizeCalls)
}

func TestDeleteObjectByURLSkipsForeignURLs(t *testing.T) {
	fake := newFakeBucketAPI()
	client, _ := newTestClient(t, fake)

	outcome, err := client.DeleteObjectByURL(context.Background(), "https://evil.example/file/other-bucket/key")
	require.NoError(t, err)
	assert.Equal(t, DeleteSkippedForeignURL, outcome)
	// no network traffic at all for a foreign URL
	assert.Equal(t, 0, fake.authorizeCalls)
	assert.Equal(t, 0, fake.deleteCalls)
}

func TestDeleteObjectByURLMissingObjectIsNoOp(t *testing.T) {
	fake := newFakeBucketAPI()
	client, _ := newTestClient(t, fake)

	outcome, err := client.DeleteObjectByURL(context.Background(),
		"https://files.test/file/planhaus-assets/users/u1/gone.jpg")
	require.NoError(t, err)
	assert.Equal(t, DeleteNotFound, outcome)
	assert.Equal(t, 0, fake.deleteCalls)
}

func TestDeleteObjectByURLDeletesExactVersion(t *testing.T) {
	fake := newFakeBucketAPI()
	client, _ := newTestClient(t, fake)
	fake.put("users/u1/products/p1/img.jpg", []byte("jpeg"))

	outcome, err := client.DeleteObjectByURL(context.Background(),
		"https://files.test/file/planhaus-assets/users/u1/products/p1/img.jpg")
	require.NoError(t, err)
	assert.Equal(t, DeleteDone, outcome)
	require.Len(t, fake.deletedPairs, 1)
	assert.Equal(t, [2]string{"fid-users/u1/products/p1/img.jpg", "users/u1/products/p1/img.jpg"}, fake.deletedPairs[0])
}

func TestDeleteAllByPrefixZeroObjects(t *testing.T) {
	fake := newFakeBucketAPI()
	client, _ := newTestClient(t, fake)

	deleted, err := client.DeleteAllByPrefix(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.Equal(t, 0, fake.deleteCalls)
}

func TestDeleteAllByPrefixSweepsAcrossPages(t *testing.T) {
	fake := newFakeBucketAPI()
	fake.pageSize = 2 // force cursor pagination
	client, _ := newTestClient(t, fake)

	userID := uuid.New()
	for i := 0; i < 5; i++ {
		fake.put(fmt.Sprintf("users/%s/documents/d%d.pdf", userID, i), []byte("pdf"))
	}
	fake.put("users/other-user/keep.pdf", []byte("pdf"))

	deleted, err := client.DeleteAllByPrefix(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 5, deleted)
	assert.Equal(t, 5, fake.deleteCalls)
	for _, pair := range fake.deletedPairs {
		assert.Equal(t, "fid-"+pair[1], pair[0])
		assert.True(t, strings.HasPrefix(pair[1], "users/"+userID.String()+"/"))
	}
	// foreign prefix untouched
	assert.Contains(t, fake.objects, "users/other-user/keep.pdf")
}

func TestUnconfiguredClientFailsOnFirstUse(t *testing.T) {
	client := &B2Client{HTTP: http.DefaultClient}

	_, err := client.UploadObject(context.Background(), []byte("x"), "text/plain", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
