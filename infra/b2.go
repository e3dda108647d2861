package infra

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/config"
	"github.com/planhaus/asset-orchestrator/utils"
)

// B2Client wraps the native bucket API of the object store. It is stateless:
// every exported operation re-authorizes rather than caching the short-lived
// token, trading latency for simplicity.
type B2Client struct {
	KeyID       string
	AppKey      string
	APIBase     string
	BucketID    string
	BucketName  string
	DownloadURL string

	// HTTP is swappable for tests; defaults to http.DefaultClient.
	HTTP *http.Client
}

// StoreError is any failed call against the bucket API.
type StoreError struct {
	Op     string
	Status int
	Body   string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("object store %s failed with status %d: %s", e.Op, e.Status, e.Body)
}

// DeleteOutcome reports what DeleteObjectByURL actually did. NotFound and
// SkippedForeignURL both count as success so cleanup call sites never need
// special-case handling.
type DeleteOutcome int

const (
	DeleteDone DeleteOutcome = iota
	DeleteNotFound
	DeleteSkippedForeignURL
)

// InitB2Client builds the handle from config without touching the network.
// Missing credentials surface on first use, not here.
func InitB2Client(cfg *config.EnvConfig) *B2Client {
	return &B2Client{
		KeyID:       cfg.B2.KeyID,
		AppKey:      cfg.B2.AppKey,
		APIBase:     cfg.B2.APIBase,
		BucketID:    cfg.B2.BucketID,
		BucketName:  cfg.B2.BucketName,
		DownloadURL: cfg.B2.DownloadURL,
		HTTP:        http.DefaultClient,
	}
}

// escapeKey percent-encodes each path segment, keeping the separators the
// bucket API expects in the file-name header.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (b *B2Client) checkConfigured() error {
	if b.KeyID == "" || b.AppKey == "" || b.BucketID == "" || b.BucketName == "" || b.DownloadURL == "" {
		return fmt.Errorf("object store is not configured: key id, app key, bucket id, bucket name and download url are all required")
	}
	return nil
}

type b2Auth struct {
	AccountID    string `json:"accountId"`
	AuthToken    string `json:"authorizationToken"`
	APIURL       string `json:"apiUrl"`
	DownloadBase string `json:"downloadUrl"`
}

type b2UploadTarget struct {
	BucketID  string `json:"bucketId"`
	UploadURL string `json:"uploadUrl"`
	AuthToken string `json:"authorizationToken"`
}

type b2File struct {
	FileID      string `json:"fileId"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"contentLength"`
}

type b2FileList struct {
	Files        []b2File `json:"files"`
	NextFileName *string  `json:"nextFileName"`
}

// Authorize exchanges the application key for a short-lived token and the
// per-account API endpoint.
func (b *B2Client) Authorize(ctx context.Context) (*b2Auth, error) {
	if err := b.checkConfigured(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		b.APIBase+"/b2api/v2/b2_authorize_account", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(b.KeyID + ":" + b.AppKey))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authorize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &StoreError{Op: "authorize", Status: resp.StatusCode, Body: string(raw)}
	}

	var auth b2Auth
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return nil, fmt.Errorf("failed to decode authorize response: %w", err)
	}
	return &auth, nil
}

// GetUploadTarget fetches a one-time upload URL and token for the bucket.
func (b *B2Client) GetUploadTarget(ctx context.Context, auth *b2Auth) (*b2UploadTarget, error) {
	body, err := json.Marshal(map[string]string{"bucketId": b.BucketID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		auth.APIURL+"/b2api/v2/b2_get_upload_url", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", auth.AuthToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get upload url request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &StoreError{Op: "get_upload_url", Status: resp.StatusCode, Body: string(raw)}
	}

	var target b2UploadTarget
	if err := json.NewDecoder(resp.Body).Decode(&target); err != nil {
		return nil, fmt.Errorf("failed to decode upload url response: %w", err)
	}
	return &target, nil
}

// UploadObject stores data under key and returns the public URL. The SHA-1 of
// the payload goes up as the integrity header.
func (b *B2Client) UploadObject(ctx context.Context, data []byte, mimeType, key string) (string, error) {
	auth, err := b.Authorize(ctx)
	if err != nil {
		return "", err
	}
	target, err := b.GetUploadTarget(ctx, auth)
	if err != nil {
		return "", err
	}

	sum := sha1.Sum(data)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.UploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", target.AuthToken)
	req.Header.Set("X-Bz-File-Name", escapeKey(key))
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("X-Bz-Content-Sha1", hex.EncodeToString(sum[:]))
	req.ContentLength = int64(len(data))

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", &StoreError{Op: "upload", Status: resp.StatusCode, Body: string(raw)}
	}

	return utils.PublicURL(b.DownloadURL, b.BucketName, key), nil
}

// listPage fetches one page of file names under prefix starting at the cursor.
func (b *B2Client) listPage(ctx context.Context, auth *b2Auth, prefix string, startFileName *string, maxCount int) (*b2FileList, error) {
	payload := map[string]interface{}{
		"bucketId":     b.BucketID,
		"prefix":       prefix,
		"maxFileCount": maxCount,
	}
	if startFileName != nil {
		payload["startFileName"] = *startFileName
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		auth.APIURL+"/b2api/v2/b2_list_file_names", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", auth.AuthToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &StoreError{Op: "list_file_names", Status: resp.StatusCode, Body: string(raw)}
	}

	var list b2FileList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	return &list, nil
}

func (b *B2Client) deleteFileVersion(ctx context.Context, auth *b2Auth, fileID, fileName string) error {
	body, err := json.Marshal(map[string]string{
		"fileId":   fileID,
		"fileName": fileName,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		auth.APIURL+"/b2api/v2/b2_delete_file_version", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", auth.AuthToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return &StoreError{Op: "delete_file_version", Status: resp.StatusCode, Body: string(raw)}
	}
	return nil
}

// DeleteObjectByURL removes the current version of the object a public URL
// points at. URLs outside the configured bucket are skipped, and a missing
// object is a no-op; both outcomes are success for the caller.
func (b *B2Client) DeleteObjectByURL(ctx context.Context, rawURL string) (DeleteOutcome, error) {
	if err := b.checkConfigured(); err != nil {
		return DeleteNotFound, err
	}

	key, ok := utils.ObjectKeyFromURL(rawURL, b.DownloadURL, b.BucketName)
	if !ok {
		return DeleteSkippedForeignURL, nil
	}

	auth, err := b.Authorize(ctx)
	if err != nil {
		return DeleteNotFound, err
	}

	// Exact-prefix listing with max one result resolves the current version.
	list, err := b.listPage(ctx, auth, key, nil, 1)
	if err != nil {
		return DeleteNotFound, err
	}
	if len(list.Files) == 0 || list.Files[0].FileName != key {
		return DeleteNotFound, nil
	}

	if err := b.deleteFileVersion(ctx, auth, list.Files[0].FileID, list.Files[0].FileName); err != nil {
		return DeleteNotFound, err
	}
	return DeleteDone, nil
}

// DeleteAllByPrefix sweeps every object under a user's key prefix across all
// listing pages and returns how many were deleted. Used at account teardown.
func (b *B2Client) DeleteAllByPrefix(ctx context.Context, userID uuid.UUID) (int, error) {
	if err := b.checkConfigured(); err != nil {
		return 0, err
	}

	auth, err := b.Authorize(ctx)
	if err != nil {
		return 0, err
	}

	prefix := utils.UserPrefix(userID)
	deleted := 0
	var cursor *string

	for {
		list, err := b.listPage(ctx, auth, prefix, cursor, 1000)
		if err != nil {
			return deleted, err
		}
		for _, f := range list.Files {
			if err := b.deleteFileVersion(ctx, auth, f.FileID, f.FileName); err != nil {
				return deleted, err
			}
			deleted++
		}
		if list.NextFileName == nil {
			return deleted, nil
		}
		cursor = list.NextFileName
	}
}
