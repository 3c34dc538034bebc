package folio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// PresignedUpload describes a single-use upload slot issued by the
// backend: where to PUT the bytes, the object key, and the public URL the
// object will be served from. It is meant to be consumed immediately; no
// expiry tracking happens client-side.
type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
	ImageURL  string `json:"imageUrl"`
}

type presignRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

// PresignUpload requests an upload slot for the named file. The request
// is attempted even without a stored token; authorization failures come
// back from the backend as RequestError.
func (c *Client) PresignUpload(ctx context.Context, fileName, fileType string) (*PresignedUpload, error) {
	payload, err := json.Marshal(presignRequest{FileName: fileName, FileType: fileType})
	if err != nil {
		return nil, fmt.Errorf("folio: encoding presign request: %w", err)
	}

	var out PresignedUpload
	if err := c.do(ctx, http.MethodPost, "/api/projects/presigned-upload", "application/json", bytes.NewReader(payload), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadResult is the checked outcome of PushObject: transport failures
// and non-2xx responses both land in Err with OK false; the call itself
// never fails.
type UploadResult struct {
	OK  bool
	Err error
}

// PushObject PUTs the object bytes to an externally issued presigned URL.
// The URL itself carries the authorization, so no bearer header is sent.
// contentType falls back to a generic binary type when unknown. Non-2xx
// outcomes carry the status line rather than the body, which object
// storage tends to return as XML.
func (c *Client) PushObject(ctx context.Context, r io.Reader, size int64, contentType, uploadURL string) UploadResult {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, r)
	if err != nil {
		return UploadResult{Err: fmt.Errorf("folio: building upload request: %w", err)}
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return UploadResult{Err: fmt.Errorf("folio: uploading object: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{Err: &RequestError{Status: resp.StatusCode, Body: resp.Status}}
	}
	return UploadResult{OK: true}
}
