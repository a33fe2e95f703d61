package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/model"
)

// ErrSessionGone reports a multipart completion against a session the server
// no longer holds. The server drops the session row once it assembles the
// object, so a rerun that already confirmed every part lands here.
var ErrSessionGone = errors.New("multipart session no longer open")

// Service is the slice of the upload API this client drives.
type Service interface {
	CreateIntent(ctx context.Context, in CreateIntentRequest) (*IntentTicket, error)
	InitMultipart(ctx context.Context, intentID string, size int64) (*SessionTicket, error)
	SignPart(ctx context.Context, intentID, uploadID string, partNumber int) (string, error)
	CompleteMultipart(ctx context.Context, intentID, uploadID string, parts []model.CompletedPart) error
	CompleteIntent(ctx context.Context, intentID string) error
}

type CreateIntentRequest struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
}

// IntentTicket is the server's answer to a new intent: either a ready-to-use
// presigned PUT URL (simple mode) or the coordinates of a multipart session.
type IntentTicket struct {
	IntentID   string `json:"intent_id"`
	ObjectKey  string `json:"object_key"`
	Mode       string `json:"mode"`
	UploadURL  string `json:"upload_url"`
	UploadID   string `json:"upload_id"`
	PartSize   int64  `json:"part_size"`
	TotalParts int    `json:"total_parts"`
}

type SessionTicket struct {
	UploadID   string `json:"upload_id"`
	PartSize   int64  `json:"part_size"`
	TotalParts int    `json:"total_parts"`
}

// Client talks to the upload service over HTTP with a bearer token.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// compile-time check: *Client must satisfy Service
var _ Service = (*Client)(nil)

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) CreateIntent(ctx context.Context, in CreateIntentRequest) (*IntentTicket, error) {
	var out IntentTicket
	if err := c.doJSON(ctx, http.MethodPost, "/uploads/intent", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) InitMultipart(ctx context.Context, intentID string, size int64) (*SessionTicket, error) {
	body := struct {
		SizeBytes int64 `json:"size_bytes"`
	}{SizeBytes: size}

	var out SessionTicket
	if err := c.doJSON(ctx, http.MethodPost, "/uploads/multipart/"+intentID+"/init", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SignPart(ctx context.Context, intentID, uploadID string, partNumber int) (string, error) {
	body := struct {
		UploadID   string `json:"upload_id"`
		PartNumber int    `json:"part_number"`
	}{UploadID: uploadID, PartNumber: partNumber}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/uploads/multipart/"+intentID+"/sign", body, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) CompleteMultipart(ctx context.Context, intentID, uploadID string, parts []model.CompletedPart) error {
	type partReq struct {
		PartNumber int    `json:"part_number"`
		ETag       string `json:"etag"`
	}
	body := struct {
		UploadID string    `json:"upload_id"`
		Parts    []partReq `json:"parts"`
	}{UploadID: uploadID}
	for _, p := range parts {
		body.Parts = append(body.Parts, partReq{PartNumber: p.PartNumber, ETag: p.ETag})
	}
	err := c.doJSON(ctx, http.MethodPost, "/uploads/multipart/"+intentID+"/complete", body, nil)
	var ae *apiError
	if errors.As(err, &ae) && ae.status == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrSessionGone, err)
	}
	return err
}

func (c *Client) CompleteIntent(ctx context.Context, intentID string) error {
	return c.doJSON(ctx, http.MethodPost, "/uploads/intent/"+intentID+"/complete", nil, nil)
}

// apiError keeps the HTTP status of a rejected call so callers can react to
// specific replies.
type apiError struct {
	method string
	path   string
	status int
	msg    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s %s: server replied %d: %s", e.method, e.path, e.status, e.msg)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &apiError{method: method, path: path, status: resp.StatusCode, msg: string(bytes.TrimSpace(msg))}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
