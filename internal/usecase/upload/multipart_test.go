package upload

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

func openedSession(intent *model.UploadIntent, totalParts int) *model.MultipartSession {
	return &model.MultipartSession{
		IntentID:   intent.ID,
		UploadID:   "upld-1",
		PartSize:   5 << 20,
		TotalParts: totalParts,
		CreatedAt:  time.Now().UTC(),
	}
}

func completedParts(n int) []model.CompletedPart {
	parts := make([]model.CompletedPart, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, model.CompletedPart{PartNumber: i, ETag: fmt.Sprintf("etag-%d", i)})
	}
	return parts
}

func TestInitMultipart_ReusesOpenSession(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	sessions := &mockSessions{record: openedSession(intent, 50)}
	strg := &mockStorage{}
	svc := NewMultipartManager(&mockIntents{record: intent}, sessions, strg, testConfig())

	out, err := svc.InitMultipart(context.Background(), port.InitMultipartInput{IntentID: intent.ID, Size: 250 << 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.UploadID != "upld-1" || out.TotalParts != 50 {
		t.Errorf("expected the existing session back, got %+v", out)
	}
	if strg.newUploadCalled {
		t.Error("re-init must not open a second provider session")
	}
}

func TestInitMultipart_OpensSession(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	sessions := &mockSessions{}
	strg := &mockStorage{uploadID: "upld-7"}
	svc := NewMultipartManager(&mockIntents{record: intent}, sessions, strg, testConfig())

	out, err := svc.InitMultipart(context.Background(), port.InitMultipartInput{IntentID: intent.ID, Size: 250 << 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.UploadID != "upld-7" {
		t.Errorf("upload id = %q, want upld-7", out.UploadID)
	}
	if sessions.created == nil {
		t.Fatal("session not persisted")
	}
}

func TestInitMultipart_ExpiredIntent(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	intent.ExpiresAt = time.Now().UTC().Add(-time.Second)
	svc := NewMultipartManager(&mockIntents{record: intent}, &mockSessions{}, &mockStorage{}, testConfig())

	_, err := svc.InitMultipart(context.Background(), port.InitMultipartInput{IntentID: intent.ID, Size: 250 << 20})
	if !errors.Is(err, ErrIntentExpired) {
		t.Fatalf("expected ErrIntentExpired, got %v", err)
	}
}

func TestSignPart_Bounds(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	svc := NewMultipartManager(&mockIntents{record: intent}, &mockSessions{record: openedSession(intent, 50)}, &mockStorage{}, testConfig())

	for _, part := range []int{0, -3, 51} {
		_, err := svc.SignPart(context.Background(), port.SignPartInput{IntentID: intent.ID, UploadID: "upld-1", PartNumber: part})
		if !errors.Is(err, ErrInvalidPart) {
			t.Errorf("part %d: expected ErrInvalidPart, got %v", part, err)
		}
	}
}

func TestSignPart_WrongUploadID(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	svc := NewMultipartManager(&mockIntents{record: intent}, &mockSessions{record: openedSession(intent, 50)}, &mockStorage{}, testConfig())

	_, err := svc.SignPart(context.Background(), port.SignPartInput{IntentID: intent.ID, UploadID: "other", PartNumber: 1})
	if !errors.Is(err, ErrInvalidPart) {
		t.Fatalf("expected ErrInvalidPart, got %v", err)
	}
}

func TestSignPart_Success(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	strg := &mockStorage{}
	svc := NewMultipartManager(&mockIntents{record: intent}, &mockSessions{record: openedSession(intent, 50)}, strg, testConfig())

	out, err := svc.SignPart(context.Background(), port.SignPartInput{IntentID: intent.ID, UploadID: "upld-1", PartNumber: 13})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strg.signedPart != 13 {
		t.Errorf("signed part %d, want 13", strg.signedPart)
	}
	if out.URL == "" || !out.ExpiresAt.After(time.Now()) {
		t.Errorf("expected a live signed URL, got %+v", out)
	}
}

func TestCompleteMultipart_Gap(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	sessions := &mockSessions{record: openedSession(intent, 50)}
	strg := &mockStorage{}
	svc := NewMultipartManager(&mockIntents{record: intent}, sessions, strg, testConfig())

	parts := completedParts(50)
	parts[24] = model.CompletedPart{PartNumber: 26, ETag: "etag-dup"} // part 25 missing

	_, err := svc.CompleteMultipart(context.Background(), port.CompleteMultipartInput{IntentID: intent.ID, UploadID: "upld-1", Parts: parts})
	if !errors.Is(err, ErrIncompletePartSet) {
		t.Fatalf("expected ErrIncompletePartSet, got %v", err)
	}
	if strg.completeCalled {
		t.Error("provider completion must not be attempted with a gap")
	}
	if sessions.deleted {
		t.Error("session must stay open so missing parts can be supplied")
	}
}

func TestCompleteMultipart_DuplicateETag(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	sessions := &mockSessions{record: openedSession(intent, 50)}
	svc := NewMultipartManager(&mockIntents{record: intent}, sessions, &mockStorage{}, testConfig())

	parts := completedParts(50)
	parts[10].ETag = parts[11].ETag

	_, err := svc.CompleteMultipart(context.Background(), port.CompleteMultipartInput{IntentID: intent.ID, UploadID: "upld-1", Parts: parts})
	if !errors.Is(err, ErrIncompletePartSet) {
		t.Fatalf("expected ErrIncompletePartSet, got %v", err)
	}
}

func TestCompleteMultipart_Short(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	sessions := &mockSessions{record: openedSession(intent, 50)}
	svc := NewMultipartManager(&mockIntents{record: intent}, sessions, &mockStorage{}, testConfig())

	_, err := svc.CompleteMultipart(context.Background(), port.CompleteMultipartInput{IntentID: intent.ID, UploadID: "upld-1", Parts: completedParts(49)})
	if !errors.Is(err, ErrIncompletePartSet) {
		t.Fatalf("expected ErrIncompletePartSet, got %v", err)
	}
}

func TestCompleteMultipart_Success(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	sessions := &mockSessions{record: openedSession(intent, 50)}
	strg := &mockStorage{}
	svc := NewMultipartManager(&mockIntents{record: intent}, sessions, strg, testConfig())

	out, err := svc.CompleteMultipart(context.Background(), port.CompleteMultipartInput{IntentID: intent.ID, UploadID: "upld-1", Parts: completedParts(50)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ObjectKey != intent.ObjectKey {
		t.Errorf("object key = %q, want %q", out.ObjectKey, intent.ObjectKey)
	}
	if !strg.completeCalled || len(strg.completedParts) != 50 {
		t.Error("provider completion not called with all 50 parts")
	}
	if !sessions.deleted {
		t.Error("session row should be removed on success")
	}
}

func TestAbortMultipart(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	sessions := &mockSessions{record: openedSession(intent, 50)}
	strg := &mockStorage{}
	svc := NewMultipartManager(&mockIntents{record: intent}, sessions, strg, testConfig())

	if err := svc.AbortMultipart(context.Background(), intent.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strg.abortCalled {
		t.Error("provider abort not called")
	}
	if !sessions.deleted {
		t.Error("session row should be removed on abort")
	}
}

func TestAbortMultipart_NoSession(t *testing.T) {
	intent := pendingIntent(250<<20, "video/mp4")
	svc := NewMultipartManager(&mockIntents{record: intent}, &mockSessions{}, &mockStorage{}, testConfig())

	err := svc.AbortMultipart(context.Background(), intent.ID)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
