package service

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestAttachmentRoundTrip(t *testing.T) {
	svc := NewAttachmentService(newTestDB(t))

	saved, err := svc.Save(AttachmentInput{
		LocationType: "database",
		MimeType:     "image/png",
		Extension:    "png",
		Creator:      alice,
		Binary:       pngBytes(t),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.UUID == "" {
		t.Fatalf("expected a generated uuid")
	}

	got, err := svc.Get(saved.UUID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got.Binary, saved.Binary) || got.Creator != alice {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestAttachmentKeepsCallerUUID(t *testing.T) {
	svc := NewAttachmentService(newTestDB(t))

	saved, err := svc.Save(AttachmentInput{
		UUID:         "11111111-2222-3333-4444-555555555555",
		LocationType: "url",
		LocationURI:  "https://example.com/img.png",
		MimeType:     "image/png",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.UUID != "11111111-2222-3333-4444-555555555555" {
		t.Fatalf("uuid replaced: %q", saved.UUID)
	}
}

func TestAttachmentRejectsBrokenImage(t *testing.T) {
	svc := NewAttachmentService(newTestDB(t))

	_, err := svc.Save(AttachmentInput{
		LocationType: "database",
		MimeType:     "image/png",
		Binary:       []byte("not an image at all"),
	})
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}

	// Non-image payloads are not sniffed.
	if _, err := svc.Save(AttachmentInput{
		LocationType: "database",
		MimeType:     "application/pdf",
		Binary:       []byte("%PDF-1.4"),
	}); err != nil {
		t.Fatalf("non-image binary: %v", err)
	}
}

func TestAttachmentGetMissing(t *testing.T) {
	svc := NewAttachmentService(newTestDB(t))
	if _, err := svc.Get("no-such-uuid"); !errors.Is(err, ErrAttachmentNotFound) {
		t.Fatalf("expected ErrAttachmentNotFound, got %v", err)
	}
}
