package service

import (
	"bytes"
	"errors"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/qboard/internal/db"
	"gorm.io/gorm"

	// Registers the webp decoder for attachment sniffing.
	_ "golang.org/x/image/webp"
)

var (
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrInvalidImage       = errors.New("binary payload is not a decodable image")
)

// AttachmentService persists upload metadata. The binary itself usually
// lives elsewhere; location type "database" keeps it inline.
type AttachmentService struct {
	db *gorm.DB
}

// NewAttachmentService creates an AttachmentService instance.
func NewAttachmentService(gdb *gorm.DB) *AttachmentService {
	return &AttachmentService{db: gdb}
}

// AttachmentInput represents fields accepted when recording an attachment.
type AttachmentInput struct {
	UUID         string
	LocationType string
	LocationURI  string
	Extension    string
	MimeType     string
	Path         string
	Creator      string
	Binary       []byte
}

// Save records attachment metadata, assigning a fresh uuid when the caller
// did not bring one. Inline image binaries must decode with a known image
// format before they are accepted.
func (s *AttachmentService) Save(input AttachmentInput) (*db.Attachment, error) {
	id := strings.TrimSpace(input.UUID)
	if id == "" {
		id = uuid.NewString()
	}

	if len(input.Binary) > 0 && strings.HasPrefix(input.MimeType, "image/") {
		if _, _, err := image.DecodeConfig(bytes.NewReader(input.Binary)); err != nil {
			return nil, ErrInvalidImage
		}
	}

	attachment := db.Attachment{
		UUID:         id,
		LocationType: input.LocationType,
		LocationURI:  input.LocationURI,
		Extension:    input.Extension,
		MimeType:     input.MimeType,
		Path:         input.Path,
		Creator:      input.Creator,
		Binary:       input.Binary,
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// Get fetches attachment metadata by uuid.
func (s *AttachmentService) Get(id string) (*db.Attachment, error) {
	var attachment db.Attachment
	if err := s.db.Where("uuid = ?", id).First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}
