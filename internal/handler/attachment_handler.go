package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qboard/internal/service"
)

// maxAttachmentBytes bounds inline uploads.
const maxAttachmentBytes = 10 << 20

// UploadAttachment accepts a multipart upload and stores it inline.
func (a *API) UploadAttachment(c *gin.Context) {
	user := actor(c)
	if user == "" {
		respondError(c, http.StatusUnauthorized, "identity required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if header.Size > maxAttachmentBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	payload, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes))
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read upload")
		return
	}

	attachment, err := a.attachments.Save(service.AttachmentInput{
		LocationType: "database",
		MimeType:     header.Header.Get("Content-Type"),
		Extension:    strings.TrimPrefix(filepath.Ext(header.Filename), "."),
		Path:         header.Filename,
		Creator:      user,
		Binary:       payload,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"uuid":     attachment.UUID,
		"location": "/api/attachments/" + attachment.UUID,
	})
}

// GetAttachment serves a stored attachment's binary.
func (a *API) GetAttachment(c *gin.Context) {
	attachment, err := a.attachments.Get(c.Param("uuid"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	mimeType := attachment.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Data(http.StatusOK, mimeType, attachment.Binary)
}
