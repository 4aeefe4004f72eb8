// services/upload_service.go
package services

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"cleanup-jobs-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UploadService stores proof photos and hands back the URL the client passes
// through the complete action. The ledger itself only ever sees URL strings.
type UploadService struct {
	// LocalOnly writes under ./uploads instead of R2 (PHOTO_STORAGE=local)
	LocalOnly bool
}

func NewUploadService() *UploadService {
	return &UploadService{
		LocalOnly: strings.EqualFold(os.Getenv("PHOTO_STORAGE"), "local"),
	}
}

// UploadPhoto handles POST /uploads/photos (multipart field "photo")
func (s *UploadService) UploadPhoto(c *fiber.Ctx) error {
	photo, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "photo is required"})
	}
	if photo.Size > 15*1024*1024 { // 15MB
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "photo too large (max 15MB)"})
	}

	ext := strings.ToLower(filepath.Ext(photo.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := "claims/photos/" + uuid.NewString() + ext

	if s.LocalOnly {
		localPath := utils.GetUploadPath(key)
		if err := utils.SaveFile(photo, localPath); err != nil {
			log.Printf("❌ Failed to save photo locally: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to store photo"})
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"url": "/" + filepath.ToSlash(localPath)}})
	}

	url, err := utils.UploadToR2(photo, key)
	if err != nil {
		log.Printf("❌ Failed to upload photo to R2: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to store photo"})
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"url": url}})
}
