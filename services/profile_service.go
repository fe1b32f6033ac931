package services

import (
	"errors"
	"log"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tournament-score-system/middleware"
	"tournament-score-system/models"
	"tournament-score-system/utils"
)

// ProfileService lets a user edit their own mirrored profile. The row is
// created by the sync worker at signup time; only its owner can change it,
// enforced by scoping every mutation to the caller's own id.
type ProfileService struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		DB:       db,
		validate: validator.New(),
	}
}

// GetMyProfile handles GET /users/me/profile
func (s *ProfileService) GetMyProfile(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	var profile models.Profile
	if err := s.DB.First(&profile, "id = ?", callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "profile not found")
		}
		log.Printf("❌ [PROFILE] failed to load profile %s: %v", callerID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not load profile")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"profile": profile})
}

// UpdateProfile handles PATCH /users/me/profile
// Sanitization runs before validation: the name is judged by what survives
// the strip, not by what the client sent.
func (s *ProfileService) UpdateProfile(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	var profile models.Profile
	if err := s.DB.First(&profile, "id = ?", callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "profile not found")
		}
		log.Printf("❌ [PROFILE] failed to load profile %s: %v", callerID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not load profile")
	}

	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"display_name must be a string")
	}
	if err := s.validate.Struct(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"display_name is required")
	}

	name := utils.SanitizeDisplayName(*req.DisplayName)
	if !utils.ValidDisplayName(name) {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"display_name must be 1-32 characters after sanitization")
	}

	res := s.DB.Model(&models.Profile{}).
		Where("id = ?", callerID).
		Update("display_name", name)
	if res.Error != nil {
		log.Printf("❌ [PROFILE] failed to update profile %s: %v", callerID, res.Error)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not update profile")
	}

	var updated models.Profile
	if err := s.DB.First(&updated, "id = ?", callerID).Error; err != nil {
		log.Printf("❌ [PROFILE] failed to reload profile %s: %v", callerID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not load profile")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"profile": updated})
}

// UploadAvatar handles POST /users/me/avatar — multipart image → R2.
func (s *ProfileService) UploadAvatar(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	var profile models.Profile
	if err := s.DB.First(&profile, "id = ?", callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "profile not found")
		}
		log.Printf("❌ [PROFILE] failed to load profile %s: %v", callerID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not load profile")
	}

	avatar, err := c.FormFile("avatar")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat, "avatar file is required")
	}
	if avatar.Size > utils.MaxImageUploadSize {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat, "avatar too large (max 5MB)")
	}
	if !strings.HasPrefix(avatar.Header.Get("Content-Type"), "image/") {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat, "avatar must be an image")
	}

	ext := filepath.Ext(avatar.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := "avatars/" + callerID + ext

	url, err := utils.UploadImageToR2(avatar, key)
	if err != nil {
		log.Printf("❌ [PROFILE] failed to upload avatar for %s: %v", callerID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeInternalError, "failed to upload avatar")
	}

	res := s.DB.Model(&models.Profile{}).
		Where("id = ?", callerID).
		Update("avatar_url", url)
	if res.Error != nil {
		log.Printf("❌ [PROFILE] failed to store avatar URL for %s: %v", callerID, res.Error)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not update profile")
	}

	profile.AvatarURL = url
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"profile": profile})
}
