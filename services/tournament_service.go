package services

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"tournament-score-system/middleware"
	"tournament-score-system/models"
	"tournament-score-system/utils"
)

// TournamentService owns the tournament lifecycle. The creator becomes the
// organizer; every mutation re-checks that authority against a fresh read.
type TournamentService struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{
		DB:       db,
		validate: validator.New(),
	}
}

// CreateTournament handles POST /tournaments
func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	var req models.CreateTournamentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat, "malformed request body")
	}
	if err := s.validate.Struct(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"title and start_time are required")
	}
	if !req.EndTime.IsZero() && req.EndTime.Before(req.StartTime) {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"end_time must not be before start_time")
	}

	id := uuid.NewString()
	tournament := &models.Tournament{
		ID:          id,
		OrganizerID: callerID,
		Title:       req.Title,
		Slug:        slug.Make(req.Title) + "-" + id[:8],
		Description: req.Description,
		Status:      models.TournamentDraft,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if req.PublishSchedule != nil {
		tournament.PublishSchedule = req.PublishSchedule
	}

	if err := s.DB.Create(tournament).Error; err != nil {
		log.Printf("❌ [TOURNAMENTS] failed to create tournament: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError,
			"could not create tournament")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"tournament": tournament})
}

// GetMyTournaments handles GET /tournaments — the organizer's own list.
func (s *TournamentService) GetMyTournaments(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	var tournaments []models.Tournament
	if err := s.DB.
		Where("organizer_id = ?", callerID).
		Order("created_at DESC").
		Find(&tournaments).Error; err != nil {
		log.Printf("❌ [TOURNAMENTS] failed to list tournaments for %s: %v", callerID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError,
			"could not list tournaments")
	}

	for i := range tournaments {
		s.DB.Model(&models.Score{}).
			Where("tournament_id = ?", tournaments[i].ID).
			Count(&tournaments[i].ScoreCount)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tournaments": tournaments})
}

// GetTournamentByID handles GET /tournaments/:id (organizer view).
func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	tournament, ok := s.loadOwnedTournament(c, callerID)
	if !ok {
		return nil
	}

	s.DB.Model(&models.Score{}).
		Where("tournament_id = ?", tournament.ID).
		Count(&tournament.ScoreCount)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tournament": tournament})
}

// UpdateTournament handles PUT /tournaments/:id
func (s *TournamentService) UpdateTournament(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	tournament, ok := s.loadOwnedTournament(c, callerID)
	if !ok {
		return nil
	}

	var req models.UpdateTournamentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat, "malformed request body")
	}
	if err := s.validate.Struct(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat, "invalid tournament fields")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartTime != nil {
		updates["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		updates["end_time"] = *req.EndTime
	}
	if len(updates) == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat, "no fields to update")
	}

	res := s.DB.Model(&models.Tournament{}).
		Where("id = ? AND organizer_id = ?", tournament.ID, callerID).
		Updates(updates)
	if res.Error != nil {
		log.Printf("❌ [TOURNAMENTS] failed to update tournament %s: %v", tournament.ID, res.Error)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError,
			"could not update tournament")
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "tournament not found")
	}

	var updated models.Tournament
	if err := s.DB.First(&updated, "id = ?", tournament.ID).Error; err != nil {
		log.Printf("❌ [TOURNAMENTS] failed to reload tournament %s: %v", tournament.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError,
			"could not load tournament")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tournament": updated})
}

// DeleteTournament handles DELETE /tournaments/:id — removes the tournament
// and its scores in one transaction.
func (s *TournamentService) DeleteTournament(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	tournament, ok := s.loadOwnedTournament(c, callerID)
	if !ok {
		return nil
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", tournament.ID).Delete(&models.Score{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND organizer_id = ?", tournament.ID, callerID).
			Delete(&models.Tournament{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "tournament not found")
		}
		log.Printf("❌ [TOURNAMENTS] failed to delete tournament %s: %v", tournament.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError,
			"could not delete tournament")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// PublishNow handles POST /tournaments/:id/publish/now
func (s *TournamentService) PublishNow(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	tournament, ok := s.loadOwnedTournament(c, callerID)
	if !ok {
		return nil
	}
	if tournament.Status == models.TournamentPublished {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"tournament is already published")
	}

	now := time.Now()
	res := s.DB.Model(&models.Tournament{}).
		Where("id = ? AND organizer_id = ?", tournament.ID, callerID).
		Updates(map[string]interface{}{
			"status":           models.TournamentPublished,
			"published_at":     now,
			"publish_schedule": nil,
		})
	if res.Error != nil {
		log.Printf("❌ [TOURNAMENTS] failed to publish tournament %s: %v", tournament.ID, res.Error)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError,
			"could not publish tournament")
	}

	tournament.Status = models.TournamentPublished
	tournament.PublishedAt = &now
	tournament.PublishSchedule = nil
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tournament": tournament})
}

// SchedulePublish handles POST /tournaments/:id/publish/schedule
func (s *TournamentService) SchedulePublish(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	tournament, ok := s.loadOwnedTournament(c, callerID)
	if !ok {
		return nil
	}
	if tournament.Status == models.TournamentPublished {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"tournament is already published")
	}

	var req models.SchedulePublishRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat, "malformed request body")
	}
	if err := s.validate.Struct(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat, "publish_at is required")
	}
	if req.PublishAt.Before(time.Now()) {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"publish_at must be in the future")
	}

	res := s.DB.Model(&models.Tournament{}).
		Where("id = ? AND organizer_id = ?", tournament.ID, callerID).
		Update("publish_schedule", req.PublishAt)
	if res.Error != nil {
		log.Printf("❌ [TOURNAMENTS] failed to schedule publish for %s: %v", tournament.ID, res.Error)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError,
			"could not schedule publish")
	}

	tournament.PublishSchedule = &req.PublishAt
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tournament": tournament})
}

// CancelScheduledPublish handles POST /tournaments/:id/publish/cancel
func (s *TournamentService) CancelScheduledPublish(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	tournament, ok := s.loadOwnedTournament(c, callerID)
	if !ok {
		return nil
	}
	if tournament.PublishSchedule == nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidFormat,
			"tournament has no scheduled publish")
	}

	res := s.DB.Model(&models.Tournament{}).
		Where("id = ? AND organizer_id = ?", tournament.ID, callerID).
		Update("publish_schedule", nil)
	if res.Error != nil {
		log.Printf("❌ [TOURNAMENTS] failed to cancel schedule for %s: %v", tournament.ID, res.Error)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError,
			"could not cancel scheduled publish")
	}

	tournament.PublishSchedule = nil
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tournament": tournament})
}

// GetPublishedTournaments handles GET /tournaments/published (public).
func (s *TournamentService) GetPublishedTournaments(c *fiber.Ctx) error {
	var tournaments []models.Tournament
	if err := s.DB.
		Where("status = ?", models.TournamentPublished).
		Order("published_at DESC").
		Find(&tournaments).Error; err != nil {
		log.Printf("❌ [TOURNAMENTS] failed to list published tournaments: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError,
			"could not list tournaments")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tournaments": tournaments})
}

// GetPublishedTournament handles GET /tournaments/published/:id — accepts
// either the id or the slug.
func (s *TournamentService) GetPublishedTournament(c *fiber.Ctx) error {
	idOrSlug := c.Params("id")

	var tournament models.Tournament
	err := s.DB.
		Where("status = ? AND (id = ? OR slug = ?)", models.TournamentPublished, idOrSlug, idOrSlug).
		First(&tournament).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "tournament not found")
		}
		log.Printf("❌ [TOURNAMENTS] failed to load published tournament %s: %v", idOrSlug, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError,
			"could not load tournament")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tournament": tournament})
}

// loadOwnedTournament fetches :id and verifies the caller is its organizer.
// On failure the error envelope has already been written and ok is false.
func (s *TournamentService) loadOwnedTournament(c *fiber.Ctx, callerID string) (*models.Tournament, bool) {
	tournamentID := c.Params("id")

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "tournament not found")
			return nil, false
		}
		log.Printf("❌ [TOURNAMENTS] failed to load tournament %s: %v", tournamentID, err)
		_ = utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not load tournament")
		return nil, false
	}

	if tournament.OrganizerID != callerID {
		_ = utils.Fail(c, fiber.StatusForbidden, models.CodeNotOrganizer,
			"only the tournament organizer can manage this tournament")
		return nil, false
	}

	return &tournament, true
}
