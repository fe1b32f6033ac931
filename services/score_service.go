package services

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tournament-score-system/middleware"
	"tournament-score-system/models"
	"tournament-score-system/utils"
)

// ScoreService is the access-controlled mutation gateway for scores.
// Authority is never taken from the request: every call re-fetches the
// owning tournament and compares its organizer against the caller.
type ScoreService struct {
	DB       *gorm.DB
	Ranking  *RankingClient // nil disables recalculation triggers
	validate *validator.Validate
}

func NewScoreService(db *gorm.DB, ranking *RankingClient) *ScoreService {
	return &ScoreService{
		DB:       db,
		Ranking:  ranking,
		validate: validator.New(),
	}
}

// loadScoreForOrganizer runs the load + authorize steps shared by the score
// mutations: fetch the score, fetch its tournament fresh, compare the
// organizer against the caller. On failure the error envelope has already
// been written and ok is false.
func (s *ScoreService) loadScoreForOrganizer(c *fiber.Ctx, callerID string) (*models.Score, *models.Tournament, bool) {
	scoreID := c.Params("id")

	var score models.Score
	if err := s.DB.First(&score, "id = ?", scoreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "score not found")
			return nil, nil, false
		}
		log.Printf("❌ [SCORES] failed to load score %s: %v", scoreID, err)
		_ = utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not load score")
		return nil, nil, false
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", score.TournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "tournament not found")
			return nil, nil, false
		}
		log.Printf("❌ [SCORES] failed to load tournament %s: %v", score.TournamentID, err)
		_ = utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not load tournament")
		return nil, nil, false
	}

	if tournament.OrganizerID != callerID {
		_ = utils.Fail(c, fiber.StatusForbidden, models.CodeNotOrganizer,
			"only the tournament organizer can manage its scores")
		return nil, nil, false
	}

	return &score, &tournament, true
}

// organizerOwnedTournaments is the subquery repeated inside every score
// mutation's WHERE clause, so a race between load and mutate can never
// reach another organizer's row.
func (s *ScoreService) organizerOwnedTournaments(organizerID string) *gorm.DB {
	return s.DB.Model(&models.Tournament{}).Select("id").Where("organizer_id = ?", organizerID)
}

// UpdateScore handles PATCH /scores/:id
func (s *ScoreService) UpdateScore(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	score, _, ok := s.loadScoreForOrganizer(c, callerID)
	if !ok {
		return nil
	}

	var req models.UpdateScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidScore,
			"score must be a number between 0 and 1010000")
	}
	if err := s.validate.Struct(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, models.CodeInvalidScore,
			"score must be a number between 0 and 1010000")
	}

	res := s.DB.Model(&models.Score{}).
		Where("id = ? AND tournament_id IN (?)", score.ID, s.organizerOwnedTournaments(callerID)).
		Update("value", *req.Score)
	if res.Error != nil {
		log.Printf("❌ [SCORES] failed to update score %s: %v", score.ID, res.Error)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not update score")
	}
	if res.RowsAffected == 0 {
		// the row moved or vanished between load and mutate
		return utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "score not found")
	}

	var updated models.Score
	if err := s.DB.First(&updated, "id = ?", score.ID).Error; err != nil {
		log.Printf("❌ [SCORES] failed to reload score %s: %v", score.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not load score")
	}

	s.triggerRecalculation(updated.TournamentID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"score": updated})
}

// DeleteScore handles DELETE /scores/:id
func (s *ScoreService) DeleteScore(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)

	score, tournament, ok := s.loadScoreForOrganizer(c, callerID)
	if !ok {
		return nil
	}

	res := s.DB.
		Where("id = ? AND tournament_id IN (?)", score.ID, s.organizerOwnedTournaments(callerID)).
		Delete(&models.Score{})
	if res.Error != nil {
		log.Printf("❌ [SCORES] failed to delete score %s: %v", score.ID, res.Error)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not delete score")
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "score not found")
	}

	s.triggerRecalculation(tournament.ID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// ListTournamentScores handles GET /tournaments/:id/scores — the organizer's
// working view of a tournament's scores, best first.
func (s *ScoreService) ListTournamentScores(c *fiber.Ctx) error {
	callerID := middleware.CallerID(c)
	tournamentID := c.Params("id")

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, fiber.StatusNotFound, models.CodeNotFound, "tournament not found")
		}
		log.Printf("❌ [SCORES] failed to load tournament %s: %v", tournamentID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not load tournament")
	}

	if tournament.OrganizerID != callerID {
		return utils.Fail(c, fiber.StatusForbidden, models.CodeNotOrganizer,
			"only the tournament organizer can view its score sheet")
	}

	var scores []models.Score
	if err := s.DB.
		Where("tournament_id = ?", tournament.ID).
		Order("value DESC").
		Find(&scores).Error; err != nil {
		log.Printf("❌ [SCORES] failed to list scores for %s: %v", tournament.ID, err)
		return utils.Fail(c, fiber.StatusInternalServerError, models.CodeDatabaseError, "could not list scores")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"scores": scores})
}

// triggerRecalculation fires the opaque ranking RPC. The mutation already
// committed, so a recalculation failure is logged and swallowed.
func (s *ScoreService) triggerRecalculation(tournamentID string) {
	if s.Ranking == nil {
		return
	}
	go func() {
		if err := s.Ranking.Recalculate(tournamentID); err != nil {
			log.Printf("⚠️ [RANKING] recalculation for tournament %s failed: %v", tournamentID, err)
		}
	}()
}
