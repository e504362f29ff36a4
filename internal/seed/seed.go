package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/engine"
)

const seededNights = 21

// Run seeds the database with sample users, profiles, prescriptions,
// and diary entries. Safe to call multiple times.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.DiaryEntry{},
		&domain.SleepProfile{},
		&domain.Prescription{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	users := []domain.User{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Timezone: "Europe/Amsterdam", RandomSeed: 101},
		{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Timezone: "America/New_York", RandomSeed: 202},
		{ID: uuid.MustParse("33333333-3333-3333-3333-333333333333"), Timezone: "Asia/Tokyo", RandomSeed: 303},
	}

	questionnaires := []engine.Questionnaire{
		{
			FreeWakeTime: "06:30", FreeBedTime: "22:30", SleepNeedHours: 7.5,
			MorningAlertness: 4, WakingDifficulty: 2, SleepOnsetEase: 4,
			FatigueLevel: 2, PeakPerformance: engine.PeakEarlyMorning, SocialJetLagMin: 30,
		},
		{
			FreeWakeTime: "08:00", FreeBedTime: "00:00", SleepNeedHours: 8,
			MorningAlertness: 3, WakingDifficulty: 3, SleepOnsetEase: 3,
			FatigueLevel: 3, PeakPerformance: engine.PeakAfternoon, SocialJetLagMin: 60,
		},
		{
			FreeWakeTime: "10:00", FreeBedTime: "02:00", SleepNeedHours: 8.5,
			MorningAlertness: 2, WakingDifficulty: 4, SleepOnsetEase: 2,
			FatigueLevel: 4, PeakPerformance: engine.PeakNight, SocialJetLagMin: 120,
			WeekendOversleep: true,
		},
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i, user := range users {
		if err := db.Where("id = ?", user.ID).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.ID, err)
		}

		profile, err := engine.FromQuestionnaire(questionnaires[i])
		if err != nil {
			return fmt.Errorf("failed to score questionnaire for user %s: %w", user.ID, err)
		}
		stored := domain.FromEngineProfile(user.ID, profile)
		if err := db.Where("user_id = ?", user.ID).FirstOrCreate(stored).Error; err != nil {
			return fmt.Errorf("failed to create profile for user %s: %w", user.ID, err)
		}

		prescription := domain.FromEnginePrescription(user.ID, engine.InitialPrescription(profile))
		if err := db.Where("user_id = ? AND week = ?", user.ID, 1).FirstOrCreate(prescription).Error; err != nil {
			return fmt.Errorf("failed to create prescription for user %s: %w", user.ID, err)
		}

		if err := seedDiaryForUser(db, user, rng); err != nil {
			return err
		}
	}

	log.Println("Seed completed")
	return nil
}

func seedDiaryForUser(db *gorm.DB, user domain.User, rng *rand.Rand) error {
	now := time.Now().UTC()
	for i := 0; i < seededNights; i++ {
		date := now.AddDate(0, 0, -i)
		reportedAt := time.Date(date.Year(), date.Month(), date.Day(), 7, rng.Intn(60), 0, 0, time.UTC)

		// Gradually improving efficiency toward the present.
		efficiency := 75 + float64(seededNights-i)*0.5 + rng.Float64()*6
		if efficiency > 98 {
			efficiency = 98
		}

		clientReqID := fmt.Sprintf("seed-report-%s-%d", user.ID, i)
		mood := 2 + rng.Intn(3)
		entry := domain.DiaryEntry{
			UserID:          user.ID,
			ReportedAt:      reportedAt,
			Efficiency:      efficiency,
			OnsetLatencyMin: float64(10 + rng.Intn(40)),
			WASOMin:         float64(5 + rng.Intn(35)),
			Quality:         4 + rng.Intn(5),
			Adhered:         rng.Float32() < 0.8,
			Mood:            &mood,
			Source:          "diary",
			ClientRequestID: &clientReqID,
		}

		if err := db.Where("client_request_id = ?", clientReqID).FirstOrCreate(&entry).Error; err != nil {
			return fmt.Errorf("failed to create diary entry: %w", err)
		}
	}
	return nil
}
