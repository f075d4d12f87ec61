// Command seed lays out the festival time-slot schedule. For each
// given date it creates a slot every interval between the start and
// end hours (JST), alternating between walk-in and reservable so the
// queue always keeps room for visitors without the app.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nanafes/reservation-api/internal/config"
	"github.com/nanafes/reservation-api/internal/database"
	"github.com/nanafes/reservation-api/internal/model"
	"github.com/nanafes/reservation-api/internal/repository"
)

var jst = time.FixedZone("JST", 9*60*60)

func main() {
	dates := flag.String("dates", "", "comma-separated festival dates, YYYY-MM-DD (required)")
	startHour := flag.Int("start", 10, "first slot hour, JST")
	endHour := flag.Int("end", 16, "end of schedule hour, JST (exclusive)")
	interval := flag.Duration("interval", 3*time.Minute, "spacing between slots")
	flag.Parse()
	if *dates == "" {
		log.Fatal("-dates is required")
	}
	if *endHour <= *startHour || *interval <= 0 {
		log.Fatal("invalid schedule window")
	}

	_ = godotenv.Load()
	cfg := config.LoadDB()
	db, err := database.Open(cfg.User, cfg.Pass, cfg.Host, cfg.Port, cfg.Name)
	if err != nil {
		log.Fatalf("database open failed: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	var slots []model.TimeSlot
	for _, d := range strings.Split(*dates, ",") {
		day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(d), jst)
		if err != nil {
			log.Fatalf("invalid date %q: %v", d, err)
		}
		from := day.Add(time.Duration(*startHour) * time.Hour)
		until := day.Add(time.Duration(*endHour) * time.Hour)
		for i, at := 0, from; at.Before(until); i, at = i+1, at.Add(*interval) {
			kind := model.SlotWalkIn
			if i%2 == 1 {
				kind = model.SlotReservable
			}
			slots = append(slots, model.TimeSlot{
				SlotTime: at.UTC(),
				Kind:     kind,
				Status:   model.SlotAvailable,
			})
		}
	}

	repo := repository.NewTimeSlotRepo(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repo.InsertBulk(ctx, slots); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("seeded %d slots", len(slots))
}
