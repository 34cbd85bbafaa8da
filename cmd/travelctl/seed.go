package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"travel_app_echo/internal/models"
)

var seedLocations = []string{"Addis Ababa", "Bahir Dar", "Gondar", "Lalibela", "Hawassa", "Arba Minch"}

func seedCmd() *cobra.Command {
	var (
		count int
		keep  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with sample listings, bookings and reviews",
		Long: `Seed replaces all listings with sample data. Bookings and reviews
are removed with their listings; payments keep their rows with the booking unset.

Examples:
  travelctl seed
  travelctl seed --count 25 --keep`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			db, err := openDB()
			if err != nil {
				return err
			}

			if !keep {
				if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Listing{}).Error; err != nil {
					return fmt.Errorf("failed to clear listings: %w", err)
				}
			}

			listings := buildSeed(rand.New(rand.NewSource(time.Now().UnixNano())), count)
			if err := db.Create(&listings).Error; err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}

			bookings, reviews := 0, 0
			for _, l := range listings {
				bookings += len(l.Bookings)
				reviews += len(l.Reviews)
			}
			fmt.Printf("Database seeded successfully: %d listings, %d bookings, %d reviews\n", len(listings), bookings, reviews)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of listings to create")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep existing listings")

	return cmd
}

// buildSeed creates count listings, each with 1-5 bookings and 1-3 reviews
func buildSeed(rng *rand.Rand, count int) []models.Listing {
	checkIn := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC)

	listings := make([]models.Listing, 0, count)
	for i := 0; i < count; i++ {
		l := models.Listing{
			Title:         fmt.Sprintf("Listing %d", i+1),
			Description:   "A wonderful place to stay.",
			PricePerNight: math.Round((50+rng.Float64()*450)*100) / 100,
			MaxGuests:     1 + rng.Intn(10),
			Location:      seedLocations[rng.Intn(len(seedLocations))],
		}

		bookings, reviews := 1+rng.Intn(5), 1+rng.Intn(3)
		for j := 0; j < bookings; j++ {
			l.Bookings = append(l.Bookings, models.Booking{
				GuestName:  fmt.Sprintf("Guest %d", j+1),
				GuestEmail: fmt.Sprintf("guest%d.listing%d@example.com", j+1, i+1),
				Guests:     1,
				CheckIn:    checkIn,
				CheckOut:   checkOut,
			})
		}

		for k := 0; k < reviews; k++ {
			l.Reviews = append(l.Reviews, models.Review{
				ReviewerName: fmt.Sprintf("Reviewer %d", k+1),
				Rating:       1 + rng.Intn(5),
				Comment:      "Great place!",
			})
		}
		listings = append(listings, l)
	}
	return listings
}
