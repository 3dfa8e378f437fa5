package domain

import (
	"strings"
	"time"
)

// Car is a vehicle a driver registers once and references from rides.
type Car struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Model         string    `json:"car_model"`
	LicenseNumber string    `json:"license_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NormalizeLicense trims a plate and upper-cases it so "ab 123" and "AB 123 " match.
func NormalizeLicense(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
