package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateRandomString generates a random string of specified length
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// ValidateStruct runs validator tags over a request body struct
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	validRoles := []string{"admin", "teacher"}
	for _, validRole := range validRoles {
		if role == validRole {
			return true
		}
	}
	return false
}

// IsValidUserStatus checks if a user status is valid
func IsValidUserStatus(status string) bool {
	validStatuses := []string{"active", "inactive"}
	for _, validStatus := range validStatuses {
		if status == validStatus {
			return true
		}
	}
	return false
}

// IsValidSessionStatus checks if a course session status is valid
func IsValidSessionStatus(status string) bool {
	validStatuses := []string{"Activo", "Inactivo", "Cancelado", "Finalizado"}
	for _, validStatus := range validStatuses {
		if status == validStatus {
			return true
		}
	}
	return false
}

// IsValidWeekday checks a lowercase Spanish weekday name
func IsValidWeekday(day string) bool {
	validDays := []string{"lunes", "martes", "miércoles", "jueves", "viernes", "sábado", "domingo"}
	day = strings.ToLower(strings.TrimSpace(day))
	for _, validDay := range validDays {
		if day == validDay {
			return true
		}
	}
	return false
}

// ParseDate parses a YYYY-MM-DD date in the local timezone
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.Local)
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}
