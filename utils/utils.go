package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReferralCode generates a short unique referral code
func GenerateReferralCode() string {
	id := uuid.New().String()
	return strings.ToUpper(strings.ReplaceAll(id, "-", "")[:10])
}

// GenerateCertificateNumber generates a unique certificate number
func GenerateCertificateNumber() string {
	id := uuid.New().String()
	return fmt.Sprintf("CERT-%d-%s", time.Now().Year(), strings.ToUpper(id[:8]))
}
