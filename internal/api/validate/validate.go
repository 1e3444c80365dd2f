package validate

import (
	"fmt"
	"regexp"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

func Positive(field string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive", field)
	}
	return nil
}

// -------- Request specific helpers ----------

// CreateUser validates input for provisioning a new account.
func CreateUser(email string, displayName *string) error {
	if err := Email(email); err != nil {
		return err
	}
	return MaxLen("displayName", displayName, 100)
}

// CreateFarm validates the request-level farm fields. Deeper rules live in
// the farm service.
func CreateFarm(name, cropType string, area float64) error {
	if err := NonEmpty("name", name); err != nil {
		return err
	}
	if err := NonEmpty("cropType", cropType); err != nil {
		return err
	}
	return Positive("area", area)
}
