package repository

import (
	"time"

	"github.com/google/uuid"

	"fleet-crm/internal/models"
)

type clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// New records get a random id. CreatedAt survives a whole-record replace only when the
// caller sends it back, which the API does by loading the stored record first.
func stampContact(c *models.Contact, now time.Time) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func stampCompany(c *models.Company, now time.Time) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func stampVehicle(v *models.Vehicle, now time.Time) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
}

func stampUser(u *models.User, now time.Time) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}
