package service

import (
	"time"
	_ "time/tzdata"

	"github.com/noah-isme/admissions-crm-api/internal/models"
)

// Clock reports the current time in the server's configured zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock builds a Clock for the named zone. Empty or "Local" uses the host zone; an
// unknown name falls back to UTC.
func NewClock(zone string) *Clock {
	loc := time.Local
	if zone != "" && zone != "Local" {
		if l, err := time.LoadLocation(zone); err == nil {
			loc = l
		} else {
			loc = time.UTC
		}
	}
	return &Clock{loc: loc, now: time.Now}
}

// Now returns the current time in the clock's zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Info returns the payload served by the time endpoint.
func (c *Clock) Info() models.TimeInfo {
	now := c.Now()
	return models.TimeInfo{CurrentTime: now.Format(time.RFC3339), TimeZone: c.zoneName(now)}
}

func (c *Clock) zoneName(now time.Time) string {
	if name := c.loc.String(); name != "" && name != "Local" {
		return name
	}
	name, _ := now.Zone()
	return name
}
