package schedule

import "time"

// SetNow pins the service clock.
func (svc *Service) SetNow(now func() time.Time) {
	svc.nowFunc = now
}
