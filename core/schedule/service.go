package schedule

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
)

var (
	// errors
	ErrNotFound = errors.New("event not found")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		GetEvent(ctx context.Context, id string) (Event, error)
		// QueryEvents applies QueryFilter.Match semantics; a nil filter returns every event.
		QueryEvents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error)
		UpdateEvent(ctx context.Context, evt Event) (Event, error)
		DeleteEvents(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo       Repository
		mailSvc    core.EmailService
		logger     core.Logger
		recipients []mail.Address
		consoleURL string
		horizon    time.Duration
		nowFunc    func() time.Time
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	horizon := conf.Schedule.RecurrenceHorizon
	if horizon <= 0 {
		horizon = 365 * 24 * time.Hour
	}
	return &Service{
		repo:       repo,
		mailSvc:    mailSvc,
		logger:     logger,
		recipients: conf.NotifyAddresses(),
		consoleURL: conf.FrontendBaseURL,
		horizon:    horizon,
		nowFunc:    time.Now,
	}
}

// Today returns the current date as YYYY-MM-DD.
func (svc *Service) Today() string {
	return svc.nowFunc().Format(core.DateLayout)
}

func (svc *Service) Create(ctx context.Context, ne NewEvent) (Event, error) {
	now := svc.nowFunc().UTC()
	evt := Event{
		Title:       ne.Title,
		Description: ne.Description,
		Venue:       ne.Venue,
		Category:    ne.Category,
		Status:      ne.Status,
		Organizer:   ne.Organizer,
		Capacity:    ne.Capacity,
		StartDate:   ne.StartDate,
		EndDate:     ne.EndDate,
		StartTime:   ne.StartTime,
		EndTime:     ne.EndTime,
		Recurrence:  ne.Recurrence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	evt, err := svc.repo.CreateEvent(ctx, evt)
	if err != nil {
		return Event{}, errors.Wrap(err, "creating event")
	}
	svc.notifyClashes(ctx, evt)
	return evt, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEvent(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error) {
	return svc.repo.QueryEvents(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateEvent) (Event, error) {
	orig, err := svc.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, err
	}
	evt := Event{
		ID:          orig.ID,
		Title:       ue.Title,
		Description: ue.Description,
		Venue:       ue.Venue,
		Category:    ue.Category,
		Status:      ue.Status,
		Organizer:   ue.Organizer,
		Capacity:    ue.Capacity,
		StartDate:   ue.StartDate,
		EndDate:     ue.EndDate,
		StartTime:   ue.StartTime,
		EndTime:     ue.EndTime,
		Recurrence:  ue.Recurrence,
		Attendance:  ue.Attendance,
		CreatedAt:   orig.CreatedAt,
		UpdatedAt:   svc.nowFunc().UTC(),
	}
	evt, err = svc.repo.UpdateEvent(ctx, evt)
	if err != nil {
		return Event{}, errors.Wrap(err, "updating event")
	}
	svc.notifyClashes(ctx, evt)
	return evt, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteEvents(ctx, ids...)
}

// window returns the range recurring events are expanded in.
func (svc *Service) window(evt Event, cf ConflictFilter) (time.Time, time.Time) {
	from, ok := startOfDay(cf.From)
	if !ok {
		from, _ = evt.Start()
	}
	to, ok := endOfDay(cf.To)
	if !ok {
		to = from.Add(svc.horizon)
	}
	return from, to
}

// Items returns the events a clash detection pass runs on: non-cancelled events starting
// within the filter's range, with recurring events expanded into their occurrences.
func (svc *Service) Items(ctx context.Context, cf ConflictFilter) ([]Event, error) {
	var filter *QueryFilter
	if cf.Venue != "" {
		filter = &QueryFilter{Venue: cf.Venue}
	}
	events, err := svc.repo.QueryEvents(ctx, filter, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying events")
	}

	items := make([]Event, 0, len(events))
	for _, evt := range events {
		if evt.Status == StatusCancelled {
			continue
		}
		if !evt.IsRecurring() {
			if cf.Includes(evt.DateKey()) {
				items = append(items, evt)
			}
			continue
		}

		from, to := svc.window(evt, cf)
		occurrences, err := evt.Occurrences(from, to)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("expanding event %s: %v", evt.ID, err), err)
			if cf.Includes(evt.DateKey()) {
				items = append(items, evt)
			}
			continue
		}
		for _, occ := range occurrences {
			if cf.Includes(occ.DateKey()) {
				items = append(items, occ)
			}
		}
	}

	// stable output for a given data set
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DateKey() != items[j].DateKey() {
			return items[i].DateKey() < items[j].DateKey()
		}
		si, sj := clockOr(items[i].StartTime, DayStart), clockOr(items[j].StartTime, DayStart)
		if si != sj {
			return si < sj
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// Conflicts detects venue clashes among the stored events matching the filter.
func (svc *Service) Conflicts(ctx context.Context, cf ConflictFilter) ([]Conflict, error) {
	items, err := svc.Items(ctx, cf)
	if err != nil {
		return nil, err
	}
	return DetectConflicts(items), nil
}

// Stats aggregates the events matching filter.
func (svc *Service) Stats(ctx context.Context, filter *QueryFilter) (Stats, error) {
	events, err := svc.repo.QueryEvents(ctx, filter, nil)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying events")
	}
	return ComputeStats(events, svc.Today()), nil
}

// notifyClashes emails the configured recipients when evt clashes with other events on its start date.
// Failures are logged: the write that triggered the check has already succeeded.
func (svc *Service) notifyClashes(ctx context.Context, evt Event) {
	if svc.mailSvc == nil || len(svc.recipients) == 0 || evt.Status == StatusCancelled {
		return
	}

	// a recurring event is checked over its whole expansion window
	cf := ConflictFilter{From: evt.DateKey(), To: evt.DateKey(), Venue: evt.Venue}
	period := cf.From
	if evt.IsRecurring() {
		from, to := svc.window(evt, ConflictFilter{})
		cf.From, cf.To = from.Format(core.DateLayout), to.Format(core.DateLayout)
		period = cf.From + " to " + cf.To
	}
	conflicts, err := svc.Conflicts(ctx, cf)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("checking clashes for event %s: %v", evt.ID, err), err)
		return
	}

	involved := make([]Conflict, 0, len(conflicts))
	for _, c := range conflicts {
		if c.Involves(evt.ID) {
			involved = append(involved, c)
		}
	}
	if len(involved) == 0 {
		return
	}

	subject := fmt.Sprintf("Venue clash: %s on %s", evt.Venue, involved[0].Date)
	link := ConflictsLink(svc.consoleURL, cf)
	svc.mailSvc.SendMessages(NewClashMessage(svc.recipients, subject, period, link, involved))
}
