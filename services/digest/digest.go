package digest

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/schedule"
	"github.com/trezcool/chuo/services/export"
)

// ConflictFinder is the part of schedule.Service the digest needs.
type ConflictFinder interface {
	Today() string
	Conflicts(ctx context.Context, cf schedule.ConflictFilter) ([]schedule.Conflict, error)
}

var _ ConflictFinder = (*schedule.Service)(nil) // interface compliance check

// Digest periodically emails the venue clashes of the coming days.
type Digest struct {
	finder     ConflictFinder
	mailSvc    core.EmailService
	logger     core.Logger
	recipients []mail.Address
	consoleURL string
	spec       string
	days       int

	mu      sync.Mutex
	parser  cron.Parser
	c       *cron.Cron
	entryID cron.EntryID
}

func New(finder ConflictFinder, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Digest {
	days := conf.Notify.DigestWindowDays
	if days <= 0 {
		days = 7
	}
	return &Digest{
		finder:     finder,
		mailSvc:    mailSvc,
		logger:     logger,
		recipients: conf.NotifyAddresses(),
		consoleURL: conf.FrontendBaseURL,
		spec:       conf.Notify.DigestSchedule,
		days:       days,
		parser:     cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Window returns the inclusive date range checked by a run starting today.
func (d *Digest) Window(today string) (string, string, error) {
	from, err := time.Parse(core.DateLayout, today)
	if err != nil {
		return "", "", errors.Wrap(err, "parsing today")
	}
	return today, from.AddDate(0, 0, d.days-1).Format(core.DateLayout), nil
}

// Run checks the coming days for clashes and emails them, with a CSV attachment, when there are any.
// It returns the clashes found.
func (d *Digest) Run(ctx context.Context) ([]schedule.Conflict, error) {
	from, to, err := d.Window(d.finder.Today())
	if err != nil {
		return nil, err
	}
	conflicts, err := d.finder.Conflicts(ctx, schedule.ConflictFilter{From: from, To: to})
	if err != nil {
		return nil, errors.Wrap(err, "detecting clashes")
	}
	if len(conflicts) == 0 || len(d.recipients) == 0 {
		return conflicts, nil
	}

	period := from + " to " + to
	subject := fmt.Sprintf("Venue clash digest: %d clash(es) from %s", len(conflicts), period)
	link := schedule.ConflictsLink(d.consoleURL, schedule.ConflictFilter{From: from, To: to})
	msg := schedule.NewClashMessage(d.recipients, subject, period, link, conflicts)
	msg.Category = schedule.MailCategoryDigest

	var buf bytes.Buffer
	if err = export.Conflicts(&buf, conflicts); err != nil {
		return nil, errors.Wrap(err, "exporting clashes")
	}
	if err = msg.Attach(&buf, fmt.Sprintf("clashes-%s.csv", from), export.ContentType); err != nil {
		return nil, err
	}
	d.mailSvc.SendMessages(msg)
	return conflicts, nil
}

// Start schedules Run on the configured cron spec. A blank spec disables the digest.
func (d *Digest) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.spec == "" || d.c != nil {
		return nil
	}

	c := cron.New(cron.WithParser(d.parser), cron.WithLocation(time.UTC))
	id, err := c.AddFunc(d.spec, func() {
		conflicts, err := d.Run(context.Background())
		if err != nil {
			d.logger.Error("clash digest failed", err)
			return
		}
		d.logger.Info(fmt.Sprintf("clash digest: %d clash(es)", len(conflicts)))
	})
	if err != nil {
		return errors.Wrapf(err, "scheduling clash digest %q", d.spec)
	}

	d.c = c
	d.entryID = id
	c.Start()
	d.logger.Info(fmt.Sprintf("clash digest scheduled (%s), next run at %s", d.spec, c.Entry(id).Next.Format(time.RFC3339)))
	return nil
}

// Stop stops the scheduler; the returned context is done once a running digest completes.
func (d *Digest) Stop() context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.c == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	ctx := d.c.Stop()
	d.c = nil
	return ctx
}

// Next returns the next scheduled run, zero when the digest is not running.
func (d *Digest) Next() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.c == nil {
		return time.Time{}
	}
	return d.c.Entry(d.entryID).Next
}
