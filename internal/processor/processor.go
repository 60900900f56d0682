package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/grid"
	"github.com/mauv0809/padel-roster/internal/metrics"
	"github.com/mauv0809/padel-roster/internal/notifier"
	"github.com/mauv0809/padel-roster/internal/pubsub"
	"github.com/mauv0809/padel-roster/internal/roster"
	"github.com/mauv0809/padel-roster/internal/sheets"
	"github.com/panjf2000/ants/v2"
)

// New creates a new Processor.
func New(store Store, r Roster, sink sheets.Sink, ps pubsub.PubSubClient, n notifier.Notifier, m metrics.Metrics, counters metrics.MetricsStore, cfg Config) *Processor {
	if cfg.WorksheetPrefix == "" {
		cfg.WorksheetPrefix = "Americano"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Processor{
		store:    store,
		roster:   r,
		sink:     sink,
		pubsub:   ps,
		notifier: n,
		metrics:  m,
		counters: counters,
		cfg:      cfg,
	}
}

// RequestSync asks for the group's worksheets to be synced asynchronously.
func (p *Processor) RequestSync(groupID string, dryRun bool) error {
	if err := p.pubsub.SendMessage(pubsub.EventSyncGroup, pubsub.SyncRequest{GroupID: groupID, DryRun: dryRun}); err != nil {
		return apperrors.External(err, "request sync")
	}
	return nil
}

// SyncAll syncs every active group with a spreadsheet. Groups are synced
// concurrently and a failing group never stops the others.
func (p *Processor) SyncAll(ctx context.Context, now time.Time, dryRun bool) (Report, error) {
	start := time.Now()
	log.Info("Starting spreadsheet sync...", "dry_run", dryRun)
	groups, err := p.store.ListSyncableGroups(ctx)
	if err != nil {
		return Report{}, apperrors.External(err, "list groups")
	}
	report := Report{DryRun: dryRun}
	if len(groups) == 0 {
		log.Info("No groups to sync.")
		return report, nil
	}

	pool, err := ants.NewPool(p.cfg.Workers)
	if err != nil {
		return Report{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
	)
	for _, g := range groups {
		g := g
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			res := p.syncGroup(ctx, g, now, dryRun)
			mu.Lock()
			report.Groups = append(report.Groups, res)
			mu.Unlock()
		}); err != nil {
			workers.Done()
			return Report{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.SliceStable(report.Groups, func(i, j int) bool {
		return report.Groups[i].GroupID < report.Groups[j].GroupID
	})
	var failures []notifier.SyncFailure
	for _, res := range report.Groups {
		if res.err != nil {
			report.Failed++
			failures = append(failures, notifier.SyncFailure{GroupID: res.GroupID, GroupName: res.GroupName, Reason: res.Error})
			continue
		}
		report.Synced++
	}
	report.DurationMs = time.Since(start).Milliseconds()

	p.metrics.IncSyncRuns()
	p.metrics.ObserveSyncDuration(time.Since(start).Seconds())
	if !dryRun {
		p.counters.Increment(CounterSyncRuns)
	}
	if len(failures) > 0 {
		if err := p.notifier.NotifySyncFailures(ctx, failures, dryRun); err != nil {
			log.Error("Failed to report sync failures", "error", err)
		}
	}
	log.Info("Spreadsheet sync finished.", "synced", report.Synced, "failed", report.Failed, "duration_ms", report.DurationMs)
	return report, nil
}

// SyncGroup syncs the worksheets of a single group.
func (p *Processor) SyncGroup(ctx context.Context, groupID string, now time.Time, dryRun bool) (GroupResult, error) {
	g, err := p.store.GetGroup(ctx, groupID)
	if errors.Is(err, club.ErrNotFound) {
		return GroupResult{GroupID: groupID}, roster.ErrGroupNotFound
	}
	if err != nil {
		return GroupResult{GroupID: groupID}, apperrors.External(err, "load group")
	}
	if !g.Active() {
		return GroupResult{GroupID: groupID}, roster.ErrGroupNotFound
	}
	res := p.syncGroup(ctx, *g, now, dryRun)
	return res, res.err
}

func (p *Processor) syncGroup(ctx context.Context, g club.Group, now time.Time, dryRun bool) GroupResult {
	start := time.Now()
	res := GroupResult{GroupID: g.ID, GroupName: g.Name}
	err := p.project(ctx, g, now, dryRun, &res)
	if err != nil {
		res.err = err
		res.Error = err.Error()
		p.metrics.IncSyncFailures()
		if !dryRun {
			p.counters.Increment(CounterSyncFailures)
		}
		log.Error("Failed to sync group", "groupID", g.ID, "error", err)
		return res
	}
	log.Info("Synced group", "groupID", g.ID, "sheets", len(res.Sheets), "dates", res.Dates, "skipped", res.Skipped, "duration_ms", time.Since(start).Milliseconds())
	return res
}

// project writes the roster of every upcoming match day into the worksheet of the
// period holding it. Each worksheet is read once and written back in one request.
func (p *Processor) project(ctx context.Context, g club.Group, now time.Time, dryRun bool, res *GroupResult) error {
	dates, err := p.syncDates(ctx, g, now)
	if err != nil {
		return err
	}

	var order []string
	bySheet := make(map[string][]time.Time)
	for _, d := range dates {
		start, end := calendar.PeriodContaining(g.RegistrationOpenUntil, g.WeekRange, d)
		name := calendar.WorksheetName(p.cfg.WorksheetPrefix, start, end)
		if _, ok := bySheet[name]; !ok {
			order = append(order, name)
		}
		bySheet[name] = append(bySheet[name], d)
	}

	for _, name := range order {
		current, err := p.sink.ReadGrid(ctx, g.Spreadsheet, name)
		if errors.Is(err, sheets.ErrSheetNotFound) {
			log.Warn("Worksheet not found, skipping", "groupID", g.ID, "sheet", name)
			res.Skipped += len(bySheet[name])
			continue
		}
		if err != nil {
			return fmt.Errorf("read %q: %w", name, err)
		}
		for _, d := range bySheet[name] {
			entries, err := p.roster.RosterFor(ctx, g.ID, d)
			if err != nil {
				return err
			}
			next, err := grid.Project(current, d, toGridEntries(entries), g.PlayerCount())
			if errors.Is(err, grid.ErrColumnNotFound) {
				log.Warn("No column for match day, skipping", "groupID", g.ID, "sheet", name, "date", calendar.FormatDate(d))
				res.Skipped++
				continue
			}
			if err != nil {
				return err
			}
			current = next
			res.Dates++
		}

		if dryRun {
			log.Info("[Dry Run] Would write worksheet", "groupID", g.ID, "sheet", name, "range", grid.A1Range(name, current.Rows(), current.Cols()))
		} else {
			if err := p.sink.WriteGrid(ctx, g.Spreadsheet, name, current); err != nil {
				return fmt.Errorf("write %q: %w", name, err)
			}
			p.metrics.IncSheetWrites()
			p.counters.Increment(CounterSheetWrites)
		}
		res.Sheets = append(res.Sheets, name)
	}
	return nil
}

// syncDates returns every date to project, oldest first: all match days of the periods
// laid out so far, from today on, plus any date that still holds signups.
func (p *Processor) syncDates(ctx context.Context, g club.Group, now time.Time) ([]time.Time, error) {
	today := calendar.DateOf(now)
	withSignups, err := p.store.ListMatchDates(ctx, g.ID, today)
	if err != nil {
		return nil, apperrors.External(err, "list match dates")
	}
	seen := make(map[time.Time]bool)
	var dates []time.Time
	add := func(d time.Time) {
		d = calendar.DateOf(d)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	last := calendar.DateOf(g.RegistrationOpenUntil)
	for d := today; d.Before(last); d = d.AddDate(0, 0, 1) {
		if calendar.IsGameDay(d, g.GameWeekday) {
			add(d)
		}
	}
	for _, d := range withSignups {
		add(d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func toGridEntries(entries []roster.Entry) []grid.Entry {
	out := make([]grid.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, grid.Entry{Rank: e.Rank, Name: e.Member.DisplayName()})
	}
	return out
}
