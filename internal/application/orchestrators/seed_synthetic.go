package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	memberFilter "congregation/internal/adapters/storage/member"
	"congregation/internal/domain/attendance"
	"congregation/internal/domain/member"
)

// SyntheticSeedDeps holds the stores needed for synthetic data seeding.
type SyntheticSeedDeps struct {
	MemberStore     synMemberStore
	AttendanceStore AttendanceStoreForRecord
	Now             func() time.Time
}

type synMemberStore interface {
	Save(ctx context.Context, m member.Member) error
	Count(ctx context.Context, filter memberFilter.ListFilter) (int, error)
}

// SyntheticSeedResult reports what was created.
type SyntheticSeedResult struct {
	Members int
	Records int
	Skipped bool
}

type seedService struct {
	date        time.Time
	serviceType string
}

// syntheticWeeks is how far back the seeded history reaches.
const syntheticWeeks = 16

// ExecuteSeedSynthetic populates an empty database with a small congregation
// and several months of weekly worship, midweek bible study and a monthly event.
// The same clock always produces the same data.
// PRE: development mode only
// POST: Skips without writing when any member already exists
func ExecuteSeedSynthetic(ctx context.Context, deps SyntheticSeedDeps) (SyntheticSeedResult, error) {
	existing, err := deps.MemberStore.Count(ctx, memberFilter.ListFilter{})
	if err != nil {
		return SyntheticSeedResult{}, fmt.Errorf("seed_synthetic: count members: %w", err)
	}
	if existing > 0 {
		slog.Info("seed_event", "event", "synthetic_skip", "reason", "already_seeded")
		return SyntheticSeedResult{Skipped: true}, nil
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	today := now().UTC()

	type memberSeed struct {
		First, Last, Congregation string
		Attends                   float64 // chance of being present at any service
	}
	roster := []memberSeed{
		{"Grace", "Adeyemi", "North", 0.95},
		{"Samuel", "Adeyemi", "North", 0.85},
		{"Ruth", "Okafor", "North", 0.7},
		{"Daniel", "Mensah", "North", 0.55},
		{"Esther", "Nakamura", "South", 0.9},
		{"Joseph", "Park", "South", 0.8},
		{"Miriam", "Kowalski", "South", 0.6},
		{"Elijah", "Brown", "South", 0.4},
		{"Hannah", "Silva", "East", 0.88},
		{"Isaac", "Tui", "East", 0.75},
	}

	rng := rand.New(rand.NewPCG(uint64(today.Year()), uint64(today.YearDay())))
	ids := make([]string, len(roster))
	for i, ms := range roster {
		ids[i] = uuid.New().String()
		m := member.Member{
			ID:           ids[i],
			FirstName:    ms.First,
			LastName:     ms.Last,
			Congregation: ms.Congregation,
			Email:        strings.ToLower(ms.First+"."+ms.Last) + "@example.org",
			Status:       member.StatusActive,
		}
		if err := deps.MemberStore.Save(ctx, m); err != nil {
			return SyntheticSeedResult{}, fmt.Errorf("seed member %s: %w", m.FullName(), err)
		}
	}

	records := 0
	lastSunday := today.AddDate(0, 0, -int(today.Weekday()))
	for week := syntheticWeeks - 1; week >= 0; week-- {
		sunday := lastSunday.AddDate(0, 0, -7*week)
		services := []seedService{
			{sunday, attendance.ServiceWorship},
			{sunday.AddDate(0, 0, 3), attendance.ServiceBibleStudy},
		}
		// The Saturday after the first Sunday of the month hosts the congregation event.
		if sunday.Day() <= 7 {
			services = append(services, seedService{sunday.AddDate(0, 0, 6), attendance.ServiceEvent})
		}

		for _, svc := range services {
			if svc.date.After(today) {
				continue
			}
			for i, ms := range roster {
				status := attendance.StatusAbsent
				if rng.Float64() < ms.Attends {
					status = attendance.StatusPresent
				}
				r := attendance.Record{
					MemberID:    ids[i],
					Date:        attendance.FormatDay(svc.date),
					ServiceType: svc.serviceType,
					Status:      status,
				}
				if status == attendance.StatusAbsent && rng.IntN(4) == 0 {
					r.Notes = "sent apologies"
				}
				if _, err := deps.AttendanceStore.Save(ctx, r); err != nil {
					return SyntheticSeedResult{}, fmt.Errorf("seed attendance: %w", err)
				}
				records++
			}
		}
	}

	slog.Info("seed_event", "event", "synthetic_seeded", "members", len(roster), "records", records)
	return SyntheticSeedResult{Members: len(roster), Records: records}, nil
}
