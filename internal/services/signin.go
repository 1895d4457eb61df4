package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/models"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/repomanager"
)

// SignInService keeps the daily sign-in log and the per-user summary in step.
type SignInService struct {
	runner *dbx.Runner
	rm     repomanager.RepositoryManager
	clock  Clock
	log    logging.Logger
}

func NewSignInService(runner *dbx.Runner, rm repomanager.RepositoryManager, clock Clock, log logging.Logger) *SignInService {
	return &SignInService{runner: runner, rm: rm, clock: clock, log: log.With("module", "signin")}
}

// Sign records a sign-in for date, or for today when date is zero. Signing a
// past day counts as a supplement. It returns false if the day was already
// signed.
func (s *SignInService) Sign(ctx context.Context, uid string, date time.Time) (bool, error) {
	if err := requireID("uid", uid); err != nil {
		return false, err
	}
	today := s.clock.Now().Format(models.DateLayout)
	day := today
	if !date.IsZero() {
		day = date.Format(models.DateLayout)
	}
	if day > today {
		return false, fmt.Errorf("%w: sign-in date %s is in the future", common.ErrorValidation, day)
	}
	supplement := day != today

	signed := false
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.SignIns(tx)
		taken, err := repo.HasSigned(ctx, uid, day)
		if err != nil || taken {
			return err
		}
		if err := repo.InsertLog(ctx, models.SignLog{UID: uid, Date: day, IsSupplement: supplement}); err != nil {
			return err
		}

		summary, err := repo.GetSummary(ctx, uid)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			summary = &models.SignSummary{UID: uid}
		case err != nil:
			return err
		}
		if err := repo.UpsertSummary(ctx, advance(*summary, day, supplement)); err != nil {
			return err
		}
		signed = true
		return nil
	})
	if err != nil {
		logFailure(ctx, s.log, "sign", err, "uid", uid, "date", day)
		return false, err
	}
	if signed {
		s.log.Debug(ctx, "signed in", "uid", uid, "date", day, "supplement", supplement)
	}
	return signed, nil
}

// advance folds one more signed day into the summary. The month counter
// restarts with a new month and the streak restarts unless the previous
// sign-in was the day before.
func advance(s models.SignSummary, day string, supplement bool) models.SignSummary {
	month := day[:len(models.MonthLayout)]

	if s.CurrentMonth == month {
		s.MonthSignDays++
	} else {
		s.MonthSignDays = 1
	}

	if prev, err := time.Parse(models.DateLayout, day); err == nil &&
		s.LastSignDate == prev.AddDate(0, 0, -1).Format(models.DateLayout) {
		s.ContinuousDays++
	} else {
		s.ContinuousDays = 1
	}

	if supplement {
		s.SupplementCount++
	}
	s.TotalSignDays++
	s.CurrentMonth = month
	s.LastSignDate = day
	return s
}

func (s *SignInService) HasSigned(ctx context.Context, uid string, date time.Time) (bool, error) {
	return s.rm.SignIns(s.runner.DB()).HasSigned(ctx, uid, date.Format(models.DateLayout))
}

// MonthCount returns how many days of month were signed.
func (s *SignInService) MonthCount(ctx context.Context, uid string, month time.Time) (int, error) {
	return s.rm.SignIns(s.runner.DB()).CountMonth(ctx, uid, month.Format(models.MonthLayout))
}

// MonthDays returns the signed days of month, ascending.
func (s *SignInService) MonthDays(ctx context.Context, uid string, month time.Time) ([]int, error) {
	return s.rm.SignIns(s.runner.DB()).Days(ctx, uid, month.Format(models.MonthLayout))
}

// Summary returns common.ErrorNotFound for users that never signed in.
func (s *SignInService) Summary(ctx context.Context, uid string) (*models.SignSummary, error) {
	return s.rm.SignIns(s.runner.DB()).GetSummary(ctx, uid)
}
