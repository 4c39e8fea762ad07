package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/adapter"
	"telegram-agency-bot/internal/domain/ports/repository"
	"telegram-agency-bot/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// CourseUseCase keeps the local catalog in sync with the remote course
// service and handles purchases and access.
type CourseUseCase interface {
	// SyncCatalog pulls the remote catalog and upserts every course by
	// remote id. Returns the number of courses seen.
	SyncCatalog(ctx context.Context) (int, error)
	ListActive(ctx context.Context) ([]*model.Course, error)
	Find(ctx context.Context, id string) (*model.Course, error)

	// RecordPurchase stores a purchase; completed purchases also grant
	// course access, locally and on the remote service, in one transaction.
	RecordPurchase(ctx context.Context, userID int64, courseID string, amountMinor int64, status model.PaymentStatus, externalRef string) (*model.Purchase, error)
	CompletePurchase(ctx context.Context, purchaseID string) error
	PurchasesOf(ctx context.Context, userID int64) ([]*model.Purchase, error)

	HasAccess(ctx context.Context, userID int64, courseID string) (bool, error)
	RevokeAccess(ctx context.Context, userID int64, courseID string) error
	// InviteLink returns a personal access link for a user who owns the
	// course.
	InviteLink(ctx context.Context, userID int64, courseID string) (string, error)
}

type courseUC struct {
	courses   repository.CourseRepository
	purchases repository.PurchaseRepository
	access    repository.CourseAccessRepository
	catalog   adapter.CourseCatalogAdapter
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewCourseUseCase(
	courses repository.CourseRepository,
	purchases repository.PurchaseRepository,
	access repository.CourseAccessRepository,
	catalog adapter.CourseCatalogAdapter,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) CourseUseCase {
	return &courseUC{
		courses:   courses,
		purchases: purchases,
		access:    access,
		catalog:   catalog,
		tm:        tm,
		log:       logger,
	}
}

func (uc *courseUC) SyncCatalog(ctx context.Context) (int, error) {
	remote, err := uc.catalog.ListCourses(ctx)
	if err != nil {
		return 0, err
	}
	for _, rc := range remote {
		c, err := model.NewCourse("", rc.ID, rc.Title, rc.PriceMinor)
		if err != nil {
			uc.log.Warn().Err(err).Str("remote_id", rc.ID).Msg("skipping invalid remote course")
			continue
		}
		c.AccessLink = rc.AccessLink
		c.Description = rc.Description
		if err := uc.courses.Upsert(ctx, repository.NoTX, c); err != nil {
			return 0, err
		}
	}
	metrics.AddCoursesSynced(len(remote))
	uc.log.Info().Int("count", len(remote)).Msg("course catalog synced")
	return len(remote), nil
}

func (uc *courseUC) ListActive(ctx context.Context) ([]*model.Course, error) {
	return uc.courses.ListActive(ctx, repository.NoTX)
}

func (uc *courseUC) Find(ctx context.Context, id string) (*model.Course, error) {
	return uc.courses.FindByID(ctx, repository.NoTX, id)
}

func (uc *courseUC) RecordPurchase(ctx context.Context, userID int64, courseID string, amountMinor int64, status model.PaymentStatus, externalRef string) (*model.Purchase, error) {
	if _, err := uc.courses.FindByID(ctx, repository.NoTX, courseID); err != nil {
		return nil, err
	}
	p, err := model.NewPurchase("", userID, courseID, amountMinor, externalRef)
	if err != nil {
		return nil, err
	}
	if err := p.MarkStatus(status); err != nil {
		return nil, err
	}
	if status != model.PaymentCompleted {
		if err := uc.purchases.Save(ctx, repository.NoTX, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	// Completed on arrival: purchase row and access grant land together.
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.purchases.Save(ctx, tx, p); err != nil {
			return err
		}
		a, err := model.NewCourseAccess("", userID, courseID, nil)
		if err != nil {
			return err
		}
		return uc.access.Grant(ctx, tx, a)
	})
	if err != nil {
		return nil, err
	}
	uc.grantRemote(ctx, userID, courseID)
	return p, nil
}

func (uc *courseUC) CompletePurchase(ctx context.Context, purchaseID string) error {
	p, err := uc.purchases.FindByID(ctx, repository.NoTX, purchaseID)
	if err != nil {
		return err
	}
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.purchases.UpdateStatus(ctx, tx, purchaseID, model.PaymentCompleted); err != nil {
			return err
		}
		a, err := model.NewCourseAccess("", p.UserID, p.CourseID, nil)
		if err != nil {
			return err
		}
		return uc.access.Grant(ctx, tx, a)
	})
	if err != nil {
		return err
	}
	uc.grantRemote(ctx, p.UserID, p.CourseID)
	return nil
}

// grantRemote mirrors the local grant on the course service. A remote
// failure is logged, not surfaced: local access is the source of truth and
// the next sync reconciles.
func (uc *courseUC) grantRemote(ctx context.Context, userID int64, courseID string) {
	c, err := uc.courses.FindByID(ctx, repository.NoTX, courseID)
	if err != nil {
		uc.log.Error().Err(err).Str("course_id", courseID).Msg("course lookup for remote grant failed")
		return
	}
	if err := uc.catalog.GrantAccess(ctx, c.RemoteID, userID); err != nil {
		uc.log.Error().Err(err).Int64("user_id", userID).Str("course_id", courseID).
			Msg("remote access grant failed")
	}
}

func (uc *courseUC) PurchasesOf(ctx context.Context, userID int64) ([]*model.Purchase, error) {
	return uc.purchases.ListByUser(ctx, repository.NoTX, userID)
}

// HasAccess answers from the local grant when one exists. Without a local
// row it asks the course service, so grants made outside the bot still
// count, and mirrors a positive answer locally.
func (uc *courseUC) HasAccess(ctx context.Context, userID int64, courseID string) (bool, error) {
	a, err := uc.access.Find(ctx, repository.NoTX, userID, courseID)
	switch {
	case err == nil:
		return a.Valid(time.Now()), nil
	case errors.Is(err, domain.ErrNotFound):
	default:
		return false, err
	}

	c, err := uc.courses.FindByID(ctx, repository.NoTX, courseID)
	if err != nil {
		return false, err
	}
	ok, err := uc.catalog.CheckAccess(ctx, c.RemoteID, userID)
	if err != nil {
		uc.log.Warn().Err(err).Int64("user_id", userID).Str("course_id", courseID).
			Msg("remote access check failed")
		return false, nil
	}
	if ok {
		if a, aerr := model.NewCourseAccess("", userID, courseID, nil); aerr == nil {
			if gerr := uc.access.Grant(ctx, repository.NoTX, a); gerr != nil {
				uc.log.Warn().Err(gerr).Str("course_id", courseID).Msg("mirroring remote grant failed")
			}
		}
	}
	return ok, nil
}

func (uc *courseUC) RevokeAccess(ctx context.Context, userID int64, courseID string) error {
	if err := uc.access.Revoke(ctx, repository.NoTX, userID, courseID); err != nil {
		return err
	}
	c, err := uc.courses.FindByID(ctx, repository.NoTX, courseID)
	if err != nil {
		return err
	}
	if err := uc.catalog.RevokeAccess(ctx, c.RemoteID, userID); err != nil {
		uc.log.Error().Err(err).Int64("user_id", userID).Str("course_id", courseID).
			Msg("remote access revoke failed")
	}
	return nil
}

func (uc *courseUC) InviteLink(ctx context.Context, userID int64, courseID string) (string, error) {
	ok, err := uc.HasAccess(ctx, userID, courseID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrUnauthorized
	}
	c, err := uc.courses.FindByID(ctx, repository.NoTX, courseID)
	if err != nil {
		return "", err
	}
	return uc.catalog.CreateInvite(ctx, c.RemoteID, userID)
}
