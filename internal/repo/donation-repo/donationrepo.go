package donationrepo

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/pg"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

// ListFilter narrows the donation listing. When VisibleTo is set only
// that donor's rows are returned.
type ListFilter struct {
	CampaignID string
	VisibleTo  string
	Status     *int
	Limit      int
	Offset     int
}

const donationColumns = `id, campaign_id, donor_id, amount, currency, status, anonymous, message, visibility, created_at, updated_at`

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	var d domain.Donation
	err := row.Scan(
		&d.ID, &d.CampaignID, &d.DonorID, &d.Amount, &d.Currency,
		&d.Status, &d.Anonymous, &d.Message, &d.Visibility,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Donation, error) {
	query := `
        SELECT ` + donationColumns + `
        FROM donations
        WHERE id = $1
    `
	donation, err := scanDonation(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find donation", zap.Error(err))
		return nil, err
	}
	return donation, nil
}

func (r *Repository) Save(ctx context.Context, donation *domain.Donation) error {
	query := `
        INSERT INTO donations (id, campaign_id, donor_id, amount, currency, status, anonymous, message, visibility)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := r.db.QueryRow(ctx, query,
			donation.ID, donation.CampaignID, donation.DonorID, donation.Amount, donation.Currency,
			donation.Status, donation.Anonymous, donation.Message, donation.Visibility,
		).Scan(&donation.CreatedAt, &donation.UpdatedAt)
		if err != nil {
			zap.L().Error("can't save donation", zap.Error(err))
			return err
		}
		return nil
	})
}

func (r *Repository) Update(ctx context.Context, donation *domain.Donation) error {
	query := `
        UPDATE donations
        SET amount = $1, currency = $2, status = $3, anonymous = $4, message = $5, visibility = $6, updated_at = now()
        WHERE id = $7
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			donation.Amount, donation.Currency, donation.Status,
			donation.Anonymous, donation.Message, donation.Visibility,
			donation.ID,
		)
		if err != nil {
			zap.L().Error("can't update donation", zap.Error(err))
			return err
		}
		return nil
	})
}

// MarkStatus changes only the donation status. Runs inside the
// caller's transaction when one is bound to the context.
func (r *Repository) MarkStatus(ctx context.Context, id string, status int) error {
	query := `UPDATE donations SET status = $1, updated_at = now() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		zap.L().Error("can't mark donation status", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM donations WHERE id = $1`
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, id)
		if err != nil {
			zap.L().Error("can't delete donation", zap.Error(err))
			return err
		}
		return nil
	})
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]domain.Donation, int64, error) {
	where := "WHERE 1=1"
	args := []any{}
	if filter.CampaignID != "" {
		args = append(args, filter.CampaignID)
		where += " AND campaign_id = $" + strconv.Itoa(len(args))
	}
	if filter.VisibleTo != "" {
		args = append(args, filter.VisibleTo)
		where += " AND donor_id = $" + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM donations " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		zap.L().Error("can't count donations", zap.Error(err))
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := "SELECT " + donationColumns + " FROM donations " + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't list donations", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var donations []domain.Donation
	for rows.Next() {
		donation, err := scanDonation(rows)
		if err != nil {
			zap.L().Error("can't scan donation row", zap.Error(err))
			return nil, 0, err
		}
		donations = append(donations, *donation)
	}
	return donations, total, nil
}

// DailyStatistics returns per-day counts and totals of completed
// donations for a campaign, oldest day first.
func (r *Repository) DailyStatistics(ctx context.Context, campaignID string) ([]domain.DailyStat, error) {
	query := `
        SELECT TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS date, COUNT(*), COALESCE(SUM(amount), 0)
        FROM donations
        WHERE campaign_id = $1 AND status = $2
        GROUP BY DATE(created_at)
        ORDER BY DATE(created_at)
    `
	rows, err := r.db.Query(ctx, query, campaignID, domain.DonationStatusCompleted)
	if err != nil {
		zap.L().Error("can't load daily statistics", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var stats []domain.DailyStat
	for rows.Next() {
		var s domain.DailyStat
		if err := rows.Scan(&s.Date, &s.Quantity, &s.Amount); err != nil {
			zap.L().Error("can't scan daily statistic", zap.Error(err))
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// Summary aggregates a campaign's donations. Donation and donor
// counts span all statuses; the settled amount and its count are
// restricted to completed donations.
func (r *Repository) Summary(ctx context.Context, campaignID string) (*domain.DonationSummary, error) {
	query := `
        SELECT COUNT(*),
               COUNT(DISTINCT donor_id),
               COALESCE(SUM(amount) FILTER (WHERE status = $2), 0),
               COUNT(*) FILTER (WHERE status = $2)
        FROM donations
        WHERE campaign_id = $1
    `
	var s domain.DonationSummary
	err := r.db.QueryRow(ctx, query, campaignID, domain.DonationStatusCompleted).
		Scan(&s.TotalDonations, &s.UniqueDonors, &s.TotalAmount, &s.CompletedDonations)
	if err != nil {
		zap.L().Error("can't load donation summary", zap.Error(err))
		return nil, err
	}
	return &s, nil
}
