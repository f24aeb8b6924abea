package campaignrepo

import (
	"context"
	"errors"
	"fmt"
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

// ListFilter narrows the campaign listing. When VisibleTo is set the
// result is limited to approved campaigns plus that user's own.
// Soft-deleted rows are excluded unless IncludeDeleted is set.
type ListFilter struct {
	Status         *int
	Search         string
	VisibleTo      string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

const campaignColumns = `id, title, description, goal_amount, current_amount, start_date, end_date, status, creator_id, approved_at, approved_by, rejected_by, rejected_at, rejected_reason, created_at, updated_at, deleted_at`

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.GoalAmount, &c.CurrentAmount,
		&c.StartDate, &c.EndDate, &c.Status, &c.CreatorID,
		&c.ApprovedAt, &c.ApprovedBy, &c.RejectedBy, &c.RejectedAt, &c.RejectedReason,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Campaign, error) {
	query := `
        SELECT ` + campaignColumns + `
        FROM campaigns
        WHERE id = $1 AND deleted_at IS NULL
    `
	campaign, err := scanCampaign(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find campaign", zap.Error(err))
		return nil, err
	}
	return campaign, nil
}

func (r *Repository) Save(ctx context.Context, campaign *domain.Campaign) error {
	query := `
        INSERT INTO campaigns (id, title, description, goal_amount, current_amount, start_date, end_date, status, creator_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := r.db.QueryRow(ctx, query,
			campaign.ID, campaign.Title, campaign.Description, campaign.GoalAmount, campaign.CurrentAmount,
			campaign.StartDate, campaign.EndDate, campaign.Status, campaign.CreatorID,
		).Scan(&campaign.CreatedAt, &campaign.UpdatedAt)
		if err != nil {
			zap.L().Error("can't save campaign", zap.Error(err))
			return err
		}
		return nil
	})
}

func (r *Repository) Update(ctx context.Context, campaign *domain.Campaign) error {
	query := `
        UPDATE campaigns
        SET title = $1, description = $2, goal_amount = $3, current_amount = $4, start_date = $5, end_date = $6, status = $7, approved_at = $8, approved_by = $9, rejected_by = $10, rejected_at = $11, rejected_reason = $12, updated_at = now()
        WHERE id = $13 AND deleted_at IS NULL
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			campaign.Title, campaign.Description, campaign.GoalAmount, campaign.CurrentAmount,
			campaign.StartDate, campaign.EndDate, campaign.Status,
			campaign.ApprovedAt, campaign.ApprovedBy, campaign.RejectedBy, campaign.RejectedAt, campaign.RejectedReason,
			campaign.ID,
		)
		if err != nil {
			zap.L().Error("can't update campaign", zap.Error(err))
			return err
		}
		return nil
	})
}

// SoftDelete marks the campaign removed while keeping the row for
// audit.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	query := `
        UPDATE campaigns
        SET deleted_at = now(), updated_at = now()
        WHERE id = $1 AND deleted_at IS NULL
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, id)
		if err != nil {
			zap.L().Error("can't delete campaign", zap.Error(err))
			return err
		}
		return nil
	})
}

// AddToCurrentAmount increments the campaign aggregate when a
// donation settles. Runs inside the caller's transaction.
func (r *Repository) AddToCurrentAmount(ctx context.Context, id string, amount int64) error {
	query := `
        UPDATE campaigns
        SET current_amount = current_amount + $1, updated_at = now()
        WHERE id = $2 AND deleted_at IS NULL
    `
	_, err := r.db.Exec(ctx, query, amount, id)
	if err != nil {
		zap.L().Error("can't update campaign amount", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]domain.Campaign, int64, error) {
	where := "WHERE 1=1"
	args := []any{}
	if !filter.IncludeDeleted {
		where += " AND deleted_at IS NULL"
	}
	if filter.VisibleTo != "" {
		args = append(args, domain.CampaignStatusApproved, filter.VisibleTo)
		where += fmt.Sprintf(" AND (status = $%d OR creator_id = $%d)", len(args)-1, len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (title ILIKE $" + n + " OR description ILIKE $" + n + ")"
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM campaigns " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		zap.L().Error("can't count campaigns", zap.Error(err))
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		"SELECT "+campaignColumns+" FROM campaigns %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't list campaigns", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			zap.L().Error("can't scan campaign row", zap.Error(err))
			return nil, 0, err
		}
		campaigns = append(campaigns, *campaign)
	}
	return campaigns, total, nil
}
