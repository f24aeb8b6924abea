package domain

import "time"

// Named permissions assignable to users. An admin passes every
// permission check implicitly.
const (
	PermManageCampaigns = "manage campaigns"
	PermManageDonations = "manage donations"
	PermManageUsers     = "manage users"
	PermViewDonations   = "view donations"
)

// Campaign statuses.
const (
	CampaignStatusDraft = iota
	CampaignStatusPending
	CampaignStatusApproved
	CampaignStatusRejected
	CampaignStatusCompleted
	CampaignStatusCancelled
)

// Donation visibility.
const (
	VisibilityPublic = iota
	VisibilityAnonymous
)

// Donation statuses.
const (
	DonationStatusPending = iota
	DonationStatusCompleted
	DonationStatusFailed
	DonationStatusRefunded
)

// Transaction statuses.
const (
	TransactionStatusPending = iota
	TransactionStatusProcessing
	TransactionStatusCompleted
	TransactionStatusFailed
	TransactionStatusCancelled
)

var campaignStatusLabels = map[int]string{
	CampaignStatusDraft:     "draft",
	CampaignStatusPending:   "pending",
	CampaignStatusApproved:  "approved",
	CampaignStatusRejected:  "rejected",
	CampaignStatusCompleted: "completed",
	CampaignStatusCancelled: "cancelled",
}

var donationStatusLabels = map[int]string{
	DonationStatusPending:   "pending",
	DonationStatusCompleted: "completed",
	DonationStatusFailed:    "failed",
	DonationStatusRefunded:  "refunded",
}

var visibilityLabels = map[int]string{
	VisibilityPublic:    "public",
	VisibilityAnonymous: "anonymous",
}

var transactionStatusLabels = map[int]string{
	TransactionStatusPending:    "pending",
	TransactionStatusProcessing: "processing",
	TransactionStatusCompleted:  "completed",
	TransactionStatusFailed:     "failed",
	TransactionStatusCancelled:  "cancelled",
}

func CampaignStatusLabel(status int) string    { return campaignStatusLabels[status] }
func DonationStatusLabel(status int) string    { return donationStatusLabels[status] }
func VisibilityLabel(visibility int) string    { return visibilityLabels[visibility] }
func TransactionStatusLabel(status int) string { return transactionStatusLabels[status] }

func ValidCampaignStatus(status int) bool {
	_, ok := campaignStatusLabels[status]
	return ok
}

func ValidDonationStatus(status int) bool {
	_, ok := donationStatusLabels[status]
	return ok
}

func ValidVisibility(visibility int) bool {
	_, ok := visibilityLabels[visibility]
	return ok
}

type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	Permissions  []string  `db:"-"`
	CreatedAt    time.Time `db:"created_at"`
}

// HasPermission reports whether the user holds the named permission.
// Admins hold every permission.
func (u *User) HasPermission(name string) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

type Permission struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	GuardName string `db:"guard_name"`
}

type Campaign struct {
	ID             string     `db:"id"`
	Title          string     `db:"title"`
	Description    string     `db:"description"`
	GoalAmount     int64      `db:"goal_amount"`
	CurrentAmount  int64      `db:"current_amount"`
	StartDate      time.Time  `db:"start_date"`
	EndDate        time.Time  `db:"end_date"`
	Status         int        `db:"status"`
	CreatorID      string     `db:"creator_id"`
	ApprovedAt     *time.Time `db:"approved_at"`
	ApprovedBy     *string    `db:"approved_by"`
	RejectedBy     *string    `db:"rejected_by"`
	RejectedAt     *time.Time `db:"rejected_at"`
	RejectedReason *string    `db:"rejected_reason"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type Donation struct {
	ID         string    `db:"id"`
	CampaignID string    `db:"campaign_id"`
	DonorID    string    `db:"donor_id"`
	Amount     int64     `db:"amount"`
	Currency   string    `db:"currency"`
	Anonymous  bool      `db:"anonymous"`
	Message    *string   `db:"message"`
	Visibility int       `db:"visibility"`
	Status     int       `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type Transaction struct {
	ID                   string         `db:"id"`
	DonationID           string         `db:"donation_id"`
	Reference            string         `db:"transaction_reference"`
	Gateway              string         `db:"payment_gateway"`
	GatewayTransactionID *string        `db:"gateway_transaction_id"`
	Amount               int64          `db:"amount"`
	Currency             string         `db:"currency"`
	FeeAmount            int64          `db:"fee_amount"`
	Status               int            `db:"status"`
	StatusMessage        *string        `db:"status_message"`
	ProcessedAt          *time.Time     `db:"processed_at"`
	RequestPayload       map[string]any `db:"request_payload"`
	ResponsePayload      map[string]any `db:"response_payload"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

type DonationReceipt struct {
	ID            string     `db:"id"`
	DonationID    string     `db:"donation_id"`
	ReceiptNumber string     `db:"receipt_number"`
	IssuedDate    time.Time  `db:"issued_date"`
	EmailSentAt   *time.Time `db:"email_sent_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// DailyStat is one day of completed donations for a campaign chart.
type DailyStat struct {
	Date     string
	Quantity int64
	Amount   int64
}

// DonationSummary aggregates a campaign's donations. Counts span all
// statuses; the amount figures cover completed donations only.
type DonationSummary struct {
	TotalDonations     int64
	UniqueDonors       int64
	TotalAmount        int64
	CompletedDonations int64
	AverageDonation    float64
}
