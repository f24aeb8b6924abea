package repo

import (
	"github.com/givehub/givehub/internal/pg"
	campaignrepo "github.com/givehub/givehub/internal/repo/campaign-repo"
	donationrepo "github.com/givehub/givehub/internal/repo/donation-repo"
	receiptrepo "github.com/givehub/givehub/internal/repo/receipt-repo"
	transactionrepo "github.com/givehub/givehub/internal/repo/transaction-repo"
	userrepo "github.com/givehub/givehub/internal/repo/user-repo"
	"github.com/givehub/givehub/internal/service/campaignservice"
	"github.com/givehub/givehub/internal/service/donationservice"
	"github.com/givehub/givehub/internal/service/receiptservice"
	"github.com/givehub/givehub/internal/service/transactionservice"
	"github.com/givehub/givehub/internal/service/userservice"
)

type Repositories struct {
	UserRepo        userservice.Repo
	CampaignRepo    campaignservice.Repo
	DonationRepo    donationservice.Repo
	TransactionRepo transactionservice.Repo
	ReceiptRepo     receiptservice.Repo
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	userRepo := userrepo.New(conn, txManager)
	campaignRepo := campaignrepo.New(conn, txManager)
	donationRepo := donationrepo.New(conn, txManager)
	transactionRepo := transactionrepo.New(conn, txManager)
	receiptRepo := receiptrepo.New(conn, txManager)

	return &Repositories{
		UserRepo:        userRepo,
		CampaignRepo:    campaignRepo,
		DonationRepo:    donationRepo,
		TransactionRepo: transactionRepo,
		ReceiptRepo:     receiptRepo,
	}
}
