package service

import (
	"github.com/givehub/givehub/internal/handlers/auth"
	"github.com/givehub/givehub/internal/handlers/campaigns"
	"github.com/givehub/givehub/internal/handlers/donations"
	"github.com/givehub/givehub/internal/handlers/transactions"
	"github.com/givehub/givehub/internal/handlers/users"

	pkgauth "github.com/givehub/givehub/pkg/auth"

	"github.com/givehub/givehub/internal/repo"
	authservice "github.com/givehub/givehub/internal/service/authservice"
	campaignservice "github.com/givehub/givehub/internal/service/campaignservice"
	donationservice "github.com/givehub/givehub/internal/service/donationservice"
	receiptservice "github.com/givehub/givehub/internal/service/receiptservice"
	transactionservice "github.com/givehub/givehub/internal/service/transactionservice"
	userservice "github.com/givehub/givehub/internal/service/userservice"
)

type Services struct {
	AuthService        auth.Service
	UserService        users.Service
	CampaignService    campaigns.Service
	DonationService    donations.Service
	TransactionService transactions.Service
	ReceiptService     donations.ReceiptService
}

func New(repo *repo.Repositories) *Services {
	hashService := &pkgauth.HashService{}
	authService := authservice.New(repo.UserRepo, hashService, &pkgauth.JWTService{})
	userService := userservice.New(repo.UserRepo, hashService)
	campaignService := campaignservice.New(repo.CampaignRepo, repo.UserRepo, repo.DonationRepo)
	donationService := donationservice.New(repo.DonationRepo, repo.CampaignRepo, repo.UserRepo)
	transactionService := transactionservice.New(repo.TransactionRepo, repo.DonationRepo, repo.CampaignRepo, repo.UserRepo)
	receiptService := receiptservice.New(repo.ReceiptRepo, repo.DonationRepo)

	return &Services{
		AuthService:        authService,
		UserService:        userService,
		CampaignService:    campaignService,
		DonationService:    donationService,
		TransactionService: transactionService,
		ReceiptService:     receiptService,
	}
}
