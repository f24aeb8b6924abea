// Package policy centralizes every authorization rule of the API.
// All predicates are pure functions over the actor and the entity's
// current state; handlers and services call them before any mutation.
package policy

import "github.com/givehub/givehub/internal/domain"

// CanModerateCampaigns reports whether the actor may approve or
// reject campaigns, view statistics, and see campaigns of any status.
func CanModerateCampaigns(actor *domain.User) bool {
	return actor.HasPermission(domain.PermManageCampaigns)
}

// CanViewCampaign allows privileged actors and creators always,
// everyone else only for approved campaigns.
func CanViewCampaign(actor *domain.User, c *domain.Campaign) bool {
	if c.Status == domain.CampaignStatusApproved {
		return true
	}
	return CanModerateCampaigns(actor) || c.CreatorID == actor.ID
}

// CanModifyCampaign locks approved campaigns against their creator;
// privileged actors may modify any campaign in any state.
func CanModifyCampaign(actor *domain.User, c *domain.Campaign) bool {
	if CanModerateCampaigns(actor) {
		return true
	}
	return c.CreatorID == actor.ID && c.Status != domain.CampaignStatusApproved
}

// CanDeleteCampaign follows the same rule as modification.
func CanDeleteCampaign(actor *domain.User, c *domain.Campaign) bool {
	return CanModifyCampaign(actor, c)
}

// CanManageDonations gates the flat donation resource and the
// transaction listing.
func CanManageDonations(actor *domain.User) bool {
	return actor.HasPermission(domain.PermManageDonations)
}

// CanViewDonation: privileged actors and the donor always; other
// actors only when the donation is public.
func CanViewDonation(actor *domain.User, d *domain.Donation) bool {
	if actor.HasPermission(domain.PermViewDonations) || CanManageDonations(actor) {
		return true
	}
	if d.DonorID == actor.ID {
		return true
	}
	return d.Visibility == domain.VisibilityPublic
}

// CanViewCampaignDonation gates the nested campaign donation lookup:
// only privileged actors and the donor, regardless of visibility.
func CanViewCampaignDonation(actor *domain.User, d *domain.Donation) bool {
	if actor.HasPermission(domain.PermViewDonations) || CanManageDonations(actor) {
		return true
	}
	return d.DonorID == actor.ID
}

// CanModifyDonation: privileged actors always; the donor only while
// the donation is still pending.
func CanModifyDonation(actor *domain.User, d *domain.Donation) bool {
	if CanManageDonations(actor) {
		return true
	}
	return d.DonorID == actor.ID && d.Status == domain.DonationStatusPending
}

// CanDeleteDonation is privileged-only.
func CanDeleteDonation(actor *domain.User) bool {
	return CanManageDonations(actor)
}

// CanDonate requires the target campaign to be approved. Any
// authenticated actor may donate.
func CanDonate(c *domain.Campaign) bool {
	return c.Status == domain.CampaignStatusApproved
}

// CanManageUsers gates the admin user and permission endpoints.
func CanManageUsers(actor *domain.User) bool {
	return actor.HasPermission(domain.PermManageUsers)
}
