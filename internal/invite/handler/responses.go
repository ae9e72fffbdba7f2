package handler

import "invitegate/internal/invite/models"

type InviteResponse struct {
	InviteCode string `json:"inviteCode"`
	Fresh      bool   `json:"fresh"`
}

type ChainCountResponse struct {
	ChainID      int64 `json:"chain_id"`
	InvitesCount int   `json:"invites_count"`
}

type StatsResponse struct {
	MaxLimit      int                  `json:"maxLimit"`
	Remaining     int                  `json:"remaining"`
	InvitesIssued []ChainCountResponse `json:"invitesIssued"`
}

type DomainsResponse struct {
	Address string   `json:"address"`
	ChainID int64    `json:"chainId"`
	Domains []string `json:"domains"`
}

func toInviteResponse(res *models.Result) InviteResponse {
	return InviteResponse{InviteCode: res.Grant.InviteCode, Fresh: res.Fresh}
}

func toStatsResponse(stats *models.Stats) StatsResponse {
	issued := make([]ChainCountResponse, 0, len(stats.Issued))
	for _, c := range stats.Issued {
		issued = append(issued, ChainCountResponse{ChainID: int64(c.ChainID), InvitesCount: c.Count})
	}
	return StatsResponse{MaxLimit: stats.MaxLimit, Remaining: stats.Remaining, InvitesIssued: issued}
}

func toDomainsResponse(owned *models.OwnedDomains) DomainsResponse {
	domains := owned.Domains
	if domains == nil {
		domains = []string{}
	}
	return DomainsResponse{Address: owned.Address.String(), ChainID: int64(owned.ChainID), Domains: domains}
}
