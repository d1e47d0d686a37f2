package dto

type CreateWhitelistDomainRequest struct {
	Domain string `json:"domain" binding:"required,max=255" msg:"error.domain_invalid"`
}
