package handler

import (
	"strings"

	"invitegate/internal/invite/models"
	dErrors "invitegate/pkg/domain-errors"
)

const maxMessageBytes = 4 << 10

// GetInviteRequest is the body of POST /api/ens/get-invite.
type GetInviteRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	Name      string `json:"name"`
}

// Validate trims the signature. The name is passed through as sent and must
// already be canonical. Emptiness is left to the service so that a bad domain
// is reported before a bad challenge.
func (r *GetInviteRequest) Validate() error {
	r.Signature = strings.TrimSpace(r.Signature)
	if len(r.Message) > maxMessageBytes {
		return dErrors.NewReason(dErrors.CodeInvalidInput, models.ReasonInvalidChallenge, "Invalid siwe data.")
	}
	return nil
}

func (r *GetInviteRequest) toModel(expectedNonce string) models.Request {
	return models.Request{
		Message:       r.Message,
		Signature:     r.Signature,
		Domain:        r.Name,
		ExpectedNonce: expectedNonce,
	}
}
