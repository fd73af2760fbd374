package oid4vp

import "github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"

// ToWalletResponse checks data against what presentation type t asked for.
//
// A wallet error takes precedence over any tokens the wallet may also have sent.
func ToWalletResponse(t domain.PresentationType, data domain.AuthorizationResponseData) (domain.WalletResponse, error) {
	if data.Error != "" {
		return domain.WalletResponseError{Value: data.Error, Description: data.ErrorDescription}, nil
	}

	switch t.(type) {
	case domain.IDTokenRequest:
		if data.IDToken == "" {
			return nil, domain.NewValidationError(domain.MsgMissingIDToken)
		}
		return domain.WalletResponseIDToken{IDToken: data.IDToken}, nil

	case domain.VPTokenRequest:
		if data.VPToken == "" {
			return nil, domain.NewValidationError(domain.MsgMissingVpToken)
		}
		if data.PresentationSubmission == nil {
			return nil, domain.NewValidationError(domain.MsgMissingPresentationSubmission)
		}
		return domain.WalletResponseVPToken{
			VPToken:                data.VPToken,
			PresentationSubmission: *data.PresentationSubmission,
		}, nil

	case domain.IDAndVPTokenRequest:
		if data.IDToken == "" {
			return nil, domain.NewValidationError(domain.MsgMissingIDToken)
		}
		if data.VPToken == "" {
			return nil, domain.NewValidationError(domain.MsgMissingVpToken)
		}
		if data.PresentationSubmission == nil {
			return nil, domain.NewValidationError(domain.MsgMissingPresentationSubmission)
		}
		return domain.WalletResponseIDAndVPToken{
			IDToken:                data.IDToken,
			VPToken:                data.VPToken,
			PresentationSubmission: *data.PresentationSubmission,
		}, nil

	default:
		return nil, domain.NewValidationError("unknown presentation type")
	}
}
