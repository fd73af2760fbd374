package oid4vp

import (
	"fmt"
	"strings"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
)

// Presentation type selectors accepted in InitTransactionTO.Type.
const (
	TypeIDToken        = "id_token"
	TypeVPToken        = "vp_token"
	TypeVPAndIDToken   = "vp_token id_token"
	typeIDAndVPTokenIn = "id_token vp_token"
)

// PresentationType derives the requested presentation type from the Init body.
func (to InitTransactionTO) PresentationType() (domain.PresentationType, error) {
	switch strings.Join(strings.Fields(to.Type), " ") {
	case TypeIDToken:
		types, err := to.idTokenTypes()
		if err != nil {
			return nil, err
		}
		return domain.IDTokenRequest{IDTokenTypes: types}, nil

	case TypeVPToken:
		pd, err := to.presentationDefinition()
		if err != nil {
			return nil, err
		}
		return domain.VPTokenRequest{PresentationDefinition: pd}, nil

	case TypeVPAndIDToken, typeIDAndVPTokenIn:
		types, err := to.idTokenTypes()
		if err != nil {
			return nil, err
		}
		pd, err := to.presentationDefinition()
		if err != nil {
			return nil, err
		}
		return domain.IDAndVPTokenRequest{IDTokenTypes: types, PresentationDefinition: pd}, nil

	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unsupported presentation type %q", to.Type))
	}
}

func (to InitTransactionTO) idTokenTypes() ([]domain.IDTokenType, error) {
	fields := strings.Fields(to.IDTokenType)
	types := make([]domain.IDTokenType, 0, len(fields))
	for _, f := range fields {
		t, err := domain.ParseIDTokenType(f)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func (to InitTransactionTO) presentationDefinition() (domain.PresentationDefinition, error) {
	if to.PresentationDefinition == nil {
		return domain.PresentationDefinition{}, domain.NewValidationError(domain.MsgMissingPresentationDefinition)
	}
	if to.PresentationDefinition.ID == "" && len(to.PresentationDefinition.InputDescriptors) == 0 {
		return domain.PresentationDefinition{}, domain.NewValidationError(domain.MsgMissingPresentationDefinition)
	}
	return *to.PresentationDefinition, nil
}
