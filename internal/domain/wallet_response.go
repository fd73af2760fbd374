package domain

// PresentationSubmission maps the presented credentials onto the input descriptors of a presentation definition.
type PresentationSubmission struct {
	ID            string              `json:"id"`
	DefinitionID  string              `json:"definition_id"`
	DescriptorMap []DescriptorMapping `json:"descriptor_map"`
}

type DescriptorMapping struct {
	ID         string             `json:"id"`
	Format     string             `json:"format"`
	Path       string             `json:"path"`
	PathNested *DescriptorMapping `json:"path_nested,omitempty"`
}

// AuthorizationResponseData is the wallet's answer normalized from either a direct_post
// form or a decrypted/verified JARM token. Empty strings mean "absent".
type AuthorizationResponseData struct {
	State                  string
	IDToken                string
	VPToken                string
	PresentationSubmission *PresentationSubmission
	Error                  string
	ErrorDescription       string
}

// WalletResponse is what gets recorded on a Submitted presentation.
type WalletResponse interface {
	isWalletResponse()
}

type WalletResponseIDToken struct {
	IDToken string
}

type WalletResponseVPToken struct {
	VPToken                string
	PresentationSubmission PresentationSubmission
}

type WalletResponseIDAndVPToken struct {
	IDToken                string
	VPToken                string
	PresentationSubmission PresentationSubmission
}

// WalletResponseError records an error the wallet returned instead of tokens.
type WalletResponseError struct {
	Value       string
	Description string
}

func (WalletResponseIDToken) isWalletResponse()      {}
func (WalletResponseVPToken) isWalletResponse()      {}
func (WalletResponseIDAndVPToken) isWalletResponse() {}
func (WalletResponseError) isWalletResponse()        {}
