package domain

// TransactionID correlates a presentation for the verifier's caller (the front end that initiated it).
type TransactionID string

// RequestID correlates a presentation for the wallet. It is echoed back as the response's state.
type RequestID string

// Nonce binds the authorization request to the wallet's response.
type Nonce string

// ResponseCode is a single-use token used only for redirect delivery of the wallet response.
type ResponseCode string

// ParseTransactionID validates and returns a TransactionID.
func ParseTransactionID(s string) (TransactionID, error) {
	if s == "" {
		return "", NewValidationError("transaction id is required")
	}
	return TransactionID(s), nil
}

// ParseRequestID validates and returns a RequestID.
func ParseRequestID(s string) (RequestID, error) {
	if s == "" {
		return "", NewValidationError("request id is required")
	}
	return RequestID(s), nil
}

// ParseNonce validates and returns a Nonce.
func ParseNonce(s string) (Nonce, error) {
	if s == "" {
		return "", NewValidationError(MsgMissingNonce)
	}
	return Nonce(s), nil
}

// ParseResponseCode validates and returns a ResponseCode.
func ParseResponseCode(s string) (ResponseCode, error) {
	if s == "" {
		return "", NewValidationError("response code is required")
	}
	return ResponseCode(s), nil
}

func (id TransactionID) String() string { return string(id) }
func (id RequestID) String() string     { return string(id) }
func (n Nonce) String() string          { return string(n) }
func (c ResponseCode) String() string   { return string(c) }
