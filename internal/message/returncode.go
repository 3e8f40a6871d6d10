package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Code is the outcome a peer reports inside a response payload.
type Code int

const (
	// CodeOK marks a successful response.
	CodeOK Code = 0
	// CodeFailure is the generic failure a peer returns when it has nothing
	// more specific to say.
	CodeFailure Code = 1
	// CodeAccountAlreadyExists: the account named in a create request is
	// already provisioned on the peer group.
	CodeAccountAlreadyExists Code = 2
	// CodeNoSuchAccount: the account named in the request is unknown.
	CodeNoSuchAccount Code = 3
	// CodePmidAlreadyRegistered: the storage provider is already registered
	// under the account.
	CodePmidAlreadyRegistered Code = 4
	// CodeNoSuchPmid: the storage provider named in the request is unknown.
	CodeNoSuchPmid Code = 5
	// CodeInsufficientSpace: the peer group cannot honour the request for
	// capacity reasons.
	CodeInsufficientSpace Code = 6
)

// Business errors carried by decoded responses. ErrFailure is the generic
// one; the rest are specific and preferred over it when classifying.
var (
	ErrFailure               = errors.New("request failed")
	ErrAccountAlreadyExists  = errors.New("account already exists")
	ErrNoSuchAccount         = errors.New("no such account")
	ErrPmidAlreadyRegistered = errors.New("pmid already registered")
	ErrNoSuchPmid            = errors.New("no such pmid")
	ErrInsufficientSpace     = errors.New("insufficient space")
)

// Specific reports whether the code carries more information than the
// generic failure. CodeOK is not a failure at all and is never specific.
func (c Code) Specific() bool {
	return c != CodeOK && c != CodeFailure
}

// Err maps a failure code to its sentinel error. CodeOK maps to nil.
func (c Code) Err() error {
	switch c {
	case CodeOK:
		return nil
	case CodeAccountAlreadyExists:
		return ErrAccountAlreadyExists
	case CodeNoSuchAccount:
		return ErrNoSuchAccount
	case CodePmidAlreadyRegistered:
		return ErrPmidAlreadyRegistered
	case CodeNoSuchPmid:
		return ErrNoSuchPmid
	case CodeInsufficientSpace:
		return ErrInsufficientSpace
	default:
		return ErrFailure
	}
}

// ReturnCode is the outcome marker embedded in every response payload.
type ReturnCode struct {
	Code   Code   `json:"code"`
	Reason string `json:"reason,omitempty"`
}

// OK reports success.
func (rc ReturnCode) OK() bool {
	return rc.Code == CodeOK
}

// Err returns the error for a failure return code, carrying the peer's
// reason when present. Returns nil for CodeOK.
func (rc ReturnCode) Err() error {
	base := rc.Code.Err()
	if base == nil || rc.Reason == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, rc.Reason)
}

// DecodeUnitResponse parses any of the value-less response payloads
// (create/remove account, register/unregister pmid) down to its return code.
func DecodeUnitResponse(data []byte) (ReturnCode, error) {
	var resp struct {
		Result ReturnCode `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return ReturnCode{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp.Result, nil
}

// DecodePmidHealthResponse parses a health response payload.
func DecodePmidHealthResponse(data []byte) (ReturnCode, uint64, error) {
	var resp PmidHealthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return ReturnCode{}, 0, fmt.Errorf("unmarshal health response: %w", err)
	}
	return resp.Result, resp.AvailableSize, nil
}
