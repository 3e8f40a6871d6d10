package message

import (
	"encoding/json"
	"errors"
	"fmt"

	"maidclient/internal/identity"
)

// Kind tags an envelope with its message type.
type Kind string

const (
	KindCreateAccountRequest   Kind = "create_account_request"
	KindCreateAccountResponse  Kind = "create_account_response"
	KindRemoveAccountRequest   Kind = "remove_account_request"
	KindRemoveAccountResponse  Kind = "remove_account_response"
	KindRegisterPmidRequest    Kind = "register_pmid_request"
	KindRegisterPmidResponse   Kind = "register_pmid_response"
	KindUnregisterPmidRequest  Kind = "unregister_pmid_request"
	KindUnregisterPmidResponse Kind = "unregister_pmid_response"
	KindPmidHealthRequest      Kind = "pmid_health_request"
	KindPmidHealthResponse     Kind = "pmid_health_response"
)

// IsResponse reports whether the kind is one of the response kinds the
// client demultiplexer routes to the pending table.
func (k Kind) IsResponse() bool {
	switch k {
	case KindCreateAccountResponse, KindRemoveAccountResponse,
		KindRegisterPmidResponse, KindUnregisterPmidResponse,
		KindPmidHealthResponse:
		return true
	}
	return false
}

// ResponseKind returns the response kind paired with a request kind.
func (k Kind) ResponseKind() (Kind, bool) {
	switch k {
	case KindCreateAccountRequest:
		return KindCreateAccountResponse, true
	case KindRemoveAccountRequest:
		return KindRemoveAccountResponse, true
	case KindRegisterPmidRequest:
		return KindRegisterPmidResponse, true
	case KindUnregisterPmidRequest:
		return KindUnregisterPmidResponse, true
	case KindPmidHealthRequest:
		return KindPmidHealthResponse, true
	}
	return "", false
}

// Envelope is the unit the substrate carries. ID is the correlation id; it
// is zero for fire-and-forget requests, which expect no response.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	ID      int64           `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeEnvelope marshals a payload under the given kind and id.
func EncodeEnvelope(kind Kind, id int64, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	data, err := json.Marshal(Envelope{Kind: kind, ID: id, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", kind, err)
	}
	return data, nil
}

// DecodeEnvelope parses a raw frame from the substrate.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Kind == "" {
		return Envelope{}, errors.New("envelope missing kind")
	}
	return env, nil
}

// Request payloads.

type CreateAccountRequest struct {
	PublicMaid   identity.PublicMaid   `json:"public_maid"`
	PublicAnmaid identity.PublicAnmaid `json:"public_anmaid"`
}

type RemoveAccountRequest struct {
	PublicMaid identity.PublicMaid `json:"public_maid"`
}

type RegisterPmidRequest struct {
	Registration identity.PmidRegistration `json:"registration"`
}

type UnregisterPmidRequest struct {
	PmidName identity.PmidName `json:"pmid_name"`
}

type PmidHealthRequest struct {
	PmidName identity.PmidName `json:"pmid_name"`
}

// Response payloads.

type CreateAccountResponse struct {
	Result ReturnCode `json:"result"`
}

type RemoveAccountResponse struct {
	Result ReturnCode `json:"result"`
}

type RegisterPmidResponse struct {
	Result ReturnCode `json:"result"`
}

type UnregisterPmidResponse struct {
	Result ReturnCode `json:"result"`
}

type PmidHealthResponse struct {
	Result        ReturnCode `json:"result"`
	AvailableSize uint64     `json:"available_size"`
}
