package it

import (
	"encoding/json"
	"fmt"
	"sync"

	"maidclient/internal/identity"
	"maidclient/internal/message"
)

// Behaviour scripts how a fake vault answers.
type Behaviour int

const (
	// BehaviourNormal services requests against the vault's account state.
	BehaviourNormal Behaviour = iota
	// BehaviourSilent never answers; the peer might as well be offline.
	BehaviourSilent
	// BehaviourReject answers every request with the generic failure.
	BehaviourReject
	// BehaviourGarbage answers with an undecodable payload.
	BehaviourGarbage
)

// accountState is one vault's view of an account.
type accountState struct {
	pmids map[identity.PmidName]bool
}

// Vault is a fake peer. Its account state is an in-memory map under a
// mutex; every vault in a group holds its own copy, so conflicting answers
// across the group are possible and intended.
type Vault struct {
	mu            sync.Mutex
	id            string
	behaviour     Behaviour
	accounts      map[identity.MaidName]*accountState
	availableSize uint64
	served        int
}

// NewVault builds a fake vault with the given scripted behaviour.
func NewVault(id string, behaviour Behaviour, availableSize uint64) *Vault {
	return &Vault{
		id:            id,
		behaviour:     behaviour,
		accounts:      make(map[identity.MaidName]*accountState),
		availableSize: availableSize,
	}
}

// Served returns how many requests reached this vault.
func (v *Vault) Served() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.served
}

// SetBehaviour reprograms the vault mid-test.
func (v *Vault) SetBehaviour(b Behaviour) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.behaviour = b
}

// Handle services one request frame and returns the response frame, or
// ok=false to stay silent. Wired into the loopback substrate.
func (v *Vault) Handle(_ string, data []byte) ([]byte, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.served++

	env, err := message.DecodeEnvelope(data)
	if err != nil {
		return nil, false
	}
	respKind, ok := env.Kind.ResponseKind()
	if !ok {
		return nil, false
	}

	switch v.behaviour {
	case BehaviourSilent:
		return nil, false
	case BehaviourGarbage:
		frame, err := message.EncodeEnvelope(respKind, env.ID, "not a response object")
		if err != nil {
			return nil, false
		}
		return frame, true
	case BehaviourReject:
		return encodeUnit(respKind, env.ID, message.ReturnCode{
			Code: message.CodeFailure, Reason: fmt.Sprintf("vault %s rejects", v.id),
		})
	}

	switch env.Kind {
	case message.KindCreateAccountRequest:
		var req message.CreateAccountRequest
		if err := unmarshalPayload(env, &req); err != nil {
			return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeFailure})
		}
		if _, exists := v.accounts[req.PublicMaid.Name]; exists {
			return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeAccountAlreadyExists})
		}
		v.accounts[req.PublicMaid.Name] = &accountState{pmids: make(map[identity.PmidName]bool)}
		return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeOK})

	case message.KindRemoveAccountRequest:
		var req message.RemoveAccountRequest
		if err := unmarshalPayload(env, &req); err != nil {
			return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeFailure})
		}
		if _, exists := v.accounts[req.PublicMaid.Name]; !exists {
			return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeNoSuchAccount})
		}
		delete(v.accounts, req.PublicMaid.Name)
		return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeOK})

	case message.KindRegisterPmidRequest:
		var req message.RegisterPmidRequest
		if err := unmarshalPayload(env, &req); err != nil {
			return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeFailure})
		}
		acct, exists := v.accounts[req.Registration.MaidName]
		if !exists {
			return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeNoSuchAccount})
		}
		if acct.pmids[req.Registration.PmidName] {
			return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodePmidAlreadyRegistered})
		}
		acct.pmids[req.Registration.PmidName] = true
		return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeOK})

	case message.KindUnregisterPmidRequest:
		var req message.UnregisterPmidRequest
		if err := unmarshalPayload(env, &req); err != nil {
			return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeFailure})
		}
		for _, acct := range v.accounts {
			delete(acct.pmids, req.PmidName)
		}
		return encodeUnit(respKind, env.ID, message.ReturnCode{Code: message.CodeOK})

	case message.KindPmidHealthRequest:
		frame, err := message.EncodeEnvelope(respKind, env.ID, message.PmidHealthResponse{
			Result:        message.ReturnCode{Code: message.CodeOK},
			AvailableSize: v.availableSize,
		})
		if err != nil {
			return nil, false
		}
		return frame, true
	}
	return nil, false
}

func unmarshalPayload(env message.Envelope, into interface{}) error {
	return json.Unmarshal(env.Payload, into)
}

func encodeUnit(kind message.Kind, id int64, rc message.ReturnCode) ([]byte, bool) {
	frame, err := message.EncodeEnvelope(kind, id, struct {
		Result message.ReturnCode `json:"result"`
	}{Result: rc})
	if err != nil {
		return nil, false
	}
	return frame, true
}
