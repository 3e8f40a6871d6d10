package dispatch

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"maidclient/internal/correlate"
	"maidclient/internal/identity"
	"maidclient/internal/message"
	"maidclient/internal/routing"
)

// Dispatcher sends one request kind per method. Account operations target
// the group closest to the account name; pmid health targets the group
// closest to the provider name.
type Dispatcher struct {
	sender routing.Sender
	log    *logrus.Entry
}

// New builds a dispatcher over the given substrate.
func New(sender routing.Sender, log *logrus.Entry) *Dispatcher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Dispatcher{sender: sender, log: log}
}

// SendCreateAccountRequest broadcasts an account-creation request.
func (d *Dispatcher) SendCreateAccountRequest(id correlate.ID, req message.CreateAccountRequest) error {
	return d.send(message.KindCreateAccountRequest, int64(id),
		routing.Target(req.PublicMaid.Name), req)
}

// SendRemoveAccountRequest broadcasts an account-removal request. id is zero
// for fire-and-forget removal.
func (d *Dispatcher) SendRemoveAccountRequest(id correlate.ID, req message.RemoveAccountRequest) error {
	return d.send(message.KindRemoveAccountRequest, int64(id),
		routing.Target(req.PublicMaid.Name), req)
}

// SendRegisterPmidRequest broadcasts a provider registration under the
// owning account's group.
func (d *Dispatcher) SendRegisterPmidRequest(id correlate.ID, req message.RegisterPmidRequest) error {
	return d.send(message.KindRegisterPmidRequest, int64(id),
		routing.Target(req.Registration.MaidName), req)
}

// SendUnregisterPmidRequest broadcasts a provider deregistration. id is zero
// for fire-and-forget deregistration.
func (d *Dispatcher) SendUnregisterPmidRequest(id correlate.ID, maid identity.MaidName, req message.UnregisterPmidRequest) error {
	return d.send(message.KindUnregisterPmidRequest, int64(id),
		routing.Target(maid), req)
}

// SendPmidHealthRequest broadcasts a health query to the provider's group.
func (d *Dispatcher) SendPmidHealthRequest(id correlate.ID, req message.PmidHealthRequest) error {
	return d.send(message.KindPmidHealthRequest, int64(id),
		routing.Target(req.PmidName), req)
}

func (d *Dispatcher) send(kind message.Kind, id int64, target routing.Target, payload interface{}) error {
	data, err := message.EncodeEnvelope(kind, id, payload)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", kind, err)
	}
	if err := d.sender.Send(target, data); err != nil {
		return fmt.Errorf("dispatch %s: %w", kind, err)
	}
	d.log.WithFields(logrus.Fields{"kind": kind, "id": id, "target": target}).
		Debug("request dispatched")
	return nil
}
