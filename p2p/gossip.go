package p2p

import (
	"context"
	"encoding/json"
	"errors"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/cmwaters/gatekeeper/admission"
	"github.com/cmwaters/gatekeeper/pkg/account"
)

// Submission is the wire envelope for a transaction submitted through
// gossip. Call is opaque to this package; the host's Matcher decides
// whether it is restricted.
type Submission struct {
	Signer account.ID      `json:"signer"`
	Weight uint64          `json:"weight"`
	Call   json.RawMessage `json:"call"`
}

// Notifiee receives submissions that passed the admission gate, together
// with the admission metadata the gate attached. Returning a non-nil
// error rejects the message and stops its propagation.
type Notifiee interface {
	OnSubmission(context.Context, *Submission, admission.Admission) error
}

// Network builds gossip topics whose propagation is gated by the
// admission check: a restricted call from a non-member is rejected at
// the topic validator and never forwarded to peers.
type Network struct {
	ps   *pubsub.PubSub
	gate *admission.Gate
}

func NewNetwork(ps *pubsub.PubSub, gate *admission.Gate) *Network {
	return &Network{
		ps:   ps,
		gate: gate,
	}
}

func (n *Network) Gossip(namespace []byte) (*Gossip, error) {
	topic, err := n.ps.Join(string(namespace))
	if err != nil {
		return nil, err
	}

	g := &Gossip{
		ps:   n.ps,
		tp:   topic,
		gate: n.gate,
	}
	g.ensureSubscribed()
	return g, nil
}

type Gossip struct {
	ps   *pubsub.PubSub
	tp   *pubsub.Topic
	sub  *pubsub.Subscription
	gate *admission.Gate
}

// Broadcast publishes a submission to the topic. Locally published
// messages run through the same validator as remote ones, so a
// submission this node's gate would reject is not propagated either.
func (g *Gossip) Broadcast(ctx context.Context, submission *Submission) error {
	data, err := json.Marshal(submission)
	if err != nil {
		return err
	}

	// so that we publish when we have at least one peer
	opt := pubsub.WithReadiness(pubsub.MinTopicSize(1))
	return g.tp.Publish(ctx, data, opt)
}

// Notify registers the Notifiee and installs the topic validator. The
// validator decodes the envelope, runs the admission-time check and only
// lets messages the gate accepts reach the Notifiee and the rest of the
// network.
func (g *Gossip) Notify(notifiee Notifiee) {
	// error can be safely ignored
	_ = g.ps.RegisterTopicValidator(g.tp.String(), func(ctx context.Context, _ peer.ID, pmsg *pubsub.Message) pubsub.ValidationResult {
		var submission Submission
		if err := json.Unmarshal(pmsg.Data, &submission); err != nil {
			return pubsub.ValidationReject
		}

		adm, err := g.gate.Validate(submission.Signer, submission.Call, admission.ExecutionInfo{Weight: submission.Weight})
		if err != nil {
			return pubsub.ValidationReject
		}
		if !adm.Propagate {
			return pubsub.ValidationIgnore
		}

		if err := notifiee.OnSubmission(ctx, &submission, adm); err != nil {
			return pubsub.ValidationReject
		}
		return pubsub.ValidationAccept
	})
}

func (g *Gossip) Close() (err error) {
	g.sub.Cancel()
	err = errors.Join(err, g.ps.UnregisterTopicValidator(g.tp.String()))
	err = errors.Join(err, g.tp.Close())
	return err
}

// ensureSubscribed maintains one and only subscription for the topic.
// PubSub requires at least one subscription in order to work correctly;
// delivery to the caller goes through validators alone.
func (g *Gossip) ensureSubscribed() {
	sub, err := g.tp.Subscribe()
	if err != nil {
		return // safe to ignore
	}
	g.sub = sub

	go func() {
		for {
			_, err := sub.Next(context.Background())
			if err != nil {
				// happens when subscription is canceled
				return
			}
			// simply ignore messages
		}
	}()
}
