package app

import (
	"encoding/json"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"barback-go/internal/db"
)

// Pusher sends web push notifications to a user's subscribed browsers.
// Best-effort: failures are logged, gone subscriptions are pruned.
type Pusher struct {
	store      *db.Store
	log        *slog.Logger
	publicKey  string
	privateKey string
	subscriber string
}

func NewPusher(store *db.Store, publicKey, privateKey, subscriber string, logger *slog.Logger) *Pusher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pusher{
		store:      store,
		log:        logger,
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
	}
}

func (p *Pusher) PublicKey() string {
	if p == nil {
		return ""
	}
	return p.publicKey
}

// NotifyUser pushes a small JSON payload to every subscription of the user.
func (p *Pusher) NotifyUser(userID int64, title, body string) {
	if p == nil {
		return
	}
	subs, err := p.store.Q.ListPushSubscriptionsForUser(userID)
	if err != nil {
		p.log.Warn("push: list subscriptions failed", "user_id", userID, "err", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]string{"title": title, "body": body})
	if err != nil {
		return
	}

	for _, s := range subs {
		sub := &webpush.Subscription{
			Endpoint: s.Endpoint,
			Keys: webpush.Keys{
				P256dh: s.P256dh,
				Auth:   s.Auth,
			},
		}
		resp, err := webpush.SendNotification(payload, sub, &webpush.Options{
			Subscriber:      p.subscriber,
			VAPIDPublicKey:  p.publicKey,
			VAPIDPrivateKey: p.privateKey,
			TTL:             60,
		})
		if err != nil {
			p.log.Warn("push: send failed", "user_id", userID, "err", err)
			continue
		}
		if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
			_ = p.store.Q.DeletePushSubscription(s.Endpoint)
		}
		_ = resp.Body.Close()
	}
}
