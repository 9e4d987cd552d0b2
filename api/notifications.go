package api

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/notifications/mailtemplates"
	"go.vocdoni.io/dvote/log"
)

// notificationTimeout bounds the delivery of a single email.
const notificationTimeout = 30 * time.Second

// sendRewardNotification emails the respondent the reward earned, in the
// background. Failures are only logged.
func (a *API) sendRewardNotification(name, email, surveyTitle string, reward decimal.Decimal) {
	if a.mail == nil || email == "" {
		return
	}
	notification, err := mailtemplates.Reward(name, email, surveyTitle, reward, a.webAppURL)
	if err != nil {
		log.Warnw("could not build reward notification", "email", email, "error", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()
		if err := a.mail.SendNotification(ctx, notification); err != nil {
			log.Warnw("could not send reward notification", "email", email, "error", err)
			return
		}
		log.Debugw("reward notification sent", "email", email, "survey", surveyTitle)
	}()
}
