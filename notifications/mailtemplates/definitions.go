// Package mailtemplates provides the predefined email templates sent by the
// service, along with utilities for rendering them.
package mailtemplates

import (
	"github.com/shopspring/decimal"
	"github.com/surveypro/saas-backend/notifications"
)

// RewardNotification is sent to a respondent after a survey is submitted.
var RewardNotification = MailTemplate{
	File: "reward_confirmation",
	Placeholder: notifications.Notification{
		Subject: "Congratulations! You've earned ${{.Reward}}",
		PlainBody: `Thank you for completing "{{.SurveyTitle}}".

Congratulations! You've earned ${{.Reward}}.`,
	},
	WebAppURI: "/surveys",
}

// RewardData is the data used to inflate RewardNotification.
type RewardData struct {
	Name        string
	SurveyTitle string
	Reward      string
	Link        string
}

// Reward builds the reward confirmation email for the respondent. webURL may
// be empty, in which case no link is included.
func Reward(name, email, surveyTitle string, reward decimal.Decimal, webURL string) (*notifications.Notification, error) {
	data := RewardData{
		Name:        name,
		SurveyTitle: surveyTitle,
		Reward:      reward.StringFixed(2),
	}
	if webURL != "" {
		data.Link = webURL + RewardNotification.WebAppURI
	}
	n, err := RewardNotification.ExecTemplate(data)
	if err != nil {
		return nil, err
	}
	n.ToName = name
	n.ToAddress = email
	return n, nil
}
