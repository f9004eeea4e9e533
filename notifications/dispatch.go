// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"fmt"
	"neurostudy-server/commons"
	"neurostudy-server/db"
	"neurostudy-server/models"
)

func DispatchNotification(_type NotificationTypes, provider NotificationProviders, data NotificationData) error {
	commons.Logger.Debugf("Dispatching notification:\n- type=%s\n- provider=%s", _type, provider)

	var err error
	switch _type {
	case Email:
		mockEmail := commons.GetEnv("MOCK_EMAIL_NOTIFICATIONS")
		if mockEmail == "true" {
			commons.Logger.Debug("Mock email notifications enabled, using mock provider")
			provider = Mock
		}
		err = dispatchEmail(provider, data)
	default:
		err = fmt.Errorf("unsupported notification type: %s", _type)
	}

	if err != nil {
		commons.Logger.Errorf("Failed to dispatch notification:\n%v", err)
		return err
	}

	commons.Logger.Infof("Notification dispatched successfully:\n- type=%s\n- provider=%s", _type, provider)
	return nil
}

func dispatchEmail(provider NotificationProviders, data NotificationData) error {
	switch provider {
	case ZeptoMail:
		return ZeptoMailClient(data)
	case SMTP:
		return SMTPClient(data)
	case Mock:
		return MockEmailClient(data)
	default:
		return fmt.Errorf("unsupported email provider: %s", provider)
	}
}

func defaultProvider() NotificationProviders {
	switch commons.GetEnv("EMAIL_PROVIDER", "mock") {
	case "zepto_mail":
		return ZeptoMail
	case "smtp":
		return SMTP
	default:
		return Mock
	}
}

// SendQuotaWarning emails the user that they are close to their monthly
// roadmap quota. Users without a stored email address are skipped.
func SendQuotaWarning(userID string, plan models.PlanName, used, limit int) error {
	if db.Conn == nil {
		return nil
	}
	var user models.User
	if err := db.Conn.Where("external_id = ?", userID).First(&user).Error; err != nil {
		return fmt.Errorf("failed to look up user for quota warning: %w", err)
	}
	if user.Email == nil || *user.Email == "" {
		commons.Logger.Debugf("User %s has no email, skipping quota warning", userID)
		return nil
	}

	return DispatchNotification(Email, defaultProvider(), NotificationData{
		To:      *user.Email,
		Subject: "You're close to your monthly roadmap limit",
		Template: "quota_warning",
		Variables: map[string]any{
			"PlanLabel": models.PlanLabels[plan],
			"Used":      used,
			"Limit":     limit,
		},
	})
}

// SendWelcome greets a newly seen account. Best effort.
func SendWelcome(email string, name *string) error {
	return DispatchNotification(Email, defaultProvider(), NotificationData{
		To:       email,
		ToName:   name,
		Subject:  "Welcome to NeuroStudy",
		Template: "welcome",
	})
}
