package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"veever-server/models"
	"veever-server/storage"
	"veever-server/utils"
)

// NotificationService pushes experience updates to the owner's devices.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// French push copy per status, the same wording as the site notifications.
var statusPushBody = map[string]string{
	models.StatusProcessing: "Votre demande d'expérience est en cours de traitement.",
	models.StatusCompleted:  "Votre expérience sur mesure est prête !",
	models.StatusCancelled:  "Votre demande d'expérience a été annulée.",
}

// getUserPushTokens retrieves all push tokens for a user
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}
	return tokens, nil
}

// SendStatusUpdateToUser notifies the owner after an admin status change.
// Failures are logged and returned but never block the status change itself.
func (ns *NotificationService) SendStatusUpdateToUser(userID, experienceID uint, newStatus string) error {
	body, ok := statusPushBody[newStatus]
	if !ok {
		return nil
	}

	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("Failed to get push tokens for user %d: %v", userID, err)
		return err
	}

	data := map[string]string{
		"type":   "experience_status",
		"id":     strconv.FormatUint(uint64(experienceID), 10),
		"status": newStatus,
		"screen": "ExperienceDetail",
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, "Veever", body, data); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token, err)
			lastError = err
		}
	}
	return lastError
}
