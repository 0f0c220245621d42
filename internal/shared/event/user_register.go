package event

const UserRegistrationDestination string = "user_registration"
const UserRegistrationConsumerNotification string = "user_registration_notification"

type UserRegistrationMessage struct {
	UserID   int64  `json:"user_id,string"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
