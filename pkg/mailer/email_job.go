package mailer

// Event names carried on the security-event queue.
const (
	EventWelcome         = "welcome"
	EventLogin           = "login_notification"
	EventPasswordChanged = "password_changed"
	EventTokensRevoked   = "tokens_revoked"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Subject/Text are rendered by the worker from Event when left empty.
type EmailJob struct {
	To      string         `json:"to"`
	Event   string         `json:"event,omitempty"`
	Subject string         `json:"subject,omitempty"`
	Text    string         `json:"text,omitempty"`
	HTML    string         `json:"html,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// SubjectForEvent maps an event name to an email subject line.
func SubjectForEvent(event string) string {
	switch event {
	case EventWelcome:
		return "Welcome aboard"
	case EventLogin:
		return "New login to your account"
	case EventPasswordChanged:
		return "Your password was changed"
	case EventTokensRevoked:
		return "All sessions were signed out"
	default:
		return "Notification"
	}
}

// BodyForEvent renders a short plain-text body for an event.
func BodyForEvent(event string, data map[string]any) string {
	name, _ := data["name"].(string)
	if name == "" {
		name = "there"
	}
	switch event {
	case EventWelcome:
		return "Hi " + name + ",\n\nYour account has been created. You can sign in right away."
	case EventLogin:
		return "Hi " + name + ",\n\nWe noticed a new login to your account. If this was not you, change your password."
	case EventPasswordChanged:
		return "Hi " + name + ",\n\nYour password was just changed. If this was not you, contact support immediately."
	case EventTokensRevoked:
		return "Hi " + name + ",\n\nAll refresh tokens for your account were revoked. Active sessions will expire shortly."
	default:
		return "Hi " + name + ","
	}
}
