package entity

type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelInApp   Channel = 1
	ChannelEmail   Channel = 2
)

func (c Channel) String() string {
	switch c {
	case ChannelInApp:
		return "in_app"
	case ChannelEmail:
		return "email"
	default:
		return "unknown"
	}
}

type DeliveryStatus int16

const (
	DeliveryStatusUnknown DeliveryStatus = 0
	DeliveryStatusPending DeliveryStatus = 1
	DeliveryStatusSent    DeliveryStatus = 2
	DeliveryStatusFailed  DeliveryStatus = 3
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryStatusPending:
		return "pending"
	case DeliveryStatusSent:
		return "sent"
	case DeliveryStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TriggerKey names the event a template and notification belong to. The
// values match the messaging destinations they are consumed from.
type TriggerKey string

const (
	TriggerKeyUserRegistration TriggerKey = "user_registration"
	TriggerKeyLoanCreated      TriggerKey = "loan_created"
	TriggerKeyLoanReturned     TriggerKey = "loan_returned"
	TriggerKeyLoanOverdue      TriggerKey = "loan_overdue"
)

func (tk TriggerKey) String() string {
	return string(tk)
}

type InboxStatus string

const (
	InboxStatusAll    InboxStatus = "all"
	InboxStatusUnread InboxStatus = "unread"
	InboxStatusRead   InboxStatus = "read"
)
