package event

import "time"

const (
	LoanCreatedDestination  string = "loan_created"
	LoanReturnedDestination string = "loan_returned"
	LoanOverdueDestination  string = "loan_overdue"
)

const (
	LoanCreatedConsumerNotification  string = "loan_created_notification"
	LoanReturnedConsumerNotification string = "loan_returned_notification"
	LoanOverdueConsumerNotification  string = "loan_overdue_notification"
)

// LoanMessage is shared by every loan lifecycle destination.
type LoanMessage struct {
	LoanID     int64      `json:"loan_id,string"`
	UserID     int64      `json:"user_id,string"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	CopyID     int64      `json:"copy_id,string"`
	BookID     int64      `json:"book_id,string"`
	BookTitle  string     `json:"book_title"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}
