package entity

import "time"

type LoanStatus string

const (
	LoanStatusInProgress LoanStatus = "in_progress"
	LoanStatusReturned   LoanStatus = "returned"
	LoanStatusOverdue    LoanStatus = "overdue"
)

func (s LoanStatus) String() string {
	return string(s)
}

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusInProgress, LoanStatusReturned, LoanStatusOverdue:
		return true
	default:
		return false
	}
}

type Loan struct {
	ID         int64
	CopyID     int64
	UserID     int64
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
	Status     LoanStatus
	Remarks    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LoanNotice carries what the loan events need about the borrower and the book.
type LoanNotice struct {
	Loan
	Email     string
	FullName  string
	BookID    int64
	BookTitle string
}

type LoanFilter struct {
	UserID int64
	Status LoanStatus
	Page
}

type UpdateLoan struct {
	ID         int64
	DueAt      time.Time
	ReturnedAt *time.Time
	Status     LoanStatus
	Remarks    string
	UpdatedAt  time.Time
}
