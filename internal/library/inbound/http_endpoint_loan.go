package inbound

import (
	"github.com/shandysiswandi/libris/internal/library/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/router"
)

// HeaderIdempotencyKey must accompany every loan creation.
const HeaderIdempotencyKey = "Idempotency-Key"

// CreateLoan borrows a copy for the caller.
// @Summary Borrow a copy
// @Description The copy must be available. Retrying with the same Idempotency-Key returns the first loan.
// @Tags Library, Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Client generated key"
// @Param request body LoanRequest true "Loan payload"
// @Success 201 {object} router.successResponse{data=LoanResponse} "Loan created"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Copy not found"
// @Failure 409 {object} router.errorResponse "Copy not available or request in progress"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/library/loans [post]
func (h *HTTPEndpoint) CreateLoan(r *router.Request) (any, error) {
	var req LoanRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.CreateLoan(r.Context(), usecase.CreateLoanInput{
		IdempotencyKey: r.Header.Get(HeaderIdempotencyKey),
		CopyID:         req.CopyID,
		DueAt:          req.DueAt,
		Remarks:        req.Remarks,
	})
	if err != nil {
		return nil, err
	}

	return Created[LoanResponse]{v: toLoan(*out)}, nil
}

// ListLoans lists loans visible to the caller.
// @Summary List loans
// @Description Members see their own loans. Librarians see all and may filter by user_id.
// @Tags Library, Loans
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Borrower (librarian only)"
// @Param status query string false "in_progress, returned or overdue"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size (max 10)" default(5)
// @Success 200 {object} router.successResponse{data=[]LoanResponse} "Loans"
// @Router /api/v1/library/loans [get]
func (h *HTTPEndpoint) ListLoans(r *router.Request) (any, error) {
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}
	userID, err := r.GetQueryInt64("user_id")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListLoans(r.Context(), usecase.ListLoansInput{
		UserID:    userID,
		Status:    r.GetQuery("status"),
		ListInput: in,
	})
	if err != nil {
		return nil, err
	}

	return toPage(out, toLoan), nil
}

// @Router /api/v1/library/loans/{id} [get]
func (h *HTTPEndpoint) GetLoan(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.GetLoan(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return toLoan(*out), nil
}

// UpdateLoan edits a loan (librarian).
// @Summary Update loan
// @Tags Library, Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Param request body LoanUpdateRequest true "Loan changes"
// @Success 200 {object} router.successResponse{data=LoanResponse} "Updated"
// @Failure 403 {object} router.errorResponse "Librarian only"
// @Failure 422 {object} router.errorResponse "Date rules violated"
// @Router /api/v1/library/loans/{id} [put]
func (h *HTTPEndpoint) UpdateLoan(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req LoanUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.UpdateLoan(r.Context(), usecase.UpdateLoanInput{
		ID:         id,
		DueAt:      req.DueAt,
		ReturnedAt: req.ReturnedAt,
		Status:     req.Status,
		Remarks:    req.Remarks,
	})
	if err != nil {
		return nil, err
	}

	return toLoan(*out), nil
}

// ReturnLoan hands a copy back.
// @Summary Return loan
// @Tags Library, Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} router.successResponse{data=LoanResponse} "Returned"
// @Failure 403 {object} router.errorResponse "Not the borrower"
// @Failure 409 {object} router.errorResponse "Already returned"
// @Router /api/v1/library/loans/{id}/return [post]
func (h *HTTPEndpoint) ReturnLoan(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ReturnLoan(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return toLoan(*out), nil
}
