package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/notification/entity"
)

func (f *fixture) seedLoanTemplates() {
	f.repo.addTemplate(entity.TriggerKeyLoanCreated, entity.ChannelInApp,
		"Loan confirmed", `You borrowed "{{.book_title}}". Please return it by {{.due_at}}.`)
	f.repo.addTemplate(entity.TriggerKeyLoanCreated, entity.ChannelEmail,
		"{{.company_name}}: loan confirmed", `<p>Hi {{.full_name}}, enjoy {{.book_title}}.</p>`)
}

func loanCreated() ConsumeLoanInput {
	return ConsumeLoanInput{
		TriggerKey: entity.TriggerKeyLoanCreated,
		LoanID:     30,
		UserID:     memberID,
		Email:      "ana@example.com",
		FullName:   "Ana",
		BookID:     10,
		BookTitle:  "Dune",
		DueAt:      time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestUsecase_ConsumeLoan(t *testing.T) {
	t.Run("InAppAndEmail", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.seedLoanTemplates()

		// Act
		err := f.uc.ConsumeLoan(context.Background(), loanCreated())

		// Assert
		require.NoError(t, err)

		require.Len(t, f.repo.notifications, 1)
		for _, n := range f.repo.notifications {
			assert.Equal(t, memberID, n.UserID)
			assert.Equal(t, entity.TriggerKeyLoanCreated, n.TriggerKey)
			assert.Equal(t, "Loan confirmed", n.Title)
			assert.Equal(t, `You borrowed "Dune". Please return it by March 15, 2026.`, n.Body)
			assert.Equal(t, "30", n.Data["loan_id"])
		}

		require.Len(t, f.mail.sent, 1)
		assert.Equal(t, []string{"ana@example.com"}, f.mail.sent[0].To)
		assert.Equal(t, "Libris: loan confirmed", f.mail.sent[0].Subject)
		assert.Equal(t, "<p>Hi Ana, enjoy Dune.</p>", f.mail.sent[0].HTMLBody)

		require.Len(t, f.repo.logs, 1)
		for _, dl := range f.repo.logs {
			assert.Equal(t, entity.DeliveryStatusSent, dl.Status)
			assert.Equal(t, 1, dl.Attempts)
			assert.Equal(t, "ana@example.com", dl.Recipient)
			require.NotNil(t, dl.SentAt)
			assert.Empty(t, dl.LastError)
		}
	})

	t.Run("RetriesThenSends", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.seedLoanTemplates()
		f.mail.failures = 2

		// Act
		err := f.uc.ConsumeLoan(context.Background(), loanCreated())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, f.mail.attempts)
		require.Len(t, f.mail.sent, 1)
		for _, dl := range f.repo.logs {
			assert.Equal(t, entity.DeliveryStatusSent, dl.Status)
			assert.Equal(t, 3, dl.Attempts)
		}
	})

	t.Run("GivesUpAfterThreeAttempts", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.seedLoanTemplates()
		f.mail.failures = 10

		// Act
		err := f.uc.ConsumeLoan(context.Background(), loanCreated())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, maxEmailAttempts, f.mail.attempts)
		assert.Empty(t, f.mail.sent)
		require.Len(t, f.repo.logs, 1)
		for _, dl := range f.repo.logs {
			assert.Equal(t, entity.DeliveryStatusFailed, dl.Status)
			assert.Equal(t, maxEmailAttempts, dl.Attempts)
			assert.Contains(t, dl.LastError, "421 relay busy")
			assert.Nil(t, dl.SentAt)
		}
		assert.Len(t, f.repo.notifications, 1, "in-app delivery is independent of email")
	})

	t.Run("EscapesHTML", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.seedLoanTemplates()
		in := loanCreated()
		in.FullName = "<script>x</script>"

		// Act
		require.NoError(t, f.uc.ConsumeLoan(context.Background(), in))

		// Assert
		require.Len(t, f.mail.sent, 1)
		assert.NotContains(t, f.mail.sent[0].HTMLBody, "<script>")
		assert.Contains(t, f.mail.sent[0].HTMLBody, "&lt;script&gt;")
	})

	t.Run("NoTemplates", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.uc.ConsumeLoan(context.Background(), loanCreated()))
		assert.Empty(t, f.repo.notifications)
		assert.Empty(t, f.repo.logs)
		assert.Zero(t, f.mail.attempts)
	})

	t.Run("InvalidPayloadDropped", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.seedLoanTemplates()
		in := loanCreated()
		in.Email = "not-an-email"

		// Act
		err := f.uc.ConsumeLoan(context.Background(), in)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, f.repo.notifications)
		assert.Zero(t, f.mail.attempts)
	})

	t.Run("UnknownTrigger", func(t *testing.T) {
		f := newFixture(t)
		in := loanCreated()
		in.TriggerKey = entity.TriggerKeyUserRegistration

		require.NoError(t, f.uc.ConsumeLoan(context.Background(), in))
		assert.Empty(t, f.repo.notifications)
	})

	t.Run("ReturnedDate", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.repo.addTemplate(entity.TriggerKeyLoanReturned, entity.ChannelInApp, "Returned", "Returned on {{.returned_at}}")
		in := loanCreated()
		in.TriggerKey = entity.TriggerKeyLoanReturned
		at := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
		in.ReturnedAt = &at

		// Act
		require.NoError(t, f.uc.ConsumeLoan(context.Background(), in))

		// Assert
		require.Len(t, f.repo.notifications, 1)
		for _, n := range f.repo.notifications {
			assert.Equal(t, "Returned on March 10, 2026", n.Body)
		}
	})
}

func TestUsecase_ConsumeUserRegistration(t *testing.T) {
	t.Run("FallsBackToUsername", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.repo.addTemplate(entity.TriggerKeyUserRegistration, entity.ChannelEmail,
			"Welcome to {{.company_name}}", "<p>Hello {{.full_name}}, write to {{.support_email}}.</p>")

		// Act
		err := f.uc.ConsumeUserRegistration(context.Background(), ConsumeUserRegistrationInput{
			UserID:   memberID,
			Username: "ana",
			Email:    "ana@example.com",
		})

		// Assert
		require.NoError(t, err)
		require.Len(t, f.mail.sent, 1)
		assert.Equal(t, "Welcome to Libris", f.mail.sent[0].Subject)
		assert.Equal(t, "<p>Hello ana, write to help@libris.example.</p>", f.mail.sent[0].HTMLBody)
	})

	t.Run("MissingEmail", func(t *testing.T) {
		f := newFixture(t)
		f.repo.addTemplate(entity.TriggerKeyUserRegistration, entity.ChannelEmail, "Welcome", "hi")

		err := f.uc.ConsumeUserRegistration(context.Background(), ConsumeUserRegistrationInput{UserID: memberID, Username: "ana"})

		require.NoError(t, err)
		assert.Zero(t, f.mail.attempts)
	})
}

func TestUsecase_StreamNotifications(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.seedLoanTemplates()
	ctx, cancel := context.WithCancel(context.Background())
	stream := f.uc.StreamNotifications(ctx, memberID)
	other := f.uc.StreamNotifications(ctx, strangerID)

	// Act
	require.NoError(t, f.uc.ConsumeLoan(context.Background(), loanCreated()))

	// Assert
	select {
	case evt := <-stream:
		assert.Equal(t, "loan_created", evt.TriggerKey)
		assert.Equal(t, "Loan confirmed", evt.Title)
		assert.NotZero(t, evt.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a stream event")
	}

	select {
	case <-other:
		t.Fatal("event leaked to another user")
	default:
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-stream
		return !ok
	}, time.Second, 10*time.Millisecond)
}
