package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"nfccard-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() domain.ApplicationInput {
	return domain.ApplicationInput{
		FullName:     "  Asha Rao ",
		BusinessName: "Rao Designs",
		Email:        " Asha@Example.COM ",
		Phone:        "+91 (987) 654-3210",
		SelectedPlan: "Starter Pack",
	}
}

func fieldNames(errs []domain.FieldError) []string {
	names := make([]string, len(errs))
	for i, e := range errs {
		names[i] = e.Field
	}
	return names
}

func TestApplicationInput_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		in := validInput()
		in.Normalize()
		assert.Empty(t, in.Validate())
	})

	t.Run("Reports Every Missing Field", func(t *testing.T) {
		in := domain.ApplicationInput{FullName: "   "}
		in.Normalize()
		errs := in.Validate()
		assert.Equal(t, []string{"fullName", "businessName", "email", "phone"}, fieldNames(errs))
	})

	t.Run("Malformed Email", func(t *testing.T) {
		for _, email := range []string{"plainaddress", "two words@x.com", "@x.com", "asha@"} {
			in := validInput()
			in.Email = email
			in.Normalize()
			assert.Equal(t, []string{"email"}, fieldNames(in.Validate()), email)
		}
	})

	t.Run("Malformed Phone", func(t *testing.T) {
		for _, phone := range []string{"0123456", "abc", "+", "12345678901234567", "++91123"} {
			in := validInput()
			in.Phone = phone
			in.Normalize()
			assert.Equal(t, []string{"phone"}, fieldNames(in.Validate()), phone)
		}
	})

	t.Run("Email And Phone Together", func(t *testing.T) {
		in := validInput()
		in.Email = "nope"
		in.Phone = "0000"
		in.Normalize()
		assert.Equal(t, []string{"email", "phone"}, fieldNames(in.Validate()))
	})

	t.Run("Oversized Field", func(t *testing.T) {
		in := validInput()
		in.JobTitle = strings.Repeat("x", 256)
		in.Normalize()
		errs := in.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, "jobTitle", errs[0].Field)
		assert.Equal(t, "must be at most 255 characters", errs[0].Message)
	})

	t.Run("Length Counts Characters Not Bytes", func(t *testing.T) {
		in := validInput()
		in.Tagline = strings.Repeat("é", 255)
		in.Normalize()
		assert.Empty(t, in.Validate())
	})

	t.Run("Optional Alt Phone", func(t *testing.T) {
		in := validInput()
		in.AltPhone = "0987"
		in.Normalize()
		errs := in.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, "altPhone", errs[0].Field)
		assert.Equal(t, "Invalid phone number format", errs[0].Message)

		in.AltPhone = "98765 43210"
		assert.Empty(t, in.Validate())
	})

	t.Run("Every Violation Reported", func(t *testing.T) {
		in := validInput()
		in.FullName = ""
		in.Email = "nope"
		in.OtherSocialName = strings.Repeat("x", 101)
		in.Normalize()
		errs := in.Validate()
		assert.Equal(t, []string{"fullName", "email", "otherSocialName"}, fieldNames(errs))
		assert.Equal(t, "fullName is required", errs[0].Message)
		assert.Equal(t, "Invalid email format", errs[1].Message)
	})
}

func TestValidPhone(t *testing.T) {
	assert.True(t, domain.ValidPhone("+91 (987) 654-3210"))
	assert.True(t, domain.ValidPhone("9876543210"))
	assert.False(t, domain.ValidPhone("0123"))
	assert.False(t, domain.ValidPhone("+91 98x 654"))
}

func TestApplicationInput_NormalizeAndBuild(t *testing.T) {
	in := validInput()
	in.SectionsInclude = []string{" gallery ", "", "services"}
	in.Normalize()

	assert.Equal(t, "Asha Rao", in.FullName)
	assert.Equal(t, "asha@example.com", in.Email)
	assert.Equal(t, domain.DefaultPrimaryColor, in.PrimaryColor)
	assert.Equal(t, domain.DefaultSecondaryColor, in.SecondaryColor)
	assert.Equal(t, domain.DefaultDesignPreference, in.DesignPreference)
	assert.Equal(t, domain.DefaultPrimaryCTA, in.PrimaryCTA)
	assert.Equal(t, []string{"gallery", "services"}, in.SectionsInclude)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	app := in.ToApplication("Starter Pack", 699, now)
	assert.Equal(t, domain.ApplicationStatusPending, app.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, app.PaymentStatus)
	assert.Equal(t, 699.0, app.Price)
	assert.Equal(t, now, app.ApplicationDate)
	assert.Nil(t, app.RazorpayOrderID)
	assert.Nil(t, app.RazorpayPaymentID)
}

func TestApplicationStatus(t *testing.T) {
	assert.True(t, domain.ApplicationStatusApproved.IsValid())
	assert.False(t, domain.ApplicationStatus("shipped").IsValid())
	assert.True(t, domain.ApplicationStatusCancelled.IsTerminal())
	assert.False(t, domain.ApplicationStatusProcessing.IsTerminal())
	assert.Len(t, domain.ApplicationStatuses(), 6)
}

func TestAppError_IsMatchesKind(t *testing.T) {
	err := domain.NewNotFoundError(domain.CodeApplicationAbsent, "Application not found")
	wrapped := errors.Join(errors.New("context"), err)

	assert.True(t, errors.Is(wrapped, domain.ErrNotFound))
	assert.False(t, errors.Is(wrapped, domain.ErrValidation))

	var appErr *domain.AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, domain.CodeApplicationAbsent, appErr.Code)

	invalid := domain.NewInvalidStatusError("shipped")
	assert.Contains(t, invalid.Error(), "pending, processing, approved, completed, rejected, cancelled")
}

func TestApplication_Plan(t *testing.T) {
	app := &domain.Application{SelectedPlan: "Enterprise Pack", Price: 0}
	assert.Equal(t, "Enterprise Pack", app.Plan().Name)
	assert.True(t, app.Plan().RequiresQuote())

	app.Price = 699
	assert.False(t, app.Plan().RequiresQuote())
}
