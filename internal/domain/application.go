package domain

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending    ApplicationStatus = "pending"
	ApplicationStatusProcessing ApplicationStatus = "processing"
	ApplicationStatusApproved   ApplicationStatus = "approved"
	ApplicationStatusCompleted  ApplicationStatus = "completed"
	ApplicationStatusRejected   ApplicationStatus = "rejected"
	ApplicationStatusCancelled  ApplicationStatus = "cancelled"
)

var applicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusProcessing,
	ApplicationStatusApproved,
	ApplicationStatusCompleted,
	ApplicationStatusRejected,
	ApplicationStatusCancelled,
}

// ApplicationStatuses returns the canonical status enumeration in lifecycle order.
func ApplicationStatuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(applicationStatuses))
	copy(out, applicationStatuses)
	return out
}

// TerminalStatuses are never overwritten by payment or background processing.
func TerminalStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		ApplicationStatusCompleted,
		ApplicationStatusRejected,
		ApplicationStatusCancelled,
	}
}

func (s ApplicationStatus) IsValid() bool {
	for _, v := range applicationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) IsTerminal() bool {
	for _, v := range TerminalStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

const (
	DefaultPrimaryColor     = "#1e88e5"
	DefaultSecondaryColor   = "#69db7c"
	DefaultDesignPreference = "modern"
	DefaultPrimaryCTA       = "contact"
)

type Application struct {
	ID int64 `json:"id"`

	FullName     string `json:"fullName"`
	BusinessName string `json:"businessName"`
	JobTitle     string `json:"jobTitle"`
	Tagline      string `json:"tagline"`
	Bio          string `json:"bio"`
	Address      string `json:"address"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AltPhone     string `json:"altPhone"`

	WhatsappEnabled bool   `json:"whatsappEnabled"`
	Website         string `json:"website"`
	LinkedIn        string `json:"linkedin"`
	Instagram       string `json:"instagram"`
	Facebook        string `json:"facebook"`
	Twitter         string `json:"twitter"`
	YouTube         string `json:"youtube"`
	OtherSocialName string `json:"otherSocialName"`
	OtherSocialURL  string `json:"otherSocialUrl"`

	PrimaryColor     string   `json:"primaryColor"`
	SecondaryColor   string   `json:"secondaryColor"`
	DesignPreference string   `json:"designPreference"`
	Industry         string   `json:"industry"`
	SectionsInclude  []string `json:"sectionsInclude"`
	ServicesProducts string   `json:"servicesProducts"`
	Achievements     string   `json:"achievements"`
	PrimaryCTA       string   `json:"primaryCta"`
	CustomCTA        string   `json:"customCta"`
	DownloadTitle    string   `json:"downloadTitle"`
	TermsConsent     bool     `json:"termsConsent"`
	AdditionalNotes  string   `json:"additionalNotes"`

	// Price is resolved server-side from the plan table, in major currency units.
	SelectedPlan string  `json:"selectedPlan"`
	Price        float64 `json:"price"`
	ImagePath    *string `json:"imagePath"`
	DocumentPath *string `json:"documentPath"`

	Status            ApplicationStatus `json:"status"`
	PaymentStatus     PaymentStatus     `json:"paymentStatus"`
	RazorpayOrderID   *string           `json:"razorpayOrderId"`
	RazorpayPaymentID *string           `json:"razorpayPaymentId"`

	ApplicationDate time.Time `json:"applicationDate"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (a *Application) IsPaid() bool {
	return a.PaymentStatus == PaymentStatusPaid
}

// Plan is the stored plan snapshot; the price was fixed at submission.
func (a *Application) Plan() Plan {
	return Plan{Name: a.SelectedPlan, Price: a.Price}
}
