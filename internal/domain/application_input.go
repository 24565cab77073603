package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern     = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneStripperSet = regexp.MustCompile(`[\s\-()]`)

	validate = newInputValidator()
)

// ApplicationInput is the applicant-supplied submission payload before validation.
// ClientPrice carries whatever price the browser sent; it is never persisted.
type ApplicationInput struct {
	FullName     string `json:"fullName" validate:"required,max=255"`
	BusinessName string `json:"businessName" validate:"required,max=255"`
	JobTitle     string `json:"jobTitle" validate:"max=255"`
	Tagline      string `json:"tagline" validate:"max=255"`
	Bio          string `json:"bio"`
	Address      string `json:"address"`
	Email        string `json:"email" validate:"required,max=255,email"`
	Phone        string `json:"phone" validate:"required,max=32,phone"`
	AltPhone     string `json:"altPhone" validate:"omitempty,max=32,phone"`

	WhatsappEnabled bool   `json:"whatsappEnabled"`
	Website         string `json:"website" validate:"max=255"`
	LinkedIn        string `json:"linkedin" validate:"max=255"`
	Instagram       string `json:"instagram" validate:"max=255"`
	Facebook        string `json:"facebook" validate:"max=255"`
	Twitter         string `json:"twitter" validate:"max=255"`
	YouTube         string `json:"youtube" validate:"max=255"`
	OtherSocialName string `json:"otherSocialName" validate:"max=100"`
	OtherSocialURL  string `json:"otherSocialUrl" validate:"max=255"`

	PrimaryColor     string   `json:"primaryColor" validate:"max=20"`
	SecondaryColor   string   `json:"secondaryColor" validate:"max=20"`
	DesignPreference string   `json:"designPreference" validate:"max=50"`
	Industry         string   `json:"industry" validate:"max=100"`
	SectionsInclude  []string `json:"sectionsInclude"`
	ServicesProducts string   `json:"servicesProducts"`
	Achievements     string   `json:"achievements"`
	PrimaryCTA       string   `json:"primaryCta" validate:"max=50"`
	CustomCTA        string   `json:"customCta" validate:"max=255"`
	DownloadTitle    string   `json:"downloadTitle" validate:"max=255"`
	TermsConsent     bool     `json:"termsConsent"`
	AdditionalNotes  string   `json:"additionalNotes"`

	SelectedPlan string   `json:"selectedPlan" validate:"max=100"`
	ClientPrice  *float64 `json:"-"`
}

// newInputValidator reports fields by their json names and adds the phone rule.
func newInputValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Normalize trims every string field, lowercases the email and fills design defaults.
func (in *ApplicationInput) Normalize() {
	for _, f := range in.stringFields() {
		*f = strings.TrimSpace(*f)
	}
	in.Email = strings.ToLower(in.Email)

	sections := in.SectionsInclude[:0]
	for _, s := range in.SectionsInclude {
		if s = strings.TrimSpace(s); s != "" {
			sections = append(sections, s)
		}
	}
	in.SectionsInclude = sections

	if in.PrimaryColor == "" {
		in.PrimaryColor = DefaultPrimaryColor
	}
	if in.SecondaryColor == "" {
		in.SecondaryColor = DefaultSecondaryColor
	}
	if in.DesignPreference == "" {
		in.DesignPreference = DefaultDesignPreference
	}
	if in.PrimaryCTA == "" {
		in.PrimaryCTA = DefaultPrimaryCTA
	}
}

// Validate returns every violated field, in form order. An empty result means valid.
func (in *ApplicationInput) Validate() []FieldError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "phone":
		return "Invalid phone number format"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// ValidPhone strips spaces, dashes and parentheses before matching.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phoneStripperSet.ReplaceAllString(phone, ""))
}

// ToApplication builds a new pending, unpaid application with the authoritative plan and price.
func (in *ApplicationInput) ToApplication(plan string, price float64, now time.Time) *Application {
	sections := make([]string, len(in.SectionsInclude))
	copy(sections, in.SectionsInclude)

	return &Application{
		FullName:         in.FullName,
		BusinessName:     in.BusinessName,
		JobTitle:         in.JobTitle,
		Tagline:          in.Tagline,
		Bio:              in.Bio,
		Address:          in.Address,
		Email:            in.Email,
		Phone:            in.Phone,
		AltPhone:         in.AltPhone,
		WhatsappEnabled:  in.WhatsappEnabled,
		Website:          in.Website,
		LinkedIn:         in.LinkedIn,
		Instagram:        in.Instagram,
		Facebook:         in.Facebook,
		Twitter:          in.Twitter,
		YouTube:          in.YouTube,
		OtherSocialName:  in.OtherSocialName,
		OtherSocialURL:   in.OtherSocialURL,
		PrimaryColor:     in.PrimaryColor,
		SecondaryColor:   in.SecondaryColor,
		DesignPreference: in.DesignPreference,
		Industry:         in.Industry,
		SectionsInclude:  sections,
		ServicesProducts: in.ServicesProducts,
		Achievements:     in.Achievements,
		PrimaryCTA:       in.PrimaryCTA,
		CustomCTA:        in.CustomCTA,
		DownloadTitle:    in.DownloadTitle,
		TermsConsent:     in.TermsConsent,
		AdditionalNotes:  in.AdditionalNotes,
		SelectedPlan:     plan,
		Price:            price,
		Status:           ApplicationStatusPending,
		PaymentStatus:    PaymentStatusUnpaid,
		ApplicationDate:  now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// stringFields lists the free-text fields Normalize trims.
func (in *ApplicationInput) stringFields() []*string {
	return []*string{
		&in.FullName, &in.BusinessName, &in.JobTitle, &in.Tagline, &in.Bio, &in.Address,
		&in.Email, &in.Phone, &in.AltPhone,
		&in.Website, &in.LinkedIn, &in.Instagram, &in.Facebook, &in.Twitter, &in.YouTube,
		&in.OtherSocialName, &in.OtherSocialURL,
		&in.PrimaryColor, &in.SecondaryColor, &in.DesignPreference, &in.Industry,
		&in.ServicesProducts, &in.Achievements, &in.PrimaryCTA, &in.CustomCTA,
		&in.DownloadTitle, &in.AdditionalNotes, &in.SelectedPlan,
	}
}
