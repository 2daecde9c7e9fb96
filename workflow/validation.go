package workflow

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/diantamela/satgas-ppk/models"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check runs struct validation and reports the first failing field
func (s *Service) check(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return ValidationError(fe.Field(), describe(fe))
	}
	return ValidationError("input", err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "needs at least " + fe.Param() + " entry"
	case "gtefield":
		return "must not be before " + strings.ToLower(fe.Param())
	}
	return "failed " + fe.Tag() + " check"
}

// windowCheck holds the fields every schedule must carry
type windowCheck struct {
	Location string    `json:"location" validate:"required"`
	Start    time.Time `json:"start" validate:"required"`
	End      time.Time `json:"end" validate:"required,gtefield=Start"`
}

// finalizeCheck is the gate a result must pass before it may drive a transition.
// Field order is the order failures are reported in.
type finalizeCheck struct {
	DataVerificationConfirmed bool                         `json:"dataVerificationConfirmed" validate:"required"`
	PartiesStatementSummary   string                       `json:"partiesStatementSummary" validate:"required"`
	Methods                   []models.InvestigationMethod `json:"methods" validate:"min=1"`
	PartyTypes                []models.PartyType           `json:"partyTypes" validate:"min=1"`
	CreatorSignature          string                       `json:"creatorSignature" validate:"required"`
	CreatorSignerName         string                       `json:"creatorSignerName" validate:"required"`
	CaseStatusAfterResult     models.ProposedStatus        `json:"caseStatusAfterResult" validate:"required"`
}

func finalizeCheckOf(r *models.Result) finalizeCheck {
	return finalizeCheck{
		DataVerificationConfirmed: r.DataVerificationConfirmed,
		PartiesStatementSummary:   strings.TrimSpace(r.PartiesStatementSummary),
		Methods:                   r.Methods,
		PartyTypes:                r.PartyTypes,
		CreatorSignature:          strings.TrimSpace(r.CreatorSignature),
		CreatorSignerName:         strings.TrimSpace(r.CreatorSignerName),
		CaseStatusAfterResult:     r.CaseStatusAfterResult,
	}
}

func validateTags(methods []models.InvestigationMethod, parties []models.PartyType) error {
	if !models.ValidMethods(methods) {
		return ValidationError("methods", "contains an unknown method")
	}
	if !models.ValidPartyTypes(parties) {
		return ValidationError("partyTypes", "contains an unknown party type")
	}
	return nil
}

func validateTeam(team []models.TeamMember) error {
	for _, m := range team {
		if strings.TrimSpace(m.MemberID) == "" {
			return ValidationError("team", "member id is required")
		}
		if !m.Role.Valid() {
			return ValidationError("team", "unknown role "+string(m.Role))
		}
	}
	return nil
}
