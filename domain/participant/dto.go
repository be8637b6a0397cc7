package participant

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/akeren/participant-console/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

type BannerLevel string

const (
	BannerInfo    BannerLevel = "info"
	BannerSuccess BannerLevel = "success"
	BannerError   BannerLevel = "error"
)

// Banner is the single status line shared by every operation.
type Banner struct {
	Text  string      `json:"text"`
	Level BannerLevel `json:"level"`
}

func (b Banner) IsEmpty() bool {
	return b.Text == ""
}

func (b Banner) IsError() bool {
	return b.Level == BannerError
}

// Draft field names, in form order.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldGender       = "gender"
	FieldEmail        = "email"
	FieldContact      = "contact"
	FieldEventName    = "eventName"
	FieldRole         = "role"
	FieldOrganization = "organization"
)

var DraftFields = []string{
	FieldID,
	FieldName,
	FieldGender,
	FieldEmail,
	FieldContact,
	FieldEventName,
	FieldRole,
	FieldOrganization,
}

// Draft is the in-progress form. Every value is kept as typed.
type Draft struct {
	ID           string `json:"id" validate:"notblank"`
	Name         string `json:"name" validate:"notblank"`
	Gender       string `json:"gender" validate:"notblank"`
	Email        string `json:"email" validate:"notblank"`
	Contact      string `json:"contact" validate:"notblank"`
	EventName    string `json:"eventName" validate:"notblank"`
	Role         string `json:"role" validate:"notblank"`
	Organization string `json:"organization" validate:"notblank"`
}

func (d *Draft) field(name string) (*string, bool) {
	switch name {
	case FieldID:
		return &d.ID, true
	case FieldName:
		return &d.Name, true
	case FieldGender:
		return &d.Gender, true
	case FieldEmail:
		return &d.Email, true
	case FieldContact:
		return &d.Contact, true
	case FieldEventName:
		return &d.EventName, true
	case FieldRole:
		return &d.Role, true
	case FieldOrganization:
		return &d.Organization, true
	default:
		return nil, false
	}
}

// Set updates one field by its JSON name.
func (d *Draft) Set(name, value string) error {
	ptr, ok := d.field(name)
	if !ok {
		return ErrUnknownField
	}
	*ptr = value
	return nil
}

func (d Draft) Get(name string) (string, bool) {
	ptr, ok := d.field(name)
	if !ok {
		return "", false
	}
	return *ptr, true
}

func (d Draft) IsBlank() bool {
	return d == Draft{}
}

func DraftFromParticipant(p models.Participant) Draft {
	return Draft{
		ID:           strconv.Itoa(p.ID),
		Name:         p.Name,
		Gender:       string(p.Gender),
		Email:        p.Email,
		Contact:      p.Contact,
		EventName:    p.EventName,
		Role:         p.Role,
		Organization: p.Organization,
	}
}

// DraftValidator checks a draft in two passes: presence of every field in form
// order, then the id and gender formats.
type DraftValidator struct {
	validate *validator.Validate
}

func NewDraftValidator() *DraftValidator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &DraftValidator{validate: v}
}

// Validate returns the record to transmit, or a *ValidationError for the first
// violated field.
func (dv *DraftValidator) Validate(d Draft) (*models.Participant, error) {
	if err := dv.validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			field := fieldErrs[0].Field()
			return nil, &ValidationError{Field: field, Message: msgMissingField(field)}
		}
		return nil, err
	}

	id, err := strconv.Atoi(strings.TrimSpace(d.ID))
	if err != nil {
		return nil, &ValidationError{Field: FieldID, Message: MsgInvalidID}
	}

	gender := models.Gender(d.Gender)
	if !gender.IsValid() {
		return nil, &ValidationError{Field: FieldGender, Message: MsgInvalidGender}
	}

	return &models.Participant{
		ID:           id,
		Name:         d.Name,
		Gender:       gender,
		Email:        d.Email,
		Contact:      d.Contact,
		EventName:    d.EventName,
		Role:         d.Role,
		Organization: d.Organization,
	}, nil
}

// Snapshot is a copy of the whole console state.
type Snapshot struct {
	Participants []models.Participant `json:"participants"`
	Draft        Draft                `json:"draft"`
	Mode         Mode                 `json:"mode"`
	Lookup       *models.Participant  `json:"lookup"`
	Banner       Banner               `json:"banner"`
}

// PatchDraftRequest sets the given fields and leaves the rest untouched.
type PatchDraftRequest struct {
	Fields map[string]string `json:"fields" binding:"required,min=1"`
}
