package quiz

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/ii-tuitions/mocktest/internal/apperr"
	"github.com/ii-tuitions/mocktest/internal/paper"
	"github.com/ii-tuitions/mocktest/internal/relevance"
)

// Form is what the user submits on the create page.
type Form struct {
	Board       string          `json:"board" validate:"required"`
	Grade       int             `json:"grade" validate:"required,min=1,max=12"`
	Subject     string          `json:"subject" validate:"required"`
	Topic       string          `json:"topic" validate:"required"`
	PaperType   paper.PaperType `json:"paper_type"`
	ShowAnswers bool            `json:"show_answers"`
}

// Normalized trims the free-text fields.
func (f Form) Normalized() Form {
	f.Board = strings.TrimSpace(f.Board)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Topic = strings.TrimSpace(f.Topic)
	if f.PaperType == "" {
		f.PaperType = paper.Paper1
	}
	return f
}

// ValidationError lists the form fields that need fixing. For an off-subject
// topic it also carries the subject's keyword suggestions.
type ValidationError struct {
	Fields  map[string]string
	Verdict *relevance.Verdict
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return apperr.ErrValidation }

// formValidator checks struct tags with English messages keyed by JSON field
// name.
type formValidator struct {
	validate *govalidator.Validate
	trans    ut.Translator
}

func newFormValidator() *formValidator {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	return &formValidator{validate: v, trans: trans}
}

// fields returns field name to message for every failed tag.
func (fv *formValidator) fields(f Form) map[string]string {
	err := fv.validate.Struct(f)
	if err == nil {
		return nil
	}
	out := make(map[string]string)
	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = fe.Translate(fv.trans)
		}
		return out
	}
	out["detail"] = err.Error()
	return out
}

// Status is the state of one summary line.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
)

// Check is one line of the create page's validation summary.
type Check struct {
	Field   string `json:"field"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Summary is the validation summary shown above the create button.
type Summary struct {
	Checks      []Check            `json:"checks"`
	Verdict     *relevance.Verdict `json:"verdict,omitempty"`
	Suggestions [2][]string        `json:"suggestions"`
}

// AllValid reports whether every check succeeded.
func (s Summary) AllValid() bool {
	for _, c := range s.Checks {
		if c.Status != StatusSuccess {
			return false
		}
	}
	return len(s.Checks) > 0
}

// OffSubjectMessage is the error shown for a topic the classifier rejects.
func OffSubjectMessage(topic, subject string) string {
	return fmt.Sprintf("Topic '%s' doesn't seem to match %s", topic, subject)
}
