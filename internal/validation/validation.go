// Package validation holds the input rules applied before any use-case touches storage.
package validation

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/isdelr/quill-be/internal/models"
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Policy validates use-case inputs. Failures are *models.AppError of kind validation.
type Policy interface {
	Registration(in models.RegisterInput) error
	Login(in models.LoginInput) error
	UserUpdate(in models.UpdateUserInput) error
	ArticleCreation(in models.CreateArticleInput) error
	ArticleUpdate(in models.UpdateArticleInput) error
	Comment(in models.AddCommentInput) error
}

// Rules is the default Policy.
type Rules struct {
	MinPasswordLength   int
	MaxUsernameLength   int
	AllowPasswordChange bool
}

// DefaultRules returns the rules used when nothing is configured.
func DefaultRules() Rules {
	return Rules{
		MinPasswordLength:   8,
		MaxUsernameLength:   64,
		AllowPasswordChange: true,
	}
}

func (r Rules) usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Length(1, r.MaxUsernameLength),
		validation.Match(usernameRegex).Error("may only contain letters, digits, '.', '_' and '-'"),
	}
}

func (r Rules) passwordRules() []validation.Rule {
	// bcrypt ignores everything past 72 bytes.
	return []validation.Rule{validation.Length(r.MinPasswordLength, 72)}
}

// Registration validates a registration request.
func (r Rules) Registration(in models.RegisterInput) error {
	return toAppError(validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Username, append([]validation.Rule{validation.Required}, r.usernameRules()...)...),
		validation.Field(&in.Password, append([]validation.Rule{validation.Required}, r.passwordRules()...)...),
	))
}

// Login only checks presence; credential rules are not revealed at login.
func (r Rules) Login(in models.LoginInput) error {
	return toAppError(validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	))
}

// UserUpdate validates the fields present in a partial update.
func (r Rules) UserUpdate(in models.UpdateUserInput) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&in.Username, append([]validation.Rule{validation.NilOrNotEmpty}, r.usernameRules()...)...),
		validation.Field(&in.Password, append([]validation.Rule{validation.NilOrNotEmpty}, r.passwordRules()...)...),
		validation.Field(&in.Image, is.URL),
	)
	if err != nil {
		return toAppError(err)
	}
	if in.Password != nil && !r.AllowPasswordChange {
		return models.NewFieldError("password", "cannot be changed")
	}
	return nil
}

// ArticleCreation validates a new article.
func (r Rules) ArticleCreation(in models.CreateArticleInput) error {
	return toAppError(validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Description, validation.Length(0, 1024)),
		validation.Field(&in.Body, validation.Required),
		validation.Field(&in.TagList, validation.Each(validation.Required, validation.Length(1, 64))),
	))
}

// ArticleUpdate validates the fields present in a partial article update.
func (r Rules) ArticleUpdate(in models.UpdateArticleInput) error {
	return toAppError(validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&in.Description, validation.Length(0, 1024)),
		validation.Field(&in.Body, validation.NilOrNotEmpty),
		validation.Field(&in.TagList, validation.Each(validation.Required, validation.Length(1, 64))),
	))
}

// Comment validates a new comment.
func (r Rules) Comment(in models.AddCommentInput) error {
	return toAppError(validation.ValidateStruct(&in,
		validation.Field(&in.Body, validation.Required),
	))
}

// toAppError converts ozzo errors into field-level validation failures.
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		fields := make(map[string]string, len(errs))
		for field, fieldErr := range errs {
			fields[field] = fieldErr.Error()
		}
		return models.NewValidationError(fields)
	}
	return models.NewInternalError("validation rules failed to run", err)
}
