package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/vbonduro/hgdesk/internal/hgweb"
)

const maxJSONBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return strings.ToLower(f.Name)
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("reponame", func(fl validator.FieldLevel) bool {
		return hgweb.ValidateName(fl.Field().String()) == nil
	}); err != nil {
		panic(err)
	}
	return v
}

type projectForm struct {
	Name string `form:"name" validate:"required,notblank,max=100"`
}

type taskForm struct {
	Title string `form:"title" validate:"required,notblank,max=200"`
}

type taskUpdateForm struct {
	Title   string `form:"title" validate:"required,notblank,max=200"`
	Content string `form:"content"`
	Done    string `form:"done" validate:"omitempty,oneof=0 1"`
}

type itemRequest struct {
	Data string `form:"data" json:"data" validate:"required,notblank"`
}

type repoRequest struct {
	Name string `form:"name" validate:"required,reponame"`
}

func bindProjectForm(r *http.Request) projectForm {
	return projectForm{Name: strings.TrimSpace(r.FormValue("name"))}
}

func bindTaskForm(r *http.Request) taskForm {
	return taskForm{Title: strings.TrimSpace(r.FormValue("title"))}
}

func bindTaskUpdateForm(r *http.Request) taskUpdateForm {
	return taskUpdateForm{
		Title:   strings.TrimSpace(r.FormValue("title")),
		Content: r.FormValue("content"),
		Done:    r.FormValue("done"),
	}
}

// bindItemRequest reads an item from a JSON body or from form fields,
// depending on the request's content type.
func bindItemRequest(w http.ResponseWriter, r *http.Request) (itemRequest, error) {
	var req itemRequest
	if !isJSON(r) {
		req.Data = r.FormValue("data")
		return req, nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	return req, nil
}

// validationMessage turns the first failing field into a short sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "reponame":
		return fe.Field() + " is not a valid repository name"
	}
	return fe.Field() + " is invalid"
}
