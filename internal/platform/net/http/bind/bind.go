// Package bind decodes and validates JSON request bodies for handlers
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "ghstats/internal/platform/errors"
	"ghstats/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// validatorSvc holds the lazily built validator and its english translator
type validatorSvc struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

func getValidator() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// validation messages name fields by their json tag
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		// short messages for the range tags the request types lean on
		registerShortRange(v, trans, "min", "{0} must be at least {1}")
		registerShortRange(v, trans, "max", "{0} must be at most {1}")

		vSvc = &validatorSvc{validate: v, trans: trans}
	})
	return vSvc
}

// JSONOptions controls parsing behavior
type JSONOptions struct {
	MaxBytes        int64 // default 1MB
	DisallowUnknown bool  // default true
	AllowEmptyBody  bool  // default false
}

func defaultJSONOptions() JSONOptions {
	return JSONOptions{
		MaxBytes:        1 << 20,
		DisallowUnknown: true,
		AllowEmptyBody:  false,
	}
}

// sniffBody reads one byte to tell an absent body from a present one and
// hands back a reader that replays what the probe consumed
func sniffBody(body io.Reader) (io.Reader, bool) {
	probe := make([]byte, 1)
	n, _ := body.Read(probe)
	if n == 0 {
		return nil, false
	}
	return io.MultiReader(bytes.NewReader(probe[:n]), body), true
}

// bodyOptional reports whether the method conventionally ships no body
func bodyOptional(method string) bool {
	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func capBytes(r io.Reader, n int64) io.Reader {
	if n > 0 {
		return io.LimitReader(r, n)
	}
	return r
}

// ParseJSON decodes JSON into T, validates it, and maps failures to project errors
//
// With AllowEmptyBody a missing body yields the zero value, which lets a bare
// scheduler POST reach the handler with all defaults intact
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := defaultJSONOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close request body")
		}
	}()

	reader := io.Reader(r.Body)
	if !o.AllowEmptyBody {
		replay, present := sniffBody(r.Body)
		if !present {
			if bodyOptional(r.Method) {
				return zero, nil
			}
			return zero, perr.JSONErrf("empty body")
		}
		reader = replay
	}
	reader = capBytes(reader, o.MaxBytes)

	dec := json.NewDecoder(reader)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	if err := dec.Decode(&dst); err != nil {
		// an allowed-empty body decodes to EOF and keeps the zero value
		if o.AllowEmptyBody && errors.Is(err, io.EOF) {
			return dst, nil
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	if err := getValidator().validate.Struct(dst); err != nil {
		if inv, ok := err.(*validator.InvalidValidationError); ok {
			logger.Get().Error().Err(inv).Msg("validator internal error")
			return zero, perr.JSONErrf("validation error")
		}
		return zero, perr.Newf(perr.ErrorCodeValidation, "%s", firstValidationMessage(err))
	}

	return dst, nil
}

// firstValidationMessage translates the first field failure into a short message
func firstValidationMessage(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			return fe.Translate(getValidator().trans)
		}
	}
	return err.Error()
}

func registerShortRange(v *validator.Validate, trans ut.Translator, tag, template string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, template, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}
