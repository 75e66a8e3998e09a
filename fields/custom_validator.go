package fields

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

var validatorOnce sync.Once
var validate *validator.Validate

// chatID matches the two forms Telegram accepts for channel targets: a
// public @name or a numeric (usually -100 prefixed) id.
var chatID = regexp.MustCompile(`^(@[A-Za-z0-9_]{5,}|-?[0-9]+)$`)

func chatid(fl validator.FieldLevel) bool {
	return chatID.MatchString(fl.Field().String())
}

func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")

		err := validate.RegisterValidation("chatid", chatid)
		if err != nil {
			log.Fatalf("Unexpected err %v", err)
		}

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

			if name == "-" {
				return ""
			}

			return name
		})
	})
	return validate
}

func ValidateStruct(obj interface{}) error {
	if kindOfData(obj) == reflect.Struct {
		if err := Validator().Struct(obj); err != nil {
			return err
		}
	}
	return nil
}

func kindOfData(data interface{}) reflect.Kind {

	value := reflect.ValueOf(data)
	valueType := value.Kind()

	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}

// DefaultValidator plugs the shared validator into gin's binding layer.
type DefaultValidator struct{}

func (v *DefaultValidator) ValidateStruct(obj interface{}) error {
	return ValidateStruct(obj)
}

func (v *DefaultValidator) Engine() interface{} {
	return Validator()
}
