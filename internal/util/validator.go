package util

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/guregu/null.v3"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/model/gamedata"
)

func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("caseinsensitiveoneof", caseInsensitiveOneOf)
	validate.RegisterValidation("datasource", dataSource)
	validate.RegisterValidation("refreshtarget", refreshTarget)
	validate.RegisterValidation("gametable", gameTable)
	validate.RegisterCustomTypeFunc(nullStringValuer, null.String{})

	return validate
}

func caseInsensitiveOneOf(fl validator.FieldLevel) bool {
	val := strings.ToLower(fl.Field().String())
	candidates := strings.Split(strings.ToLower(fl.Param()), " ")
	for _, v := range candidates {
		if val == v {
			return true
		}
	}
	return false
}

func dataSource(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return val == constant.SourceLive || val == constant.SourceReview
}

func refreshTarget(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return val == constant.SourceAll || val == constant.SourceLive || val == constant.SourceReview
}

func gameTable(fl validator.FieldLevel) bool {
	return gamedata.IsTable(fl.Field().String())
}

func nullStringValuer(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(null.String); ok {
		return valuer.String
	}

	return nil
}
