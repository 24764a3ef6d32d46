package dto

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/solbet/solbet-platform/pkg/contracts/api"
)

var validate = newValidator()

// newValidator reporta os campos pelo nome do JSON
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checa só a presença dos campos; regras de negócio ficam no domínio
func Validate(req any) error {
	return validate.Struct(req)
}

// MissingFields lista os campos que falharam na validação, se err veio do validator
func MissingFields(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field())
	}
	return out
}

// Os corpos das requisições são os contratos públicos de pkg/contracts/api

type (
	CreateBetRequest     = api.CreateBetRequest
	PlaceBetRequest      = api.PlaceBetRequest
	WithdrawRequest      = api.WithdrawRequest
	ResolveBetRequest    = api.ResolveBetRequest
	ActorRequest         = api.ActorRequest
	ConnectWalletRequest = api.ConnectWalletRequest
	LoginRequest         = api.LoginRequest
	DevLoginRequest      = api.DevLoginRequest
)
