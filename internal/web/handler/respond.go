package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/chain"
	"github.com/GoAgora/go-agora/internal/pagination"
)

// ErrorBody is the body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorHandler answers every error as json. Errors that are not a *fiber.Error are logged and hidden.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := ErrInternal.Error()

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	return c.Status(code).JSON(ErrorBody{Error: msg})
}

// Fail turns a controller error into a response error.
// Errors matching one of notFound answer 404, any other error is logged and answers 500.
func Fail(err error, notFound ...error) error {
	for _, nf := range notFound {
		if errors.Is(err, nf) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
	}

	log.Error().Err(err).Msg("request failed")

	return Internal()
}

// Internal is the 500 answer for errors that were already logged.
func Internal() error {
	return fiber.NewError(fiber.StatusInternalServerError, ErrInternal.Error())
}

// BadRequest answers 400 with the message of err.
func BadRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

// Page reads the limit and offset query parameters.
func Page(c *fiber.Ctx) (pagination.Params, error) {
	p, err := pagination.FromCtx(c)
	if err != nil {
		return p, BadRequest(err)
	}

	return p, nil
}

// Address resolves the route parameter param, a hex address or an ENS name, to a lowercase address.
func Address(c *fiber.Ctx, src chain.Source, param string) (string, error) {
	addr, err := chain.AddressOrENS(c.UserContext(), src, c.Params(param))

	switch {
	case errors.Is(err, chain.ErrInvalidAddress):
		return "", BadRequest(err)
	case errors.Is(err, chain.ErrENSNotFound):
		return "", fiber.NewError(fiber.StatusNotFound, err.Error())
	case err != nil:
		log.Error().Err(err).Str("address", c.Params(param)).Msg("failed to resolve address")
		return "", Internal()
	}

	return addr, nil
}

// ValidationError answers 400 listing the fields of err that failed validation.
func ValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return BadRequest(err)
	}

	messages := make([]string, len(validationErrors))
	for i, ve := range validationErrors {
		messages[i] = "field '" + ve.Field() + "' failed validation tag '" + ve.Tag() + "'"
	}

	return fiber.NewError(fiber.StatusBadRequest, strings.Join(messages, "; "))
}
