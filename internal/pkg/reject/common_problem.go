package reject

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	genericUnexpectedError string = "error.generic.unexpected"
	invalidRequest         string = "error.generic.invalid-request-payload"
	cannotParseBody        string = "error.generic.cannot-parse-payload"
	scriptNotAllowed       string = "error.cosign.script-not-allowed"
	notPayer               string = "error.cosign.not-payer"
	messageMismatch        string = "error.cosign.message-mismatch"
	accessNodeUnavailable  string = "error.flow.access-node-unavailable"
)

func RequestValidationProblem(detail string) Problem {
	return NewProblem().
		WithTitle("Invalid request payload").
		WithStatus(http.StatusBadRequest).
		WithCode(invalidRequest).
		WithDetail(detail).
		Build()
}

func BodyParseProblem() Problem {
	return NewProblem().
		WithTitle("Cannot read payload").
		WithStatus(http.StatusBadRequest).
		WithCode(cannotParseBody).
		Build()
}

func ScriptNotAllowedProblem() Problem {
	return NewProblem().
		WithTitle("Transaction script is not allowed").
		WithStatus(http.StatusForbidden).
		WithCode(scriptNotAllowed).
		Build()
}

func NotPayerProblem(payer string) Problem {
	return NewProblem().
		WithTitle("Payer is not served by this signer").
		WithStatus(http.StatusForbidden).
		WithCode(notPayer).
		WithParam("payer", payer).
		Build()
}

func MessageMismatchProblem() Problem {
	return NewProblem().
		WithTitle("Message does not match the voucher").
		WithStatus(http.StatusBadRequest).
		WithCode(messageMismatch).
		Build()
}

func AccessNodeProblem(err error) Problem {
	log.Warn().Err(err).Msg("Access node request failed")
	return NewProblem().
		WithTitle("Flow access node unavailable").
		WithStatus(http.StatusBadGateway).
		WithCode(accessNodeUnavailable).
		Build()
}

func UnexpectedProblem(err error) Problem {
	log.Warn().Err(err).Msg("Unexpected error while handling request: " + err.Error())
	return NewProblem().
		WithTitle("Unexpected error").
		WithStatus(http.StatusInternalServerError).
		WithCode(genericUnexpectedError).
		Build()
}
